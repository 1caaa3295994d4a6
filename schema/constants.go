package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string

	// DetectorKind selects how detections are produced for each image.
	DetectorKind string

	// DamageType is the class of road damage reported by the detector.
	DamageType string

	// Severity is the derived repair severity of a single damage.
	Severity string

	// Condition is the overall condition of a surveyed area.
	Condition string

	// RiskLevel is the qualitative risk of a surveyed area.
	RiskLevel string

	// ImageStatus is the processing outcome of a single image.
	ImageStatus string

	// BudgetCategory names one slice of the project budget.
	BudgetCategory string

	// CrewRole names one role within a repair crew.
	CrewRole string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All detector kinds supported.
const (
	ExecDetector DetectorKind = "exec" // default
	CSVDetector  DetectorKind = "csv"
)

// Damage classes emitted by the road damage model, in class-id order.
const (
	LongitudinalCrack DamageType = "D00_Longitudinal_Crack"
	TransverseCrack   DamageType = "D10_Transverse_Crack"
	AlligatorCrack    DamageType = "D20_Alligator_Crack"
	Pothole           DamageType = "D40_Pothole"
	Repair            DamageType = "Repair"
	BlockCrack        DamageType = "Block_Crack"
)

// Severities in ascending order.
const (
	Minor    Severity = "minor"
	Moderate Severity = "moderate"
	Severe   Severity = "severe"
	Critical Severity = "critical"
)

// Overall area conditions.
const (
	Excellent     Condition = "EXCELLENT"
	Good          Condition = "GOOD"
	Fair          Condition = "FAIR"
	Poor          Condition = "POOR"
	CriticalState Condition = "CRITICAL"
)

// Risk levels from lowest to highest.
const (
	LowRisk      RiskLevel = "LOW"
	MediumRisk   RiskLevel = "MEDIUM"
	HighRisk     RiskLevel = "HIGH"
	VeryHighRisk RiskLevel = "VERY HIGH"
)

// Image processing outcomes.
const (
	DamagedImage ImageStatus = "damaged"
	CleanImage   ImageStatus = "clean"
	ErrorImage   ImageStatus = "error"
)

// Budget categories.
const (
	MaterialsBudget      BudgetCategory = "materials"
	LaborBudget          BudgetCategory = "labor"
	EquipmentBudget      BudgetCategory = "equipment"
	TrafficControlBudget BudgetCategory = "traffic_control"
	ContingencyBudget    BudgetCategory = "contingency"
)

// Crew roles.
const (
	Supervisor        CrewRole = "supervisor"
	EquipmentOperator CrewRole = "equipment_operator"
	SkilledWorkers    CrewRole = "skilled_workers"
	TrafficControl    CrewRole = "traffic_control"
	SafetyOfficer     CrewRole = "safety_officer"
)

// AllDamageTypes lists the known damage classes in class-id order.
var AllDamageTypes = []DamageType{LongitudinalCrack, TransverseCrack, AlligatorCrack, Pothole, Repair, BlockCrack}

// AllSeverities lists severities in ascending order.
var AllSeverities = []Severity{Minor, Moderate, Severe, Critical}

// AllBudgetCategories lists budget categories in report order.
var AllBudgetCategories = []BudgetCategory{MaterialsBudget, LaborBudget, EquipmentBudget, TrafficControlBudget, ContingencyBudget}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidDetectorKinds lists all valid detector kinds.
var ValidDetectorKinds = map[DetectorKind]struct{}{
	ExecDetector: {},
	CSVDetector:  {},
}
