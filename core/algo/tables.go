package algo

import "github.com/huangsam/roadsurvey/schema"

// repairKey indexes the repair tables by damage class and severity.
type repairKey struct {
	damage   schema.DamageType
	severity schema.Severity
}

// repairSpec is the per-square-meter cost and effort of one repair.
type repairSpec struct {
	CostPerSqm  int64 // INR
	HoursPerSqm float64
	Material    string
	Method      string
}

// fallbackDamage is used for damage classes without their own table rows.
const fallbackDamage = schema.Pothole

// repairTable is keyed by (damage, severity). Costs are INR per m².
var repairTable = map[repairKey]repairSpec{
	{schema.LongitudinalCrack, schema.Minor}:    {1200, 0.5, "Crack sealing compound", "Hot pour crack sealing"},
	{schema.LongitudinalCrack, schema.Moderate}: {2000, 1.0, "Rubberized crack filler", "Routing and sealing"},
	{schema.LongitudinalCrack, schema.Severe}:   {3600, 2.5, "Asphalt patching mix", "Mill and overlay"},
	{schema.LongitudinalCrack, schema.Critical}: {6800, 6.0, "Full depth asphalt", "Complete reconstruction"},

	{schema.TransverseCrack, schema.Minor}:    {1440, 0.6, "Crack sealing compound", "Surface sealing"},
	{schema.TransverseCrack, schema.Moderate}: {2400, 1.2, "Polymer-modified sealant", "Crack routing and sealing"},
	{schema.TransverseCrack, schema.Severe}:   {4000, 3.0, "Asphalt overlay", "Mill and resurface"},
	{schema.TransverseCrack, schema.Critical}: {7200, 7.0, "Full reconstruction", "Complete rebuild"},

	{schema.AlligatorCrack, schema.Minor}:    {2800, 1.5, "Micro-surfacing", "Surface treatment"},
	{schema.AlligatorCrack, schema.Moderate}: {5200, 3.0, "Thin overlay", "2-inch overlay"},
	{schema.AlligatorCrack, schema.Severe}:   {9600, 6.0, "Full depth patching", "Remove and replace"},
	{schema.AlligatorCrack, schema.Critical}: {16000, 12.0, "Complete reconstruction", "Full depth reconstruction"},

	{schema.Pothole, schema.Minor}:    {2000, 1.0, "Cold patch asphalt", "Temporary patching"},
	{schema.Pothole, schema.Moderate}: {3600, 2.0, "Hot mix asphalt", "Permanent patching"},
	{schema.Pothole, schema.Severe}:   {6000, 4.0, "Full depth patch", "Saw cut and replace"},
	{schema.Pothole, schema.Critical}: {12000, 8.0, "Structural repair", "Base repair and overlay"},

	{schema.Repair, schema.Minor}:    {800, 0.3, "Inspection only", "Quality assessment"},
	{schema.Repair, schema.Moderate}: {1600, 0.8, "Touch-up materials", "Minor repairs"},
	{schema.Repair, schema.Severe}:   {3200, 2.0, "Rework materials", "Repair rework"},
	{schema.Repair, schema.Critical}: {6400, 5.0, "Complete redo", "Full reconstruction"},

	{schema.BlockCrack, schema.Minor}:    {1600, 0.8, "Crack sealing", "Preventive sealing"},
	{schema.BlockCrack, schema.Moderate}: {3200, 1.5, "Overlay preparation", "Surface preparation"},
	{schema.BlockCrack, schema.Severe}:   {5600, 3.5, "Milling and overlay", "Remove and replace"},
	{schema.BlockCrack, schema.Critical}: {10400, 8.0, "Full reconstruction", "Complete rebuild"},
}

// lookupRepair returns the table row for (damage, severity), falling back to
// the Pothole rows for damage classes the table does not know.
func lookupRepair(damage schema.DamageType, severity schema.Severity) repairSpec {
	if rates, ok := repairTable[repairKey{damage, severity}]; ok {
		return rates
	}
	return repairTable[repairKey{fallbackDamage, severity}]
}

var priorityTable = map[schema.Severity]schema.Priority{
	schema.Critical: {Level: 1, Action: "IMMEDIATE", Timeline: "24-48 hours", Risk: "High safety risk"},
	schema.Severe:   {Level: 2, Action: "URGENT", Timeline: "1-2 weeks", Risk: "Moderate safety risk"},
	schema.Moderate: {Level: 3, Action: "SCHEDULED", Timeline: "1-3 months", Risk: "Low safety risk"},
	schema.Minor:    {Level: 4, Action: "PREVENTIVE", Timeline: "3-6 months", Risk: "Minimal risk"},
}

// PriorityFor returns the fixed priority of a severity.
func PriorityFor(severity schema.Severity) schema.Priority {
	if p, ok := priorityTable[severity]; ok {
		return p
	}
	return priorityTable[schema.Minor]
}

var baseCrew = map[schema.Severity]int{
	schema.Minor:    2,
	schema.Moderate: 3,
	schema.Severe:   4,
	schema.Critical: 6,
}

var (
	baseEquipment  = []string{"Hand tools", "Safety equipment", "Traffic cones"}
	heavyPatching  = []string{"Asphalt saw", "Jackhammer", "Compactor", "Hot mix truck", "Roller", "Crack router"}
	heavySealing   = []string{"Crack router", "Sealant applicator", "Air compressor", "Heating kettle"}
	lightEquipment = []string{"Crack sealing equipment", "Cleaning tools"}

	baseSafety  = []string{"High-visibility clothing", "Hard hats", "Safety glasses", "Work zone setup"}
	heavySafety = []string{"Traffic control plan", "Flaggers", "Temporary barriers", "Warning signs", "Emergency response plan"}
	lightSafety = []string{"Basic traffic control", "Warning signs"}

	weatherConditions = []string{
		"No precipitation during work",
		"Dry surface required",
		"Wind speed < 25 mph for sealants",
		"No freezing conditions",
	}
)

var (
	majorTraffic = schema.TrafficImpact{
		LaneClosure:          "Required",
		Duration:             "Full repair duration",
		TrafficControl:       "Flaggers and signs required",
		AlternateRoute:       "Recommended for major repairs",
		PeakHourRestrictions: "Avoid 7-9 AM and 4-6 PM",
	}
	minorTraffic = schema.TrafficImpact{
		LaneClosure:          "Partial or rolling closure",
		Duration:             "Minimal disruption",
		TrafficControl:       "Basic signage sufficient",
		AlternateRoute:       "Not required",
		PeakHourRestrictions: "Can work during off-peak hours",
	}
)
