package schema

import (
	"strconv"
	"strings"
)

// damageAliases maps lowercase spellings to canonical damage classes.
var damageAliases = map[string]DamageType{
	"longitudinalcrack":  LongitudinalCrack,
	"longitudinal_crack": LongitudinalCrack,
	"d00":                LongitudinalCrack,
	"transversecrack":    TransverseCrack,
	"transverse_crack":   TransverseCrack,
	"d10":                TransverseCrack,
	"alligatorcrack":     AlligatorCrack,
	"alligator_crack":    AlligatorCrack,
	"d20":                AlligatorCrack,
	"pothole":            Pothole,
	"d40":                Pothole,
	"repair":             Repair,
	"blockcrack":         BlockCrack,
	"block_crack":        BlockCrack,
}

// ParseDamageType resolves a class label, bare name or numeric class id into a
// DamageType. Unrecognized labels are kept verbatim so they survive into reports.
func ParseDamageType(s string) DamageType {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil {
		if dt, ok := DamageTypeFromClassID(id); ok {
			return dt
		}
		return DamageType(s)
	}
	lower := strings.ToLower(s)
	for _, dt := range AllDamageTypes {
		if strings.ToLower(string(dt)) == lower {
			return dt
		}
	}
	if dt, ok := damageAliases[lower]; ok {
		return dt
	}
	return DamageType(s)
}

// DamageTypeFromClassID maps a model class id to its damage class.
func DamageTypeFromClassID(id int) (DamageType, bool) {
	if id < 0 || id >= len(AllDamageTypes) {
		return "", false
	}
	return AllDamageTypes[id], true
}

// Known reports whether the type is one of the model's damage classes.
func (d DamageType) Known() bool {
	for _, dt := range AllDamageTypes {
		if dt == d {
			return true
		}
	}
	return false
}

// DisplayName returns a human readable name, e.g. "Alligator Crack".
func (d DamageType) DisplayName() string {
	switch d {
	case LongitudinalCrack:
		return "Longitudinal Crack"
	case TransverseCrack:
		return "Transverse Crack"
	case AlligatorCrack:
		return "Alligator Crack"
	case Pothole:
		return "Pothole"
	case Repair:
		return "Repair"
	case BlockCrack:
		return "Block Crack"
	default:
		return strings.ReplaceAll(string(d), "_", " ")
	}
}

// Rank orders severities: minor=1 through critical=4. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case Minor:
		return 1
	case Moderate:
		return 2
	case Severe:
		return 3
	case Critical:
		return 4
	default:
		return 0
	}
}

// AtLeast reports whether s is as bad as or worse than other.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// Title returns the capitalized severity, e.g. "Critical".
func (s Severity) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}
