package nrl

import "strings"

// teamAliases maps display names to the short names used in directory names.
// No value may also be a key, which keeps CanonicalTeam idempotent.
var teamAliases = map[string]string{
	"Canterbury-Bankstown": "CanterburyBankstown",
	"Gold Coast":           "GoldCoast",
	"North Queensland":     "NorthQueensland",
	"South Sydney":         "SouthSydney",
	"St George Illawarra":  "StGeorgeIllawarra",
	"Sydney Roosters":      "Sydney",
	"Warriors":             "NewZealand",
	"Wests Tigers":         "Wests",
}

// CanonicalTeam trims name and maps it through the alias table. Unknown names pass
// through unchanged.
func CanonicalTeam(name string) string {
	name = strings.TrimSpace(name)
	if alias, ok := teamAliases[name]; ok {
		return alias
	}
	return name
}
