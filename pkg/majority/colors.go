package majority

import "strings"

// DefaultPartyColor is the display color for parties without a dedicated
// entry in the color table.
const DefaultPartyColor = "gray"

// ColorTable maps upper-cased party names to display colors. Immutable
// configuration data for the presentation layer.
type ColorTable map[string]string

// Color returns the display color for a party, falling back to
// DefaultPartyColor for unknown parties.
func (colors ColorTable) Color(party string) string {
	if color, ok := colors[strings.ToUpper(strings.TrimSpace(party))]; ok {
		return color
	}
	return DefaultPartyColor
}

// DefaultColorTable returns the standard party color assignments.
func DefaultColorTable() ColorTable {
	return ColorTable{
		"DEMOCRAT":    "blue",
		"REPUBLICAN":  "red",
		"SOCIALIST":   "green",
		"PROGRESSIVE": "purple",
		"OTHER":       "gray",
	}
}
