package majority

import "strings"

// CodeTable maps upper-cased region names to plotting codes (postal
// abbreviations). It is immutable configuration data injected into the
// computation; regions missing from the table are excluded, not fatal.
type CodeTable map[string]string

// Code looks up the plotting code for a region name. The name is
// upper-cased and trimmed before lookup.
func (codes CodeTable) Code(region string) (string, bool) {
	code, ok := codes[strings.ToUpper(strings.TrimSpace(region))]
	return code, ok
}

// DefaultCodeTable returns the standard mapping of US state and territory
// names to postal abbreviations.
func DefaultCodeTable() CodeTable {
	return CodeTable{
		"ALABAMA":              "AL",
		"ALASKA":               "AK",
		"ARIZONA":              "AZ",
		"ARKANSAS":             "AR",
		"CALIFORNIA":           "CA",
		"COLORADO":             "CO",
		"CONNECTICUT":          "CT",
		"DELAWARE":             "DE",
		"DISTRICT OF COLUMBIA": "DC",
		"FLORIDA":              "FL",
		"GEORGIA":              "GA",
		"HAWAII":               "HI",
		"IDAHO":                "ID",
		"ILLINOIS":             "IL",
		"INDIANA":              "IN",
		"IOWA":                 "IA",
		"KANSAS":               "KS",
		"KENTUCKY":             "KY",
		"LOUISIANA":            "LA",
		"MAINE":                "ME",
		"MARYLAND":             "MD",
		"MASSACHUSETTS":        "MA",
		"MICHIGAN":             "MI",
		"MINNESOTA":            "MN",
		"MISSISSIPPI":          "MS",
		"MISSOURI":             "MO",
		"MONTANA":              "MT",
		"NEBRASKA":             "NE",
		"NEVADA":               "NV",
		"NEW HAMPSHIRE":        "NH",
		"NEW JERSEY":           "NJ",
		"NEW MEXICO":           "NM",
		"NEW YORK":             "NY",
		"NORTH CAROLINA":       "NC",
		"NORTH DAKOTA":         "ND",
		"OHIO":                 "OH",
		"OKLAHOMA":             "OK",
		"OREGON":               "OR",
		"PENNSYLVANIA":         "PA",
		"PUERTO RICO":          "PR",
		"RHODE ISLAND":         "RI",
		"SOUTH CAROLINA":       "SC",
		"SOUTH DAKOTA":         "SD",
		"TENNESSEE":            "TN",
		"TEXAS":                "TX",
		"UTAH":                 "UT",
		"VERMONT":              "VT",
		"VIRGINIA":             "VA",
		"WASHINGTON":           "WA",
		"WEST VIRGINIA":        "WV",
		"WISCONSIN":            "WI",
		"WYOMING":              "WY",
	}
}
