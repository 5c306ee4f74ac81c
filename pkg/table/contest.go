package table

import "strings"

// ContestType identifies the office being contested.
type ContestType string

const (
	ContestHouse        ContestType = "HOUSE"
	ContestSenate       ContestType = "SENATE"
	ContestPresidential ContestType = "PRESIDENTIAL"
)

// AliasTable maps canonical contest types to the race labels that count as
// them in source documents. It is immutable configuration data: build one
// with DefaultAliasTable and inject it wherever contest filtering happens.
type AliasTable map[ContestType][]string

// DefaultAliasTable returns the standard contest alias mapping observed in
// the archival election statistics documents.
func DefaultAliasTable() AliasTable {
	return AliasTable{
		ContestHouse:        {"HOUSE", "REPRESENTATIVE", "REPRESENTATIVES", "REP", "AT LARGE"},
		ContestSenate:       {"SENATE", "SENATOR", "SEN", "SENATE_DEMOCRATS"},
		ContestPresidential: {"PRESIDENTIAL", "PRESIDENT", "PRES"},
	}
}

// Matches reports whether raceType names the given contest. Matching is
// case-insensitive and exact against the alias list; unknown contest types
// never match.
func (aliases AliasTable) Matches(contest ContestType, raceType string) bool {
	label := strings.ToUpper(strings.TrimSpace(raceType))
	for _, alias := range aliases[contest] {
		if label == alias {
			return true
		}
	}
	return false
}

// FilterContest returns the records whose race type names the given
// contest, preserving input order.
func FilterContest(records []Record, contest ContestType, aliases AliasTable) []Record {
	var filtered []Record
	for _, record := range records {
		if aliases.Matches(contest, record.RaceType) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// ParseContestType maps a free-form contest label to its canonical type
// using the alias table. The second return is false for unknown labels.
func ParseContestType(label string, aliases AliasTable) (ContestType, bool) {
	for _, contest := range []ContestType{ContestHouse, ContestSenate, ContestPresidential} {
		if aliases.Matches(contest, label) {
			return contest, true
		}
	}
	return "", false
}
