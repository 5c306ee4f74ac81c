package table

import "testing"

func TestAliasTableMatches(t *testing.T) {
	aliases := DefaultAliasTable()

	cases := []struct {
		contest ContestType
		label   string
		want    bool
	}{
		{ContestHouse, "HOUSE", true},
		{ContestHouse, "representative", true},
		{ContestHouse, "Representatives", true},
		{ContestHouse, "REP", true},
		{ContestHouse, "At Large", true},
		{ContestHouse, "SENATE", false},
		{ContestSenate, "SENATOR", true},
		{ContestSenate, "sen", true},
		{ContestSenate, "SENATE_DEMOCRATS", true},
		{ContestPresidential, "President", true},
		{ContestPresidential, "PRES", true},
		{ContestHouse, "GOVERNOR", false},
		{ContestSenate, "SENATORIAL", false}, // exact match only, no prefixes
	}

	for _, tc := range cases {
		if got := aliases.Matches(tc.contest, tc.label); got != tc.want {
			t.Errorf("Matches(%s, %q) = %v, want %v", tc.contest, tc.label, got, tc.want)
		}
	}
}

func TestFilterContestPreservesOrder(t *testing.T) {
	records := []Record{
		{State: "OHIO", RaceType: "SENATE", CandidateParty: "A", Votes: 1},
		{State: "OHIO", RaceType: "HOUSE", CandidateParty: "B", Votes: 2},
		{State: "IOWA", RaceType: "REPRESENTATIVE", CandidateParty: "C", Votes: 3},
		{State: "IOWA", RaceType: "GOVERNOR", CandidateParty: "D", Votes: 4},
	}

	filtered := FilterContest(records, ContestHouse, DefaultAliasTable())

	if len(filtered) != 2 {
		t.Fatalf("expected 2 house records, got %d", len(filtered))
	}
	if filtered[0].CandidateParty != "B" || filtered[1].CandidateParty != "C" {
		t.Errorf("input order must be preserved: %+v", filtered)
	}
}

func TestParseContestType(t *testing.T) {
	aliases := DefaultAliasTable()

	if contest, ok := ParseContestType("senator", aliases); !ok || contest != ContestSenate {
		t.Errorf("expected SENATE for senator, got %q ok=%v", contest, ok)
	}
	if _, ok := ParseContestType("dogcatcher", aliases); ok {
		t.Error("unknown contest labels must never match")
	}
}
