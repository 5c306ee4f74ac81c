package accuracy

import "testing"

func TestDigitLevelAccuracyEqualStrings(t *testing.T) {
	matched, total := DigitLevelAccuracy("1234", "1234")
	if matched != 4 || total != 4 {
		t.Errorf("identical strings: got matched=%d total=%d", matched, total)
	}
}

func TestDigitLevelAccuracyCountsPositionalMatches(t *testing.T) {
	matched, total := DigitLevelAccuracy("1234", "1235")
	if matched != 3 || total != 4 {
		t.Errorf("expected 3/4, got %d/%d", matched, total)
	}
}

func TestDigitLevelAccuracyShorterPrediction(t *testing.T) {
	matched, total := DigitLevelAccuracy("1234", "12")
	if matched != 2 {
		t.Errorf("comparison stops at the shorter string, got matched=%d", matched)
	}
	if total != 4 {
		t.Errorf("total is the true string length, got %d", total)
	}
}

func TestDigitLevelAccuracyLongerPrediction(t *testing.T) {
	matched, total := DigitLevelAccuracy("12", "1234")
	if matched != 2 || total != 2 {
		t.Errorf("got matched=%d total=%d", matched, total)
	}
}

func TestLevenshteinIdentity(t *testing.T) {
	for _, s := range []string{"", "a", "SMITH", "1930330"} {
		if d := LevenshteinDistance(s, s); d != 0 {
			t.Errorf("distance(%q, %q) = %d, want 0", s, s, d)
		}
	}
}

func TestLevenshteinEmptyBase(t *testing.T) {
	if d := LevenshteinDistance("", "abc"); d != 3 {
		t.Errorf("distance(\"\", abc) = %d, want 3", d)
	}
	if d := LevenshteinDistance("abc", ""); d != 3 {
		t.Errorf("distance(abc, \"\") = %d, want 3", d)
	}
}

func TestLevenshteinSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"SMITH", "SMYTHE"},
		{"flaw", "lawn"},
	}
	for _, pair := range pairs {
		forward := LevenshteinDistance(pair[0], pair[1])
		backward := LevenshteinDistance(pair[1], pair[0])
		if forward != backward {
			t.Errorf("distance not symmetric for %q/%q: %d vs %d", pair[0], pair[1], forward, backward)
		}
	}
}

func TestLevenshteinKnownDistances(t *testing.T) {
	cases := []struct {
		s1, s2 string
		want   int
	}{
		{"kitten", "sitting", 3},
		{"abc", "abd", 1},
		{"abc", "ab", 1},
		{"abc", "xabc", 1},
	}
	for _, tc := range cases {
		if got := LevenshteinDistance(tc.s1, tc.s2); got != tc.want {
			t.Errorf("distance(%q, %q) = %d, want %d", tc.s1, tc.s2, got, tc.want)
		}
	}
}

func TestMetricJSONUndefinedIsNull(t *testing.T) {
	undefined := UndefinedMetric()
	data, err := undefined.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("undefined metric must marshal as null, got %s", data)
	}

	defined := DefinedMetric(0.25)
	data, err = defined.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "0.25" {
		t.Errorf("expected 0.25, got %s", data)
	}
}
