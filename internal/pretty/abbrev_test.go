package pretty

import "testing"

func TestAbbrev(t *testing.T) {
	testCases := []struct {
		Input  string
		MaxLen int
		Want   string
	}{
		{"", 4, ""},
		{"abcd", 4, "abcd"},
		{"abcdef", 4, "abcd… (6 bytes)"},
		{"abcdef", 0, "abcdef"},
		{"añb", 2, "a… (4 bytes)"},
	}

	for _, tc := range testCases {
		if got := Abbrev(tc.Input, tc.MaxLen).String(); got != tc.Want {
			t.Errorf("Abbrev(%q, %d): got %q; want %q", tc.Input, tc.MaxLen, got, tc.Want)
		}
	}
}
