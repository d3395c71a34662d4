// Package pretty formats values for log output.
package pretty

import (
	"fmt"
	"unicode/utf8"
)

// Abbrev returns s shortened to at most maxLen bytes when printed, plus a
// marker with the original length.
func Abbrev(s string, maxLen int) Abbreviated {
	return Abbreviated{
		Original: s,
		MaxLen:   maxLen,
	}
}

type Abbreviated struct {
	Original string
	MaxLen   int
}

func (s Abbreviated) String() string {
	if s.MaxLen <= 0 || len(s.Original) <= s.MaxLen {
		return s.Original
	}
	cut := s.MaxLen
	// Don't split a multi-byte rune.
	for cut > 0 && !utf8.RuneStart(s.Original[cut]) {
		cut--
	}
	return fmt.Sprintf("%s… (%d bytes)", s.Original[:cut], len(s.Original))
}
