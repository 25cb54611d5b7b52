package syllabus

import (
	"strconv"
	"strings"
)

// romanNumerals covers units 1-8, the range curricula actually use.
var romanNumerals = [...]string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII"}

// unitWords maps spelled-out unit identifiers to their numbers.
var unitWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8,
}

// toRoman converts n to its Roman numeral form. Supports 1-8; returns
// empty string outside that range.
func toRoman(n int) string {
	if n < 1 || n > len(romanNumerals) {
		return ""
	}
	return romanNumerals[n-1]
}

// parseUnitNumber resolves a unit identifier (digit, Roman numeral or
// spelled-out word) to its number. Returns 0 and false when the
// identifier is not recognizable as a unit number.
func parseUnitNumber(unit string) (int, bool) {
	s := strings.TrimSpace(unit)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 {
			return n, true
		}
		return 0, false
	}
	upper := strings.ToUpper(s)
	for i, r := range romanNumerals {
		if upper == r {
			return i + 1, true
		}
	}
	if n, ok := unitWords[strings.ToLower(s)]; ok {
		return n, true
	}
	return 0, false
}
