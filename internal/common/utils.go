package common

import "strings"

// HasAny returns true if s contains any of the substrings.
func HasAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// NormalizeLocation folds case and collapses whitespace so that "  new   York" and
// "New York" share one key.
func NormalizeLocation(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// PeriodKeyword maps a free-form period phrase ("tomorrow morning", "Today") to
// "today" or "tomorrow". Empty input yields "today"; unrecognised input is returned
// lower-cased so that validation can reject it.
func PeriodKeyword(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return "today"
	case HasAny(s, "tomorrow", "next day"):
		return "tomorrow"
	case HasAny(s, "today", "tonight", "now"):
		return "today"
	default:
		return s
	}
}
