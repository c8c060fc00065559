package event

import (
	"sort"
	"strings"
	"time"
)

// ParseDate parses a literal "YYYY/M/D" date (no zero padding required) into
// a time.Time. Returns the zero time if the text is not a valid calendar
// date.
func ParseDate(dateText string) time.Time {
	if dateText == "" {
		return time.Time{}
	}

	t, err := time.Parse("2006-1-2", strings.ReplaceAll(dateText, "/", "-"))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Nearest returns the candidate with the earliest date. Candidates whose
// dates do not parse sort last. Ties between equal dates keep discovery
// order (stable sort). The second return value is false when the slice is
// empty.
func Nearest(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)

	sort.SliceStable(sorted, func(i, j int) bool {
		ti := ParseDate(sorted[i].Date)
		tj := ParseDate(sorted[j].Date)
		switch {
		case ti.IsZero():
			return false
		case tj.IsZero():
			return true
		default:
			return ti.Before(tj)
		}
	})

	return sorted[0], true
}
