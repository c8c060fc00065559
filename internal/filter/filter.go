// Package filter holds the validity filters that separate real event and
// venue names from markup and boilerplate leakage on TicketDive artist
// pages.
//
// The filters are pattern-based rejection rules: boilerplate phrases
// ("受付中", "未定" and friends), HTML tags, CSS property fragments that leak
// out of inline styles, SVG icon markup, and the "Event xxxx" template
// placeholder the site renders for unnamed events.
package filter

import (
	"regexp"
	"strings"
	"unicode"
)

// Exact-match boilerplate phrases that are never a real event name.
var nameBoilerplate = map[string]struct{}{
	"受付中":     {},
	"申込受付中":   {},
	"イベント":    {},
	"公演":      {},
	"未定":      {},
	"日程未定":    {},
	"会場未定":    {},
	"チケットの分配": {},
}

// Exact-match placeholders that are never a real venue name.
var venueBoilerplate = map[string]struct{}{
	"会場未定":    {},
	"未定":      {},
	"受付中":     {},
	"申込受付中":   {},
	"チケットの分配": {},
}

// CSS property fragments that indicate an inline style leaked into the text.
var cssTokens = []string{
	"padding",
	"margin",
	"font-",
	"cursor:",
	"height:",
	"width:",
	"display:",
}

// SVG markup fragments that indicate icon markup leaked into the text.
var svgTokens = []string{
	"path fill",
	"svg",
	"fill-rule",
	"clip-rule",
	"evenodd",
	`d="`,
}

var (
	htmlTagRe      = regexp.MustCompile(`<[^>]+>`)
	cssUnitRe      = regexp.MustCompile(`\d+(?:px|em|rem)`)
	templateLeakRe = regexp.MustCompile(`^Event [A-Za-z0-9]+$`)
	leadingOpenRe  = regexp.MustCompile(`^(?:申込)?受付中[『「]?`)
)

// ValidEventName reports whether s looks like a real event name rather than
// boilerplate or markup leakage. Length bounds are the caller's concern; this
// only applies the pattern rules.
func ValidEventName(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if _, ok := nameBoilerplate[s]; ok {
		return false
	}
	if htmlTagRe.MatchString(s) {
		return false
	}
	if strings.Contains(s, ";") {
		return false
	}
	lower := strings.ToLower(s)
	for _, tok := range cssTokens {
		if strings.Contains(lower, tok) {
			return false
		}
	}
	if cssUnitRe.MatchString(lower) {
		return false
	}
	if !containsLetter(s) {
		return false
	}
	if templateLeakRe.MatchString(s) {
		return false
	}
	return true
}

// CleanEventName strips the "申込受付中" / "受付中" reception prefix (with its
// optional opening bracket) and a trailing closing bracket from an accepted
// name. The result must be re-validated by the caller; cleanup can reduce a
// name to boilerplate.
func CleanEventName(s string) string {
	s = strings.TrimSpace(s)
	s = leadingOpenRe.ReplaceAllString(s, "")
	if strings.HasSuffix(s, "』") {
		s = strings.TrimSuffix(s, "』")
	} else if strings.HasSuffix(s, "」") {
		s = strings.TrimSuffix(s, "」")
	}
	return strings.TrimSpace(s)
}

// ValidVenue reports whether s looks like a real venue name. Venues share the
// boilerplate rules with event names but additionally reject SVG markup
// fragments, which cluster around the map-pin icons next to venue labels.
func ValidVenue(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if _, ok := venueBoilerplate[s]; ok {
		return false
	}
	lower := strings.ToLower(s)
	for _, tok := range svgTokens {
		if strings.Contains(lower, tok) {
			return false
		}
	}
	if htmlTagRe.MatchString(s) {
		return false
	}
	return true
}

// containsLetter reports whether s has at least one letter in any script.
// Purely numeric or punctuation strings (prices, dates, separators) are not
// names.
func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
