package ticketdive

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"nextlive/internal/event"
	"nextlive/internal/filter"
)

// Window offsets and length bounds for the heuristic search. These were
// tuned against real TicketDive markup; changing them changes which
// candidates survive.
const (
	contextBefore = 1000 // chars before the /event/{id} anchor
	contextAfter  = 7000 // chars after the anchor
	nameWindow    = 1000 // chars before the date token searched for a name
	venueWindow   = 1000 // chars after the date token searched for a venue

	nameMinLen  = 5
	nameMaxLen  = 100
	venueMinLen = 3
	venueMaxLen = 99
)

var (
	eventHrefRe = regexp.MustCompile(`/event/([A-Za-z0-9_-]+)`)
	dateRe      = regexp.MustCompile(`\d{4}/\d{1,2}/\d{1,2}`)

	svgBlockRe = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	pathTagRe  = regexp.MustCompile(`(?is)<path\b[^>]*>|</path>`)
	svgAttrRe  = regexp.MustCompile(`(?i)\s(?:fill-rule|clip-rule|d)="[^"]*"`)

	tagRe    = regexp.MustCompile(`<[^>]*>`)
	entityRe = regexp.MustCompile(`&[#a-zA-Z0-9]+;`)
)

// Venue label patterns, tried in order: div, span and p elements whose class
// mentions venue or location, then any other element with such a class.
var venueClassRes = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*(?:venue|location)[^"]*"[^>]*>(.*?)</div>`),
	regexp.MustCompile(`(?is)<span[^>]*class="[^"]*(?:venue|location)[^"]*"[^>]*>(.*?)</span>`),
	regexp.MustCompile(`(?is)<p[^>]*class="[^"]*(?:venue|location)[^"]*"[^>]*>(.*?)</p>`),
	regexp.MustCompile(`(?is)<[a-z][a-z0-9]*[^>]*class="[^"]*(?:venue|location)[^"]*"[^>]*>([^<]+)<`),
}

// ExtractEvents scans raw artist-page HTML and returns every event candidate
// that survives the name and venue validity filters. It is a pure function:
// no network, no shared state. A candidate that cannot be completed is
// dropped; the scan never fails as a whole. Zero anchors or all-rejected
// candidates yield an empty slice, not an error.
func ExtractEvents(html string) []event.Candidate {
	cleaned := stripSVG(html)

	var out []event.Candidate
	for _, id := range eventIDs(html) {
		if c, ok := extractOne(cleaned, id); ok {
			out = append(out, c)
		}
	}
	return out
}

// EventURL builds the canonical event page URL for an event id. URLs are
// always constructed from the anchor id, never read out of the page.
func EventURL(id string) string {
	return DefaultBaseURL + "/event/" + id
}

// stripSVG removes <svg> blocks, standalone <path> elements and their
// fill-rule/clip-rule/d attributes. SVG icon markup is full of digit runs
// and short text fragments that collide with the date and name heuristics.
func stripSVG(html string) string {
	s := svgBlockRe.ReplaceAllString(html, " ")
	s = pathTagRe.ReplaceAllString(s, " ")
	s = svgAttrRe.ReplaceAllString(s, " ")
	return s
}

// eventIDs returns the distinct event ids linked from the page, in document
// order. Anchors are discovered through the DOM; a raw scan backs it up for
// markup too broken to expose anchors to the parser.
func eventIDs(html string) []string {
	var ids []string
	seen := make(map[string]bool)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		doc.Find(`a[href*="/event/"]`).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			m := eventHrefRe.FindStringSubmatch(href)
			if m == nil || seen[m[1]] {
				return
			}
			seen[m[1]] = true
			ids = append(ids, m[1])
		})
	}

	if len(ids) == 0 {
		for _, m := range eventHrefRe.FindAllStringSubmatch(html, -1) {
			if seen[m[1]] {
				continue
			}
			seen[m[1]] = true
			ids = append(ids, m[1])
		}
	}

	return ids
}

// extractOne runs the windowed heuristics for a single event id against the
// SVG-stripped document. A date token is mandatory; so are a name and a
// venue. Missing any of the three drops the candidate.
func extractOne(cleaned, id string) (event.Candidate, bool) {
	marker := "/event/" + id
	idx := strings.Index(cleaned, marker)
	if idx < 0 {
		return event.Candidate{}, false
	}

	start := idx - contextBefore
	if start < 0 {
		start = 0
	}
	end := idx + contextAfter
	if end > len(cleaned) {
		end = len(cleaned)
	}
	window := cleaned[start:end]

	loc := dateRe.FindStringIndex(window)
	if loc == nil {
		return event.Candidate{}, false
	}
	date := window[loc[0]:loc[1]]

	name, ok := extractName(window, loc[0])
	if !ok {
		return event.Candidate{}, false
	}

	venue, ok := extractVenue(window, loc[1])
	if !ok {
		return event.Candidate{}, false
	}

	return event.Candidate{
		ID:    id,
		Name:  name,
		Date:  date,
		Venue: venue,
		URL:   EventURL(id),
	}, true
}

// extractName searches the text immediately before the date token for an
// event name. Lines closest to the date are tried first, and within a line
// the fragment closest to the date is tried first. The search stops at the
// first line that yields an accepted fragment; if cleanup then invalidates
// it, the whole candidate is dropped rather than resuming the search.
func extractName(window string, dateStart int) (string, bool) {
	start := dateStart - nameWindow
	if start < 0 {
		start = 0
	}
	before := window[start:dateStart]

	text := tagRe.ReplaceAllString(before, "\n")
	text = entityRe.ReplaceAllString(text, " ")

	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		if ln := collapseSpaces(raw); ln != "" {
			lines = append(lines, ln)
		}
	}

	for i := len(lines) - 1; i >= 0; i-- {
		chunks := strings.FieldsFunc(lines[i], func(r rune) bool {
			return r == '|' || r == '>'
		})
		for j := len(chunks) - 1; j >= 0; j-- {
			chunk := strings.TrimSpace(chunks[j])
			if !nameLengthOK(chunk) || !filter.ValidEventName(chunk) {
				continue
			}

			name := filter.CleanEventName(chunk)
			if !nameLengthOK(name) || !filter.ValidEventName(name) {
				return "", false
			}
			return name, true
		}
	}
	return "", false
}

// extractVenue searches the markup immediately after the date token for a
// venue name. Label-bearing elements (class contains venue/location) win;
// otherwise the text is flattened and scanned chunk by chunk.
func extractVenue(window string, dateEnd int) (string, bool) {
	end := dateEnd + venueWindow
	if end > len(window) {
		end = len(window)
	}
	after := window[dateEnd:end]

	for _, re := range venueClassRes {
		m := re.FindStringSubmatch(after)
		if m == nil {
			continue
		}
		v := collapseSpaces(entityRe.ReplaceAllString(tagRe.ReplaceAllString(m[1], " "), " "))
		if venueCaptureOK(v) && filter.ValidVenue(v) {
			return v, true
		}
	}

	// Positional fallback: flatten the window and take the first plausible
	// chunk.
	text := stripSVG(after)
	text = tagRe.ReplaceAllString(text, "\n")
	text = entityRe.ReplaceAllString(text, " ")

	for _, raw := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '|' || r == '<' || r == '\n'
	}) {
		chunk := collapseSpaces(raw)
		n := utf8.RuneCountInString(chunk)
		if n < venueMinLen || n > venueMaxLen {
			continue
		}
		if filter.ValidVenue(chunk) {
			return chunk, true
		}
	}
	return "", false
}

func nameLengthOK(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= nameMinLen && n <= nameMaxLen
}

// venueCaptureOK bounds label-element captures the same way the data model
// bounds venues: 2-100 chars.
func venueCaptureOK(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 2 && n <= 100
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
