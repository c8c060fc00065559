// Package calendar renders the stored next events as an iCalendar feed.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"nextlive/internal/event"
	"nextlive/internal/storage"
)

// GenerateFeed renders one VCALENDAR with a VEVENT per stored next event.
// Events whose date does not parse are skipped; the feed only carries dates
// the extractor actually validated.
func GenerateFeed(rows []storage.NextEventRow) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//nextlive//nextlive//JA\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	now := time.Now().UTC()
	for _, row := range rows {
		date := event.ParseDate(row.Event.Date)
		if date.IsZero() {
			continue
		}
		writeEvent(&ics, row, date, now)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, row storage.NextEventRow, date, now time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	fmt.Fprintf(ics, "UID:%s@ticketdive.com\r\n", uid(row))
	fmt.Fprintf(ics, "DTSTAMP:%s\r\n", formatICSTime(now))

	// All-day event: the source only gives a calendar date.
	fmt.Fprintf(ics, "DTSTART;VALUE=DATE:%s\r\n", date.Format("20060102"))
	fmt.Fprintf(ics, "DTEND;VALUE=DATE:%s\r\n", date.AddDate(0, 0, 1).Format("20060102"))

	summary := row.Event.Name
	if row.ArtistName != "" {
		summary = fmt.Sprintf("%s - %s", row.ArtistName, row.Event.Name)
	}
	fmt.Fprintf(ics, "SUMMARY:%s\r\n", escapeICS(summary))
	fmt.Fprintf(ics, "LOCATION:%s\r\n", escapeICS(row.Event.Venue))
	fmt.Fprintf(ics, "URL:%s\r\n", row.Event.URL)
	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")

	ics.WriteString("END:VEVENT\r\n")
}

// uid keys the entry on the owner plus event URL so a changed next event
// produces a new UID.
func uid(row storage.NextEventRow) string {
	id := row.Event.URL
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	return fmt.Sprintf("%s-%s", row.Event.OwnerKey, id)
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime.
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes text per RFC 5545.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
