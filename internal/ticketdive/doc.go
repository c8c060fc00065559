// Package ticketdive fetches TicketDive artist pages and heuristically
// extracts event candidates from their raw HTML.
//
// The extraction is a pure function of the page text: it discovers
// /event/{id} anchors, then runs a windowed text search around each one to
// find a date token and, from the text surrounding that date, a plausible
// event name and venue. The window offsets and length bounds are behavioral
// contracts tuned against real pages; do not "round" them.
package ticketdive
