// Package event defines the event candidate record produced by the
// TicketDive extractor and the date handling used to pick the nearest one.
//
// Candidates are transient: they are built during a single extraction pass,
// filtered for validity, and either kept (nearest date) or discarded. Dates
// stay in their literal "YYYY/M/D" form until selection time.
package event
