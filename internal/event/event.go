package event

// Candidate is a tentatively extracted event pending validity filtering.
// ID is the opaque token taken from the /event/{id} anchor on the source
// page. Date keeps the literal slash-separated form found in the markup.
type Candidate struct {
	ID    string `json:"id"`
	Name  string `json:"event_name"`
	Date  string `json:"event_date"`
	Venue string `json:"venue_name"`
	URL   string `json:"event_url"`
}
