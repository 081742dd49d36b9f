package domain

import "time"

// JournalEntry is one per-ticket outcome row written to the optional
// migration journal. The journal is append-only operator output; the
// migration itself never reads it back (reconciliation is recomputed from
// the destination on every run).
type JournalEntry struct {
	RunID     string
	Customer  string
	TicketID  string
	DisplayID string
	Subject   string
	State     string
	Detail    string
	CreatedAt time.Time
}
