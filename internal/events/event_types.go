package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketMatched       EventType = "ticket_matched"
	EventTicketCutoffSkipped EventType = "ticket_cutoff_skipped"
	EventTicketCreated       EventType = "ticket_created"
	EventCommentReplayed     EventType = "comment_replayed"
	EventTicketFailed        EventType = "ticket_failed"
)

// Event represents a migration event emitted by the orchestrator.
type Event struct {
	RunID     string      `json:"run_id"`
	Type      EventType   `json:"type"`
	Customer  string      `json:"customer"`
	TicketID  string      `json:"ticket_id"`
	DisplayID string      `json:"display_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketMatchedPayload payload.
type TicketMatchedPayload struct {
	Subject  string `json:"subject"`
	Strategy string `json:"strategy"`
}

// TicketCutoffSkippedPayload payload.
type TicketCutoffSkippedPayload struct {
	Subject   string `json:"subject"`
	CreatedAt string `json:"created_at"`
	Cutoff    string `json:"cutoff"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject           string `json:"subject"`
	DestinationID     string `json:"destination_id"`
	DestinationNumber string `json:"destination_number"`
}

// CommentReplayedPayload payload.
type CommentReplayedPayload struct {
	DestinationID string `json:"destination_id"`
	EntryType     string `json:"entry_type"`
	Failed        bool   `json:"failed"`
}

// TicketFailedPayload payload.
type TicketFailedPayload struct {
	Subject string `json:"subject"`
	Reason  string `json:"reason"`
}
