package domain

// ConversationType tags a conversation entry by its role in the thread.
type ConversationType string

const (
	ConversationDescription   ConversationType = "DESCRIPTION"
	ConversationTechReply     ConversationType = "TECH_REPLY"
	ConversationCustomerReply ConversationType = "CUSTOMER_REPLY"
	ConversationForward       ConversationType = "FORWARD"
)

// NotePrivacy classifies a note's visibility on the source platform.
// Carried through as-is; the migration never interprets it.
type NotePrivacy string

const (
	NotePrivacyPublic  NotePrivacy = "PUBLIC"
	NotePrivacyPrivate NotePrivacy = "PRIVATE"
)

// Defaults applied when a source payload omits or mangles a field.
const (
	UnknownAuthor = "Unknown"
	UnknownTime   = "Unknown Time"
	UnknownType   = "Unknown"
	NoContent     = "No Content"
)

// User is a resolved source-platform user reference. Source payloads carry
// users as free-form JSON; the API clients resolve them to this shape and
// drop anything unusable.
type User struct {
	Name  string
	Email string
}

// AttachmentReference carries attachment metadata only. Binary content is
// not migrated.
type AttachmentReference struct {
	FileName         string
	OriginalFileName string
	FileSize         int64
}

// ConversationEntry is one timestamped communication event on a ticket.
// Content is plain text: HTML is stripped at the client boundary.
// Timestamps stay in the source platform's ISO-8601 string form, which
// orders lexicographically.
type ConversationEntry struct {
	ConversationID string
	Type           ConversationType
	Content        string
	Time           string
	Author         *User
	ToUsers        []User
	CcUsers        []User
	BccUsers       []User
	Attachments    []AttachmentReference
}

// NoteEntry is an internal annotation on a ticket, distinct from the
// customer-facing conversation thread.
type NoteEntry struct {
	NoteID      string
	AddedBy     *User
	AddedOn     string
	Content     string
	Privacy     NotePrivacy
	Attachments []AttachmentReference
}

// TicketRecord is the denormalized source ticket assembled by the
// aggregator. Constructed once during aggregation, read-only afterwards,
// and discarded once the orchestrator is done with it.
type TicketRecord struct {
	TicketID      string
	DisplayID     string
	Subject       string
	Status        string
	Priority      string
	CreatedTime   string
	AssignedTech  *User
	Contacts      []User
	Description   *string
	Notes         []NoteEntry
	Conversations []ConversationEntry
}

// DestinationTicket is the slice of an existing Syncro ticket the
// reconciler needs.
type DestinationTicket struct {
	TicketID  string
	Subject   string
	CreatedAt string
}

// CreatedTicket identifies a ticket just created in the destination.
type CreatedTicket struct {
	ID     string
	Number string
}

// TicketPayload is the destination ticket creation request built by the
// orchestrator. Subject already carries the source display id suffix.
type TicketPayload struct {
	Customer     string
	Contact      string
	SourceID     string
	Subject      string
	CreatedAt    string
	Status       string
	Priority     string
	AssignedTech string
	Description  string
	Timeline     Timeline
}

// Comment is a single destination comment replayed from a timeline entry.
type Comment struct {
	Subject   string
	Body      string
	Tech      string
	CreatedAt string
	Hidden    bool
}
