package domain

// EntryType tags a timeline entry. Conversation entries keep their
// conversation type; notes get EntryNote.
type EntryType string

const EntryNote EntryType = "NOTE"

// NoHistorySentinel is the single timeline value produced for a ticket
// with no notes and no conversations.
const NoHistorySentinel = "No notes or conversations found."

// TimelineEntry is the uniform shape both notes and conversations are
// normalized into when merged.
type TimelineEntry struct {
	Type    EntryType
	Content string
	Author  string
	Time    string
}

// Timeline is the merged, ascending-by-timestamp history of one ticket.
// When a ticket has no history at all, Entries is empty and Sentinel
// carries NoHistorySentinel; callers must check IsSentinel before
// iterating to replay comments.
type Timeline struct {
	Entries  []TimelineEntry
	Sentinel string
}

// IsSentinel reports whether the timeline is the no-history placeholder.
func (t Timeline) IsSentinel() bool {
	return t.Sentinel != ""
}
