// Package timeline merges a ticket's notes and conversations into one
// chronologically ordered history.
package timeline

import (
	"sort"
	"strings"

	"github.com/spec-kit/ticket-migrate/internal/domain"
)

// Merge normalizes notes and conversations into TimelineEntry values and
// stable-sorts them by ascending timestamp. With no input at all it
// returns the no-history sentinel timeline rather than an empty one.
func Merge(notes []domain.NoteEntry, conversations []domain.ConversationEntry) domain.Timeline {
	entries := make([]domain.TimelineEntry, 0, len(notes)+len(conversations))

	for _, note := range notes {
		entries = append(entries, domain.TimelineEntry{
			Type:    domain.EntryNote,
			Content: defaultString(note.Content, domain.NoContent),
			Author:  authorName(note.AddedBy),
			Time:    defaultString(note.AddedOn, domain.UnknownTime),
		})
	}

	for _, conv := range conversations {
		entries = append(entries, domain.TimelineEntry{
			Type:    domain.EntryType(defaultString(string(conv.Type), domain.UnknownType)),
			Content: defaultString(conv.Content, domain.NoContent),
			Author:  authorName(conv.Author),
			Time:    defaultString(conv.Time, domain.UnknownTime),
		})
	}

	if len(entries) == 0 {
		return domain.Timeline{Sentinel: domain.NoHistorySentinel}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return CompareTimestamps(entries[i].Time, entries[j].Time) < 0
	})

	return domain.Timeline{Entries: entries}
}

// CompareTimestamps orders the platform's ISO-8601 timestamp strings
// lexicographically. The UnknownTime sentinel sorts after every real
// timestamp.
func CompareTimestamps(a, b string) int {
	if a == b {
		return 0
	}
	if a == domain.UnknownTime {
		return 1
	}
	if b == domain.UnknownTime {
		return -1
	}
	return strings.Compare(a, b)
}

func authorName(user *domain.User) string {
	if user == nil || user.Name == "" {
		return domain.UnknownAuthor
	}
	return user.Name
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
