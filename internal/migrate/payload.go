package migrate

import (
	"fmt"
	"time"

	"github.com/spec-kit/ticket-migrate/internal/domain"
	"github.com/spec-kit/ticket-migrate/pkg/util"
)

// DestinationTimeLayout is the created-at format Syncro accepts.
const DestinationTimeLayout = "2006-01-02T15:04:05-07:00"

// Defaults applied when payload fields cannot be resolved.
const (
	unassignedTech = "Unassigned"
	noDescription  = "No description available."
	noContact      = ""
)

// sourceTimeLayouts are the timestamp shapes SuperOps has been observed
// to emit for createdTime.
var sourceTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ConvertCreatedDate converts a source created timestamp into the
// destination format, preserving the original zone offset.
func ConvertCreatedDate(raw string) (string, error) {
	for _, layout := range sourceTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DestinationTimeLayout), nil
		}
	}
	return "", util.NewMalformedData("created time", map[string]any{"value": raw})
}

// BeforeCutoff reports whether a converted created timestamp is strictly
// earlier than the cutoff date, with the cutoff placed in the ticket's
// own zone offset. A ticket created exactly at midnight on the cutoff
// date is not before it.
func BeforeCutoff(createdAt string, cutoff time.Time) (bool, error) {
	t, err := time.Parse(DestinationTimeLayout, createdAt)
	if err != nil {
		return false, fmt.Errorf("unparseable destination created time %q: %w", createdAt, err)
	}
	aligned := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, t.Location())
	return t.Before(aligned), nil
}

// BuildSubject appends the source display id to the subject. The suffix
// is what makes display-id matching work on re-runs.
func BuildSubject(record domain.TicketRecord) string {
	return record.Subject + " " + record.DisplayID
}

// BuildPayload assembles the destination ticket creation request.
func BuildPayload(customer string, record domain.TicketRecord, createdAt string, tl domain.Timeline) domain.TicketPayload {
	return domain.TicketPayload{
		Customer:     customer,
		Contact:      firstContactName(record.Contacts),
		SourceID:     record.TicketID,
		Subject:      BuildSubject(record),
		CreatedAt:    createdAt,
		Status:       defaultString(record.Status, domain.UnknownType),
		Priority:     defaultString(record.Priority, domain.UnknownType),
		AssignedTech: techName(record.AssignedTech),
		Description:  descriptionText(record.Description),
		Timeline:     tl,
	}
}

// BuildComment converts one timeline entry into a destination comment.
// Note entries become hidden (internal) comments.
func BuildComment(entry domain.TimelineEntry) domain.Comment {
	createdAt := entry.Time
	if createdAt == domain.UnknownTime {
		createdAt = ""
	}
	return domain.Comment{
		Subject:   string(entry.Type),
		Body:      fmt.Sprintf("%s\n\n[%s - %s]", entry.Content, entry.Author, entry.Time),
		Tech:      entry.Author,
		CreatedAt: createdAt,
		Hidden:    entry.Type == domain.EntryNote,
	}
}

func techName(user *domain.User) string {
	if user == nil || user.Name == "" {
		return unassignedTech
	}
	return user.Name
}

func firstContactName(contacts []domain.User) string {
	if len(contacts) == 0 {
		return noContact
	}
	return contacts[0].Name
}

func descriptionText(description *string) string {
	if description == nil {
		return noDescription
	}
	return *description
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
