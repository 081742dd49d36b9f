package migrate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-migrate/internal/domain"
	"github.com/spec-kit/ticket-migrate/pkg/util"
)

var cutoff = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// ConvertCreatedDate
// ---------------------------------------------------------------------------

func TestConvertCreatedDate(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"2024-05-01T10:20:30+00:00", "2024-05-01T10:20:30+00:00"},
		{"2024-05-01T10:20:30.000+05:30", "2024-05-01T10:20:30+05:30"},
		{"2024-05-01T10:20:30Z", "2024-05-01T10:20:30+00:00"},
		{"2024-05-01 10:20:30", "2024-05-01T10:20:30+00:00"},
	}
	for _, tc := range cases {
		got, err := ConvertCreatedDate(tc.raw)
		require.NoError(t, err, "raw=%q", tc.raw)
		require.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}

func TestConvertCreatedDate_Unparseable(t *testing.T) {
	_, err := ConvertCreatedDate("last Tuesday")
	require.Error(t, err)
	require.True(t, util.HasCode(err, util.CodeMalformedData))
}

// ---------------------------------------------------------------------------
// BeforeCutoff — boundary semantics
// ---------------------------------------------------------------------------

func TestBeforeCutoff_LastSecondBeforeCutoffIsSkipped(t *testing.T) {
	before, err := BeforeCutoff("2024-03-31T23:59:59+00:00", cutoff)
	require.NoError(t, err)
	require.True(t, before)
}

func TestBeforeCutoff_MidnightOnCutoffIsNotSkipped(t *testing.T) {
	before, err := BeforeCutoff("2024-04-01T00:00:00+00:00", cutoff)
	require.NoError(t, err)
	require.False(t, before)
}

func TestBeforeCutoff_AlignedToTicketOffset(t *testing.T) {
	// midnight April 1st in +05:30 is still March 31st in UTC; the
	// cutoff follows the ticket's own offset, so this is NOT skipped
	before, err := BeforeCutoff("2024-04-01T00:00:00+05:30", cutoff)
	require.NoError(t, err)
	require.False(t, before)

	before, err = BeforeCutoff("2024-03-31T23:59:59+05:30", cutoff)
	require.NoError(t, err)
	require.True(t, before)
}

func TestBeforeCutoff_Unparseable(t *testing.T) {
	_, err := BeforeCutoff("not a time", cutoff)
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// Payload construction
// ---------------------------------------------------------------------------

func TestBuildSubject_AppendsDisplayID(t *testing.T) {
	record := domain.TicketRecord{Subject: "Printer broken", DisplayID: "77"}
	require.Equal(t, "Printer broken 77", BuildSubject(record))
}

func TestBuildPayload_Defaults(t *testing.T) {
	record := domain.TicketRecord{
		TicketID:    "t-1",
		DisplayID:   "77",
		Subject:     "Printer broken",
		CreatedTime: "2024-05-01T10:00:00+00:00",
	}

	payload := BuildPayload("Acme", record, "2024-05-01T10:00:00+00:00", domain.Timeline{})

	require.Equal(t, "Acme", payload.Customer)
	require.Equal(t, "Printer broken 77", payload.Subject)
	require.Equal(t, "Unassigned", payload.AssignedTech)
	require.Equal(t, "No description available.", payload.Description)
	require.Equal(t, domain.UnknownType, payload.Status)
	require.Equal(t, domain.UnknownType, payload.Priority)
	require.Empty(t, payload.Contact)
}

func TestBuildPayload_ResolvedFields(t *testing.T) {
	description := "it is broken"
	record := domain.TicketRecord{
		TicketID:     "t-1",
		DisplayID:    "77",
		Subject:      "Printer broken",
		Status:       "Open",
		Priority:     "High",
		CreatedTime:  "2024-05-01T10:00:00+00:00",
		AssignedTech: &domain.User{Name: "Tech1"},
		Contacts:     []domain.User{{Name: "Alice"}, {Name: "Bob"}},
		Description:  &description,
	}

	payload := BuildPayload("Acme", record, "2024-05-01T10:00:00+00:00", domain.Timeline{})

	require.Equal(t, "Tech1", payload.AssignedTech)
	require.Equal(t, "Alice", payload.Contact)
	require.Equal(t, "it is broken", payload.Description)
	require.Equal(t, "Open", payload.Status)
	require.Equal(t, "High", payload.Priority)
}

// ---------------------------------------------------------------------------
// Comment construction
// ---------------------------------------------------------------------------

func TestBuildComment_NoteIsHidden(t *testing.T) {
	entry := domain.TimelineEntry{
		Type:    domain.EntryNote,
		Content: "internal note",
		Author:  "Ann",
		Time:    "2024-05-01T10:00:00+00:00",
	}

	comment := BuildComment(entry)

	require.Equal(t, "NOTE", comment.Subject)
	require.True(t, comment.Hidden)
	require.Equal(t, "Ann", comment.Tech)
	require.Equal(t, "2024-05-01T10:00:00+00:00", comment.CreatedAt)
	require.Contains(t, comment.Body, "internal note")
	require.Contains(t, comment.Body, "Ann")
}

func TestBuildComment_ReplyIsVisible(t *testing.T) {
	entry := domain.TimelineEntry{
		Type:    domain.EntryType(domain.ConversationCustomerReply),
		Content: "still broken",
		Author:  "Alice",
		Time:    "2024-05-02T10:00:00+00:00",
	}

	comment := BuildComment(entry)

	require.Equal(t, "CUSTOMER_REPLY", comment.Subject)
	require.False(t, comment.Hidden)
}

func TestBuildComment_UnknownTimeLeftEmpty(t *testing.T) {
	entry := domain.TimelineEntry{
		Type:    domain.EntryNote,
		Content: "undated",
		Author:  "Ann",
		Time:    domain.UnknownTime,
	}

	comment := BuildComment(entry)

	require.Empty(t, comment.CreatedAt, "sentinel must not be sent as a created_at value")
}
