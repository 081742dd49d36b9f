package reconcile

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-migrate/internal/domain"
)

func sourceTickets(records ...domain.TicketRecord) map[string]domain.TicketRecord {
	out := make(map[string]domain.TicketRecord, len(records))
	for _, r := range records {
		out[r.TicketID] = r
	}
	return out
}

// ---------------------------------------------------------------------------
// Display-id strategy (the active one)
// ---------------------------------------------------------------------------

func TestDisplayIDStrategy_SubstringMatch(t *testing.T) {
	strategy := NewDisplayIDStrategy(zap.NewNop())
	source := sourceTickets(domain.TicketRecord{
		TicketID: "t-1", DisplayID: "4521", Subject: "Printer issue",
	})
	destination := []domain.DestinationTicket{
		{TicketID: "900", Subject: "Printer issue #4521"},
	}

	matched := strategy.Match(source, destination)

	require.True(t, matched.Has("4521"))
}

func TestDisplayIDStrategy_NoMatchWhenIDAbsent(t *testing.T) {
	strategy := NewDisplayIDStrategy(zap.NewNop())
	source := sourceTickets(domain.TicketRecord{
		TicketID: "t-1", DisplayID: "999", Subject: "Printer issue",
	})
	destination := []domain.DestinationTicket{
		{TicketID: "900", Subject: "Printer issue #4521"},
	}

	matched := strategy.Match(source, destination)

	require.False(t, matched.Has("999"))
	require.Empty(t, matched)
}

// Substring semantics, not equality: display id "45" matches a subject
// containing "4521". A known over-matching risk, pinned here on purpose.
func TestDisplayIDStrategy_ShortIDOverMatchesLongerNumber(t *testing.T) {
	strategy := NewDisplayIDStrategy(zap.NewNop())
	source := sourceTickets(domain.TicketRecord{
		TicketID: "t-1", DisplayID: "45", Subject: "Keyboard broken",
	})
	destination := []domain.DestinationTicket{
		{TicketID: "900", Subject: "Printer issue #4521"},
	}

	matched := strategy.Match(source, destination)

	require.True(t, matched.Has("45"), "substring semantics must over-match")
}

func TestDisplayIDStrategy_SkipsRecordsMissingRequiredFields(t *testing.T) {
	strategy := NewDisplayIDStrategy(zap.NewNop())
	source := sourceTickets(
		domain.TicketRecord{TicketID: "t-1", DisplayID: "11"}, // no subject
		domain.TicketRecord{TicketID: "t-2", Subject: "b"},    // no display id
	)
	destination := []domain.DestinationTicket{
		{TicketID: "900", Subject: "anything 11 b"},
		{TicketID: "901", Subject: ""}, // destination missing subject is skipped too
	}

	matched := strategy.Match(source, destination)

	require.Empty(t, matched)
}

func TestDisplayIDStrategy_DuplicatesSuppressed(t *testing.T) {
	strategy := NewDisplayIDStrategy(zap.NewNop())
	source := sourceTickets(domain.TicketRecord{
		TicketID: "t-1", DisplayID: "77", Subject: "Printer broken",
	})
	destination := []domain.DestinationTicket{
		{TicketID: "900", Subject: "Printer broken 77"},
		{TicketID: "901", Subject: "Printer broken 77 (resolved)"},
	}

	matched := strategy.Match(source, destination)

	require.Len(t, matched, 1)
	require.True(t, matched.Has("77"))
}

func TestDisplayIDStrategy_Key(t *testing.T) {
	strategy := NewDisplayIDStrategy(zap.NewNop())
	record := domain.TicketRecord{TicketID: "t-1", DisplayID: "77"}
	require.Equal(t, "77", strategy.Key(record))
}

// ---------------------------------------------------------------------------
// Subject+date strategy (the fallback)
// ---------------------------------------------------------------------------

func TestSubjectDateStrategy_ExactEqualityOnly(t *testing.T) {
	strategy := NewSubjectDateStrategy(zap.NewNop())
	source := sourceTickets(domain.TicketRecord{
		TicketID:    "t-1",
		Subject:     "Printer broken",
		CreatedTime: "2024-05-01T10:00:00+00:00",
	})

	matched := strategy.Match(source, []domain.DestinationTicket{
		{TicketID: "900", Subject: "Printer broken", CreatedAt: "2024-05-01T10:00:00+00:00"},
	})
	require.True(t, matched.Has("t-1"))

	// no timezone or format normalization: the same instant written with
	// a different offset does not match
	matched = strategy.Match(source, []domain.DestinationTicket{
		{TicketID: "900", Subject: "Printer broken", CreatedAt: "2024-05-01T12:00:00+02:00"},
	})
	require.False(t, matched.Has("t-1"))

	// subject equality is strict string equality
	matched = strategy.Match(source, []domain.DestinationTicket{
		{TicketID: "900", Subject: "printer broken", CreatedAt: "2024-05-01T10:00:00+00:00"},
	})
	require.False(t, matched.Has("t-1"))
}

func TestSubjectDateStrategy_SkipsMissingFields(t *testing.T) {
	strategy := NewSubjectDateStrategy(zap.NewNop())
	source := sourceTickets(
		domain.TicketRecord{TicketID: "t-1", Subject: "a"},                                 // no created time
		domain.TicketRecord{TicketID: "t-2", CreatedTime: "2024-05-01T10:00:00+00:00"},     // no subject
		domain.TicketRecord{TicketID: "t-3", Subject: "", CreatedTime: ""},                 // neither
	)
	destination := []domain.DestinationTicket{
		{TicketID: "900", Subject: "a", CreatedAt: "2024-05-01T10:00:00+00:00"},
	}

	matched := strategy.Match(source, destination)

	require.Empty(t, matched)
}

func TestSubjectDateStrategy_Key(t *testing.T) {
	strategy := NewSubjectDateStrategy(zap.NewNop())
	record := domain.TicketRecord{TicketID: "t-1", DisplayID: "77"}
	require.Equal(t, "t-1", strategy.Key(record))
}

// ---------------------------------------------------------------------------
// ForName
// ---------------------------------------------------------------------------

func TestForName(t *testing.T) {
	logger := zap.NewNop()
	require.Equal(t, StrategySubjectDate, ForName("subject-date", logger).Name())
	require.Equal(t, StrategyDisplayID, ForName("display-id", logger).Name())
	require.Equal(t, StrategyDisplayID, ForName("", logger).Name(), "display-id is the default")
	require.Equal(t, StrategyDisplayID, ForName("bogus", logger).Name())
}
