package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-migrate/internal/domain"
	"github.com/spec-kit/ticket-migrate/internal/events"
	"github.com/spec-kit/ticket-migrate/internal/repository"
)

// JournalService records per-ticket migration outcomes for operator
// review. Journal failures are logged and swallowed; they never stall the
// migration.
type JournalService struct {
	dispatcher events.Dispatcher
	journal    repository.JournalRepository
	logger     *zap.Logger
}

// NewJournalService creates the service.
func NewJournalService(dispatcher events.Dispatcher, journal repository.JournalRepository, logger *zap.Logger) *JournalService {
	return &JournalService{
		dispatcher: dispatcher,
		journal:    journal,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (j *JournalService) RegisterHandlers() {
	if j.dispatcher == nil {
		return
	}
	j.dispatcher.Subscribe(events.EventTicketMatched, j.handleOutcome)
	j.dispatcher.Subscribe(events.EventTicketCutoffSkipped, j.handleOutcome)
	j.dispatcher.Subscribe(events.EventTicketCreated, j.handleOutcome)
	j.dispatcher.Subscribe(events.EventTicketFailed, j.handleOutcome)
	j.dispatcher.Subscribe(events.EventCommentReplayed, j.handleCommentReplayed)
}

func (j *JournalService) handleOutcome(ctx context.Context, event events.Event) error {
	entry := &domain.JournalEntry{
		RunID:     event.RunID,
		Customer:  event.Customer,
		TicketID:  event.TicketID,
		DisplayID: event.DisplayID,
		State:     string(event.Type),
		Detail:    payloadDetail(event.Payload),
	}
	if p, ok := event.Payload.(events.TicketMatchedPayload); ok {
		entry.Subject = p.Subject
	}
	if p, ok := event.Payload.(events.TicketCreatedPayload); ok {
		entry.Subject = p.Subject
	}
	if p, ok := event.Payload.(events.TicketCutoffSkippedPayload); ok {
		entry.Subject = p.Subject
	}
	if p, ok := event.Payload.(events.TicketFailedPayload); ok {
		entry.Subject = p.Subject
	}
	if err := j.journal.Record(ctx, entry); err != nil {
		j.logger.Warn("journal write failed",
			zap.String("ticket_id", event.TicketID),
			zap.String("state", string(event.Type)),
			zap.Error(err))
	}
	return nil
}

func (j *JournalService) handleCommentReplayed(ctx context.Context, event events.Event) error {
	p, ok := event.Payload.(events.CommentReplayedPayload)
	if !ok {
		return nil
	}
	// Only failed replays are journaled individually; successes are
	// visible in the ticket itself.
	if !p.Failed {
		return nil
	}
	entry := &domain.JournalEntry{
		RunID:     event.RunID,
		Customer:  event.Customer,
		TicketID:  event.TicketID,
		DisplayID: event.DisplayID,
		State:     string(event.Type),
		Detail:    fmt.Sprintf("failed replaying %s entry to destination ticket %s", p.EntryType, p.DestinationID),
	}
	if err := j.journal.Record(ctx, entry); err != nil {
		j.logger.Warn("journal write failed",
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
	return nil
}

func payloadDetail(payload interface{}) string {
	switch p := payload.(type) {
	case events.TicketMatchedPayload:
		return fmt.Sprintf("matched by %s strategy", p.Strategy)
	case events.TicketCutoffSkippedPayload:
		return fmt.Sprintf("created %s is before cutoff %s", p.CreatedAt, p.Cutoff)
	case events.TicketCreatedPayload:
		return fmt.Sprintf("created destination ticket %s (id %s)", p.DestinationNumber, p.DestinationID)
	case events.TicketFailedPayload:
		return p.Reason
	default:
		return ""
	}
}
