// Package migrate orchestrates the ticket migration.
package migrate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-migrate/internal/config"
	"github.com/spec-kit/ticket-migrate/internal/domain"
	"github.com/spec-kit/ticket-migrate/internal/events"
	"github.com/spec-kit/ticket-migrate/internal/observability"
	"github.com/spec-kit/ticket-migrate/internal/reconcile"
	"github.com/spec-kit/ticket-migrate/internal/timeline"
	"github.com/spec-kit/ticket-migrate/pkg/util"
)

// TicketState is one state of the per-ticket machine. Matched,
// CutoffSkipped, CommentsReplayed and Failed are terminal; a ticket whose
// destination creation call fails stays Pending and is retried by the
// next run.
type TicketState string

const (
	StatePending          TicketState = "PENDING"
	StateMatched          TicketState = "MATCHED"
	StateCutoffSkipped    TicketState = "CUTOFF_SKIPPED"
	StateCreated          TicketState = "CREATED"
	StateCommentsReplayed TicketState = "COMMENTS_REPLAYED"
	StateFailed           TicketState = "FAILED"
)

// DestinationClient is the read/write surface the orchestrator needs
// from the destination platform.
type DestinationClient interface {
	FindCustomerIDByName(ctx context.Context, name string) (string, bool, error)
	ListTicketsForCustomer(ctx context.Context, name string) ([]domain.DestinationTicket, error)
	CreateTicket(ctx context.Context, payload domain.TicketPayload) (*domain.CreatedTicket, error)
	CreateComment(ctx context.Context, ticketID string, comment domain.Comment) error
}

// RunnerDependencies bundles collaborators for the runner.
type RunnerDependencies struct {
	Destination DestinationClient
	Strategy    reconcile.Strategy
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	// Input feeds the interactive confirmation prompts. Only read when
	// interactive mode is on.
	Input io.Reader
}

// Runner drives the migration: one customer at a time, one ticket at a
// time, fully sequential.
type Runner struct {
	runID       string
	destination DestinationClient
	strategy    reconcile.Strategy
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	metrics     *observability.Metrics
	cutoff      time.Time
	interactive bool
	input       *bufio.Reader
}

// NewRunner constructs a Runner.
func NewRunner(deps RunnerDependencies, cfg config.MigrationConfig) (*Runner, error) {
	cutoff, err := time.Parse("2006-01-02", cfg.CutoffDate)
	if err != nil {
		return nil, fmt.Errorf("invalid cutoff date %q: %w", cfg.CutoffDate, err)
	}
	input := deps.Input
	if input == nil {
		input = strings.NewReader("")
	}
	runID := uuid.NewString()
	return &Runner{
		runID:       runID,
		destination: deps.Destination,
		strategy:    deps.Strategy,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger.With(zap.String("run_id", runID)),
		metrics:     deps.Metrics,
		cutoff:      cutoff,
		interactive: cfg.Interactive,
		input:       bufio.NewReader(input),
	}, nil
}

// RunID returns the correlation id for this run.
func (r *Runner) RunID() string {
	return r.runID
}

// Run processes every customer's tickets. A failure inside one customer
// is contained there; the batch only halts if this outer loop itself is
// broken, which is an operational concern rather than a migration one.
func (r *Runner) Run(ctx context.Context, customers map[string]map[string]domain.TicketRecord) {
	r.logger.Info("processing tickets", zap.Int("customer_count", len(customers)))

	names := make([]string, 0, len(customers))
	for name := range customers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		r.processCustomer(ctx, name, customers[name])
	}
}

// processCustomer reconciles one customer's tickets against the
// destination and migrates the remainder.
func (r *Runner) processCustomer(ctx context.Context, customer string, tickets map[string]domain.TicketRecord) {
	r.logger.Info("fetching destination tickets for customer", zap.String("customer", customer))

	_, found, err := r.destination.FindCustomerIDByName(ctx, customer)
	if err != nil {
		r.logger.Error("customer lookup failed", zap.String("customer", customer), zap.Error(err))
		return
	}
	if !found {
		r.logger.Warn("customer not found in destination, skipping", zap.String("customer", customer))
		return
	}

	destTickets, err := r.destination.ListTicketsForCustomer(ctx, customer)
	if err != nil {
		// Degrades to an empty list: nothing will match, and already
		// migrated tickets are skipped again on the next run.
		r.logger.Error("listing destination tickets failed",
			zap.String("customer", customer),
			zap.Error(err))
		destTickets = nil
	}

	matches := r.strategy.Match(tickets, destTickets)
	r.logger.Info("reconciliation finished",
		zap.String("customer", customer),
		zap.String("strategy", r.strategy.Name()),
		zap.Int("matched", len(matches)))

	ids := make([]string, 0, len(tickets))
	for id := range tickets {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		state := r.processTicket(ctx, customer, tickets[id], matches)
		r.metrics.RecordOutcome(string(state))
	}
}

// processTicket runs the state machine for one ticket. Anything
// unexpected is caught here: one bad ticket must never abort the batch.
func (r *Runner) processTicket(ctx context.Context, customer string, record domain.TicketRecord, matches reconcile.MatchSet) (state TicketState) {
	state = StatePending

	defer func() {
		if rec := recover(); rec != nil {
			state = StateFailed
			err := util.NewTicketProcessingFailure(record.TicketID, fmt.Errorf("panic: %v", rec))
			r.logger.Error("ticket processing failed",
				zap.String("customer", customer),
				zap.String("ticket_id", record.TicketID),
				zap.Error(err),
				zap.Stack("stack"))
			r.publish(ctx, events.EventTicketFailed, customer, record, events.TicketFailedPayload{
				Subject: record.Subject,
				Reason:  err.Error(),
			})
		}
	}()

	if record.Subject == "" || record.CreatedTime == "" {
		r.logger.Warn("skipping ticket: missing subject or created time",
			zap.String("customer", customer),
			zap.String("ticket_id", record.TicketID))
		return state
	}

	r.logger.Info("processing ticket",
		zap.String("customer", customer),
		zap.String("ticket_id", record.TicketID),
		zap.String("display_id", record.DisplayID),
		zap.String("subject", record.Subject))

	if matches.Has(r.strategy.Key(record)) {
		r.logger.Info("ticket already exists in destination",
			zap.String("customer", customer),
			zap.String("display_id", record.DisplayID))
		state = StateMatched
		r.publish(ctx, events.EventTicketMatched, customer, record, events.TicketMatchedPayload{
			Subject:  record.Subject,
			Strategy: r.strategy.Name(),
		})
		return state
	}

	createdAt, err := ConvertCreatedDate(record.CreatedTime)
	if err != nil {
		state = StateFailed
		r.logger.Error("ticket processing failed",
			zap.String("ticket_id", record.TicketID),
			zap.Error(err))
		r.publish(ctx, events.EventTicketFailed, customer, record, events.TicketFailedPayload{
			Subject: record.Subject,
			Reason:  err.Error(),
		})
		return state
	}

	tl := timeline.Merge(record.Notes, record.Conversations)
	if tl.IsSentinel() {
		r.logger.Info("no notes or conversations found",
			zap.String("display_id", record.DisplayID))
	}

	payload := BuildPayload(customer, record, createdAt, tl)

	before, err := BeforeCutoff(createdAt, r.cutoff)
	if err != nil {
		state = StateFailed
		r.logger.Error("ticket processing failed",
			zap.String("ticket_id", record.TicketID),
			zap.Error(err))
		r.publish(ctx, events.EventTicketFailed, customer, record, events.TicketFailedPayload{
			Subject: record.Subject,
			Reason:  err.Error(),
		})
		return state
	}
	if before {
		r.logger.Info("skipping ticket creation: older than cutoff",
			zap.String("ticket_id", record.TicketID),
			zap.String("created_at", createdAt),
			zap.String("cutoff", r.cutoff.Format("2006-01-02")))
		state = StateCutoffSkipped
		r.publish(ctx, events.EventTicketCutoffSkipped, customer, record, events.TicketCutoffSkippedPayload{
			Subject:   payload.Subject,
			CreatedAt: createdAt,
			Cutoff:    r.cutoff.Format("2006-01-02"),
		})
		return state
	}

	r.logger.Info("attempting to create ticket",
		zap.String("customer", customer),
		zap.String("subject", payload.Subject))
	created, err := r.destination.CreateTicket(ctx, payload)
	if err != nil {
		// Left unmigrated; the next run picks it up again.
		r.logger.Error("ticket creation failed, leaving for next run",
			zap.String("ticket_id", record.TicketID),
			zap.Error(err))
		return state
	}

	state = StateCreated
	r.logger.Info("created destination ticket",
		zap.String("number", created.Number),
		zap.String("destination_id", created.ID))
	r.publish(ctx, events.EventTicketCreated, customer, record, events.TicketCreatedPayload{
		Subject:           payload.Subject,
		DestinationID:     created.ID,
		DestinationNumber: created.Number,
	})
	r.pause("Pausing for ticket creation - press Enter to continue...")

	if !tl.IsSentinel() {
		r.replayTimeline(ctx, customer, record, created, tl)
		state = StateCommentsReplayed
		r.pause("Pausing for comments added to ticket - press Enter to continue...")
	}

	return state
}

// replayTimeline submits the merged history as destination comments, in
// order. DESCRIPTION entries are skipped: the created ticket already
// carries that content. Each entry is independent; one failure never
// stops the rest.
func (r *Runner) replayTimeline(ctx context.Context, customer string, record domain.TicketRecord, created *domain.CreatedTicket, tl domain.Timeline) {
	for _, entry := range tl.Entries {
		if entry.Type == domain.EntryType(domain.ConversationDescription) {
			r.logger.Info("skipping description entry",
				zap.String("number", created.Number))
			continue
		}

		comment := BuildComment(entry)
		if err := r.destination.CreateComment(ctx, created.ID, comment); err != nil {
			wrapped := util.NewCommentCreationFailure(created.ID, err)
			r.logger.Error("comment creation failed",
				zap.String("number", created.Number),
				zap.String("entry_type", string(entry.Type)),
				zap.Error(wrapped))
			r.publish(ctx, events.EventCommentReplayed, customer, record, events.CommentReplayedPayload{
				DestinationID: created.ID,
				EntryType:     string(entry.Type),
				Failed:        true,
			})
			continue
		}
		r.publish(ctx, events.EventCommentReplayed, customer, record, events.CommentReplayedPayload{
			DestinationID: created.ID,
			EntryType:     string(entry.Type),
		})
	}
}

func (r *Runner) publish(ctx context.Context, eventType events.EventType, customer string, record domain.TicketRecord, payload interface{}) {
	if r.dispatcher == nil {
		return
	}
	_ = r.dispatcher.Publish(ctx, events.Event{
		RunID:     r.runID,
		Type:      eventType,
		Customer:  customer,
		TicketID:  record.TicketID,
		DisplayID: record.DisplayID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

func (r *Runner) pause(prompt string) {
	if !r.interactive {
		return
	}
	fmt.Println(prompt)
	_, _ = r.input.ReadString('\n')
}
