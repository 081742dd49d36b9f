// Package aggregate walks the source platform's client/ticket hierarchy
// and assembles denormalized ticket records.
package aggregate

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-migrate/internal/domain"
	"github.com/spec-kit/ticket-migrate/internal/superops"
)

// SourceClient is the read-only surface the aggregator needs from the
// source platform.
type SourceClient interface {
	ListClients(ctx context.Context, page, pageSize int) (superops.ClientPage, error)
	ListTickets(ctx context.Context, accountID string, page, pageSize int) (superops.TicketPage, error)
	ListConversations(ctx context.Context, ticketID string) ([]domain.ConversationEntry, error)
	ListNotes(ctx context.Context, ticketID string) ([]domain.NoteEntry, error)
}

// Aggregator assembles, per client, a mapping from ticket id to a
// denormalized TicketRecord. Fetch failures degrade to empty results at
// the smallest enclosing scope; aggregation itself never fails.
type Aggregator struct {
	source         SourceClient
	logger         *zap.Logger
	clientPageSize int
	ticketPageSize int
}

// NewAggregator constructs an Aggregator.
func NewAggregator(source SourceClient, logger *zap.Logger, clientPageSize, ticketPageSize int) *Aggregator {
	if clientPageSize <= 0 {
		clientPageSize = 100
	}
	if ticketPageSize <= 0 {
		ticketPageSize = 10
	}
	return &Aggregator{
		source:         source,
		logger:         logger,
		clientPageSize: clientPageSize,
		ticketPageSize: ticketPageSize,
	}
}

// CollectAll fetches every client and every ticket, with conversations
// and notes attached, keyed by client display name then ticket id.
func (a *Aggregator) CollectAll(ctx context.Context) map[string]map[string]domain.TicketRecord {
	customers := make(map[string]map[string]domain.TicketRecord)

	page := 1
	for {
		clientPage, err := a.source.ListClients(ctx, page, a.clientPageSize)
		if err != nil {
			a.logger.Error("fetching client list failed", zap.Int("page", page), zap.Error(err))
			return customers
		}

		for _, client := range clientPage.Clients {
			tickets := a.collectTickets(ctx, client.AccountID)
			a.logger.Info("tickets found for client",
				zap.String("client", client.Name),
				zap.Int("count", len(tickets)))

			records := make(map[string]domain.TicketRecord, len(tickets))
			for _, record := range tickets {
				records[record.TicketID] = record
			}
			customers[client.Name] = records
		}

		if !clientPage.HasMore {
			break
		}
		page++
	}

	return customers
}

// collectTickets pages through a client's tickets and attaches each
// ticket's conversations and notes plus the derived fields.
func (a *Aggregator) collectTickets(ctx context.Context, accountID string) []domain.TicketRecord {
	a.logger.Info("getting tickets for client", zap.String("account_id", accountID))

	var records []domain.TicketRecord
	page := 1
	for {
		ticketPage, err := a.source.ListTickets(ctx, accountID, page, a.ticketPageSize)
		if err != nil {
			a.logger.Error("fetching tickets failed",
				zap.String("account_id", accountID),
				zap.Int("page", page),
				zap.Error(err))
			return nil
		}

		for _, summary := range ticketPage.Tickets {
			if summary.TicketID == "" {
				continue
			}
			records = append(records, a.buildRecord(ctx, summary))
		}

		if !ticketPage.HasMore {
			break
		}
		page++
	}

	return records
}

func (a *Aggregator) buildRecord(ctx context.Context, summary superops.TicketSummary) domain.TicketRecord {
	conversations, err := a.source.ListConversations(ctx, summary.TicketID)
	if err != nil {
		a.logger.Error("fetching conversations failed",
			zap.String("ticket_id", summary.TicketID),
			zap.Error(err))
		conversations = nil
	}
	notes, err := a.source.ListNotes(ctx, summary.TicketID)
	if err != nil {
		a.logger.Error("fetching notes failed",
			zap.String("ticket_id", summary.TicketID),
			zap.Error(err))
		notes = nil
	}

	tech, contacts := ResolveTechAndContact(conversations)

	return domain.TicketRecord{
		TicketID:      summary.TicketID,
		DisplayID:     summary.DisplayID,
		Subject:       summary.Subject,
		Status:        summary.Status,
		Priority:      summary.Priority,
		CreatedTime:   summary.CreatedTime,
		AssignedTech:  tech,
		Contacts:      contacts,
		Description:   DescriptionContent(conversations),
		Notes:         notes,
		Conversations: conversations,
	}
}

// ResolveTechAndContact scans the conversation thread for TECH_REPLY
// entries and returns the author and recipients of the one with the
// maximum timestamp, i.e. the most recent reply wins. With no TECH_REPLY
// entries it returns (nil, empty).
func ResolveTechAndContact(conversations []domain.ConversationEntry) (*domain.User, []domain.User) {
	var latest *domain.ConversationEntry
	for i := range conversations {
		if conversations[i].Type != domain.ConversationTechReply {
			continue
		}
		if latest == nil || conversations[i].Time > latest.Time {
			latest = &conversations[i]
		}
	}
	if latest == nil {
		return nil, []domain.User{}
	}
	return latest.Author, latest.ToUsers
}

// DescriptionContent returns the content of the first DESCRIPTION entry
// in original thread order, or nil when the ticket has none.
func DescriptionContent(conversations []domain.ConversationEntry) *string {
	for i := range conversations {
		if conversations[i].Type == domain.ConversationDescription {
			content := conversations[i].Content
			return &content
		}
	}
	return nil
}
