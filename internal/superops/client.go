// Package superops is a read-only client for the SuperOps MSP GraphQL API.
package superops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/ticket-migrate/internal/config"
	"github.com/spec-kit/ticket-migrate/internal/domain"
	"github.com/spec-kit/ticket-migrate/internal/htmltext"
	"github.com/spec-kit/ticket-migrate/internal/observability"
	"github.com/spec-kit/ticket-migrate/pkg/util"
)

// Client issues GraphQL queries against SuperOps. All calls share one
// rate limiter so the fixed pre-call delay applies process-wide. HTML
// fields are stripped and user payloads resolved here, at the boundary;
// nothing downstream sees raw markup or free-form user JSON.
type Client struct {
	baseURL   string
	apiKey    string
	subdomain string
	limiter   *rate.Limiter
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewClient constructs a SuperOps client.
func NewClient(cfg config.SuperOpsConfig, limiter *rate.Limiter, logger *zap.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		subdomain: cfg.Subdomain,
		limiter:   limiter,
		logger:    logger,
		metrics:   metrics,
	}
}

// ListClients fetches one page of the client list.
func (c *Client) ListClients(ctx context.Context, page, pageSize int) (ClientPage, error) {
	variables := map[string]any{
		"input": map[string]any{"page": page, "pageSize": pageSize},
	}
	raw, err := c.post(ctx, "getClientList", queryGetClientList, variables)
	if err != nil {
		return ClientPage{}, err
	}

	var data clientListData
	if err := json.Unmarshal(raw, &data); err != nil {
		return ClientPage{}, util.NewTransportFailure("getClientList decode", err)
	}
	if data.GetClientList == nil {
		return ClientPage{}, util.NewTransportFailure("getClientList", errors.New("missing data"))
	}
	return ClientPage{
		Clients:    data.GetClientList.Clients,
		HasMore:    data.GetClientList.ListInfo.HasMore,
		TotalCount: data.GetClientList.ListInfo.TotalCount,
	}, nil
}

// ListTickets fetches one page of tickets for a client, filtered with an
// attribute-contains condition on the client account id.
func (c *Client) ListTickets(ctx context.Context, accountID string, page, pageSize int) (TicketPage, error) {
	variables := map[string]any{
		"input": map[string]any{
			"page":     page,
			"pageSize": pageSize,
			"condition": map[string]any{
				"joinOperator": "AND",
				"operands": []map[string]any{
					{"attribute": "client.accountId", "operator": "contains", "value": accountID},
				},
			},
		},
	}
	raw, err := c.post(ctx, "getTicketList", queryGetTicketList, variables)
	if err != nil {
		return TicketPage{}, err
	}

	var data ticketListData
	if err := json.Unmarshal(raw, &data); err != nil {
		return TicketPage{}, util.NewTransportFailure("getTicketList decode", err)
	}
	if data.GetTicketList == nil {
		return TicketPage{}, util.NewTransportFailure("getTicketList", errors.New("missing data"))
	}

	result := TicketPage{
		HasMore:    data.GetTicketList.ListInfo.HasMore,
		TotalCount: data.GetTicketList.ListInfo.TotalCount,
	}
	for _, t := range data.GetTicketList.Tickets {
		result.Tickets = append(result.Tickets, TicketSummary{
			TicketID:    t.TicketID.String(),
			DisplayID:   t.DisplayID.String(),
			Subject:     t.Subject,
			Status:      t.Status,
			Priority:    t.Priority,
			CreatedTime: t.CreatedTime,
		})
	}
	return result, nil
}

// ListConversations fetches the ordered conversation thread for a ticket.
func (c *Client) ListConversations(ctx context.Context, ticketID string) ([]domain.ConversationEntry, error) {
	variables := map[string]any{"input": map[string]any{"ticketId": ticketID}}
	raw, err := c.post(ctx, "getTicketConversationList", queryGetTicketConversationList, variables)
	if err != nil {
		return nil, err
	}

	var data conversationListData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, util.NewTransportFailure("getTicketConversationList decode", err)
	}

	entries := make([]domain.ConversationEntry, 0, len(data.GetTicketConversationList))
	for _, conv := range data.GetTicketConversationList {
		author := resolveUser(conv.User)
		if author == nil && len(conv.User) > 0 && string(conv.User) != "null" {
			c.logger.Warn("conversation entry has unusable user payload",
				zap.String("ticket_id", ticketID),
				zap.String("conversation_id", conv.ConversationID.String()))
		}
		entries = append(entries, domain.ConversationEntry{
			ConversationID: conv.ConversationID.String(),
			Type:           domain.ConversationType(conv.Type),
			Content:        htmltext.Strip(conv.Content),
			Time:           conv.Time,
			Author:         author,
			ToUsers:        resolveRecipients(conv.ToUsers),
			CcUsers:        resolveRecipients(conv.CcUsers),
			BccUsers:       resolveRecipients(conv.BccUsers),
			Attachments:    resolveAttachments(conv.Attachments),
		})
	}
	c.logger.Info("fetched conversations",
		zap.String("ticket_id", ticketID),
		zap.Int("count", len(entries)))
	return entries, nil
}

// ListNotes fetches the notes attached to a ticket.
func (c *Client) ListNotes(ctx context.Context, ticketID string) ([]domain.NoteEntry, error) {
	variables := map[string]any{"input": map[string]any{"ticketId": ticketID}}
	raw, err := c.post(ctx, "getTicketNoteList", queryGetTicketNoteList, variables)
	if err != nil {
		return nil, err
	}

	var data noteListData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, util.NewTransportFailure("getTicketNoteList decode", err)
	}

	notes := make([]domain.NoteEntry, 0, len(data.GetTicketNoteList))
	for _, note := range data.GetTicketNoteList {
		notes = append(notes, domain.NoteEntry{
			NoteID:      note.NoteID.String(),
			AddedBy:     resolveUser(note.AddedBy),
			AddedOn:     note.AddedOn,
			Content:     htmltext.Strip(note.Content),
			Privacy:     domain.NotePrivacy(note.PrivacyType),
			Attachments: resolveAttachments(note.Attachments),
		})
	}
	c.logger.Info("fetched notes",
		zap.String("ticket_id", ticketID),
		zap.Int("count", len(notes)))
	return notes, nil
}

// post issues one GraphQL request, honoring the shared rate limiter.
func (c *Client) post(ctx context.Context, op, query string, variables map[string]any) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, util.NewTransportFailure(op, err)
		}
	}

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, util.NewTransportFailure(op+" encode", err)
	}

	agent := fiber.Post(c.baseURL)
	agent.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+c.apiKey)
	agent.Set("Customersubdomain", c.subdomain)
	agent.Body(body)

	code, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		c.metrics.RecordCall("superops", op, true)
		return nil, util.NewTransportFailure(op, errors.Join(errs...))
	}
	if code >= fiber.StatusBadRequest {
		c.metrics.RecordCall("superops", op, true)
		return nil, util.NewTransportFailure(op, fmt.Errorf("unexpected status %d", code))
	}

	var envelope graphqlEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		c.metrics.RecordCall("superops", op, true)
		return nil, util.NewTransportFailure(op+" decode", err)
	}
	if len(envelope.Errors) > 0 {
		c.metrics.RecordCall("superops", op, true)
		return nil, util.NewTransportFailure(op, fmt.Errorf("graphql error: %s", envelope.Errors[0].Message))
	}
	if len(envelope.Data) == 0 {
		c.metrics.RecordCall("superops", op, true)
		return nil, util.NewTransportFailure(op, errors.New("empty response data"))
	}

	c.metrics.RecordCall("superops", op, false)
	return envelope.Data, nil
}
