// Package syncro is a client for the Syncro MSP REST API, covering only
// the surface the migration needs.
package syncro

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/ticket-migrate/internal/config"
	"github.com/spec-kit/ticket-migrate/internal/domain"
	"github.com/spec-kit/ticket-migrate/internal/observability"
	"github.com/spec-kit/ticket-migrate/pkg/util"
)

// CustomerCache caches customer-name → customer-id lookups. Implemented
// by persistence.Redis; a nil cache disables caching.
type CustomerCache interface {
	GetString(ctx context.Context, key string) (string, bool)
	SetString(ctx context.Context, key, value string, ttl time.Duration)
}

// Client issues REST calls against Syncro. It shares the process-wide
// rate limiter with the source client so the fixed pre-call delay covers
// every outbound request.
type Client struct {
	baseURL  string
	apiKey   string
	limiter  *rate.Limiter
	logger   *zap.Logger
	metrics  *observability.Metrics
	cache    CustomerCache
	cacheTTL time.Duration
}

// NewClient constructs a Syncro client.
func NewClient(cfg config.SyncroConfig, limiter *rate.Limiter, logger *zap.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		limiter: limiter,
		logger:  logger,
		metrics: metrics,
	}
}

// WithCustomerCache attaches an optional lookup cache.
func (c *Client) WithCustomerCache(cache CustomerCache, ttl time.Duration) *Client {
	c.cache = cache
	c.cacheTTL = ttl
	return c
}

type customerSearchResponse struct {
	Customers []struct {
		ID           json.Number `json:"id"`
		BusinessName string      `json:"business_name"`
		FullName     string      `json:"fullname"`
	} `json:"customers"`
}

type ticketListResponse struct {
	Tickets []struct {
		ID        json.Number `json:"id"`
		Number    json.Number `json:"number"`
		Subject   string      `json:"subject"`
		CreatedAt string      `json:"created_at"`
	} `json:"tickets"`
}

type ticketCreateRequest struct {
	CustomerID  string `json:"customer_id"`
	Subject     string `json:"subject"`
	CreatedAt   string `json:"created_at,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	ProblemType string `json:"problem_type,omitempty"`
	Contact     string `json:"contact_name,omitempty"`
	Tech        string `json:"tech,omitempty"`
	Description string `json:"initial_issue,omitempty"`
}

type ticketCreateResponse struct {
	Ticket *struct {
		ID     json.Number `json:"id"`
		Number json.Number `json:"number"`
	} `json:"ticket"`
}

type commentCreateRequest struct {
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Tech       string `json:"tech,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	Hidden     bool   `json:"hidden"`
	DoNotEmail bool   `json:"do_not_email"`
}

// FindCustomerIDByName resolves a destination customer id from its
// display name. Returns ok=false when no customer matches.
func (c *Client) FindCustomerIDByName(ctx context.Context, name string) (string, bool, error) {
	cacheKey := "syncro:customer:" + name
	if c.cache != nil {
		if id, hit := c.cache.GetString(ctx, cacheKey); hit {
			c.logger.Debug("customer id cache hit", zap.String("customer", name))
			return id, true, nil
		}
	}

	body, err := c.get(ctx, "customers.search", "/customers?query="+url.QueryEscape(name))
	if err != nil {
		return "", false, err
	}

	var resp customerSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false, util.NewTransportFailure("customers.search decode", err)
	}

	for _, customer := range resp.Customers {
		if customer.BusinessName == name || customer.FullName == name {
			id := customer.ID.String()
			if c.cache != nil {
				c.cache.SetString(ctx, cacheKey, id, c.cacheTTL)
			}
			return id, true, nil
		}
	}
	return "", false, nil
}

// ListTicketsForCustomer returns the customer's existing destination
// tickets (id, subject, created time only).
func (c *Client) ListTicketsForCustomer(ctx context.Context, name string) ([]domain.DestinationTicket, error) {
	customerID, ok, err := c.FindCustomerIDByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	body, err := c.get(ctx, "tickets.list", "/tickets?customer_id="+url.QueryEscape(customerID))
	if err != nil {
		return nil, err
	}

	var resp ticketListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, util.NewTransportFailure("tickets.list decode", err)
	}

	tickets := make([]domain.DestinationTicket, 0, len(resp.Tickets))
	for _, t := range resp.Tickets {
		tickets = append(tickets, domain.DestinationTicket{
			TicketID:  t.ID.String(),
			Subject:   t.Subject,
			CreatedAt: t.CreatedAt,
		})
	}
	return tickets, nil
}

// CreateTicket creates a destination ticket and returns its identifiers.
func (c *Client) CreateTicket(ctx context.Context, payload domain.TicketPayload) (*domain.CreatedTicket, error) {
	customerID, ok, err := c.FindCustomerIDByName(ctx, payload.Customer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.NewTransportFailure("tickets.create", fmt.Errorf("customer %q not found", payload.Customer))
	}

	req := ticketCreateRequest{
		CustomerID:  customerID,
		Subject:     payload.Subject,
		CreatedAt:   payload.CreatedAt,
		Status:      payload.Status,
		Priority:    payload.Priority,
		Contact:     payload.Contact,
		Tech:        payload.AssignedTech,
		Description: payload.Description,
	}
	body, err := c.post(ctx, "tickets.create", "/tickets", req)
	if err != nil {
		return nil, err
	}

	var resp ticketCreateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, util.NewTransportFailure("tickets.create decode", err)
	}
	if resp.Ticket == nil {
		return nil, util.NewTransportFailure("tickets.create", errors.New("response missing ticket"))
	}
	return &domain.CreatedTicket{
		ID:     resp.Ticket.ID.String(),
		Number: resp.Ticket.Number.String(),
	}, nil
}

// CreateComment appends one comment to an existing destination ticket.
func (c *Client) CreateComment(ctx context.Context, ticketID string, comment domain.Comment) error {
	req := commentCreateRequest{
		Subject:    comment.Subject,
		Body:       comment.Body,
		Tech:       comment.Tech,
		CreatedAt:  comment.CreatedAt,
		Hidden:     comment.Hidden,
		DoNotEmail: true,
	}
	_, err := c.post(ctx, "tickets.comment", "/tickets/"+url.PathEscape(ticketID)+"/comment", req)
	return err
}

func (c *Client) get(ctx context.Context, op, path string) ([]byte, error) {
	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}
	agent := fiber.Get(c.baseURL + path)
	agent.Set(fiber.HeaderAuthorization, c.apiKey)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	return c.finish(op, agent)
}

func (c *Client) post(ctx context.Context, op, path string, payload any) ([]byte, error) {
	if err := c.wait(ctx, op); err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, util.NewTransportFailure(op+" encode", err)
	}
	agent := fiber.Post(c.baseURL + path)
	agent.Set(fiber.HeaderAuthorization, c.apiKey)
	agent.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	agent.Body(body)
	return c.finish(op, agent)
}

func (c *Client) wait(ctx context.Context, op string) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return util.NewTransportFailure(op, err)
	}
	return nil
}

func (c *Client) finish(op string, agent *fiber.Agent) ([]byte, error) {
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		c.metrics.RecordCall("syncro", op, true)
		return nil, util.NewTransportFailure(op, errors.Join(errs...))
	}
	if code >= fiber.StatusBadRequest {
		c.metrics.RecordCall("syncro", op, true)
		return nil, util.NewTransportFailure(op, fmt.Errorf("unexpected status %d", code))
	}
	c.metrics.RecordCall("syncro", op, false)
	return body, nil
}
