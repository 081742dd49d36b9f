package syncro

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-migrate/internal/config"
	"github.com/spec-kit/ticket-migrate/internal/domain"
	"github.com/spec-kit/ticket-migrate/internal/observability"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.SyncroConfig{
		APIKey:  "syncro-key",
		BaseURL: serverURL,
	}, nil, zap.NewNop(), observability.NewMetrics())
}

// memoryCache is an in-process CustomerCache stub.
type memoryCache struct {
	values map[string]string
	gets   int
	sets   int
}

func (m *memoryCache) GetString(_ context.Context, key string) (string, bool) {
	m.gets++
	val, ok := m.values[key]
	return val, ok
}

func (m *memoryCache) SetString(_ context.Context, key, value string, _ time.Duration) {
	m.sets++
	m.values[key] = value
}

// ---------------------------------------------------------------------------
// FindCustomerIDByName
// ---------------------------------------------------------------------------

func TestFindCustomerIDByName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/customers", r.URL.Path)
		require.Equal(t, "Acme", r.URL.Query().Get("query"))
		require.Equal(t, "syncro-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"customers":[{"id":123,"business_name":"Acme"},{"id":456,"business_name":"Acme Europe"}]}`))
	}))
	defer server.Close()

	id, ok, err := newTestClient(server.URL).FindCustomerIDByName(context.Background(), "Acme")

	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "123", id, "exact name match wins over partial search hits")
}

func TestFindCustomerIDByName_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"customers":[]}`))
	}))
	defer server.Close()

	_, ok, err := newTestClient(server.URL).FindCustomerIDByName(context.Background(), "Nobody")

	require.NoError(t, err)
	require.False(t, ok)
}

func TestFindCustomerIDByName_CacheHitSkipsAPI(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"customers":[{"id":123,"business_name":"Acme"}]}`))
	}))
	defer server.Close()

	cache := &memoryCache{values: map[string]string{}}
	client := newTestClient(server.URL).WithCustomerCache(cache, time.Hour)

	id, ok, err := client.FindCustomerIDByName(context.Background(), "Acme")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "123", id)
	require.Equal(t, 1, calls)
	require.Equal(t, 1, cache.sets)

	id, ok, err = client.FindCustomerIDByName(context.Background(), "Acme")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "123", id)
	require.Equal(t, 1, calls, "second lookup must come from the cache")
}

// ---------------------------------------------------------------------------
// ListTicketsForCustomer
// ---------------------------------------------------------------------------

func TestListTicketsForCustomer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/customers":
			_, _ = w.Write([]byte(`{"customers":[{"id":123,"business_name":"Acme"}]}`))
		case "/tickets":
			require.Equal(t, "123", r.URL.Query().Get("customer_id"))
			_, _ = w.Write([]byte(`{"tickets":[{"id":900,"number":17,"subject":"Printer broken 77","created_at":"2024-05-01T10:00:00+00:00"}]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	tickets, err := newTestClient(server.URL).ListTicketsForCustomer(context.Background(), "Acme")

	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.Equal(t, domain.DestinationTicket{
		TicketID:  "900",
		Subject:   "Printer broken 77",
		CreatedAt: "2024-05-01T10:00:00+00:00",
	}, tickets[0])
}

func TestListTicketsForCustomer_UnknownCustomer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"customers":[]}`))
	}))
	defer server.Close()

	tickets, err := newTestClient(server.URL).ListTicketsForCustomer(context.Background(), "Nobody")

	require.NoError(t, err)
	require.Empty(t, tickets)
}

// ---------------------------------------------------------------------------
// CreateTicket
// ---------------------------------------------------------------------------

func TestCreateTicket(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/customers":
			_, _ = w.Write([]byte(`{"customers":[{"id":123,"business_name":"Acme"}]}`))
		case "/tickets":
			require.Equal(t, http.MethodPost, r.Method)
			var req ticketCreateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "123", req.CustomerID)
			require.Equal(t, "Printer broken 77", req.Subject)
			require.Equal(t, "Tech1", req.Tech)
			_, _ = w.Write([]byte(`{"ticket":{"id":9001,"number":42}}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	created, err := newTestClient(server.URL).CreateTicket(context.Background(), domain.TicketPayload{
		Customer:     "Acme",
		Subject:      "Printer broken 77",
		CreatedAt:    "2024-05-01T10:00:00+00:00",
		Status:       "Open",
		Priority:     "High",
		AssignedTech: "Tech1",
		Description:  "it is broken",
	})

	require.NoError(t, err)
	require.Equal(t, "9001", created.ID)
	require.Equal(t, "42", created.Number)
}

func TestCreateTicket_MissingTicketInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/customers" {
			_, _ = w.Write([]byte(`{"customers":[{"id":123,"business_name":"Acme"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateTicket(context.Background(), domain.TicketPayload{Customer: "Acme"})

	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// CreateComment
// ---------------------------------------------------------------------------

func TestCreateComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tickets/9001/comment", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		var req commentCreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "NOTE", req.Subject)
		require.True(t, req.Hidden)
		require.True(t, req.DoNotEmail)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	err := newTestClient(server.URL).CreateComment(context.Background(), "9001", domain.Comment{
		Subject: "NOTE",
		Body:    "called them",
		Tech:    "Ann",
		Hidden:  true,
	})

	require.NoError(t, err)
}

func TestCreateComment_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	err := newTestClient(server.URL).CreateComment(context.Background(), "9001", domain.Comment{})

	require.Error(t, err)
	require.Contains(t, err.Error(), "422")
}
