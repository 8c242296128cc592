package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fresh-basket/internal/domain"
)

func TestCallSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]domain.OrderRecord{})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-123")
	_, err := c.ListMine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestTransitionRequestShape(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(domain.OrderRecord{ID: "ord-1", Status: domain.StatusCancelled})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	rec, err := c.Transition(context.Background(), "ord-1", domain.ActionCancel,
		"out of range", domain.StatusConfirmed)
	require.NoError(t, err)

	assert.Equal(t, "/orders/ord-1/cancel", gotPath)
	assert.Equal(t, "out of range", gotBody["reason"])
	assert.Equal(t, "confirmed", gotBody["expected_status"])
	assert.Equal(t, domain.StatusCancelled, rec.Status)
}

func TestDecodeErrorProblemTypes(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			"unauthorized", http.StatusForbidden,
			`{"type":"unauthorized","title":"Forbidden","status":403,"detail":"nope"}`,
			func(t *testing.T, err error) { assert.ErrorIs(t, err, domain.ErrUnauthorized) },
		},
		{
			"invalid transition", http.StatusUnprocessableEntity,
			`{"type":"invalid_transition","title":"Unprocessable","status":422,"detail":"no edge"}`,
			func(t *testing.T, err error) { assert.ErrorIs(t, err, domain.ErrInvalidTransition) },
		},
		{
			"conflict", http.StatusConflict,
			`{"type":"conflict","title":"Conflict","status":409,"detail":"stale"}`,
			func(t *testing.T, err error) { assert.ErrorIs(t, err, domain.ErrConflict) },
		},
		{
			"not found", http.StatusNotFound,
			`{"type":"not_found","title":"Not Found","status":404,"detail":"gone"}`,
			func(t *testing.T, err error) { assert.ErrorIs(t, err, domain.ErrNotFound) },
		},
		{
			"structured stock conflict", http.StatusConflict,
			`{"type":"stock_conflict","title":"Conflict","status":409,"detail":"","items":[{"name":"Ba chi heo","available":2,"requested":5}]}`,
			func(t *testing.T, err error) {
				var sc *domain.StockConflictError
				require.ErrorAs(t, err, &sc)
				assert.Equal(t, []string{"Ba chi heo"}, sc.AffectedNames())
			},
		},
		{
			"stock conflict with legacy detail string", http.StatusConflict,
			`{"type":"stock_conflict","title":"Conflict","status":409,"detail":"Insufficient stock: Trung ga: Available 0, Requested 1"}`,
			func(t *testing.T, err error) {
				var sc *domain.StockConflictError
				require.ErrorAs(t, err, &sc)
				require.Len(t, sc.Items, 1)
				assert.Equal(t, 0, sc.Items[0].Available)
			},
		},
		{
			"bare legacy stock string", http.StatusConflict,
			`Insufficient stock: Ba chi heo: Available 2, Requested 5; Trung ga: Available 0, Requested 1`,
			func(t *testing.T, err error) {
				var sc *domain.StockConflictError
				require.ErrorAs(t, err, &sc)
				assert.Equal(t, []string{"Ba chi heo", "Trung ga"}, sc.AffectedNames())
			},
		},
		{
			"unknown problem type", http.StatusBadRequest,
			`{"type":"bad_request","title":"Bad Request","status":400,"detail":"invalid JSON body"}`,
			func(t *testing.T, err error) {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "bad_request")
			},
		},
		{
			"plain text body", http.StatusInternalServerError,
			`something broke`,
			func(t *testing.T, err error) {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "500")
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := New(srv.URL, "tok")
			_, err := c.GetOrder(context.Background(), "ord-1")
			tc.check(t, err)
		})
	}
}

func TestNetworkFailureWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := New(srv.URL, "tok")
	_, err := c.ListMine(context.Background())

	var nerr *domain.NetworkError
	assert.ErrorAs(t, err, &nerr)
}
