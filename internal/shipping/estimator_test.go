package shipping

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateReturnsFee(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rates", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("lat"))
		assert.Equal(t, "105000", r.URL.Query().Get("subtotal"))
		_, _ = w.Write([]byte(`{"fee":15000}`))
	}))
	defer srv.Close()

	fee, err := NewHTTPEstimator(srv.URL).Estimate(context.Background(), 10.77, 106.70, 105000)
	require.NoError(t, err)
	assert.EqualValues(t, 15000, fee)
}

func TestEstimateFailuresWrapUnavailable(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewHTTPEstimator(srv.URL).Estimate(context.Background(), 0, 0, 0)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("bad body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		_, err := NewHTTPEstimator(srv.URL).Estimate(context.Background(), 0, 0, 0)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("dead endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, err := NewHTTPEstimator(srv.URL).Estimate(context.Background(), 0, 0, 0)
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}
