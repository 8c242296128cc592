package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnavailable means no fee could be obtained. Callers disable submission
// rather than defaulting the fee to zero.
var ErrUnavailable = errors.New("shipping rate unavailable")

// Estimator quotes a delivery fee for a destination and cart subtotal. The
// rate collaborator is external, slow and unreliable; re-invoke whenever the
// coordinate or subtotal changes.
type Estimator interface {
	Estimate(ctx context.Context, lat, lng float64, subtotal int64) (int64, error)
}

type HTTPEstimator struct {
	baseURL string
	http    *http.Client
}

func NewHTTPEstimator(baseURL string) *HTTPEstimator {
	return &HTTPEstimator{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (e *HTTPEstimator) Estimate(ctx context.Context, lat, lng float64, subtotal int64) (int64, error) {
	url := fmt.Sprintf("%s/rates?lat=%f&lng=%f&subtotal=%d", e.baseURL, lat, lng, subtotal)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: rate service returned %d", ErrUnavailable, resp.StatusCode)
	}

	var out struct {
		Fee int64 `json:"fee"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out.Fee, nil
}
