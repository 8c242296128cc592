package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fresh-basket/internal/domain"
)

// Client is the typed request/response surface of the backend. It speaks the
// problem+json error format and converts it into the domain error taxonomy,
// so callers never look at HTTP status codes.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type CreateOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type InvoiceInfo struct {
	CompanyName string `json:"company_name"`
	TaxCode     string `json:"tax_code"`
	Email       string `json:"email"`
	Address     string `json:"address"`
}

type CreateOrderRequest struct {
	AddressID     string               `json:"address_id"`
	Items         []CreateOrderItem    `json:"items"`
	Discount      int64                `json:"discount,omitempty"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	InvoiceInfo   *InvoiceInfo         `json:"invoice_info,omitempty"`
}

type CreateOrderResponse struct {
	OrderID string              `json:"order_id"`
	Order   *domain.OrderRecord `json:"order,omitempty"`
}

type transitionRequest struct {
	Reason string `json:"reason,omitempty"`
	// ExpectedStatus lets the backend detect that the caller acted on a
	// stale record and answer with a conflict instead of a surprise.
	ExpectedStatus domain.Status `json:"expected_status,omitempty"`
}

type paymentRequest struct {
	OrderID string               `json:"order_id"`
	Method  domain.PaymentMethod `json:"method"`
}

type paymentResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// problem mirrors the backend's error writer.
type problem struct {
	Type   string                 `json:"type"`
	Title  string                 `json:"title"`
	Status int                    `json:"status"`
	Detail string                 `json:"detail"`
	Items  []domain.StockShortage `json:"items,omitempty"`
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResponse, error) {
	var resp CreateOrderResponse
	err := c.call(ctx, http.MethodPost, "/orders", req, &resp)
	return resp, err
}

func (c *Client) ListMine(ctx context.Context) ([]domain.OrderRecord, error) {
	var out []domain.OrderRecord
	err := c.call(ctx, http.MethodGet, "/orders/mine", nil, &out)
	return out, err
}

func (c *Client) ListStaff(ctx context.Context) ([]domain.OrderRecord, error) {
	var out []domain.OrderRecord
	err := c.call(ctx, http.MethodGet, "/orders/staff", nil, &out)
	return out, err
}

func (c *Client) GetOrder(ctx context.Context, id string) (domain.OrderRecord, error) {
	var out domain.OrderRecord
	err := c.call(ctx, http.MethodGet, "/orders/"+id, nil, &out)
	return out, err
}

// Transition triggers one lifecycle action. expected is the status the caller
// last observed; it may be empty when the caller holds no local copy.
func (c *Client) Transition(ctx context.Context, id string, action domain.Action,
	reason string, expected domain.Status) (domain.OrderRecord, error) {

	var out domain.OrderRecord
	body := transitionRequest{Reason: reason, ExpectedStatus: expected}
	err := c.call(ctx, http.MethodPost, fmt.Sprintf("/orders/%s/%s", id, action), body, &out)
	return out, err
}

func (c *Client) CreatePaymentLink(ctx context.Context, orderID string, method domain.PaymentMethod) (string, error) {
	var out paymentResponse
	err := c.call(ctx, http.MethodPost, "/payments", paymentRequest{OrderID: orderID, Method: method}, &out)
	return out.RedirectURL, err
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.NetworkError{Op: method + " " + path, Err: err}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var p problem
	if err := json.Unmarshal(raw, &p); err != nil || p.Type == "" {
		// Not problem+json; try the legacy stock string before giving up.
		if sc, ok := domain.ParseStockConflict(string(raw)); ok {
			return sc
		}
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, string(raw))
	}

	switch p.Type {
	case "stock_conflict":
		if len(p.Items) > 0 {
			return &domain.StockConflictError{Items: p.Items}
		}
		if sc, ok := domain.ParseStockConflict(p.Detail); ok {
			return sc
		}
		return &domain.StockConflictError{}
	case "unauthorized":
		return domain.ErrUnauthorized
	case "invalid_transition":
		return domain.ErrInvalidTransition
	case "conflict":
		return domain.ErrConflict
	case "not_found":
		return domain.ErrNotFound
	default:
		return fmt.Errorf("backend error %s: %s", p.Type, p.Detail)
	}
}
