package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrUnauthorized      = errors.New("role not permitted for this transition")
	ErrInvalidTransition = errors.New("transition not legal from current status")
	ErrConflict          = errors.New("order status changed on the backend")
	ErrNotFound          = errors.New("order not found")
)

// ValidationReason identifies a checkout input failure. These are detected
// client-side before any network call and rendered by the view, not raised
// as control flow.
type ValidationReason string

const (
	ReasonEmptyCart         ValidationReason = "empty_cart"
	ReasonMissingAddress    ValidationReason = "missing_address"
	ReasonIncompleteInvoice ValidationReason = "incomplete_invoice"
	ReasonPolicyNotAccepted ValidationReason = "policy_not_accepted"
	ReasonCancelNeedsReason ValidationReason = "cancel_reason_required"
)

type ValidationError struct {
	Reason ValidationReason
}

func (e *ValidationError) Error() string { return "validation failed: " + string(e.Reason) }

// StockShortage names one product the backend could not reserve.
type StockShortage struct {
	Name      string `json:"name"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

// StockConflictError carries the affected products so the cart view can mark
// them unavailable instead of showing a generic failure.
type StockConflictError struct {
	Items []StockShortage `json:"items"`
}

func (e *StockConflictError) Error() string {
	names := make([]string, len(e.Items))
	for i, it := range e.Items {
		names[i] = it.Name
	}
	return "insufficient stock: " + strings.Join(names, ", ")
}

// AffectedNames lists the shortage product names in order.
func (e *StockConflictError) AffectedNames() []string {
	names := make([]string, len(e.Items))
	for i, it := range e.Items {
		names[i] = it.Name
	}
	return names
}

type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// GatewayError means the payment-link creation failed. The order it belongs
// to still exists, pending and unpaid.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string { return fmt.Sprintf("payment gateway failure: %v", e.Err) }
func (e *GatewayError) Unwrap() error { return e.Err }

const stockPrefix = "Insufficient stock: "

var shortageRe = regexp.MustCompile(`^(.+): Available (\d+), Requested (\d+)$`)

// ParseStockConflict is the compatibility shim for backends that still report
// shortages as a bare string:
//
//	"Insufficient stock: Ba chi heo: Available 2, Requested 5; Trung ga: Available 0, Requested 1"
//
// Structured stock_conflict payloads are preferred; this only covers the
// legacy format.
func ParseStockConflict(msg string) (*StockConflictError, bool) {
	if !strings.HasPrefix(msg, stockPrefix) {
		return nil, false
	}
	var items []StockShortage
	for _, part := range strings.Split(strings.TrimPrefix(msg, stockPrefix), ";") {
		m := shortageRe.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			continue
		}
		avail, _ := strconv.Atoi(m[2])
		req, _ := strconv.Atoi(m[3])
		items = append(items, StockShortage{Name: m[1], Available: avail, Requested: req})
	}
	if len(items) == 0 {
		return nil, false
	}
	return &StockConflictError{Items: items}, true
}
