package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"fresh-basket/internal/domain"
	"fresh-basket/internal/microservices/orderapi/service"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProblem emits the simplified problem+json shape the storefront client
// decodes. `items` is only present on stock conflicts.
func writeProblem(w http.ResponseWriter, code int, typ, detail string) {
	writeJSON(w, code, map[string]any{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": detail,
	})
}

func writeStockConflict(w http.ResponseWriter, sc *domain.StockConflictError) {
	writeJSON(w, http.StatusConflict, map[string]any{
		"type":   "stock_conflict",
		"title":  http.StatusText(http.StatusConflict),
		"status": http.StatusConflict,
		"detail": sc.Error(),
		"items":  sc.Items,
	})
}

// writeError maps the service error taxonomy onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	var sc *domain.StockConflictError
	switch {
	case errors.As(err, &sc):
		writeStockConflict(w, sc)
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "not_found", "order not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeProblem(w, http.StatusUnprocessableEntity, "invalid_transition", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrUnknownAddress),
		errors.Is(err, service.ErrUnknownProduct),
		errors.Is(err, service.ErrReasonRequired),
		errors.Is(err, service.ErrUnknownMethod),
		errors.Is(err, service.ErrAlreadyPaid):
		writeProblem(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, service.ErrShippingUnavailable):
		writeProblem(w, http.StatusBadGateway, "shipping_unavailable", err.Error())
	default:
		writeProblem(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
