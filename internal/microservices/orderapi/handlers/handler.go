package handlers

import (
	"context"
	"net/http"
	"strings"

	"fresh-basket/internal/common/auth"
	"fresh-basket/internal/microservices/orderapi/service"
)

type Handler struct {
	OrderHandler *OrderHandler
	secret       []byte
}

func New(s *service.Service, authSecret []byte) *Handler {
	return &Handler{
		OrderHandler: NewOrderHandler(s.OrderService),
		secret:       authSecret,
	}
}

// Router wires the HTTP surface. Every route runs behind the bearer-token
// middleware; role gating itself lives in the domain table, not here.
func Router(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /orders", h.OrderHandler.CreateOrder)
	mux.HandleFunc("GET /orders/mine", h.OrderHandler.ListMine)
	mux.HandleFunc("GET /orders/staff", h.OrderHandler.ListStaff)
	mux.HandleFunc("GET /orders/{id}", h.OrderHandler.GetOrder)
	mux.HandleFunc("POST /orders/{id}/{action}", h.OrderHandler.Transition)
	mux.HandleFunc("POST /payments", h.OrderHandler.CreatePaymentLink)

	return h.withActor(mux)
}

type actorKey struct{}

func (h *Handler) withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			writeProblem(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		actor, err := auth.Verify(h.secret, raw)
		if err != nil {
			writeProblem(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	})
}

func actorFrom(r *http.Request) auth.Actor {
	a, _ := r.Context().Value(actorKey{}).(auth.Actor)
	return a
}
