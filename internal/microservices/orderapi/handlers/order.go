package handlers

import (
	"encoding/json"
	"net/http"

	"fresh-basket/internal/domain"
	"fresh-basket/internal/microservices/orderapi/service"
)

type OrderHandler struct {
	service service.OrderServiceInterface
}

func NewOrderHandler(s service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: s}
}

type createOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type invoiceInfo struct {
	CompanyName string `json:"company_name"`
	TaxCode     string `json:"tax_code"`
	Email       string `json:"email"`
	Address     string `json:"address"`
}

type createOrderRequest struct {
	AddressID     string               `json:"address_id"`
	Items         []createOrderItem    `json:"items"`
	Discount      int64                `json:"discount"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	InvoiceInfo   *invoiceInfo         `json:"invoice_info,omitempty"`
}

type createOrderResponse struct {
	OrderID string              `json:"order_id"`
	Order   *domain.OrderRecord `json:"order,omitempty"`
}

func (oh *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	in := service.CreateOrderInput{
		AddressID:     req.AddressID,
		Discount:      req.Discount,
		PaymentMethod: req.PaymentMethod,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.CreateOrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	rec, err := oh.service.Create(r.Context(), actorFrom(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createOrderResponse{OrderID: rec.ID, Order: &rec})
}

func (oh *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	recs, err := oh.service.ListMine(r.Context(), actorFrom(r).Ref)
	if err != nil {
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []domain.OrderRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (oh *OrderHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if actor.Role == domain.RoleCustomer {
		writeProblem(w, http.StatusForbidden, "unauthorized", "staff feed requires staff or courier role")
		return
	}
	recs, err := oh.service.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []domain.OrderRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (oh *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	rec, err := oh.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type transitionRequest struct {
	Reason         string        `json:"reason"`
	ExpectedStatus domain.Status `json:"expected_status"`
}

func (oh *OrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	action := domain.Action(r.PathValue("action"))
	if !action.Valid() {
		writeProblem(w, http.StatusNotFound, "not_found", "unknown transition action")
		return
	}

	var req transitionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // empty body is fine
	}

	rec, err := oh.service.Transition(r.Context(), actorFrom(r), r.PathValue("id"),
		action, req.Reason, req.ExpectedStatus)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type paymentRequest struct {
	OrderID string               `json:"order_id"`
	Method  domain.PaymentMethod `json:"method"`
}

func (oh *OrderHandler) CreatePaymentLink(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	url, err := oh.service.PaymentLink(r.Context(), req.OrderID, req.Method)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect_url": url})
}
