package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fresh-basket/internal/common/logger"
	"fresh-basket/internal/domain"
	"fresh-basket/internal/microservices/storefront/apiclient"
	"fresh-basket/internal/microservices/storefront/store"
)

type fakeAPI struct {
	createReq  apiclient.CreateOrderRequest
	createResp apiclient.CreateOrderResponse
	createErr  error

	getResp domain.OrderRecord
	getErr  error
}

func (f *fakeAPI) CreateOrder(ctx context.Context, req apiclient.CreateOrderRequest) (apiclient.CreateOrderResponse, error) {
	f.createReq = req
	return f.createResp, f.createErr
}

func (f *fakeAPI) GetOrder(ctx context.Context, id string) (domain.OrderRecord, error) {
	return f.getResp, f.getErr
}

type fakeRouter struct {
	url string
	err error
}

func (f *fakeRouter) Route(ctx context.Context, orderID string, method domain.PaymentMethod) (string, error) {
	return f.url, f.err
}

func groceryCart() *Cart {
	c := NewCart()
	c.Add(domain.OrderItem{ProductRef: "p-pork", NameSnapshot: "Ba chi heo", Unit: "kg", Quantity: 2, UnitPrice: 30000})
	c.Add(domain.OrderItem{ProductRef: "p-eggs", NameSnapshot: "Trung ga", Unit: "vi", Quantity: 1, UnitPrice: 45000})
	return c
}

func validInput() Input {
	return Input{
		AddressID:      "addr-1",
		Discount:       5000,
		PaymentMethod:  domain.PaymentCOD,
		PolicyAccepted: true,
	}
}

func newOrchestrator(t *testing.T, api API, router *fakeRouter) (*Orchestrator, *store.Store) {
	t.Helper()
	st := store.Init(logger.Nop())
	t.Cleanup(st.Teardown)
	return New(api, router, st, logger.Nop()), st
}

func TestValidateLadder(t *testing.T) {
	cases := []struct {
		name string
		cart *Cart
		in   Input
		want domain.ValidationReason
	}{
		{"empty cart first", NewCart(), Input{}, domain.ReasonEmptyCart},
		{"nil cart", nil, Input{}, domain.ReasonEmptyCart},
		{"missing address", groceryCart(), Input{PolicyAccepted: true}, domain.ReasonMissingAddress},
		{"incomplete invoice", groceryCart(), Input{
			AddressID:      "addr-1",
			Invoice:        &Invoice{CompanyName: "ACME", TaxCode: "123"},
			PolicyAccepted: true,
		}, domain.ReasonIncompleteInvoice},
		{"policy not accepted", groceryCart(), Input{AddressID: "addr-1"}, domain.ReasonPolicyNotAccepted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verr := Validate(tc.cart, tc.in)
			require.NotNil(t, verr)
			assert.Equal(t, tc.want, verr.Reason)
		})
	}

	t.Run("complete invoice passes", func(t *testing.T) {
		in := validInput()
		in.Invoice = &Invoice{CompanyName: "ACME", TaxCode: "123", Email: "a@b.vn", Address: "HCMC"}
		assert.Nil(t, Validate(groceryCart(), in))
	})
}

func TestSubmitCODHappyPath(t *testing.T) {
	created := domain.OrderRecord{
		ID:     "ord-1",
		Status: domain.StatusPending,
		Items: []domain.OrderItem{
			{ProductRef: "p-pork", NameSnapshot: "Ba chi heo", Quantity: 2, UnitPrice: 30000},
			{ProductRef: "p-eggs", NameSnapshot: "Trung ga", Quantity: 1, UnitPrice: 45000},
		},
		ShippingFee:   15000,
		Discount:      5000,
		TotalAmount:   115000,
		PaymentMethod: domain.PaymentCOD,
		PaymentStatus: domain.PaymentUnpaid,
	}
	api := &fakeAPI{createResp: apiclient.CreateOrderResponse{OrderID: "ord-1", Order: &created}}
	o, st := newOrchestrator(t, api, &fakeRouter{})

	cart := groceryCart()
	res, err := o.Submit(context.Background(), cart, validInput())
	require.NoError(t, err)

	assert.Equal(t, "ord-1", res.OrderID)
	require.NotNil(t, res.Order)
	assert.True(t, res.Order.TotalConsistent())
	assert.EqualValues(t, 115000, res.Order.TotalAmount)
	assert.Empty(t, res.RedirectURL, "cash on delivery needs no redirect")

	assert.True(t, cart.Empty(), "cart clears on success")
	got, ok := st.Get("ord-1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusPending, got.Status)

	// Request carried the cart lines and checkout input verbatim.
	assert.Equal(t, "addr-1", api.createReq.AddressID)
	require.Len(t, api.createReq.Items, 2)
	assert.Equal(t, apiclient.CreateOrderItem{ProductID: "p-pork", Quantity: 2}, api.createReq.Items[0])
}

func TestSubmitGatewayReturnsRedirect(t *testing.T) {
	created := domain.OrderRecord{ID: "ord-1", Status: domain.StatusPending}
	api := &fakeAPI{createResp: apiclient.CreateOrderResponse{OrderID: "ord-1", Order: &created}}
	o, _ := newOrchestrator(t, api, &fakeRouter{url: "https://pay.example.com/gateway_a/checkout/ord-1"})

	in := validInput()
	in.PaymentMethod = domain.PaymentGatewayA
	res, err := o.Submit(context.Background(), groceryCart(), in)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/gateway_a/checkout/ord-1", res.RedirectURL)
}

func TestSubmitGatewayFailureKeepsOrderID(t *testing.T) {
	created := domain.OrderRecord{ID: "ord-1", Status: domain.StatusPending, PaymentStatus: domain.PaymentUnpaid}
	api := &fakeAPI{createResp: apiclient.CreateOrderResponse{OrderID: "ord-1", Order: &created}}
	router := &fakeRouter{err: &domain.GatewayError{Err: errors.New("gateway timeout")}}
	o, st := newOrchestrator(t, api, router)

	in := validInput()
	in.PaymentMethod = domain.PaymentGatewayB
	cart := groceryCart()

	res, err := o.Submit(context.Background(), cart, in)

	var gerr *domain.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "ord-1", res.OrderID, "the order exists even though payment routing failed")
	assert.True(t, cart.Empty(), "the order was created, so the cart is spent")

	got, ok := st.Get("ord-1")
	require.True(t, ok)
	assert.Equal(t, domain.PaymentUnpaid, got.PaymentStatus)
}

func TestSubmitStockConflictMarksCartLines(t *testing.T) {
	api := &fakeAPI{createErr: &domain.StockConflictError{Items: []domain.StockShortage{
		{Name: "Ba chi heo", Available: 1, Requested: 2},
	}}}
	o, st := newOrchestrator(t, api, &fakeRouter{})

	cart := groceryCart()
	_, err := o.Submit(context.Background(), cart, validInput())

	var sc *domain.StockConflictError
	require.ErrorAs(t, err, &sc)
	assert.True(t, cart.Unavailable("p-pork"))
	assert.False(t, cart.Unavailable("p-eggs"))
	assert.False(t, cart.Empty(), "cart survives a stock conflict for editing")
	assert.Equal(t, 0, st.Len())
}

func TestSubmitFetchesRecordWhenCreateReturnsOnlyID(t *testing.T) {
	full := domain.OrderRecord{ID: "ord-1", Status: domain.StatusPending}
	api := &fakeAPI{
		createResp: apiclient.CreateOrderResponse{OrderID: "ord-1"},
		getResp:    full,
	}
	o, st := newOrchestrator(t, api, &fakeRouter{})

	res, err := o.Submit(context.Background(), groceryCart(), validInput())
	require.NoError(t, err)
	require.NotNil(t, res.Order)
	assert.Equal(t, "ord-1", res.Order.ID)
	assert.Equal(t, 1, st.Len())
}

func TestSubmitValidationFailureNeverCallsBackend(t *testing.T) {
	api := &fakeAPI{}
	o, _ := newOrchestrator(t, api, &fakeRouter{})

	_, err := o.Submit(context.Background(), NewCart(), validInput())
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.ReasonEmptyCart, verr.Reason)
	assert.Empty(t, api.createReq.AddressID)
}
