package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusAssigned  Status = "assigned"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusAssigned, StatusShipped,
		StatusDelivered, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusRejected || s == StatusCancelled
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleCourier  Role = "courier"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleStaff || r == RoleCourier
}

type PaymentMethod string

const (
	PaymentCOD      PaymentMethod = "cod"
	PaymentGatewayA PaymentMethod = "gateway_a"
	PaymentGatewayB PaymentMethod = "gateway_b"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentGatewayA || m == PaymentGatewayB
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// OrderItem is frozen at order creation; snapshots are never re-fetched
// from the live catalog.
type OrderItem struct {
	ProductRef    string `json:"product_ref"`
	NameSnapshot  string `json:"name_snapshot"`
	ImageSnapshot string `json:"image_snapshot"`
	Unit          string `json:"unit"`
	Quantity      int    `json:"quantity"`
	UnitPrice     int64  `json:"unit_price"` // smallest currency unit
}

// OrderRecord is the canonical representation of one purchase and its
// fulfillment state, shared by every actor role.
type OrderRecord struct {
	ID                 string        `json:"id"`
	OwnerRef           string        `json:"owner_ref,omitempty"`
	Status             Status        `json:"status"`
	Items              []OrderItem   `json:"items"`
	CustomerName       string        `json:"customer_name"`
	CustomerPhone      string        `json:"customer_phone"`
	CustomerAddress    string        `json:"customer_address"`
	TotalAmount        int64         `json:"total_amount"`
	ShippingFee        int64         `json:"shipping_fee"`
	Discount           int64         `json:"discount"`
	PaymentMethod      PaymentMethod `json:"payment_method"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	IsRating           bool          `json:"is_rating"`
	AssignedCourierRef string        `json:"assigned_courier_ref,omitempty"`
	CancelReason       string        `json:"cancel_reason,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	EstimatedDelivery  time.Time     `json:"estimated_delivery_time"`
}

// Subtotal is the item sum before shipping and discount.
func (o OrderRecord) Subtotal() int64 {
	var sum int64
	for _, it := range o.Items {
		sum += it.UnitPrice * int64(it.Quantity)
	}
	return sum
}

// TotalConsistent verifies total_amount == subtotal + shipping_fee - discount.
func (o OrderRecord) TotalConsistent() bool {
	return o.TotalAmount == o.Subtotal()+o.ShippingFee-o.Discount
}
