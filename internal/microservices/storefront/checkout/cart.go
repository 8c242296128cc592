package checkout

import "fresh-basket/internal/domain"

// Cart holds the items being assembled for checkout. Snapshots are taken when
// an item enters the cart and carried into the order unchanged.
type Cart struct {
	items       []domain.OrderItem
	unavailable map[string]bool // product_ref -> flagged by a stock conflict
}

func NewCart() *Cart {
	return &Cart{unavailable: make(map[string]bool)}
}

// Add merges quantity into an existing line or appends a new one.
func (c *Cart) Add(item domain.OrderItem) {
	for i := range c.items {
		if c.items[i].ProductRef == item.ProductRef {
			c.items[i].Quantity += item.Quantity
			return
		}
	}
	c.items = append(c.items, item)
}

func (c *Cart) Remove(productRef string) {
	for i := range c.items {
		if c.items[i].ProductRef == productRef {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *Cart) Items() []domain.OrderItem {
	return append([]domain.OrderItem(nil), c.items...)
}

func (c *Cart) Empty() bool { return len(c.items) == 0 }

func (c *Cart) Subtotal() int64 {
	var sum int64
	for _, it := range c.items {
		sum += it.UnitPrice * int64(it.Quantity)
	}
	return sum
}

func (c *Cart) Clear() {
	c.items = nil
	c.unavailable = make(map[string]bool)
}

// MarkUnavailable flags cart lines named in a stock conflict so the view can
// render them as out of stock. Matching is by name snapshot, which is what
// the backend reports.
func (c *Cart) MarkUnavailable(names []string) {
	byName := make(map[string]bool, len(names))
	for _, n := range names {
		byName[n] = true
	}
	for _, it := range c.items {
		if byName[it.NameSnapshot] {
			c.unavailable[it.ProductRef] = true
		}
	}
}

func (c *Cart) Unavailable(productRef string) bool { return c.unavailable[productRef] }
