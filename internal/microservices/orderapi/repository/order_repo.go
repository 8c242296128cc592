package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fresh-basket/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepositoryInterface {
	return &OrderRepository{db: db}
}

const orderColumns = `
	id, owner_ref, status, customer_name, customer_phone, customer_address,
	total_amount, shipping_fee, discount, payment_method, payment_status,
	is_rating, COALESCE(assigned_courier_ref,''), COALESCE(cancel_reason,''),
	created_at, estimated_delivery_time`

func (r *OrderRepository) CreateOrderTx(ctx context.Context, rec domain.OrderRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders
			(id, owner_ref, status, customer_name, customer_phone, customer_address,
			 total_amount, shipping_fee, discount, payment_method, payment_status,
			 is_rating, created_at, estimated_delivery_time, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now())
	`,
		rec.ID, rec.OwnerRef, rec.Status, rec.CustomerName, rec.CustomerPhone,
		rec.CustomerAddress, rec.TotalAmount, rec.ShippingFee, rec.Discount,
		rec.PaymentMethod, rec.PaymentStatus, rec.IsRating, rec.CreatedAt,
		rec.EstimatedDelivery,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i, item := range rec.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items
				(order_id, position, product_ref, name_snapshot, image_snapshot, unit, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, rec.ID, i, item.ProductRef, item.NameSnapshot, item.ImageSnapshot,
			item.Unit, item.Quantity, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("failed to insert order item %s: %w", item.ProductRef, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, 'order-api', now())
	`, rec.ID, rec.Status)
	if err != nil {
		return fmt.Errorf("failed to insert order status log: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id string) (domain.OrderRecord, bool, error) {
	return r.getOrder(ctx, r.db, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *OrderRepository) getOrder(ctx context.Context, q queryer, id string) (domain.OrderRecord, bool, error) {
	var rec domain.OrderRecord
	err := q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id).Scan(
		&rec.ID, &rec.OwnerRef, &rec.Status, &rec.CustomerName, &rec.CustomerPhone,
		&rec.CustomerAddress, &rec.TotalAmount, &rec.ShippingFee, &rec.Discount,
		&rec.PaymentMethod, &rec.PaymentStatus, &rec.IsRating,
		&rec.AssignedCourierRef, &rec.CancelReason, &rec.CreatedAt, &rec.EstimatedDelivery,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.OrderRecord{}, false, nil
	}
	if err != nil {
		return domain.OrderRecord{}, false, err
	}
	items, err := r.loadItems(ctx, q, id)
	if err != nil {
		return domain.OrderRecord{}, false, err
	}
	rec.Items = items
	return rec, true, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, q queryer, orderID string) ([]domain.OrderItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT product_ref, name_snapshot, image_snapshot, unit, quantity, unit_price
		FROM order_items WHERE order_id=$1 ORDER BY position
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductRef, &it.NameSnapshot, &it.ImageSnapshot,
			&it.Unit, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *OrderRepository) ListByOwner(ctx context.Context, ownerRef string) ([]domain.OrderRecord, error) {
	return r.list(ctx, `SELECT id FROM orders WHERE owner_ref=$1 ORDER BY created_at DESC`, ownerRef)
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.OrderRecord, error) {
	return r.list(ctx, `SELECT id FROM orders ORDER BY created_at DESC`)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]domain.OrderRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.OrderRecord, 0, len(ids))
	for _, id := range ids {
		rec, ok, err := r.getOrder(ctx, r.db, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *OrderRepository) UpdateStatusTx(ctx context.Context, id string, from, to domain.Status,
	changedBy, reason, courierRef string) (domain.OrderRecord, bool, error) {

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.OrderRecord{}, false, err
	}
	defer func() { _ = tx.Rollback() }()

	var current domain.Status
	if err := tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&current); err != nil {
		return domain.OrderRecord{}, false, err
	}
	if current != from {
		// Lost the race; caller maps this to a conflict.
		return domain.OrderRecord{}, false, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET
			status=$2,
			cancel_reason=NULLIF($3,''),
			assigned_courier_ref=COALESCE(NULLIF($4,''), assigned_courier_ref),
			updated_at=now()
		WHERE id=$1
	`, id, to, reason, courierRef); err != nil {
		return domain.OrderRecord{}, false, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at, notes)
		VALUES ($1,$2,$3,now(),$4)
	`, id, to, changedBy, reason); err != nil {
		return domain.OrderRecord{}, false, err
	}

	rec, ok, err := r.getOrder(ctx, tx, id)
	if err != nil || !ok {
		return domain.OrderRecord{}, false, fmt.Errorf("reload after update: %w", err)
	}
	return rec, true, tx.Commit()
}

func (r *OrderRepository) ResolveAddress(ctx context.Context, ownerRef, addressID string) (DeliveryAddress, bool, error) {
	var a DeliveryAddress
	err := r.db.QueryRowContext(ctx, `
		SELECT recipient_name, recipient_phone, full_address, lat, lng
		FROM addresses WHERE id=$1 AND owner_ref=$2
	`, addressID, ownerRef).Scan(&a.Name, &a.Phone, &a.Address, &a.Lat, &a.Lng)
	if errors.Is(err, sql.ErrNoRows) {
		return DeliveryAddress{}, false, nil
	}
	if err != nil {
		return DeliveryAddress{}, false, err
	}
	return a, true, nil
}

func (r *OrderRepository) ProductSnapshots(ctx context.Context, ids []string) (map[string]ProductSnapshot, error) {
	out := make(map[string]ProductSnapshot, len(ids))
	for _, id := range ids {
		var p ProductSnapshot
		err := r.db.QueryRowContext(ctx, `
			SELECT name, COALESCE(image,''), unit, price FROM products WHERE id=$1
		`, id).Scan(&p.Name, &p.Image, &p.Unit, &p.Price)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, nil
}
