package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/database"
	"github.com/meridianlabs/backoffice/pkg/models"
)

// OrderFilter narrows List results. Zero values mean "no filter".
type OrderFilter struct {
	Status pkg.OrderStatus
	UserID uuid.UUID
	Page   int
	Size   int
}

type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int, error)
	// UpdateStatus transitions the order inside tx so status checks and the
	// write are atomic.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status pkg.OrderStatus) error
	// GetForUpdate locks the order row inside tx.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (models.Order, error)
}

type OrderRepositoryImpl struct {
	db *database.DB
}

func NewOrderRepository(db *database.DB) OrderRepository {
	return &OrderRepositoryImpl{db: db}
}

func (r *OrderRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (models.Order, error) {
	var o models.Order
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, status, total_cents, created_at, updated_at
		FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return o, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price_cents
		FROM order_items WHERE order_id = $1`, id,
	)
	if err != nil {
		return o, err
	}
	defer rows.Close()
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceCents); err != nil {
			return o, err
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

func (r *OrderRepositoryImpl) List(ctx context.Context, f OrderFilter) ([]models.Order, int, error) {
	page, size := normalizePage(f.Page, f.Size)
	offset := (page - 1) * size

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, status, total_cents, created_at, updated_at
		FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2::uuid IS NULL OR user_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		string(f.Status), nullableUUID(f.UserID), size, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2::uuid IS NULL OR user_id = $2)`,
		string(f.Status), nullableUUID(f.UserID),
	).Scan(&total)
	return orders, total, err
}

func (r *OrderRepositoryImpl) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (models.Order, error) {
	var o models.Order
	err := tx.QueryRow(ctx, `
		SELECT id, user_id, status, total_cents, created_at, updated_at
		FROM orders WHERE id = $1 FOR UPDATE`, id,
	).Scan(&o.ID, &o.UserID, &o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *OrderRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status pkg.OrderStatus) error {
	_, err := tx.Exec(ctx, `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id,
	)
	return err
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
