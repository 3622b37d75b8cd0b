package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/database"
	"github.com/meridianlabs/backoffice/pkg/models"
)

// ProductFilter narrows List results. Zero values mean "no filter".
type ProductFilter struct {
	Status pkg.ProductStatus
	Search string // matches sku or name
	Page   int    // 1-based
	Size   int
}

// ProductRepository defines the interface for product persistence. Vendor
// errors (unique violations, no rows) surface raw; classification happens at
// the boundary.
type ProductRepository interface {
	Create(ctx context.Context, product models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int, error)
	Update(ctx context.Context, product models.Product) error
	UpdateStock(ctx context.Context, id uuid.UUID, delta int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProductRepositoryImpl struct {
	db *database.DB
}

func NewProductRepository(db *database.DB) ProductRepository {
	return &ProductRepositoryImpl{db: db}
}

func (r *ProductRepositoryImpl) Create(ctx context.Context, p models.Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, sku, name, description, price_cents, stock, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.SKU, p.Name, p.Description, p.PriceCents, p.Stock, p.Status, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *ProductRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (models.Product, error) {
	var p models.Product
	err := r.db.QueryRow(ctx, `
		SELECT id, sku, name, description, price_cents, stock, status, created_at, updated_at
		FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ProductRepositoryImpl) List(ctx context.Context, f ProductFilter) ([]models.Product, int, error) {
	page, size := normalizePage(f.Page, f.Size)
	offset := (page - 1) * size

	rows, err := r.db.Query(ctx, `
		SELECT id, sku, name, description, price_cents, stock, status, created_at, updated_at
		FROM products
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR sku ILIKE '%' || $2 || '%' OR name ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		string(f.Status), f.Search, size, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM products
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR sku ILIKE '%' || $2 || '%' OR name ILIKE '%' || $2 || '%')`,
		string(f.Status), f.Search,
	).Scan(&total)
	return products, total, err
}

func (r *ProductRepositoryImpl) Update(ctx context.Context, p models.Product) error {
	_, err := r.db.Exec(ctx, `
		UPDATE products
		SET sku = $1, name = $2, description = $3, price_cents = $4, stock = $5, status = $6, updated_at = $7
		WHERE id = $8`,
		p.SKU, p.Name, p.Description, p.PriceCents, p.Stock, p.Status, time.Now(), p.ID,
	)
	return err
}

func (r *ProductRepositoryImpl) UpdateStock(ctx context.Context, id uuid.UUID, delta int) error {
	_, err := r.db.Exec(ctx, `UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2`,
		delta, id,
	)
	return err
}

func (r *ProductRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 20
	}
	return page, size
}
