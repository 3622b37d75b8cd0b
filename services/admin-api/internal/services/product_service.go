package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/apperrors"
	"github.com/meridianlabs/backoffice/pkg/models"
	"github.com/meridianlabs/backoffice/pkg/repositories"
	"github.com/meridianlabs/backoffice/services/admin-api/internal/views"
)

type ProductService interface {
	Create(ctx context.Context, traceID string, req views.ProductRequest) (models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (models.Product, error)
	List(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, int, error)
	Update(ctx context.Context, traceID string, id uuid.UUID, req views.ProductRequest) (models.Product, error)
	AdjustStock(ctx context.Context, traceID string, id uuid.UUID, delta int) (models.Product, error)
	Delete(ctx context.Context, traceID string, id uuid.UUID) error
}

type ProductServiceImpl struct {
	logger *zap.Logger
	repo   repositories.ProductRepository
	audit  AuditPublisher
}

func NewProductService(logger *zap.Logger, repo repositories.ProductRepository, audit AuditPublisher) ProductService {
	return &ProductServiceImpl{logger: logger, repo: repo, audit: audit}
}

func (s *ProductServiceImpl) Create(ctx context.Context, traceID string, req views.ProductRequest) (models.Product, error) {
	now := time.Now()
	product := models.Product{
		ID:          uuid.New(),
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		Status:      req.StatusOrDefault(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// Duplicate SKUs surface as a unique-constraint violation and classify
	// to a 409 at the boundary.
	if err := s.repo.Create(ctx, product); err != nil {
		return models.Product{}, err
	}
	s.logger.Info("product created",
		zap.String(pkg.TraceId, traceID),
		zap.String("productId", product.ID.String()),
		zap.String("sku", product.SKU),
	)
	s.audit.Publish(AuditEvent{
		Action: "product.create", Entity: "product", EntityID: product.ID.String(),
		TraceID: traceID, Timestamp: now,
	})
	return product, nil
}

func (s *ProductServiceImpl) Get(ctx context.Context, id uuid.UUID) (models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProductServiceImpl) List(ctx context.Context, filter repositories.ProductFilter) ([]models.Product, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *ProductServiceImpl) Update(ctx context.Context, traceID string, id uuid.UUID, req views.ProductRequest) (models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	product.SKU = req.SKU
	product.Name = req.Name
	product.Description = req.Description
	product.PriceCents = req.PriceCents
	product.Stock = req.Stock
	product.Status = req.StatusOrDefault()
	product.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, product); err != nil {
		return models.Product{}, err
	}
	s.audit.Publish(AuditEvent{
		Action: "product.update", Entity: "product", EntityID: id.String(),
		TraceID: traceID, Timestamp: product.UpdatedAt,
	})
	return product, nil
}

func (s *ProductServiceImpl) AdjustStock(ctx context.Context, traceID string, id uuid.UUID, delta int) (models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if product.Stock+delta < 0 {
		return models.Product{}, apperrors.NewBusinessRule("stock_not_negative", "stock cannot go negative")
	}
	if product.Status == pkg.ProductStatusArchived && delta > 0 {
		return models.Product{}, apperrors.NewBusinessRule("no_restock_archived", "archived products cannot be restocked")
	}

	if err := s.repo.UpdateStock(ctx, id, delta); err != nil {
		return models.Product{}, err
	}
	product.Stock += delta
	s.audit.Publish(AuditEvent{
		Action: "product.adjust_stock", Entity: "product", EntityID: id.String(),
		TraceID: traceID, Timestamp: time.Now(),
	})
	return product, nil
}

func (s *ProductServiceImpl) Delete(ctx context.Context, traceID string, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	// Products referenced by order items fail the foreign key and classify
	// at the boundary; archiving is the supported soft path.
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Publish(AuditEvent{
		Action: "product.delete", Entity: "product", EntityID: id.String(),
		TraceID: traceID, Timestamp: time.Now(),
	})
	return nil
}
