package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/apperrors"
	"github.com/meridianlabs/backoffice/pkg/database"
	"github.com/meridianlabs/backoffice/pkg/models"
	"github.com/meridianlabs/backoffice/pkg/repositories"
)

// validTransitions is the closed order state machine. Absent entries mean the
// transition is rejected as a business-rule violation.
var validTransitions = map[pkg.OrderStatus][]pkg.OrderStatus{
	pkg.OrderStatusPending: {pkg.OrderStatusPaid, pkg.OrderStatusCancelled},
	pkg.OrderStatusPaid:    {pkg.OrderStatusShipped, pkg.OrderStatusCancelled},
	pkg.OrderStatusShipped: {pkg.OrderStatusDelivered},
}

type OrderService interface {
	Get(ctx context.Context, id uuid.UUID) (models.Order, error)
	List(ctx context.Context, filter repositories.OrderFilter) ([]models.Order, int, error)
	Transition(ctx context.Context, traceID string, id uuid.UUID, next pkg.OrderStatus) (models.Order, error)
}

type OrderServiceImpl struct {
	logger *zap.Logger
	db     *database.DB
	repo   repositories.OrderRepository
	audit  AuditPublisher
}

func NewOrderService(logger *zap.Logger, db *database.DB, repo repositories.OrderRepository, audit AuditPublisher) OrderService {
	return &OrderServiceImpl{logger: logger, db: db, repo: repo, audit: audit}
}

func (s *OrderServiceImpl) Get(ctx context.Context, id uuid.UUID) (models.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *OrderServiceImpl) List(ctx context.Context, filter repositories.OrderFilter) ([]models.Order, int, error) {
	return s.repo.List(ctx, filter)
}

// Transition moves an order to the next status, enforcing the state machine
// under a row lock so interleaved admin edits cannot skip states.
func (s *OrderServiceImpl) Transition(ctx context.Context, traceID string, id uuid.UUID, next pkg.OrderStatus) (models.Order, error) {
	var order models.Order
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		order, err = s.repo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !transitionAllowed(order.Status, next) {
			return apperrors.NewBusinessRule(
				"order_status_transition",
				fmt.Sprintf("order cannot move from %s to %s", order.Status, next),
			)
		}
		return s.repo.UpdateStatus(ctx, tx, id, next)
	})
	if err != nil {
		return models.Order{}, err
	}

	order.Status = next
	order.UpdatedAt = time.Now()
	s.logger.Info("order status changed",
		zap.String(pkg.TraceId, traceID),
		zap.String("orderId", id.String()),
		zap.String("status", string(next)),
	)
	s.audit.Publish(AuditEvent{
		Action: "order.transition", Entity: "order", EntityID: id.String(),
		TraceID: traceID, Timestamp: order.UpdatedAt,
	})
	return order, nil
}

func transitionAllowed(from, to pkg.OrderStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
