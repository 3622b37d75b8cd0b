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

type UserService interface {
	Create(ctx context.Context, traceID string, req views.UserCreateRequest) (models.User, error)
	Get(ctx context.Context, id uuid.UUID) (models.User, error)
	List(ctx context.Context, filter repositories.UserFilter) ([]models.User, int, error)
	Update(ctx context.Context, traceID string, id uuid.UUID, req views.UserUpdateRequest) (models.User, error)
	Ban(ctx context.Context, traceID string, id uuid.UUID) (models.User, error)
	Unban(ctx context.Context, traceID string, id uuid.UUID) (models.User, error)
}

type UserServiceImpl struct {
	logger *zap.Logger
	repo   repositories.UserRepository
	audit  AuditPublisher
}

func NewUserService(logger *zap.Logger, repo repositories.UserRepository, audit AuditPublisher) UserService {
	return &UserServiceImpl{logger: logger, repo: repo, audit: audit}
}

func (s *UserServiceImpl) Create(ctx context.Context, traceID string, req views.UserCreateRequest) (models.User, error) {
	now := time.Now()
	user := models.User{
		ID:        uuid.New(),
		Email:     req.Email,
		Name:      req.Name,
		Role:      pkg.UserRole(req.Role),
		Status:    pkg.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return models.User{}, err
	}
	s.logger.Info("user created",
		zap.String(pkg.TraceId, traceID),
		zap.String("userId", user.ID.String()),
	)
	s.audit.Publish(AuditEvent{
		Action: "user.create", Entity: "user", EntityID: user.ID.String(),
		TraceID: traceID, Timestamp: now,
	})
	return user, nil
}

func (s *UserServiceImpl) Get(ctx context.Context, id uuid.UUID) (models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserServiceImpl) List(ctx context.Context, filter repositories.UserFilter) ([]models.User, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *UserServiceImpl) Update(ctx context.Context, traceID string, id uuid.UUID, req views.UserUpdateRequest) (models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Role != "" {
		user.Role = pkg.UserRole(req.Role)
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		return models.User{}, err
	}
	s.audit.Publish(AuditEvent{
		Action: "user.update", Entity: "user", EntityID: id.String(),
		TraceID: traceID, Timestamp: user.UpdatedAt,
	})
	return user, nil
}

func (s *UserServiceImpl) Ban(ctx context.Context, traceID string, id uuid.UUID) (models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if user.Role == pkg.UserRoleAdmin {
		return models.User{}, apperrors.NewBusinessRule("ban_admin_forbidden", "admin accounts cannot be banned")
	}
	if user.Status == pkg.UserStatusBanned {
		return user, nil // already banned, idempotent
	}

	if err := s.repo.UpdateStatus(ctx, id, pkg.UserStatusBanned); err != nil {
		return models.User{}, err
	}
	user.Status = pkg.UserStatusBanned
	s.logger.Info("user banned",
		zap.String(pkg.TraceId, traceID),
		zap.String("userId", id.String()),
	)
	s.audit.Publish(AuditEvent{
		Action: "user.ban", Entity: "user", EntityID: id.String(),
		TraceID: traceID, Timestamp: time.Now(),
	})
	return user, nil
}

func (s *UserServiceImpl) Unban(ctx context.Context, traceID string, id uuid.UUID) (models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if user.Status == pkg.UserStatusActive {
		return user, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, pkg.UserStatusActive); err != nil {
		return models.User{}, err
	}
	user.Status = pkg.UserStatusActive
	s.audit.Publish(AuditEvent{
		Action: "user.unban", Entity: "user", EntityID: id.String(),
		TraceID: traceID, Timestamp: time.Now(),
	})
	return user, nil
}
