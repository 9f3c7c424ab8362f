package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// UserService handles admin-driven user management.
type UserService struct {
	users      repository.UserRepository
	tenants    repository.TenantRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// NewUserService builds the service.
func NewUserService(cfg config.AuthConfig, users repository.UserRepository, tenants repository.TenantRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      users,
		tenants:    tenants,
		dispatcher: dispatcher,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
	}
}

// CreateInput carries fields for an admin-created account.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      domain.Role
	TenantID  *int64
}

// Create registers an account with an explicit role. A tenant reference is
// validated for existence only when present.
func (s *UserService) Create(ctx context.Context, input CreateInput) (*domain.User, error) {
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError(apperrors.FieldError{Path: "role", Message: "unknown role"})
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewDuplicateEmail()
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}

	if input.TenantID != nil {
		if _, err := s.tenants.GetByID(ctx, *input.TenantID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError(apperrors.FieldError{Path: "tenantId", Message: "tenant does not exist"})
			}
			return nil, apperrors.NewInternalError(err)
		}
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		TenantID:     input.TenantID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserCreated,
			UserID:    user.ID,
			Timestamp: time.Now(),
			Payload: events.UserCreatedPayload{
				Email:    user.Email,
				Role:     user.Role,
				TenantID: user.TenantID,
			},
		})
	}
	s.logger.Info("user created", zap.Int64("id", user.ID), zap.String("role", string(user.Role)))

	return user, nil
}

// UpdateInput carries mutable profile fields. Email is never updated.
type UpdateInput struct {
	FirstName string
	LastName  string
	Role      domain.Role
	TenantID  *int64
}

// Update changes profile fields and role of an existing account.
func (s *UserService) Update(ctx context.Context, id int64, input UpdateInput) (*domain.User, error) {
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError(apperrors.FieldError{Path: "role", Message: "unknown role"})
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, apperrors.NewInternalError(err)
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Role = input.Role
	user.TenantID = input.TenantID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// Delete removes an account; refresh records cascade with it.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user")
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}

// GetByID fetches one account.
func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// List fetches all accounts.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}
