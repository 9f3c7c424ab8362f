package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// TenantService handles tenant management.
type TenantService struct {
	tenants repository.TenantRepository
	logger  *zap.Logger
}

// NewTenantService builds the service.
func NewTenantService(tenants repository.TenantRepository, logger *zap.Logger) *TenantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantService{tenants: tenants, logger: logger}
}

// Create stores a new tenant.
func (s *TenantService) Create(ctx context.Context, name, address string) (*domain.Tenant, error) {
	tenant := &domain.Tenant{Name: name, Address: address}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("tenant created", zap.Int64("id", tenant.ID))
	return tenant, nil
}

// Update changes a tenant's fields.
func (s *TenantService) Update(ctx context.Context, id int64, name, address string) (*domain.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("tenant")
		}
		return nil, apperrors.NewInternalError(err)
	}

	tenant.Name = name
	tenant.Address = address
	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tenant, nil
}

// Delete removes a tenant.
func (s *TenantService) Delete(ctx context.Context, id int64) error {
	if err := s.tenants.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("tenant")
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}

// GetByID fetches one tenant.
func (s *TenantService) GetByID(ctx context.Context, id int64) (*domain.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("tenant")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return tenant, nil
}

// List fetches all tenants.
func (s *TenantService) List(ctx context.Context) ([]*domain.Tenant, error) {
	tenants, err := s.tenants.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tenants, nil
}
