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

// LoginLimiter throttles login attempts per key. A nil limiter allows all.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Session bundles the token pair issued for a user.
type Session struct {
	UserID           int64
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// RegisterInput carries registration fields. Role defaults to customer.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      domain.Role
	TenantID  *int64
}

// AuthService coordinates registration, login, refresh and logout flows.
// It owns no state beyond its collaborators; every token it returns is
// backed by exactly one refresh record.
type AuthService struct {
	users         repository.UserRepository
	refreshTokens repository.RefreshTokenRepository
	codec         *auth.TokenCodec
	limiter       LoginLimiter
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	bcryptCost    int
	refreshTTL    time.Duration
}

// AuthDependencies encapsulates collaborator requirements for the auth service.
type AuthDependencies struct {
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	Codec            *auth.TokenCodec
	Limiter          LoginLimiter
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:         deps.UserRepo,
		refreshTokens: deps.RefreshTokenRepo,
		codec:         deps.Codec,
		limiter:       deps.Limiter,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		bcryptCost:    cfg.BcryptCost,
		refreshTTL:    cfg.RefreshTokenTTL(),
	}
}

// Register creates a new account and issues a session for it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewDuplicateEmail()
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}

	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError(apperrors.FieldError{Path: "role", Message: "unknown role"})
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
		Role:         role,
		TenantID:     input.TenantID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Email: user.Email,
		Role:  user.Role,
	})
	s.logger.Info("user registered", zap.Int64("id", user.ID))

	return s.issueSession(ctx, user)
}

// Login verifies credentials and issues a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, email)
		if err != nil {
			s.logger.Warn("login limiter unavailable", zap.Error(err))
		} else if !allowed {
			return nil, apperrors.NewRateLimited("too many login attempts")
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, apperrors.NewInvalidCredentials()
	}

	return s.issueSession(ctx, user)
}

// Refresh rotates the presented refresh session: the old record is replaced
// by a new one in a single transaction, and both tokens are re-issued. A
// record that was already rotated away rejects the refresh.
func (s *AuthService) Refresh(ctx context.Context, claims *auth.Claims) (*Session, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}
	oldRecordID, err := claims.RefreshRecordID()
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("user no longer exists")
		}
		return nil, apperrors.NewInternalError(err)
	}

	accessToken, accessExp, err := s.codec.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	record, err := s.refreshTokens.Rotate(ctx, oldRecordID, user.ID, time.Now().Add(s.refreshTTL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("refresh token revoked")
		}
		return nil, apperrors.NewInternalError(err)
	}

	refreshToken, refreshExp, err := s.codec.GenerateRefreshToken(user.ID, user.Role, record.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.EventSessionRotated, user.ID, events.SessionRotatedPayload{
		OldRecordID: oldRecordID,
		NewRecordID: record.ID,
	})

	return &Session{
		UserID:           user.ID,
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Logout revokes the refresh record named by the presented token. Deleting
// an already-gone record still succeeds.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	recordID, err := claims.RefreshRecordID()
	if err != nil {
		return apperrors.NewUnauthorized("invalid refresh token")
	}

	if err := s.refreshTokens.DeleteByID(ctx, recordID); err != nil {
		// best-effort: the session is treated as ended either way
		s.logger.Warn("refresh record delete failed", zap.Int64("id", recordID), zap.Error(err))
		return nil
	}

	userID, _ := claims.UserID()
	s.publish(ctx, events.EventSessionRevoked, userID, events.SessionRevokedPayload{RecordID: recordID})
	return nil
}

// Self returns the account behind an authenticated access token.
func (s *AuthService) Self(ctx context.Context, claims *auth.Claims) (*domain.User, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid access token")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("user no longer exists")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// issueSession mints the access token, persists a refresh record, then
// encodes the record id into the refresh token. If the record cannot be
// persisted no tokens reach the caller.
func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*Session, error) {
	accessToken, accessExp, err := s.codec.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	record, err := s.refreshTokens.Create(ctx, user.ID, time.Now().Add(s.refreshTTL))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	refreshToken, refreshExp, err := s.codec.GenerateRefreshToken(user.ID, user.Role, record.ID)
	if err != nil {
		// keep record and token paired: drop the record the token never carried
		if delErr := s.refreshTokens.DeleteByID(ctx, record.ID); delErr != nil {
			s.logger.Warn("orphaned refresh record cleanup failed", zap.Int64("id", record.ID), zap.Error(delErr))
		}
		return nil, apperrors.NewInternalError(err)
	}

	return &Session{
		UserID:           user.ID,
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID int64, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
