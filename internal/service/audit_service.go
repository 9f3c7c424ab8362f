package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/events"
)

// AuditService writes structured audit entries for auth domain events.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handleUserRegistered)
	a.dispatcher.Subscribe(events.EventUserCreated, a.handleUserCreated)
	a.dispatcher.Subscribe(events.EventSessionRotated, a.handleSessionRotated)
	a.dispatcher.Subscribe(events.EventSessionRevoked, a.handleSessionRevoked)
}

func (a *AuditService) handleUserRegistered(_ context.Context, event events.Event) error {
	a.logger.Info("UserRegistered", zap.Int64("user_id", event.UserID), zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleUserCreated(_ context.Context, event events.Event) error {
	a.logger.Info("UserCreated", zap.Int64("user_id", event.UserID), zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleSessionRotated(_ context.Context, event events.Event) error {
	a.logger.Info("SessionRotated", zap.Int64("user_id", event.UserID), zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleSessionRevoked(_ context.Context, event events.Event) error {
	a.logger.Info("SessionRevoked", zap.Int64("user_id", event.UserID), zap.Any("payload", event.Payload))
	return nil
}
