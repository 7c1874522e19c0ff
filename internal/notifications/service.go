package notifications

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Service records toasts and pushes them to connected clients
type Service struct {
	store  *ToastStore
	pusher Pusher
	logger *zap.Logger
	nextID atomic.Int64
}

// NewService creates a toast service. pusher may be nil when no live
// delivery is configured.
func NewService(store *ToastStore, pusher Pusher, logger *zap.Logger) *Service {
	s := &Service{store: store, pusher: pusher, logger: logger}
	s.nextID.Store(time.Now().UnixMilli())
	return s
}

// Notify implements Notifier
func (s *Service) Notify(ctx context.Context, wallet string, kind ToastType, message string) {
	s.Push(ctx, wallet, kind, message)
}

// Push stores a toast for wallet and delivers it to live connections
func (s *Service) Push(ctx context.Context, wallet string, kind ToastType, message string) Toast {
	if kind == "" {
		kind = ToastInfo
	}
	toast := &Toast{
		ID:      s.nextID.Add(1),
		Wallet:  wallet,
		Message: message,
		Type:    kind,
	}
	s.store.Add(toast)

	s.logger.Debug("Toast queued",
		zap.String("wallet", wallet),
		zap.String("type", string(kind)),
		zap.String("message", message))

	if s.pusher != nil && wallet != "" {
		s.pusher.SendToUser(wallet, WebSocketMessage{
			Type: WSMessageTypeToast,
			Data: map[string]interface{}{
				"id":         toast.ID,
				"message":    toast.Message,
				"type":       toast.Type,
				"expires_at": toast.ExpiresAt,
			},
			Timestamp: toast.CreatedAt,
		})
	}
	return *toast
}

// List returns the wallet's visible toasts
func (s *Service) List(ctx context.Context, wallet string) []Toast {
	return s.store.List(wallet)
}

// Dismiss removes a toast ahead of its expiry
func (s *Service) Dismiss(ctx context.Context, wallet string, id int64) error {
	if !s.store.Remove(wallet, id) {
		return ErrToastNotFound
	}
	if s.pusher != nil {
		s.pusher.SendToUser(wallet, WebSocketMessage{
			Type:      WSMessageTypeDismissed,
			Data:      map[string]interface{}{"id": id},
			Timestamp: time.Now(),
		})
	}
	return nil
}
