package notifications

import (
	"context"
	"errors"
	"time"
)

var ErrToastNotFound = errors.New("toast not found")

// ToastType is the severity shown to the user
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastInfo    ToastType = "info"
)

// Toast is a short-lived notification addressed to one wallet
type Toast struct {
	ID        int64     `json:"id"`
	Wallet    string    `json:"-"`
	Message   string    `json:"message"`
	Type      ToastType `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// WebSocket message types
const (
	WSMessageTypeToast     = "toast"
	WSMessageTypeDismissed = "toast.dismissed"
	WSMessageTypeStatus    = "status"
	WSMessageTypePing      = "ping"
)

// WebSocketMessage is the envelope pushed over websocket connections
type WebSocketMessage struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Target    string                 `json:"target,omitempty"`
}

// Notifier delivers toasts. Delivery failures are logged, never returned,
// so a missing listener cannot fail the operation that raised the toast.
type Notifier interface {
	Notify(ctx context.Context, wallet string, kind ToastType, message string)
}

// Pusher fans a message out to every live connection of a wallet and
// reports how many received it
type Pusher interface {
	SendToUser(wallet string, message WebSocketMessage) int
}
