package notifications

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPusher struct {
	mu       sync.Mutex
	messages []WebSocketMessage
}

func (p *recordingPusher) SendToUser(wallet string, message WebSocketMessage) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	message.Target = wallet
	p.messages = append(p.messages, message)
	return 1
}

func TestPushListAndDismiss(t *testing.T) {
	store := NewToastStore(5 * time.Second)
	defer store.Close()
	pusher := &recordingPusher{}
	svc := NewService(store, pusher, zap.NewNop())
	ctx := context.Background()

	first := svc.Push(ctx, "0xAlice", ToastSuccess, "Wallet connected: 0xAlic...")
	second := svc.Push(ctx, "0xALICE", "", "Wallet disconnected.")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, ToastInfo, second.Type)

	toasts := svc.List(ctx, "0xalice")
	require.Len(t, toasts, 2)
	assert.Equal(t, first.ID, toasts[0].ID)

	require.NoError(t, svc.Dismiss(ctx, "0xAlice", first.ID))
	assert.ErrorIs(t, svc.Dismiss(ctx, "0xAlice", first.ID), ErrToastNotFound)
	assert.Len(t, svc.List(ctx, "0xAlice"), 1)

	require.Len(t, pusher.messages, 3)
	assert.Equal(t, WSMessageTypeToast, pusher.messages[0].Type)
	assert.Equal(t, WSMessageTypeDismissed, pusher.messages[2].Type)
}

func TestToastsExpire(t *testing.T) {
	store := NewToastStore(5 * time.Second)
	defer store.Close()

	now := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	svc := NewService(store, nil, zap.NewNop())
	svc.Push(context.Background(), "0xBob", ToastError, "Failed to connect wallet. Please try again.")
	assert.Len(t, svc.List(context.Background(), "0xBob"), 1)

	now = now.Add(5 * time.Second)
	assert.Empty(t, svc.List(context.Background(), "0xBob"))

	store.removeExpired()
	assert.Equal(t, 0, store.Size())
}
