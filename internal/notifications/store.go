package notifications

import (
	"strings"
	"sync"
	"time"
)

// ToastStore keeps each wallet's visible toasts until they expire
type ToastStore struct {
	data    map[string][]*Toast
	ttl     time.Duration
	mu      sync.RWMutex
	cleanup *time.Ticker
	done    chan struct{}
	now     func() time.Time
}

// NewToastStore creates a store whose entries expire after ttl
func NewToastStore(ttl time.Duration) *ToastStore {
	store := &ToastStore{
		data:    make(map[string][]*Toast),
		ttl:     ttl,
		cleanup: time.NewTicker(time.Second),
		done:    make(chan struct{}),
		now:     time.Now,
	}

	go store.cleanupLoop()

	return store
}

func storeKey(wallet string) string {
	return strings.ToLower(wallet)
}

// Add stamps the toast with its expiry and stores it
func (s *ToastStore) Add(toast *Toast) {
	s.mu.Lock()
	defer s.mu.Unlock()

	toast.CreatedAt = s.now()
	toast.ExpiresAt = toast.CreatedAt.Add(s.ttl)
	key := storeKey(toast.Wallet)
	s.data[key] = append(s.data[key], toast)
}

// List returns the unexpired toasts of a wallet, oldest first
func (s *ToastStore) List(wallet string) []Toast {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := []Toast{}
	for _, t := range s.data[storeKey(wallet)] {
		if now.Before(t.ExpiresAt) {
			out = append(out, *t)
		}
	}
	return out
}

// Remove drops a toast before it expires
func (s *ToastStore) Remove(wallet string, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storeKey(wallet)
	toasts := s.data[key]
	for i, t := range toasts {
		if t.ID == id {
			s.data[key] = append(toasts[:i], toasts[i+1:]...)
			if len(s.data[key]) == 0 {
				delete(s.data, key)
			}
			return true
		}
	}
	return false
}

// Size returns the number of stored toasts, expired ones included
func (s *ToastStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, toasts := range s.data {
		n += len(toasts)
	}
	return n
}

// Close stops the cleanup goroutine
func (s *ToastStore) Close() {
	s.cleanup.Stop()
	close(s.done)
}

func (s *ToastStore) cleanupLoop() {
	for {
		select {
		case <-s.cleanup.C:
			s.removeExpired()
		case <-s.done:
			return
		}
	}
}

func (s *ToastStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, toasts := range s.data {
		kept := toasts[:0]
		for _, t := range toasts {
			if now.Before(t.ExpiresAt) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(s.data, key)
		} else {
			s.data[key] = kept
		}
	}
}
