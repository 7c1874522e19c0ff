package auth

import (
	"errors"
	"time"

	"cairn/research-portal/portal-backend/internal/profiles"
)

var (
	ErrInvalidRole       = errors.New("role must be Scientist or Funder")
	ErrSessionNotFound   = errors.New("session not found")
	ErrWalletUnavailable = errors.New("wallet returned no account")
)

// Role selects which dashboard a session sees
type Role string

const (
	RoleScientist Role = "Scientist"
	RoleFunder    Role = "Funder"
)

func (r Role) Valid() bool {
	return r == RoleScientist || r == RoleFunder
}

// Session is a connected wallet
type Session struct {
	ID        string    `json:"id"`
	Wallet    string    `json:"wallet"`
	Role      Role      `json:"role"`
	Mock      bool      `json:"mock"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ConnectRequest struct {
	Role Role `json:"role"`
}

type RoleRequest struct {
	Role Role `json:"role" binding:"required"`
}

// ConnectResult is returned to the client after a wallet connects
type ConnectResult struct {
	Token              string            `json:"token"`
	Session            *Session          `json:"session"`
	Profile            *profiles.Profile `json:"profile"`
	OnboardingRequired bool              `json:"onboarding_required"`
	Message            string            `json:"message"`
}

// Me describes the current session
type Me struct {
	Session            *Session          `json:"session"`
	Profile            *profiles.Profile `json:"profile"`
	OnboardingRequired bool              `json:"onboarding_required"`
}
