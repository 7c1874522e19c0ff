package onboarding

import (
	"errors"
	"time"
)

var (
	ErrNotVerified      = errors.New("identity has not been verified")
	ErrVerificationBusy = errors.New("verification already in progress")
	ErrInvalidWallet    = errors.New("wallet address is required")
)

// Step is where a wallet is in the onboarding flow
type Step string

const (
	StepIntro     Step = "intro"
	StepVerifying Step = "verifying"
	StepSuccess   Step = "success"
	StepError     Step = "error"
	StepCompleted Step = "completed"
)

// VerificationResult is the answer of the identity provider
type VerificationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Progress describes a wallet's onboarding state
type Progress struct {
	Wallet    string    `json:"wallet"`
	Required  bool      `json:"required"`
	Step      Step      `json:"step"`
	Message   string    `json:"message,omitempty"`
	Attempts  int       `json:"attempts"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FlagKey is the persisted marker for a verified wallet
func FlagKey(wallet string) string {
	return "cairn_verified_" + wallet
}
