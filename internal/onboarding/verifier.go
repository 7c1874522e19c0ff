package onboarding

import (
	"context"
	"math/rand/v2"
	"time"
)

const (
	verifiedMessage = "Identity confirmed."
	failedMessage   = "Automatic verification failed. Please try again or contact support."
)

// Verifier checks a wallet owner's identity with a third party
type Verifier interface {
	Verify(ctx context.Context, wallet string) (*VerificationResult, error)
}

type mockVerifier struct {
	delay       time.Duration
	successRate float64
	roll        func() float64
}

// NewMockVerifier answers after delay and succeeds with probability successRate
func NewMockVerifier(delay time.Duration, successRate float64) Verifier {
	return &mockVerifier{delay: delay, successRate: successRate, roll: rand.Float64}
}

func (v *mockVerifier) Verify(ctx context.Context, wallet string) (*VerificationResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(v.delay):
	}
	if v.roll() < v.successRate {
		return &VerificationResult{Success: true, Message: verifiedMessage}, nil
	}
	return &VerificationResult{Success: false, Message: failedMessage}, nil
}
