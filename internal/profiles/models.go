package profiles

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("profile not found")
	ErrInvalidWallet = errors.New("wallet address is required")

	ErrInsufficientContributions = errors.New("not enough PoR contributions")
)

// Profile is the public identity attached to a wallet
type Profile struct {
	WalletAddress       string    `gorm:"primaryKey" json:"wallet_address"`
	WalletKey           string    `gorm:"uniqueIndex;not null" json:"-"`
	Name                string    `gorm:"not null" json:"name"`
	PoRContributedCount int       `gorm:"not null;default:0" json:"por_contributed_count"`
	IsVerified          bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "user_profiles"
}
