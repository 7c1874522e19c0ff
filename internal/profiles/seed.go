package profiles

// Wallets used throughout the demo data set
const (
	MockWallet        = "0x1A2B...C3D4"
	WalletAlice       = "0xAlice...E5F6"
	WalletBob         = "0xBob...A7B8"
	WalletCharlie     = "0xCharlie...C9D0"
	WalletFunderOne   = "0xabc...123"
	WalletFunderTwo   = "0xdef...456"
	WalletFunderThree = "0xghi...789"
)

// SeedProfiles returns the demo user set
func SeedProfiles() []Profile {
	return []Profile{
		{WalletAddress: MockWallet, Name: "Dr. Pat Smith (You)", PoRContributedCount: 2},
		{WalletAddress: WalletAlice, Name: "Dr. Alice", PoRContributedCount: 5, IsVerified: true},
		{WalletAddress: WalletBob, Name: "Dr. Bob", PoRContributedCount: 8, IsVerified: true},
		{WalletAddress: WalletCharlie, Name: "Dr. Charlie", PoRContributedCount: 2},
		{WalletAddress: WalletFunderOne, Name: "Verifier Alpha", PoRContributedCount: 12, IsVerified: true},
		{WalletAddress: WalletFunderTwo, Name: "Verifier Beta", PoRContributedCount: 7},
		{WalletAddress: WalletFunderThree, Name: "Verifier Gamma", PoRContributedCount: 3, IsVerified: true},
		{WalletAddress: "0x123...abc", Name: "Dr. Eve", PoRContributedCount: 15, IsVerified: true},
		{WalletAddress: "0x456...def", Name: "Dr. Frank", PoRContributedCount: 1, IsVerified: true},
		{WalletAddress: "0x789...ghi", Name: "Dr. Grace", PoRContributedCount: 9},
		{WalletAddress: "0xVerifier...1", Name: "Heidi", PoRContributedCount: 4, IsVerified: true},
		{WalletAddress: "0xVerifier...3", Name: "Ivan", PoRContributedCount: 6, IsVerified: true},
		{WalletAddress: "0xVerifier...4", Name: "Judy", PoRContributedCount: 11, IsVerified: true},
		{WalletAddress: "0xVerifier...5", Name: "Mallory", PoRContributedCount: 13},
	}
}
