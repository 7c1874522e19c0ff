package funding

import (
	"time"

	"cairn/research-portal/portal-backend/internal/profiles"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedEvents returns the demo funding history in display order
func SeedEvents() []FundingEvent {
	const (
		drone     = "Autonomous Drone Navigation in Dense Forests"
		warehouse = "Embodied AI Agent for Warehouse Logistics"
	)
	return []FundingEvent{
		{ID: "fh-1", ProjectID: "proj-001", ProjectTitle: drone, Amount: 5000, Timestamp: day("2024-08-01"), FunderWallet: profiles.WalletFunderOne, TxHash: "0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b"},
		{ID: "fh-2", ProjectID: "proj-008", ProjectTitle: "Reinforcement Learning for Quadrupedal Locomotion", Amount: 10000, Timestamp: day("2024-07-28"), FunderWallet: profiles.WalletFunderTwo, TxHash: "0x2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c"},
		{ID: "fh-3", ProjectID: "proj-005", ProjectTitle: "Open Source 3D-Printed Robotic Hand", Amount: 2500, Timestamp: day("2024-07-22"), FunderWallet: profiles.WalletFunderThree, TxHash: "0x3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d"},
		{ID: "fh-4", ProjectID: "proj-004", ProjectTitle: "My Other Project With Outputs", Amount: 1000, Timestamp: day("2024-07-10"), FunderWallet: profiles.WalletFunderOne, TxHash: "0x4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e"},
		{ID: "fh-5", ProjectID: "proj-010", ProjectTitle: warehouse, Amount: 50000, Timestamp: day("2024-03-20"), FunderWallet: profiles.WalletFunderTwo, TxHash: "0x5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f"},
		{ID: "fh-6", ProjectID: "proj-010", ProjectTitle: warehouse, Amount: 35000, Timestamp: day("2024-04-05"), FunderWallet: profiles.WalletFunderThree, TxHash: "0x6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f7a"},
		{ID: "fh-7", ProjectID: "proj-007", ProjectTitle: "Legacy Project: Fluid Dynamics Simulation", Amount: 75000, Timestamp: day("2022-06-15"), FunderWallet: profiles.WalletFunderOne, TxHash: "0x7a8b9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b"},
		{ID: "fh-8", ProjectID: "proj-001", ProjectTitle: drone, Amount: 10000, Timestamp: day("2024-08-02"), FunderWallet: profiles.MockWallet, TxHash: "0x8b9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9"},
		{ID: "fh-9", ProjectID: "proj-002", ProjectTitle: "Generative Adversarial Networks for Physics Simulation", Amount: 20000, Timestamp: day("2024-08-03"), FunderWallet: profiles.MockWallet, TxHash: "0x9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0"},
	}
}
