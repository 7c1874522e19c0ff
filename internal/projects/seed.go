package projects

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

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func goal(v float64) *float64 {
	return &v
}

func seedReproducibility(id, timestamp, verifier, cid, notes string, status PoRStatus) Reproducibility {
	return Reproducibility{
		ID:        id,
		Timestamp: day(timestamp),
		Verifier:  verifier,
		Notes:     notes,
		Status:    status,
		Evidence: []Output{{
			ID:          "ev-" + id,
			Type:        OutputOthers,
			Timestamp:   day(timestamp),
			Description: "Log files and recordings of the reproduction run.",
			Data:        OutputData{IPFSCID: cid, FileName: "repro-evidence-" + id + ".zip"},
		}},
	}
}

func requirements(d ResearchDomain) []string {
	return append([]string(nil), ReproducibilityTemplates[d]...)
}

// SeedProjects returns the demo project set in display order
func SeedProjects() []*Project {
	const (
		me      = profiles.MockWallet
		alice   = profiles.WalletAlice
		bob     = profiles.WalletBob
		charlie = profiles.WalletCharlie
		funder1 = profiles.WalletFunderOne
		funder2 = profiles.WalletFunderTwo
		funder3 = profiles.WalletFunderThree
	)

	return []*Project{
		{
			ID:                "proj-008",
			OwnerID:           bob,
			Title:             "Reinforcement Learning for Quadrupedal Locomotion",
			Description:       "A project exploring advanced reinforcement learning techniques to achieve stable and dynamic locomotion in simulated quadrupedal robots. Focus on energy efficiency and robustness to external perturbations.",
			Tags:              []string{"AI", "Reinforcement Learning", "Robotics", "Simulation"},
			Status:            StatusFunded,
			Domain:            DomainSimulation,
			CID:               "QmRL...Quad8",
			HypercertFraction: 0.50,
			StartDate:         day("2024-01-15"),
			EndDate:           day("2025-01-15"),
			LastOutputDate:    dayPtr("2024-07-22"),
			Reproducibilities: []Reproducibility{
				seedReproducibility("rep-10", "2024-06-30", funder1, "QmEvidence...10", "Reproduction successful. The agent achieved a stable gait within the specified training time.", PoRSuccess),
				seedReproducibility("rep-11", "2024-07-05", funder2, "QmEvidence...11", "Confirmed results. Energy efficiency metrics are within 2% of the original paper.", PoRSuccess),
				seedReproducibility("rep-12", "2024-07-15", funder3, "QmEvidence...12", "Ran the simulation with added perturbations as described. The robot maintained stability.", PoRDisputed),
				seedReproducibility("rep-13", "2024-07-22", me, "QmEvidence...13", "My own verification of the baseline experiment. Everything checks out.", PoRWaiting),
				seedReproducibility("rep-14", "2024-07-28", alice, "QmEvidence...14", "Verified. The provided environment and model files work as expected.", PoRSuccess),
			},
			FundingPool: 150000,
			ImpactScore: 98,
			Outputs: []Output{
				{ID: "out-8-1", Type: OutputCode, Timestamp: day("2024-02-10"), Description: "Core reinforcement learning model", Data: OutputData{URL: "github.com/org/rl-quadruped", OtherText: "Commit hash: a1b2c3d4"}},
				{ID: "out-8-2", Type: OutputCode, Timestamp: day("2024-03-22"), Description: "MuJoCo simulation environment files", Data: OutputData{IPFSCID: "QmSimEnv...8", FileName: "mujoco_env.xml"}},
				{ID: "out-8-3", Type: OutputDocument, Timestamp: day("2024-05-01"), Description: "Training protocol for achieving gait", Data: OutputData{OtherText: "Train with PPO for 10M timesteps..."}},
				{ID: "out-8-4", Type: OutputTools, Timestamp: day("2024-05-15"), Description: "Core technologies used in the simulation and training pipeline.", Data: OutputData{Tools: []Tool{"Python", "MuJoCo", "AWS"}}},
				{ID: "out-8-5", Type: OutputDataset, Timestamp: day("2024-06-15"), Description: "Logged states and actions during successful runs", Data: OutputData{IPFSCID: "QmLogData...8", FileName: "successful_run_logs.pkl"}},
			},
			ReproducibilityRequirements: requirements(DomainSimulation),
			Organization:                "Nexus Simulation Labs",
			ImpactAssetOwners: []ImpactAssetOwner{
				{WalletAddress: bob, Contribution: "Lead Researcher", OwnershipPercentage: 40},
				{WalletAddress: funder1, Contribution: "Early PoR Verifier", OwnershipPercentage: 5},
				{WalletAddress: funder2, Contribution: "PoR Verifier", OwnershipPercentage: 5},
				{WalletAddress: alice, Contribution: "Protocol Contributor", OwnershipPercentage: 5},
			},
		},
		{
			ID:                "proj-001",
			OwnerID:           alice,
			Title:             "Autonomous Drone Navigation in Dense Forests",
			Description:       "Development of a novel SLAM algorithm for drones operating in GPS-denied environments like dense forests, using only onboard sensor data.",
			Tags:              []string{"Drones", "SLAM", "Robotics", "Autonomous Systems"},
			Status:            StatusFunded,
			Domain:            DomainRobotics,
			CID:               "QmXyZ...A1b2C3",
			HypercertFraction: 0.75,
			StartDate:         day("2023-09-01"),
			EndDate:           day("2024-09-01"),
			LastOutputDate:    dayPtr("2024-07-20"),
			Reproducibilities: []Reproducibility{
				seedReproducibility("rep-1", "2024-07-20", "0x123...abc", "QmEvidence...1", "Followed the protocol and was able to reproduce the drone trajectory in the simulated forest.", PoRSuccess),
				seedReproducibility("rep-2", "2024-07-22", "0x456...def", "QmEvidence...2", "The SLAM algorithm works. Map accuracy is consistent with the claims.", PoRSuccess),
				seedReproducibility("rep-3", "2024-07-25", "0x789...ghi", "QmEvidence...3", "Reproduction successful. The provided dataset was sufficient for verification.", PoRSuccess),
				seedReproducibility("rep-15", "2024-07-29", me, "QmEvidence...15", "I was able to run the code and get the same output. Looks good.", PoRSuccess),
				seedReproducibility("rep-16", "2024-08-01", bob, "QmEvidence...16", "Verified the results. This is solid work.", PoRWaiting),
			},
			FundingPool: 24000,
			ImpactScore: 82,
			Outputs: []Output{
				{ID: "out-1-1", Type: OutputCode, Timestamp: day("2024-07-10"), Description: "Initial commit of navigation algorithm.", Data: OutputData{URL: "github.com/org/repo", OtherText: "Commit hash: a1b2c3d"}},
				{ID: "out-1-2", Type: OutputDataset, Timestamp: day("2024-07-15"), Description: "Forest simulation sensor data.", Data: OutputData{IPFSCID: "QmDataset...1", FileName: "forest_sensor_data.zip"}},
			},
			ReproducibilityRequirements: requirements(DomainRobotics),
			Organization:                "BioSynth Dynamics",
			ImpactAssetOwners: []ImpactAssetOwner{
				{WalletAddress: alice, Contribution: "Lead Researcher", OwnershipPercentage: 50},
				{WalletAddress: "0x123...abc", Contribution: "PoR Verifier", OwnershipPercentage: 5},
				{WalletAddress: "0x456...def", Contribution: "PoR Verifier", OwnershipPercentage: 5},
				{WalletAddress: me, Contribution: "PoR Verifier", OwnershipPercentage: 5},
			},
		},
		{
			ID:                "proj-005",
			OwnerID:           charlie,
			Title:             "Open Source 3D-Printed Robotic Hand",
			Description:       "This project aims to create a low-cost, highly dexterous robotic hand that can be produced using standard 3D printers and off-the-shelf components. All designs and software are open source.",
			Tags:              []string{"3D Printing", "Robotics", "Hardware", "Open Source"},
			Status:            StatusActive,
			Domain:            DomainHardware,
			CID:               "QmHardware...Hand5",
			HypercertFraction: 0.65,
			StartDate:         day("2024-02-01"),
			EndDate:           day("2024-12-31"),
			LastOutputDate:    dayPtr("2024-07-18"),
			Reproducibilities: []Reproducibility{
				seedReproducibility("rep-5", "2024-07-25", "0xVerifier...1", "QmRep...5a", "3D printed the parts and assembled the hand. The firmware works as described.", PoRSuccess),
				seedReproducibility("rep-6", "2024-07-28", me, "QmRep...5b", "I was able to build the hand following the instructions. The BOM was accurate.", PoRWaiting),
			},
			FundingPool: 35000,
			ImpactScore: 88,
			Outputs: []Output{
				{ID: "out-5-1", Type: OutputDocument, Timestamp: day("2024-07-01"), Description: "v1.0 Schematics released", Data: OutputData{IPFSCID: "QmHardwareSchematics...5", FileName: "schematics_v1.pdf"}},
				{ID: "out-5-2", Type: OutputCode, Timestamp: day("2024-07-18"), Description: "Firmware for microcontroller", Data: OutputData{URL: "github.com/org/robot-arm", OtherText: "Commit hash: b4a5c6d"}},
			},
			ReproducibilityRequirements: requirements(DomainHardware),
			ImpactAssetOwners: []ImpactAssetOwner{
				{WalletAddress: charlie, Contribution: "Lead Researcher", OwnershipPercentage: 100},
			},
		},
		{
			ID:                "proj-002",
			OwnerID:           bob,
			Title:             "Generative Adversarial Networks for Physics Simulation",
			Description:       "Using GANs to generate realistic physics-based simulations, potentially accelerating scientific discovery in fields like fluid dynamics and material science.",
			Tags:              []string{"GANs", "AI", "Physics", "Simulation"},
			Status:            StatusActive,
			Domain:            DomainSimulation,
			CID:               "QmAbC...d4e5F6",
			HypercertFraction: 0.4,
			StartDate:         day("2024-03-10"),
			EndDate:           day("2025-03-10"),
			LastOutputDate:    dayPtr("2024-07-05"),
			Reproducibilities: []Reproducibility{
				seedReproducibility("rep-4", "2024-07-05", funder1, "QmEvidence...4", "The GAN training protocol is clear and the model converges as expected.", PoRSuccess),
				seedReproducibility("rep-17", "2024-07-19", me, "QmEvidence...17", "Re-ran the training script, results are consistent.", PoRWaiting),
				seedReproducibility("rep-18", "2024-07-21", charlie, "QmEvidence...18", "Verified. The generated simulations are qualitatively similar to the examples.", PoRSuccess),
			},
			FundingPool: 50000,
			ImpactScore: 91,
			Outputs: []Output{
				{ID: "out-2-1", Type: OutputCode, Timestamp: day("2024-06-20"), Description: "GAN model architecture definition.", Data: OutputData{URL: "github.com/org/gan-repo", OtherText: "Commit hash: e4f5g6h"}},
				{ID: "out-2-2", Type: OutputDocument, Timestamp: day("2024-06-28"), Description: "Training protocol and hyperparameters.", Data: OutputData{OtherText: "Train for 100 epochs with batch size 32..."}},
			},
			ReproducibilityRequirements: requirements(DomainSimulation),
			ImpactAssetOwners: []ImpactAssetOwner{
				{WalletAddress: bob, Contribution: "Lead Researcher", OwnershipPercentage: 100},
			},
		},
		{
			ID:                "proj-006",
			OwnerID:           alice,
			Title:             "Swarm Robotics Behavior Analysis",
			Description:       "Analyzing emergent behaviors in large-scale robot swarms. This research explores decentralized coordination algorithms and their application in exploration and task allocation.",
			Tags:              []string{"Swarm Intelligence", "Robotics", "Multi-agent Systems"},
			Status:            StatusActive,
			Domain:            DomainRobotics,
			CID:               "QmSwarm...Robo6",
			HypercertFraction: 0.25,
			StartDate:         day("2024-01-01"),
			EndDate:           day("2024-10-01"),
			LastOutputDate:    dayPtr("2024-06-05"),
			Reproducibilities: []Reproducibility{
				seedReproducibility("rep-7", "2024-06-20", "0xVerifier...3", "QmRep...6a", "Launched the swarm simulation. The emergent patterns match the video evidence.", PoRSuccess),
			},
			FundingPool: 12000,
			ImpactScore: 75,
			Outputs: []Output{
				{ID: "out-6-1", Type: OutputDocument, Timestamp: day("2024-04-11"), Description: "Experimental setup protocol.", Data: OutputData{OtherText: "Detailed setup instructions for replication..."}},
				{ID: "out-6-2", Type: OutputDataset, Timestamp: day("2024-05-20"), Description: "Raw sensor data from trial 1-50.", Data: OutputData{IPFSCID: "QmSensorData...6", FileName: "raw_sensor_data_trials_1-50.csv"}},
				{ID: "out-6-3", Type: OutputDataset, Timestamp: day("2024-06-05"), Description: "Processed data and visualizations.", Data: OutputData{IPFSCID: "QmProcessedData...6", FileName: "processed_data.json"}},
			},
			ReproducibilityRequirements: requirements(DomainRobotics),
			ImpactAssetOwners: []ImpactAssetOwner{
				{WalletAddress: alice, Contribution: "Lead Researcher", OwnershipPercentage: 100},
			},
		},
		{
			ID:                "proj-009",
			OwnerID:           charlie,
			Title:             "New Study on Material Stress Tolerance",
			Description:       "A foundational study to determine the stress tolerance of new composite materials under extreme temperature variations. This data will be crucial for aerospace and hardware applications.",
			Tags:              []string{"Material Science", "Hardware", "Stress Analysis"},
			Status:            StatusActive,
			Domain:            DomainHardware,
			CID:               "QmMaterial...Stress9",
			StartDate:         day("2024-07-20"),
			EndDate:           day("2025-02-20"),
			LastOutputDate:    dayPtr("2024-08-01"),
			Reproducibilities: []Reproducibility{},
			FundingPool:       500,
			ImpactScore:       10,
			Outputs: []Output{
				{ID: "out-9-1", Type: OutputDocument, Timestamp: day("2024-08-01"), Description: "Initial testing protocol defined.", Data: OutputData{OtherText: "Apply stress until fracture..."}},
			},
			ReproducibilityRequirements: requirements(DomainHardware),
			ImpactAssetOwners: []ImpactAssetOwner{
				{WalletAddress: charlie, Contribution: "Lead Researcher", OwnershipPercentage: 100},
			},
		},
		{
			ID:                          "proj-003",
			OwnerID:                     me,
			Title:                       "Low-Cost, Open-Source Robotic Arm",
			Description:                 "An early-stage project to design and build a 6-axis robotic arm for less than $500, aimed at hobbyists and educational institutions.",
			Tags:                        []string{"Robotics", "Hardware", "DIY", "Education"},
			Status:                      StatusDraft,
			Domain:                      DomainHardware,
			CID:                         "QmGhI...j7k8L9",
			StartDate:                   day("2024-05-01"),
			EndDate:                     day("2025-05-01"),
			Reproducibilities:           []Reproducibility{},
			FundingGoal:                 goal(15000),
			FundingPool:                 2500,
			ImpactScore:                 65,
			Outputs:                     []Output{},
			ReproducibilityRequirements: requirements(DomainHardware),
			Organization:                "Atlas Robotics",
			AdditionalInfoURL:           "https://www.atlasrobotics.dev/research/arm",
			ImpactAssetOwners:           []ImpactAssetOwner{},
		},
		{
			ID:                          "proj-draft-001",
			OwnerID:                     me,
			Title:                       "Early-Stage Particle Simulation Framework",
			Description:                 "A new framework for simulating particle interactions in a vacuum. Currently in planning phase.",
			Tags:                        []string{"Simulation", "Physics", "Draft"},
			Status:                      StatusDraft,
			Domain:                      DomainSimulation,
			CID:                         "QmDraft...Sim1",
			StartDate:                   day("2024-08-01"),
			EndDate:                     day("2025-08-01"),
			Reproducibilities:           []Reproducibility{},
			FundingGoal:                 goal(20000),
			ImpactScore:                 5,
			Outputs:                     []Output{},
			ReproducibilityRequirements: requirements(DomainSimulation),
			ImpactAssetOwners:           []ImpactAssetOwner{},
		},
		{
			ID:                          "proj-draft-002",
			OwnerID:                     me,
			Title:                       "Concept for a Bio-Inspired Gripper",
			Description:                 "Initial concept and design sketches for a new type of robotic gripper inspired by octopus tentacles.",
			Tags:                        []string{"Robotics", "Hardware", "Biomimicry"},
			Status:                      StatusDraft,
			Domain:                      DomainHardware,
			CID:                         "QmDraft...Grip2",
			StartDate:                   day("2024-08-05"),
			EndDate:                     day("2025-08-05"),
			Reproducibilities:           []Reproducibility{},
			FundingGoal:                 goal(5000),
			ImpactScore:                 15,
			Outputs:                     []Output{},
			ReproducibilityRequirements: requirements(DomainHardware),
			ImpactAssetOwners:           []ImpactAssetOwner{},
		},
		{
			ID:                          "proj-draft-003",
			OwnerID:                     me,
			Title:                       "Modular Drone Component Research",
			Description:                 "Researching the feasibility of creating standardized, modular components for custom drone assembly.",
			Tags:                        []string{"Drones", "Hardware", "Modular Design"},
			Status:                      StatusDraft,
			Domain:                      DomainRobotics,
			CID:                         "QmDraft...Drone3",
			StartDate:                   day("2024-07-28"),
			EndDate:                     day("2025-07-28"),
			Reproducibilities:           []Reproducibility{},
			FundingGoal:                 goal(25000),
			FundingPool:                 100,
			ImpactScore:                 10,
			Outputs:                     []Output{},
			ReproducibilityRequirements: requirements(DomainRobotics),
			ImpactAssetOwners:           []ImpactAssetOwner{},
		},
		{
			ID:                "proj-004",
			OwnerID:           me,
			Title:             "My Other Project With Outputs",
			Description:       "A test project to demonstrate the output recording functionality on the CAIRN platform.",
			Tags:              []string{"Testing", "Platform"},
			Status:            StatusActive,
			Domain:            DomainRobotics,
			CID:               "QmNew...proj4",
			HypercertFraction: 0.1,
			StartDate:         day("2024-07-01"),
			EndDate:           day("2024-09-01"),
			LastOutputDate:    dayPtr("2024-08-01"),
			Reproducibilities: []Reproducibility{},
			FundingPool:       1000,
			ImpactScore:       70,
			Outputs: []Output{
				{ID: "out-4-1", Type: OutputCode, Timestamp: day("2024-07-28"), Description: "Added sensor fusion logic", Data: OutputData{OtherText: "Commit hash: f4b3a2c1"}},
				{ID: "out-4-2", Type: OutputLog, Timestamp: day("2024-07-30"), Description: "Logs from a 2-hour test run in simulation.", Data: OutputData{FileName: "sim_run_log.txt"}},
				{ID: "out-4-3", Type: OutputTools, Timestamp: day("2024-08-01"), Description: "Core technologies for this stage.", Data: OutputData{Tools: []Tool{"Python", "ROS"}}},
			},
			ReproducibilityRequirements: requirements(DomainRobotics),
			ImpactAssetOwners: []ImpactAssetOwner{
				{WalletAddress: me, Contribution: "Lead Researcher", OwnershipPercentage: 100},
			},
		},
		{
			ID:                "proj-010",
			OwnerID:           me,
			Title:             "Embodied AI Agent for Warehouse Logistics",
			Description:       "Developing a physical AI agent capable of navigating complex warehouse environments, identifying packages, and performing sorting tasks. The project integrates computer vision with robotic manipulation.",
			Tags:              []string{"Embodied AI", "Logistics", "Robotics", "Computer Vision"},
			Status:            StatusFunded,
			Domain:            DomainRobotics,
			CID:               "QmWarehouseAI...10",
			HypercertFraction: 0.85,
			StartDate:         day("2024-02-15"),
			EndDate:           day("2025-02-15"),
			LastOutputDate:    dayPtr("2024-06-01"),
			Reproducibilities: []Reproducibility{
				seedReproducibility("rep-20", "2024-06-15", funder1, "QmEvidence...20", "Successfully ran the warehouse simulation. The agent sorts packages with 98% accuracy.", PoRSuccess),
				seedReproducibility("rep-21", "2024-06-20", funder2, "QmEvidence...21", "Verified pathfinding on the provided layouts. No collisions observed.", PoRWaiting),
			},
			FundingPool: 85000,
			ImpactScore: 92,
			Outputs: []Output{
				{ID: "out-10-1", Type: OutputDocument, Timestamp: day("2024-03-01"), Description: "System Architecture and Design Principles", Data: OutputData{URL: "arxiv.org/abs/2403.xxxx"}},
				{ID: "out-10-2", Type: OutputCode, Timestamp: day("2024-04-15"), Description: "Pathfinding and obstacle avoidance module", Data: OutputData{URL: "github.com/my-org/warehouse-ai", OtherText: "Commit hash: 9a8b7c6d"}},
				{ID: "out-10-3", Type: OutputDataset, Timestamp: day("2024-05-20"), Description: "Simulated warehouse layouts and item distributions", Data: OutputData{IPFSCID: "QmWrhsLayout...10", FileName: "warehouse-layouts.zip"}},
				{ID: "out-10-4", Type: OutputTools, Timestamp: day("2024-06-01"), Description: "Technologies used.", Data: OutputData{Tools: []Tool{"Python", "ROS", "AWS", "BitRobot"}}},
			},
			ReproducibilityRequirements: requirements(DomainRobotics),
			Organization:                "My Personal Research",
			ImpactAssetOwners: []ImpactAssetOwner{
				{WalletAddress: me, Contribution: "Lead Researcher", OwnershipPercentage: 60},
				{WalletAddress: funder1, Contribution: "PoR Verifier", OwnershipPercentage: 10},
				{WalletAddress: funder2, Contribution: "External Service Provider", OwnershipPercentage: 15},
			},
		},
		{
			ID:                "proj-007",
			OwnerID:           me,
			Title:             "Legacy Project: Fluid Dynamics Simulation",
			Description:       "An archived project focusing on simulating turbulent flows in complex geometries. The results were published in a top-tier journal.",
			Tags:              []string{"Fluid Dynamics", "Simulation", "CFD", "Archived"},
			Status:            StatusArchived,
			Domain:            DomainSimulation,
			CID:               "QmFluid...Sim7",
			HypercertFraction: 0.95,
			StartDate:         day("2022-01-01"),
			EndDate:           day("2023-01-01"),
			LastOutputDate:    dayPtr("2023-11-15"),
			Reproducibilities: []Reproducibility{
				seedReproducibility("rep-8", "2023-12-01", "0xVerifier...4", "QmRep...7a", "Archived project reproduction. CFD solver setup confirmed.", PoRSuccess),
				seedReproducibility("rep-9", "2023-12-10", "0xVerifier...5", "QmRep...7b", "Results match published data within a reasonable margin of error.", PoRSuccess),
			},
			FundingPool: 75000,
			ImpactScore: 95,
			Outputs: []Output{
				{ID: "out-7-1", Type: OutputCode, Timestamp: day("2023-11-15"), Description: "Initial simulation environment setup", Data: OutputData{OtherText: "Commit hash: c1d2e3f4"}},
			},
			ReproducibilityRequirements: requirements(DomainSimulation),
			ImpactAssetOwners:           []ImpactAssetOwner{},
		},
	}
}
