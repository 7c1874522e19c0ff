package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"cairn/research-portal/portal-backend/internal/config"
	"cairn/research-portal/portal-backend/internal/database"
	"cairn/research-portal/portal-backend/internal/lifecycle"
	"cairn/research-portal/portal-backend/internal/notifications"
	"cairn/research-portal/portal-backend/internal/profiles"
	"cairn/research-portal/portal-backend/internal/projects"
	"cairn/research-portal/portal-backend/pkg/events"
)

// logNotifier stands in for live toasts; the worker has no connected clients
type logNotifier struct {
	logger *zap.Logger
}

func (n logNotifier) Notify(ctx context.Context, wallet string, kind notifications.ToastType, message string) {
	n.logger.Info("Notification", zap.String("wallet", wallet), zap.String("type", string(kind)), zap.String("message", message))
}

// main runs the lifecycle tasks against the shared Postgres store
func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Database.Driver != "postgres" {
		logger.Fatal("Lifecycle worker requires database.driver=postgres", zap.String("driver", cfg.Database.Driver))
	}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var publisher events.Publisher = events.NewLogPublisher(logger)
	if cfg.Events.SNSTopicARN != "" {
		if p, err := events.NewSNSPublisher(ctx, cfg.Events.Region, cfg.Events.SNSTopicARN); err == nil {
			publisher = p
		} else {
			logger.Warn("SNS unavailable, logging events instead", zap.Error(err))
		}
	}

	profileService := profiles.NewService(profiles.NewGormRepository(db), logger)
	projectService := projects.NewService(projects.NewGormRepository(db), profileService, logNotifier{logger: logger}, projects.Settings{
		PoRRequirement:     cfg.Projects.PoRRequirement,
		DefaultFundingGoal: cfg.Projects.DefaultFundingGoal,
		DisputeWindow:      cfg.Projects.DisputeWindow,
		ArchiveGracePeriod: cfg.Lifecycle.ArchiveGracePeriod,
	}, logger, projects.WithPublisher(publisher))

	manager, err := lifecycle.NewManager(cfg.Lifecycle.Schedule, []lifecycle.Task{
		{Name: "finalize-reproducibilities", Run: projectService.FinalizeReproducibilities},
		{Name: "archive-expired", Run: projectService.ArchiveExpired},
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create lifecycle manager", zap.Error(err))
	}

	// catch up before waiting for the first tick
	for _, st := range manager.RunNow(ctx) {
		logger.Info("Initial lifecycle pass", zap.String("task", st.Name), zap.Int("changed", st.LastCount), zap.String("error", st.LastError))
	}

	if err := manager.Start(); err != nil {
		logger.Fatal("Failed to start lifecycle manager", zap.Error(err))
	}
	logger.Info("Lifecycle worker started", zap.String("schedule", cfg.Lifecycle.Schedule))

	<-ctx.Done()
	manager.Stop()
	logger.Info("Lifecycle worker stopped")
}
