package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cairn/research-portal/portal-backend/internal/auth"
	"cairn/research-portal/portal-backend/internal/config"
	"cairn/research-portal/portal-backend/internal/funding"
	"cairn/research-portal/portal-backend/internal/lifecycle"
	"cairn/research-portal/portal-backend/internal/notifications"
	"cairn/research-portal/portal-backend/internal/notifications/websocket"
	"cairn/research-portal/portal-backend/internal/onboarding"
	"cairn/research-portal/portal-backend/internal/profiles"
	"cairn/research-portal/portal-backend/internal/projects"
	"cairn/research-portal/portal-backend/pkg/pdf"
	"cairn/research-portal/portal-backend/pkg/security"
	"cairn/research-portal/portal-backend/pkg/storage"
)

func newLogger(level string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	ctx := context.Background()

	repos, err := openRepositories(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer repos.Close()

	// Notifications
	toasts := notifications.NewToastStore(cfg.Notifications.ToastTTL)
	defer toasts.Close()
	wsManager := websocket.NewManager(nil, logger)
	defer wsManager.Close()
	notificationService := notifications.NewService(toasts, wsManager, logger)
	notificationHandler := notifications.NewHandler(notificationService, wsManager, logger)

	// Profiles
	profileService := profiles.NewService(repos.profiles, logger)
	profileHandler := profiles.NewHandler(profileService, logger)

	// Projects
	publisher := newPublisher(ctx, cfg.Events, logger)
	projectService := projects.NewService(repos.projects, profileService, notificationService, projects.Settings{
		PoRRequirement:     cfg.Projects.PoRRequirement,
		DefaultFundingGoal: cfg.Projects.DefaultFundingGoal,
		DisputeWindow:      cfg.Projects.DisputeWindow,
		ArchiveGracePeriod: cfg.Lifecycle.ArchiveGracePeriod,
	}, logger,
		projects.WithPublisher(publisher),
		projects.WithIndex(newSearchIndex(cfg.Search, logger)),
	)

	ipfs := storage.NewIPFSClient()
	creations := projects.NewCreationWorkflow(projectService, ipfs, projects.CreationSettings{
		StepDelays:  cfg.Creation.StepDelays,
		FailureRate: cfg.Creation.FailureRate,
		Retention:   cfg.Creation.Retention,
	}, logger)
	defer creations.Close()

	uploads := projects.NewUploads(projectService, newObjectStore(ctx, cfg.Storage, logger), ipfs, cfg.Storage.Bucket, logger)
	certificates := projects.NewCertificates(projectService, pdf.NewGenerator())
	projectHandler := projects.NewHandler(projectService, creations, certificates, uploads, logger)

	// Funding
	fundingService := funding.NewService(repos.funding, projectService, notificationService, logger,
		funding.WithPublisher(publisher))
	fundingHandler := funding.NewHandler(fundingService, logger)

	if cfg.Database.Seed {
		seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := profileService.Seed(seedCtx, profiles.SeedProfiles()); err != nil {
			logger.Fatal("Failed to seed profiles", zap.Error(err))
		}
		if err := projectService.Seed(seedCtx, projects.SeedProjects()); err != nil {
			logger.Fatal("Failed to seed projects", zap.Error(err))
		}
		if err := fundingService.Seed(seedCtx, funding.SeedEvents()); err != nil {
			logger.Fatal("Failed to seed funding history", zap.Error(err))
		}
		cancel()
		logger.Info("Demo data seeded")
	}

	// Onboarding
	flags, mongoClient := newFlagStore(ctx, cfg.Onboarding, logger)
	if mongoClient != nil {
		defer mongoClient.Disconnect(context.Background())
	}
	verifier := onboarding.NewMockVerifier(cfg.Onboarding.VerificationDelay, cfg.Onboarding.SuccessRate)
	onboardingService := onboarding.NewService(verifier, flags, profileService, notificationService, logger)
	onboardingHandler := onboarding.NewHandler(onboardingService, logger)

	// Wallet sessions
	authService := auth.NewService(
		auth.NewMemorySessionStore(),
		auth.NewWalletProvider(cfg.Wallet.RPCURL, cfg.Wallet.MockAccount, cfg.Wallet.Timeout),
		profileService,
		onboardingService,
		security.NewTokenSigner(cfg.Security.JWTSecret, cfg.Security.JWTIssuer),
		notificationService,
		cfg.Security.SessionTTL,
		logger,
	)
	authHandler := auth.NewHandler(authService, logger)

	// Lifecycle
	var lifecycleHandler *lifecycle.Handler
	if cfg.Lifecycle.Enabled {
		manager, err := lifecycle.NewManager(cfg.Lifecycle.Schedule, []lifecycle.Task{
			{Name: "finalize-reproducibilities", Run: projectService.FinalizeReproducibilities},
			{Name: "archive-expired", Run: projectService.ArchiveExpired},
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create lifecycle manager", zap.Error(err))
		}
		if err := manager.Start(); err != nil {
			logger.Fatal("Failed to start lifecycle manager", zap.Error(err))
		}
		defer manager.Stop()
		lifecycleHandler = lifecycle.NewHandler(manager, logger)
	}

	// Setup Router
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), cors())

	api := router.Group("/api/v1", authService.Middleware())
	{
		authHandler.RegisterRoutes(api)
		onboardingHandler.RegisterRoutes(api)
		profileHandler.RegisterRoutes(api)
		projectHandler.RegisterRoutes(api)
		fundingHandler.RegisterRoutes(api)
		notificationHandler.RegisterRoutes(api)
		if lifecycleHandler != nil {
			lifecycleHandler.RegisterRoutes(api)
		}
	}
	projectHandler.RegisterFileRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"timestamp":   time.Now(),
			"storage":     cfg.Database.Driver,
			"connections": wsManager.GetConnectionCount(),
		})
	})

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
