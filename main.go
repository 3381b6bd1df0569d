package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"visapoint/config"
	"visapoint/cron"
	"visapoint/database"
	"visapoint/database/repository"
	"visapoint/database/repository/memory"
	"visapoint/handlers"
	"visapoint/routes"
	"visapoint/services/admin"
	"visapoint/services/application"
	"visapoint/services/catalog"
	"visapoint/services/identity"
	"visapoint/services/notification"
	"visapoint/services/payment"
	"visapoint/services/session"
	"visapoint/services/storage"
	"visapoint/services/tasks"
	"visapoint/utils"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	if cfg.JWTSecret == "" {
		logger.Fatal("main: JWT_SECRET is required")
	}
	inMemory := strings.EqualFold(cfg.Store, "memory")

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Records.
	var store *repository.Store
	if inMemory {
		logger.Warn("main: using in-memory store; data is lost on restart")
		store = memory.NewStore()
	} else {
		if err := database.InitDB(rootCtx, cfg.DatabaseURL); err != nil {
			logger.Fatal("main: mongo unavailable", zap.Error(err))
		}
		store = repository.NewMongoStore()
	}

	// Sessions, pending payments and the token denylist.
	var (
		sessions session.Denylist
		wizards  application.SessionStore
		pending  application.PendingStore
	)
	if inMemory {
		mem := application.NewMemoryStore()
		sessions, wizards, pending = session.NewMemoryDenylist(), mem, mem
	} else {
		utils.InitRedis()
		sessions = session.NewRedisDenylist(utils.GetAuthCacheClient())
		wizards = application.NewRedisSessionStore(utils.GetSessionCacheClient(), cfg.WizardSessionTTL)
		pending = application.NewRedisPendingStore(utils.GetSessionCacheClient(), cfg.PendingPaymentTTL)
	}
	utils.StartHealthMonitor(rootCtx, utils.RedisClients(), database.MongoClient)

	// Object storage degrades to local previews when Cloudinary is missing.
	var objects storage.ObjectStore = storage.UnavailableStore{}
	if cld, err := utils.NewCloudinary(cfg); err != nil {
		logger.Warn("main: cloudinary unavailable, uploads will stay local", zap.Error(err))
	} else {
		objects = storage.NewCloudinaryStore(cld)
	}
	uploads := storage.NewAdapter(objects, cfg.UploadFolder, cfg.PreviewLimitBytes)

	gateway, err := payment.NewGateway(rootCtx, cfg)
	if err != nil {
		logger.Fatal("main: failed to initialize payment gateway", zap.Error(err))
	}

	// Notifications go through the asynq queue; the in-memory mode sends inline.
	fcm, err := utils.NewMessagingClient(rootCtx, cfg)
	if err != nil {
		logger.Warn("main: firebase unavailable, team push disabled", zap.Error(err))
	}
	dispatcher := notification.NewDispatcher(
		notification.NewFunctionsClient(cfg.FunctionsURL, cfg.FunctionsToken),
		notification.NewTopicPusher(fcm, cfg.TeamTopic),
		cfg.TeamEmail,
	)
	var (
		notifier    notification.Notifier = dispatcher
		queueClient *asynq.Client
		worker      *asynq.Server
	)
	if !inMemory {
		queueClient = asynq.NewClient(cron.QueueRedisOpt())
		notifier = notification.NewQueue(queueClient, tasks.Options{
			Queue:    cfg.NotificationQueue,
			MaxRetry: cfg.NotificationMaxRetry,
			Timeout:  time.Minute,
		})
		worker = cron.InitNotificationWorker(dispatcher)
	}

	catalogSvc := catalog.NewService(store.Services, cfg.Currency)
	identityProvider := identity.NewLocalProvider(store.Users)
	orchestrator := application.New(application.Deps{
		Store:    store,
		Catalog:  catalogSvc,
		Identity: identity.NewResolver(identityProvider),
		Uploads:  uploads,
		Gateway:  gateway,
		Notifier: notifier,
		Sessions: wizards,
		Pending:  pending,
	}, application.Options{
		Currency:     cfg.Currency,
		APIBaseURL:   cfg.APIBaseURL,
		PollInterval: cfg.PaymentPollInterval,
		PollTimeout:  cfg.PaymentPollTimeout,
	})

	reconciler, err := cron.StartReconcileCron(cfg.ReconcileSchedule, orchestrator)
	if err != nil {
		logger.Fatal("main: invalid reconcile schedule", zap.String("schedule", cfg.ReconcileSchedule), zap.Error(err))
	}

	// Temp uploads outlive their session by at most one extra TTL.
	uploadDir := cfg.UploadDir
	if uploadDir == "" {
		uploadDir = filepath.Join(os.TempDir(), "visapoint-uploads")
	}
	sweeper, err := cron.StartUploadSweepCron(cfg.UploadSweepSchedule, uploadDir, 2*cfg.WizardSessionTTL)
	if err != nil {
		logger.Fatal("main: invalid upload sweep schedule", zap.String("schedule", cfg.UploadSweepSchedule), zap.Error(err))
	}

	handlerBundle := &handlers.HandlerBundle{
		Store:         store,
		Orchestrator:  orchestrator,
		Catalog:       catalogSvc,
		Admin:         admin.NewService(store, uploads),
		Identity:      identityProvider,
		AdminCreds:    identity.AdminCredentials{Email: cfg.AdminEmail, PasswordHash: cfg.AdminPasswordHash},
		Sessions:      session.NewManager(cfg.JWTSecret, cfg.TokenTTL, sessions),
		Currency:      cfg.Currency,
		PublicBaseURL: cfg.PublicBaseURL,
		UploadDir:     uploadDir,
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	routes.RegisterRoutes(router, handlerBundle, routes.Options{
		AllowOrigins:      []string{cfg.PublicBaseURL},
		AdminLoginPath:    cfg.AdminLoginPath,
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
	})

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}

	<-reconciler.Stop().Done()
	<-sweeper.Stop().Done()
	orchestrator.Close()
	if worker != nil {
		worker.Shutdown()
	}
	if queueClient != nil {
		_ = queueClient.Close()
	}
	stop()
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}
	_ = logger.Sync()

	logger.Sugar().Info("main: server stopped gracefully")
}
