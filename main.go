package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"unilink/config"
	"unilink/cron"
	"unilink/database"
	bookingRepo "unilink/database/repository/booking"
	waitlistRepo "unilink/database/repository/waitlist"
	"unilink/handlers"
	"unilink/middleware"
	"unilink/routes"
	"unilink/services/admin"
	"unilink/services/booking"
	"unilink/services/events"
	"unilink/services/notification"
	"unilink/services/tasks"
	"unilink/services/waitlist"
	"unilink/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("main: %v", err)
	}
	logger, err := utils.InitializeLogger(cfg)
	if err != nil {
		log.Fatalf("main: failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("main: exited with error", zap.Error(err))
	}
	logger.Info("main: server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	redisClient, err := utils.NewRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Repositories.
	var (
		bookings    bookingRepo.BookingRepository
		waitlisted  waitlistRepo.WaitlistRepository
		mongoClient *mongo.Client
	)
	switch cfg.StoreBackend {
	case "mongo":
		mongoClient, err = database.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer mongoClient.Disconnect(context.Background())

		db := database.Database(mongoClient, cfg)
		if bookings, err = bookingRepo.NewMongoBookingRepo(ctx, db); err != nil {
			return err
		}
		if waitlisted, err = waitlistRepo.NewMongoWaitlistRepo(ctx, db); err != nil {
			return err
		}
	default:
		bookings = bookingRepo.NewRedisBookingRepo(redisClient)
		waitlisted = waitlistRepo.NewRedisWaitlistRepo(redisClient)
	}
	logger.Info("Store ready", zap.String("backend", cfg.StoreBackend))

	// Background email queue.
	queueOpt, err := cron.QueueRedisOpt(cfg)
	if err != nil {
		return err
	}
	queueClient := asynq.NewClient(queueOpt)
	defer queueClient.Close()
	enqueuer := tasks.NewEnqueuer(queueClient)
	emailWorker := cron.NewEmailWorker(queueOpt, notification.NewResendSender(cfg, logger), logger)

	var publisher events.Publisher = events.NoopPublisher{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		publisher = events.NewKafkaPublisher(brokers, cfg.KafkaBookingsTopic, logger)
		logger.Info("Publishing booking events", zap.Strings("brokers", brokers))
	}
	defer publisher.Close()

	// Services.
	trip, err := booking.NewTrip(cfg)
	if err != nil {
		return err
	}
	var payments booking.PaymentProvider
	if cfg.StripeSecretKey != "" {
		payments = booking.NewStripePaymentProvider(cfg.StripeSecretKey, nil, logger)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set; checkout and confirmation are disabled")
	}

	validate := utils.NewValidator()
	bookingService := &booking.DefaultBookingService{
		Repo:         bookings,
		Payments:     payments,
		Emails:       enqueuer,
		Events:       publisher,
		Pricer:       booking.NewPricer(cfg, trip),
		Trip:         trip,
		TicketLimit:  cfg.TicketLimit,
		StoreTimeout: cfg.StoreTimeout,
		Validate:     validate,
		Logger:       logger,
	}
	waitlistService := &waitlist.DefaultWaitlistService{
		Repo:         waitlisted,
		Emails:       enqueuer,
		Validate:     validate,
		Location:     trip.Location,
		StoreTimeout: cfg.StoreTimeout,
		Logger:       logger,
	}
	adminService, err := admin.NewDefaultAdminService(cfg, admin.NewRedisSessionStore(redisClient), logger)
	if err != nil {
		return err
	}

	checks := map[string]utils.Pinger{
		"redis": utils.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
	}
	if mongoClient != nil {
		checks["mongo"] = utils.PingFunc(func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) })
	}
	monitor := utils.NewHealthMonitor(30*time.Second, checks)

	// Router.
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	routes.RegisterRoutes(router, &handlers.HandlerBundle{
		AdminService: adminService,
		Booking:      handlers.NewBookingHandler(bookingService, cfg.PublicSiteURL),
		Waitlist:     handlers.NewWaitlistHandler(waitlistService),
		Admin:        handlers.NewAdminHandler(adminService, cfg.IsProduction()),
		Health:       handlers.HealthHandler(monitor),
	}, cfg.AllowedOrigins())

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("main: server is shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		// Email delivery is best-effort; a worker failure is only logged.
		if err := emailWorker.Run(gctx); err != nil {
			logger.Error("Email worker stopped", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error { return monitor.Run(gctx) })

	return g.Wait()
}
