package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"

	"stayhub/config"
	"stayhub/cron"
	"stayhub/database"
	bookingRepoPkg "stayhub/database/repository/booking"
	catalogRepoPkg "stayhub/database/repository/catalog"
	couponRepoPkg "stayhub/database/repository/coupon"
	inventoryRepoPkg "stayhub/database/repository/inventory"
	paymentRepoPkg "stayhub/database/repository/payment"
	"stayhub/handlers"
	"stayhub/middleware"
	"stayhub/routes"
	bookingSvc "stayhub/services/booking"
	"stayhub/services/catalog"
	"stayhub/services/checkout"
	"stayhub/services/coupon"
	"stayhub/services/inventory"
	"stayhub/services/notification"
	"stayhub/services/payment"
	"stayhub/services/pricing"
	"stayhub/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	couponRepo := couponRepoPkg.NewMongoCouponRepo()
	catalogRepo := catalogRepoPkg.NewMongoCatalogRepo()
	paymentRepo := paymentRepoPkg.NewMongoPaymentSessionRepo()
	inventoryRepo := inventoryRepoPkg.NewMongoInventoryRepo()

	// background task queue.
	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer queueClient.Close()

	// services.
	catalogService := &catalog.DefaultCatalogService{
		Repo:  catalogRepo,
		Cache: utils.GetCacheClient(),
	}
	inventoryService := &inventory.DefaultInventoryService{
		Repo:    inventoryRepo,
		Catalog: catalogService,
		Queue:   queueClient,
		Logger:  logger,
	}
	notificationService := &notification.DefaultNotificationService{
		Queue:  queueClient,
		Logger: logger,
	}
	pricingEngine := &pricing.DefaultPricingEngine{
		Catalog:      catalogService,
		Availability: inventoryService,
	}
	bookingService := &bookingSvc.DefaultBookingService{
		Repo:      bookingRepo,
		Pricing:   pricingEngine,
		Inventory: inventoryService,
	}
	couponService := &coupon.DefaultApplicationService{
		Bookings: bookingRepo,
		Coupons:  couponRepo,
		Catalog:  catalogService,
		Logger:   logger,
	}
	sessionManager := &payment.DefaultSessionManager{
		Bookings:  bookingRepo,
		Sessions:  paymentRepo,
		Gateway:   payment.NewGateway(config.AppConfig.PaymentProvider),
		Inventory: inventoryService,
		Notifier:  notificationService,
		Logger:    logger,
		TTL:       config.PaymentSessionTTL(),
	}
	orchestrator := &checkout.DefaultOrchestrator{
		Pricing:  pricingEngine,
		Bookings: bookingService,
		Coupons:  couponService,
		Sessions: sessionManager,
		Logger:   logger,
	}

	// handlers.
	bookingHandler := &handlers.BookingHandler{Service: bookingService}
	checkoutHandler := &handlers.CheckoutHandler{Orchestrator: orchestrator}
	paymentHandler := &handlers.PaymentHandler{
		Sessions: sessionManager,
		Cache:    utils.GetCacheClient(),
		Logger:   logger,
	}

	handlerBundle := &handlers.HandlerBundle{
		CreateBooking: bookingHandler.CreateBooking,
		GetBooking:    bookingHandler.GetBooking,

		GetQuote:     checkoutHandler.GetQuote,
		ApplyCoupon:  checkoutHandler.ApplyCoupon,
		CancelCoupon: checkoutHandler.CancelCoupon,
		OpenSession:  checkoutHandler.OpenSession,
		PollSession:  checkoutHandler.PollSession,

		PaymentWebhook: paymentHandler.Webhook,
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Background worker: hold releases, notifications, expiry sweep.
	cron.InitWorker(inventoryRepo, sessionManager)
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
