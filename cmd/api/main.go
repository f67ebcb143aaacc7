package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tourbook/internal/config"
	"tourbook/internal/database"
	"tourbook/internal/middleware"
	"tourbook/internal/modules/auth"
	"tourbook/internal/modules/booking"
	"tourbook/internal/modules/events"
	"tourbook/internal/modules/notification"
	"tourbook/internal/modules/payment"
	jwtsvc "tourbook/internal/pkg/jwt"
	"tourbook/internal/pkg/logger"
	"tourbook/internal/repository"
)

func main() {
	_ = godotenv.Load()
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Initialize()
	zlog := logger.Get()
	defer zlog.Sync()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	gatewayRepo := repository.NewGatewayPaymentRepository(db)
	notificationRepo := notification.NewRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, 24*time.Hour)

	notificationService := notification.NewService(
		notificationRepo,
		userRepo,
		notification.NewLogSender(zlog),
		zlog,
	)

	gatewayClient := payment.NewClient(payment.ClientConfig{
		BaseURL:       cfg.GatewayBaseURL,
		APIKey:        cfg.GatewayAPIKey,
		IntegrationID: cfg.GatewayIntegrationID,
		FrameBase:     cfg.GatewayFrameBase,
		FrameID:       cfg.GatewayFrameID,
		Currency:      cfg.Currency,
		Timeout:       cfg.GatewayTimeout(),
	})
	paymentService := payment.NewService(
		gatewayClient,
		gatewayRepo,
		bookingRepo,
		couponRepo,
		notificationService,
		zlog,
		cfg.GatewayHMACSecret,
		cfg.Currency,
	)
	paymentHandler := payment.NewHandler(paymentService, zlog)

	hub := events.NewHub()
	defer hub.Close()
	wsHandler := events.NewWSHandler(hub, j, zlog)

	authService := auth.NewService(userRepo, providerRepo, j)
	authHandler := auth.NewHandler(authService)

	bookingService := booking.NewService(
		bookingRepo,
		serviceRepo,
		providerRepo,
		settingsRepo,
		couponRepo,
		userRepo,
		notificationService,
		paymentService,
		hub,
		zlog,
		cfg.ApprovalWindow(),
	)
	bookingHandler := booking.NewHandler(bookingService)
	notificationHandler := notification.NewHandler(notificationService)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger(zlog))

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)
		paymentHandler.RegisterPublicRoutes(v1)
		wsHandler.RegisterRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			bookingHandler.RegisterRoutes(protected)
			notificationHandler.RegisterRoutes(protected)
		}
	}

	zlog.Info("starting api", zap.String("port", cfg.AppPort))
	if err := r.Run(":" + cfg.AppPort); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
