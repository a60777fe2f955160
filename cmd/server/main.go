package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"joynex/config"
	authadapter "joynex/internal/adapters/auth"
	emailadapter "joynex/internal/adapters/email"
	delivery "joynex/internal/delivery/http"
	"joynex/internal/delivery/http/controllers"
	"joynex/internal/delivery/http/middleware"
	"joynex/internal/domain"
	"joynex/internal/realtime"
	"joynex/internal/repository/postgres"
	"joynex/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	codeRepo := postgres.NewVerificationCodeRepository(db)
	groupRepo := postgres.NewGroupRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	hasher := authadapter.NewBcryptHasher(bcrypt.DefaultCost)
	tokenIssuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := authadapter.NewJWTVerifier(cfg.JWTSecret)

	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:    cfg.Mailer,
		FromAddress: cfg.EmailSender,
		FromName:    "Joynex",
		SES: emailadapter.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSKeyID,
			SecretAccessKey: cfg.AWSSecret,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	hub := realtime.NewHub(logger)

	allowedDomains := cfg.AllowedEmailDomains
	if len(allowedDomains) == 0 {
		allowedDomains = domain.DefaultAllowedEmailDomains
	}

	emailSvc := services.NewEmailService(mailer, emailadapter.NewTemplateRenderer())
	authSvc := services.NewAuthService(userRepo, codeRepo, hasher, tokenIssuer, cfg.TokenExpiry, emailSvc, allowedDomains, logger)
	notificationSvc := services.NewNotificationService(notificationRepo, hub)
	groupSvc := services.NewGroupService(groupRepo, membershipRepo, notificationSvc, logger)
	membershipSvc := services.NewMembershipService(groupRepo, membershipRepo, userRepo, notificationSvc, emailSvc, logger)

	authController := controllers.NewAuthController(logger, authSvc)
	groupController := controllers.NewGroupController(logger, groupSvc, membershipSvc)
	notificationController := controllers.NewNotificationController(logger, notificationSvc)
	realtimeController := controllers.NewRealtimeController(logger, tokenVerifier, notificationSvc, hub)

	mux := delivery.NewRouter(logger, tokenVerifier, authController, groupController, notificationController, realtimeController)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
