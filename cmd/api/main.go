package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vutran-dev/platform-ads/internal/config"
	"github.com/vutran-dev/platform-ads/internal/database"
	"github.com/vutran-dev/platform-ads/internal/events"
	"github.com/vutran-dev/platform-ads/internal/handlers"
	"github.com/vutran-dev/platform-ads/internal/mailer"
	"github.com/vutran-dev/platform-ads/internal/middlewares"
	"github.com/vutran-dev/platform-ads/internal/repository"
	"github.com/vutran-dev/platform-ads/internal/routes"
	"github.com/vutran-dev/platform-ads/internal/server"
	"github.com/vutran-dev/platform-ads/internal/services"
	"github.com/vutran-dev/platform-ads/internal/token"
	"github.com/vutran-dev/platform-ads/internal/utils"
	"github.com/vutran-dev/platform-ads/internal/verification"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.App.Env)
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()
	sugar.Infof("Starting %s in %s environment on port %d", cfg.App.Name, cfg.App.Env, cfg.App.Port)

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, sugar)
	if err != nil {
		sugar.Fatal(err)
	}
	rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sugar)
	if err != nil {
		sugar.Warnf("Redis unavailable, request rate limiting disabled: %v", err)
		rdb = nil
	}

	mail := mailer.NewClient(cfg.Mail.APIURL, cfg.Mail.FromEmail, cfg.Mail.FromName, sugar)
	if !mail.IsConfigured() {
		sugar.Warn("Mail client not configured. Outbound email will be skipped.")
	}

	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, sugar)
	if publisher == nil {
		sugar.Info("Kafka not configured, auth events disabled")
	}

	issuer := token.NewIssuer(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTLMinutes, cfg.JWT.RefreshTTL)
	verifier := verification.NewManager(cfg.App.BaseURL, cfg.Auth.VerificationTTLMinutes, cfg.Auth.ResendThrottleSeconds)

	userRepo := repository.NewMongoUserRepo(db, cfg.Mongo.UsersCollection)
	videoRepo := repository.NewMongoVideoRepo(db, cfg.Mongo.VideosCollection)

	authSvc := services.NewAuthService(userRepo, issuer, verifier, mail, publisher, services.AuthConfig{
		AdminRegistrationKey: cfg.Auth.AdminRegistrationKey,
		PasswordHashCost:     cfg.Auth.PasswordHashCost,
		AdminDefaultPoints:   cfg.Auth.AdminDefaultPoints,
	}, sugar)
	usersSvc := services.NewUsersService(userRepo, cfg.Auth.PasswordHashCost)
	videosSvc := services.NewVideosService(videoRepo)

	cookieCfg := utils.CookieConfig{
		AccessMaxAge:  cfg.Auth.AccessCookieMaxAge,
		RefreshMaxAge: cfg.Auth.RefreshCookieMaxAge,
		Secure:        cfg.App.Env == "production",
	}

	authenticator := middlewares.NewAuthenticator(issuer, userRepo, authSvc, cookieCfg, sugar)
	limiter := middlewares.NewRateLimiter(rdb, "ratelimit:auth", cfg.RateLimit.Limit,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)

	authH := handlers.NewAuthHandler(authSvc, cookieCfg, sugar)
	userH := handlers.NewUserHandler(usersSvc)
	videoH := handlers.NewVideoHandler(videosSvc)

	app := server.New(cfg, sugar)
	routes.Setup(app, authH, userH, videoH, authenticator, limiter, cfg.App.Name, cfg.App.Version)

	go func() {
		listenAddr := fmt.Sprintf(":%d", cfg.App.Port)
		sugar.Infof("Server listening on %s", listenAddr)
		if err := app.Listen(listenAddr); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := app.ShutdownWithContext(ctxShut); err != nil {
		sugar.Errorf("Fiber app shutdown error: %v", err)
	}
	if err := mongoClient.Disconnect(ctxShut); err != nil {
		sugar.Errorf("MongoDB disconnect error: %v", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			sugar.Errorf("Redis client close error: %v", err)
		}
	}
	if err := publisher.Close(); err != nil {
		sugar.Errorf("Kafka writer close error: %v", err)
	}

	sugar.Info("Graceful shutdown complete")
}
