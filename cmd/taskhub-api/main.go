package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/taskhub-api/internal/config"
	"github.com/dimitrije/taskhub-api/internal/database"
	"github.com/dimitrije/taskhub-api/internal/handlers"
	authmw "github.com/dimitrije/taskhub-api/internal/middleware"
	"github.com/dimitrije/taskhub-api/internal/services"
	"github.com/dimitrije/taskhub-api/internal/sse"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	feedCtx, stopFeed := context.WithCancel(ctx)
	defer stopFeed()
	feed := sse.NewProjectFeed()
	go feed.Run(feedCtx)

	hasher := services.NewPasswordHasher(cfg.BcryptCost)
	emailService := services.NewEmailService(cfg.SMTP, logger)
	if !emailService.IsConfigured() {
		logger.Warn("SMTP not configured, outgoing mail is disabled")
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db, hasher, emailService, cfg.BaseURL, cfg.VerificationExpiry)
	tokenService := services.NewTokenService(db)
	authService := services.NewAuthorizationService(db)
	projectService := services.NewProjectService(db, authService, feed)
	couponService := services.NewCouponService(db, authService, projectService, userService)
	joinRequestService := services.NewJoinRequestService(db, authService, couponService, projectService, userService)
	taskService := services.NewTaskService(db, authService)
	commentService := services.NewCommentService(db, authService, taskService)

	scheduler, err := services.NewScheduler(tokenService, cfg.CleanupInterval, logger)
	if err != nil {
		logger.Fatal("failed to create scheduler", zap.Error(err))
	}
	if err := scheduler.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}

	authHandler := handlers.NewAuthHandler(userService, tokenService, jwtService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	projectHandler := handlers.NewProjectHandler(projectService, authService, logger)
	joinRequestHandler := handlers.NewJoinRequestHandler(
		couponService, joinRequestService, authService, projectService, userService, emailService, logger,
	)
	taskHandler := handlers.NewTaskHandler(taskService, commentService, logger)
	sseHandler := handlers.NewSSEHandler(feed, projectService, logger)
	healthHandler := handlers.NewHealthHandler(db)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())
	app.Use(authmw.RequestLogger(logger))

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Get("/verify", authHandler.Verify)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	api.Get("/health", healthHandler.Check)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)

	protected.Get("/projects", projectHandler.List)
	protected.Post("/projects", projectHandler.Create)
	protected.Get("/projects/stream", sseHandler.Stream)
	protected.Get("/projects/:id", projectHandler.Get)
	protected.Patch("/projects/:id", projectHandler.Update)
	protected.Get("/projects/:id/members", projectHandler.Members)
	protected.Delete("/projects/:id/members/:userId", projectHandler.RemoveMember)
	protected.Get("/projects/:id/authorization", projectHandler.Authorization)

	protected.Post("/projects/:id/coupons", joinRequestHandler.IssueCoupon)
	protected.Post("/projects/:id/join-requests", joinRequestHandler.Submit)
	protected.Get("/projects/:id/join-requests", joinRequestHandler.List)
	protected.Post("/join-requests/:id/approve", joinRequestHandler.Approve)
	protected.Post("/join-requests/:id/reject", joinRequestHandler.Reject)

	protected.Get("/projects/:id/tasks", taskHandler.List)
	protected.Post("/projects/:id/tasks", taskHandler.Create)
	protected.Get("/tasks/:id", taskHandler.Get)
	protected.Post("/tasks/:id/assign", taskHandler.Assign)
	protected.Patch("/tasks/:id/progress", taskHandler.UpdateProgress)
	protected.Get("/tasks/:id/comments", taskHandler.ListComments)
	protected.Post("/tasks/:id/comments", taskHandler.AddComment)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Streams end when the feed closes their channels, so stop it before
	// waiting on open connections.
	stopFeed()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	scheduler.Stop()
	emailService.Wait()
}
