package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/absentia-hq/absentia/internal/domain"
	"github.com/absentia-hq/absentia/internal/geocode"
	"github.com/absentia-hq/absentia/internal/handlers"
	"github.com/absentia-hq/absentia/internal/notify"
	"github.com/absentia-hq/absentia/internal/peoplehr"
	"github.com/absentia-hq/absentia/internal/repo/postgres"
	"github.com/absentia-hq/absentia/internal/repo/redisrepo"
	"github.com/absentia-hq/absentia/internal/service"
	"github.com/absentia-hq/absentia/pkg/config"
	"github.com/absentia-hq/absentia/pkg/database"
	"github.com/absentia-hq/absentia/pkg/events"
	"github.com/absentia-hq/absentia/pkg/logger"
	mw "github.com/absentia-hq/absentia/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	// Connect to database
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Connect to event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Redis backs the login rate limiter; the API still works without it.
	var limiter redisrepo.RateLimiter
	if redisClient, err := redisrepo.Connect(ctx, cfg.Redis.URL); err != nil {
		logger.Warn("Redis unavailable, login rate limiting disabled", "error", err)
	} else {
		defer redisClient.Close()
		limiter = redisrepo.NewRateLimiter(redisClient)
	}

	// Initialize repositories and collaborators
	attendanceRepo := postgres.NewAttendanceRepository(pool)
	portal := peoplehr.NewClient(cfg.Remote)
	resolver := geocode.NewNominatim()

	shift := domain.ShiftWindow{StartHour: cfg.Shift.StartHour, EndHour: cfg.Shift.EndHour}

	// Initialize services
	attendanceSvc := service.NewAttendanceService(attendanceRepo, portal, eventBus, shift)
	authSvc := service.NewAuthService(portal, cfg.Auth)

	// Notification fan-out consumes the attendance events in process.
	fanout := notify.NewFanout(resolver,
		notify.NewTelegram(cfg.Notify.TelegramBotToken, cfg.Notify.TelegramChatID),
		notify.NewWhatsApp(cfg.Notify.WhatsAppGateway, cfg.Notify.WhatsAppGroup),
		notify.NewEmail(cfg.Notify.MailerSendKey, cfg.Notify.MailFrom, cfg.Notify.MailTo),
	)
	if err := fanout.Listen(eventBus); err != nil {
		logger.Error("Failed to subscribe to attendance events", "error", err)
		os.Exit(1)
	}

	// Initialize handlers
	h := handlers.New(attendanceSvc, authSvc, limiter, cfg)

	// Setup router
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("api"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/attendance", func(r chi.Router) {
		r.Post("/clock-in", h.ClockIn)
		r.Post("/clock-out", h.ClockOut)
		r.Get("/today-status", h.TodayStatus)
		r.Get("/list", h.List)
		r.With(h.RequireJWT).Get("/export", h.Export)
	})

	r.Route("/auth", func(r chi.Router) {
		r.With(h.LoginRateLimit).Post("/login", h.Login)
		r.Get("/remote-health", h.RemoteHealth)
	})

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting attendance API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
