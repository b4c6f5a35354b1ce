package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agenda-service/internal/config"
	aptBook "agenda-service/internal/http-server/handlers/appointments/book"
	aptCancel "agenda-service/internal/http-server/handlers/appointments/cancel"
	aptGet "agenda-service/internal/http-server/handlers/appointments/get"
	aptMove "agenda-service/internal/http-server/handlers/appointments/move"
	aptResize "agenda-service/internal/http-server/handlers/appointments/resize"
	blockCreate "agenda-service/internal/http-server/handlers/availability_blocks/create"
	blockDelete "agenda-service/internal/http-server/handlers/availability_blocks/delete"
	blockGet "agenda-service/internal/http-server/handlers/availability_blocks/get"
	blockMove "agenda-service/internal/http-server/handlers/availability_blocks/move"
	blockResize "agenda-service/internal/http-server/handlers/availability_blocks/resize"
	scheduleGet "agenda-service/internal/http-server/handlers/schedule/get"
	serviceGet "agenda-service/internal/http-server/handlers/services/get"
	validationCheck "agenda-service/internal/http-server/handlers/validation/check"
	"agenda-service/internal/lock"
	svc "agenda-service/internal/service"
	"agenda-service/internal/storage/postgres"
	"agenda-service/internal/timegrid"
	slogpretty "agenda-service/pkg/handlers/slogPretty"
	"agenda-service/pkg/middleware/mwLogger"
	"agenda-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	_ = godotenv.Load()

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	loc, err := time.LoadLocation(cfg.ClinicTimezone)
	if err != nil {
		log.Error("Failed to load clinic timezone", sl.Err(err))
		os.Exit(1)
	}

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	grid := timegrid.Config{
		SlotHeight:      cfg.Grid.SlotHeight,
		IntervalMinutes: cfg.Grid.IntervalMinutes,
		StartHour:       cfg.Grid.StartHour,
		EndHour:         cfg.Grid.EndHour,
	}

	service := svc.NewService(storage, locker, grid, loc)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	// Availability Blocks
	router.Post("/availability_blocks", blockCreate.New(log, service))
	router.Get("/availability_blocks/{id}", blockGet.New(log, service))
	router.Put("/availability_blocks/{id}/move", blockMove.New(log, service))
	router.Put("/availability_blocks/{id}/resize", blockResize.New(log, service))
	router.Delete("/availability_blocks/{id}", blockDelete.New(log, service))

	// Appointments
	router.Post("/appointments", aptBook.New(log, service))
	router.Get("/appointments/{id}", aptGet.New(log, service))
	router.Put("/appointments/{id}/move", aptMove.New(log, service))
	router.Put("/appointments/{id}/resize", aptResize.New(log, service))
	router.Put("/appointments/{id}/cancel", aptCancel.New(log, service))

	// Schedule & services
	router.Get("/schedule", scheduleGet.New(log, service))
	router.Get("/services", serviceGet.New(log, service))

	// Validation
	router.Post("/validation/drop", validationCheck.New(log, service))

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if storage != nil {
		if err := storage.Close(); err != nil {
			log.Error("Failed to close storage", sl.Err(err))
		} else {
			log.Info("Storage closed")
		}
	}

	if locker != nil {
		if err := locker.Close(); err != nil {
			log.Error("Failed to close locker", sl.Err(err))
		} else {
			log.Info("Locker closed")
		}
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
