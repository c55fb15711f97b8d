// CampusGuide - college timetable and information assistant.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ashureev/campusguide/internal/chat"
	"github.com/ashureev/campusguide/internal/config"
	"github.com/ashureev/campusguide/internal/corpus"
	"github.com/ashureev/campusguide/internal/llm"
	"github.com/ashureev/campusguide/internal/middleware"
	"github.com/ashureev/campusguide/internal/session"
	"github.com/ashureev/campusguide/internal/store"
	"github.com/ashureev/campusguide/internal/timetable"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "model", cfg.GeminiModel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load documents up front so the first request does not pay for it.
	docs := corpus.NewLoader(cfg.DocumentDir, cfg.DocumentFiles, nil, logger)
	slog.Info("Corpus ready", "chars", len(docs.Text()), "documents", len(cfg.DocumentFiles))

	extractor, err := timetable.NewExtractor(timetable.DefaultCacheSize)
	if err != nil {
		slog.Error("Failed to initialize timetable extractor", "error", err)
		os.Exit(1)
	}

	generator, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTimeout)
	if err != nil {
		slog.Error("Failed to initialize Gemini client", "error", err)
		os.Exit(1)
	}

	sessions := session.NewStore()
	limiter := chat.NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.WindowDuration)

	sweepTasks := []session.SweepTask{{
		Name: "rate_limit_buckets",
		Run: func(context.Context) (int64, error) {
			return int64(limiter.Sweep(cfg.RateLimit.WindowDuration)), nil
		},
	}}
	if cfg.Sessions.IdleTTL > 0 {
		sweepTasks = append(sweepTasks, session.IdleTask(sessions, cfg.Sessions.IdleTTL))
	}

	deps := chat.Deps{
		Sessions:      sessions,
		Corpus:        docs,
		Timetable:     extractor,
		Generator:     generator,
		ContextBudget: cfg.ContextBudget,
		Location:      cfg.Location,
		Logger:        logger,
	}

	//nolint:nestif // Optional transcript wiring stays inline with the rest of startup.
	if cfg.Transcript.Enabled {
		db, err := store.NewSQLite(cfg.Transcript.DBPath)
		if err != nil {
			slog.Error("Failed to initialize transcript database", "error", err)
			os.Exit(1)
		}
		var repo store.Repository = db
		defer func() {
			if closeErr := repo.Close(); closeErr != nil {
				slog.Error("Failed to close transcript database", "error", closeErr)
			}
		}()
		if err := repo.Ping(ctx); err != nil {
			slog.Error("Transcript database health check failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Transcript database connected", "path", cfg.Transcript.DBPath)

		deps.Transcripts = repo
		retention := cfg.Transcript.Retention
		if retention > 0 {
			sweepTasks = append(sweepTasks, session.SweepTask{
				Name: "transcripts",
				Run: func(ctx context.Context) (int64, error) {
					return repo.CleanupOlderThan(ctx, retention)
				},
			})
		}
	} else {
		slog.Info("Transcript logging disabled")
	}

	svc, err := chat.NewService(deps)
	if err != nil {
		slog.Error("Failed to initialize chat service", "error", err)
		os.Exit(1)
	}
	chatHandler := chat.NewHandler(svc, limiter, cfg.MaxBodyBytes)

	session.StartSweeper(ctx, cfg.Sessions.SweepInterval, sweepTasks...)

	// Setup router.
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	chatHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0, // LLM calls are unbounded unless LLM_TIMEOUT is set
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
