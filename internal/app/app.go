package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"vodsheet/features/cheatsheet"
	"vodsheet/features/job"
	"vodsheet/features/stats"
	"vodsheet/features/video"
	"vodsheet/internal/adapter/ffmpeg"
	"vodsheet/internal/adapter/gemini"
	"vodsheet/internal/adapter/media"
	"vodsheet/internal/config"
	"vodsheet/internal/middleware"
	"vodsheet/internal/settings"
	"vodsheet/internal/storage"
	"vodsheet/internal/worker"
)

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

type App struct {
	Handler            http.Handler
	VideoConsumer      *worker.VideoConsumer
	CheatsheetConsumer *worker.CheatsheetConsumer

	port int
}

func New(cfg *config.Config, db *sql.DB, taskPub TaskPublisher) (*App, error) {
	settingsRepo := settings.NewPostgresRepo(db)
	settingsService := settings.NewService(settingsRepo)
	seedSettings(cfg, settingsService)
	settingsHandler := settings.NewHandler(settingsService)

	videoRepo := video.NewPostgresRepo(db)
	videoService := video.NewService(videoRepo, taskPub)
	videoHandler := video.NewHandler(videoService)

	cheatsheetRepo := cheatsheet.NewPostgresRepo(db)
	cheatsheetService := cheatsheet.NewService(cheatsheetRepo, videoRepo, taskPub)
	cheatsheetHandler := cheatsheet.NewHandler(cheatsheetService)

	jobRepo := job.NewPostgresRepo(db)
	jobService := job.NewService(jobRepo, taskPub)
	jobHandler := job.NewHandler(jobService)

	statsHandler := stats.NewHandler(videoRepo, cheatsheetRepo, jobRepo)

	blobs, err := storage.NewLocal(cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	generator := gemini.NewGenerator(settingsService)
	analyzer := ffmpeg.NewAnalyzer()
	fetcher := media.NewFetcher()

	workerCfg := worker.Config{
		MaxAudioChunkBytes: cfg.MaxAudioChunkBytes,
		MinSilenceSeconds:  cfg.MinSilenceSeconds,
		SilenceNoiseDb:     cfg.SilenceNoiseDb,
		MapConcurrency:     cfg.MapConcurrency,
		CombineBudget:      cfg.CombineBudget,
	}
	videoConsumer := worker.NewVideoConsumer(videoRepo, jobRepo, blobs, fetcher, analyzer, generator, generator, settingsService, workerCfg)
	cheatsheetConsumer := worker.NewCheatsheetConsumer(cheatsheetRepo, videoRepo, jobRepo, blobs, generator, settingsService, workerCfg)

	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()

	mux.Handle("POST /videos", middleware.CorrelationID(enableCORS(videoHandler.Create)))
	mux.Handle("GET /videos", middleware.CorrelationID(enableCORS(videoHandler.List)))
	mux.Handle("GET /videos/{id}", middleware.CorrelationID(enableCORS(videoHandler.Get)))

	mux.Handle("POST /cheatsheets", middleware.CorrelationID(enableCORS(cheatsheetHandler.Create)))
	mux.Handle("GET /cheatsheets", middleware.CorrelationID(enableCORS(cheatsheetHandler.List)))
	mux.Handle("GET /cheatsheets/{id}", middleware.CorrelationID(enableCORS(cheatsheetHandler.Get)))

	mux.Handle("GET /settings", middleware.CorrelationID(enableCORS(settingsHandler.GetSettings)))
	mux.Handle("PUT /settings", middleware.CorrelationID(enableCORS(settingsHandler.UpdateSettings)))

	mux.Handle("GET /jobs/failed", middleware.CorrelationID(enableCORS(jobHandler.List)))
	mux.Handle("POST /jobs/{id}/retry", middleware.CorrelationID(enableCORS(jobHandler.Retry)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return &App{
		Handler:            mux,
		VideoConsumer:      videoConsumer,
		CheatsheetConsumer: cheatsheetConsumer,
		port:               cfg.ServerPort,
	}, nil
}

// seedSettings copies the environment's API key into the settings row on
// first boot so the UI does not start with an unusable pipeline.
func seedSettings(cfg *config.Config, svc *settings.Service) {
	if cfg.GeminiAPIKey == "" {
		return
	}
	ctx := context.Background()
	set, err := svc.Get(ctx)
	if err != nil {
		slog.Warn("failed to fetch settings for seeding", "error", err)
		return
	}
	if set.GeminiAPIKey != "" {
		return
	}
	set.GeminiAPIKey = cfg.GeminiAPIKey
	if set.Model == "" {
		set.Model = cfg.GeminiModel
	}
	if err := svc.Update(ctx, set); err != nil {
		slog.Warn("failed to seed gemini api key", "error", err)
	} else {
		slog.Info("seeded gemini api key from environment")
	}
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
