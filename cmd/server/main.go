package main

import (
	"context"
	"database/sql"
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"memory-companion/internal/assistant"
	"memory-companion/internal/config"
	"memory-companion/internal/family"
	"memory-companion/internal/logger"
	"memory-companion/internal/memory"
	"memory-companion/internal/platform/gemini"
	"memory-companion/internal/platform/storage"
	"memory-companion/internal/platform/voice"
	"memory-companion/internal/video"
)

func main() {
	// 1. Infrastructure
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "memory-companion")
	if err != nil {
		stdlog.Fatalf("could not build logger: %v", err)
	}
	defer log.Sync()

	var db *sql.DB
	for i := 0; i < 10; i++ {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err == nil {
			err = db.Ping()
		}
		if err == nil {
			break
		}
		log.Info("waiting for database", zap.Int("attempt", i+1))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatal("could not connect to database", zap.Error(err))
	}
	log.Info("connected to database")

	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("migration init failed", zap.Error(err))
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("migration up failed", zap.Error(err))
	}
	log.Info("migrations applied")

	// 2. Clients
	ctx := context.Background()
	gem, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:      cfg.Gemini.APIKey,
		TextModel:   cfg.Gemini.TextModel,
		VisionModel: cfg.Gemini.VisionModel,
	})
	if err != nil {
		log.Fatal("could not create gemini client", zap.Error(err))
	}
	store := storage.NewClient(cfg.Storage.BaseURL, cfg.Storage.ServiceKey, log)
	voiceClient := voice.NewClient(cfg.Voice.BaseURL)

	// 3. Services
	familyRepo := family.NewRepository(db)
	memoryRepo := memory.NewRepository(db)
	videoRepo := video.NewRepository(db)

	familySvc := family.NewService(familyRepo, store, cfg.Storage.ProfilesBucket, log)
	memorySvc := memory.NewService(memoryRepo, familyRepo, store, voiceClient, memory.Buckets{
		Photos: cfg.Storage.ProfilesBucket,
		Audio:  cfg.Storage.AudioBucket,
	}, log)
	videoSvc := video.NewService(videoRepo, store, cfg.Storage.VideosBucket, log)
	assistantSvc := assistant.NewService(familyRepo, memoryRepo, gem, gem, cfg.PhotoFetchTimeout, log)

	familyHandler := family.NewHandler(familySvc)
	memoryHandler := memory.NewHandler(memorySvc)
	videoHandler := video.NewHandler(videoSvc)
	assistantHandler := assistant.NewHandler(assistantSvc)

	// 4. Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS for the web frontend
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
			if r.Method == "OPTIONS" {
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/api", func(r chi.Router) {
		family.RegisterRoutes(r, familyHandler)
		memory.RegisterRoutes(r, memoryHandler)
		video.RegisterRoutes(r, videoHandler)
		assistant.RegisterRoutes(r, assistantHandler)
	})

	log.Info("server starting", zap.String("addr", cfg.HTTP.Addr))
	if err := http.ListenAndServe(cfg.HTTP.Addr, r); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
