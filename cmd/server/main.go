package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/codyseavey/git-dungeon/backend/internal/api"
	"github.com/codyseavey/git-dungeon/backend/internal/config"
	"github.com/codyseavey/git-dungeon/backend/internal/database"
	"github.com/codyseavey/git-dungeon/backend/internal/embed"
	"github.com/codyseavey/git-dungeon/backend/internal/fonts"
	"github.com/codyseavey/git-dungeon/backend/internal/services"
	"github.com/codyseavey/git-dungeon/backend/internal/sprites"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Mirror logs into a rotated file when LOG_FILE is set
	if cfg.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: 3,
			Compress:   true,
		}))
	}

	// Initialize database
	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Fonts are read from the manifest once; bytes are cached by the loaders
	manifest, err := fonts.LoadManifest(cfg.FontManifest)
	if err != nil {
		log.Fatalf("Failed to load font manifest: %v", err)
	}
	fontCache := fonts.NewCache()
	fontLoader := &fonts.MultiLoader{
		Files: fonts.NewFileLoader(fontCache),
		URLs:  fonts.NewURLLoader(fontCache),
	}

	// Initialize services
	characterService := services.NewCharacterService(database.GetDB(), cfg.DevMode)
	renderer := embed.NewRenderer(nil, sprites.Default())
	log.Printf("Loaded %d catalog sprites", sprites.Default().Len())

	embedService, err := services.NewEmbedService(characterService, renderer, fontLoader, manifest.Fonts, cfg.EmbedCacheSize)
	if err != nil {
		log.Fatalf("Failed to initialize embed service: %v", err)
	}

	spriteStorage := services.NewSpriteStorageService(cfg.SpriteUploadDir)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load fonts in the background so startup is not blocked on URL sources
	go func() {
		warmCtx, warmCancel := context.WithTimeout(ctx, time.Minute)
		defer warmCancel()
		if err := embedService.Warmup(warmCtx); err != nil {
			log.Printf("Font warmup failed, fonts will load on first render: %v", err)
		}
	}()

	// Setup router
	router := api.SetupRouter(cfg, characterService, embedService, spriteStorage)

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
