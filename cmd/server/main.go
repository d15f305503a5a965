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

	"github.com/messlens/backend/config"
	httpDelivery "github.com/messlens/backend/internal/delivery/http"
	"github.com/messlens/backend/internal/domain"
	"github.com/messlens/backend/internal/infrastructure/cache"
	"github.com/messlens/backend/internal/infrastructure/csvio"
	"github.com/messlens/backend/internal/infrastructure/sqlite"
	"github.com/messlens/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting MessLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// The reference table is loaded once and shared read-only by every request
	dishes, err := csvio.LoadReferenceFile(cfg.Reference.Path)
	if err != nil {
		log.Fatalf("Failed to load nutrition reference: %v", err)
	}
	table := domain.NewReferenceTable(dishes, usecase.NormalizeDishName)

	matcher, err := usecase.NewDishMatcher(usecase.MatchConfig{
		Strategy:               cfg.Matching.Strategy,
		MinConfidenceThreshold: cfg.Matching.MinConfidenceThreshold,
		EnableFuzzyMatching:    cfg.Matching.EnableFuzzyMatching,
		EnableDebugLogging:     cfg.Matching.EnableDebugLogging,
	})
	if err != nil {
		log.Fatalf("Failed to create dish matcher: %v", err)
	}

	log.Printf("Matching: strategy=%s, confidence=%.0f%%, fuzzy=%v, debug=%v",
		cfg.Matching.Strategy,
		cfg.Matching.MinConfidenceThreshold,
		cfg.Matching.EnableFuzzyMatching,
		cfg.Matching.EnableDebugLogging)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()
	defer memoryCache.Close()
	log.Printf("Cache TTL: %s", cfg.Analysis.CacheTTL)

	runStore, err := sqlite.NewRunStore(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to open run store: %v", err)
	}
	defer runStore.Close()
	log.Printf("[STORE] Run history at %s", cfg.Storage.Path)

	analysisService := usecase.NewAnalysisService(
		usecase.NewAnalyzer(table, matcher, cfg.Matching.EnableDebugLogging),
		memoryCache,
		runStore,
		usecase.AnalysisServiceConfig{
			CacheTTL:      cfg.Analysis.CacheTTL,
			DefaultWindow: cfg.Analysis.DefaultWindow,
		},
	)

	handler := httpDelivery.NewHandler(analysisService)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Println("Received shutdown signal")
	case err := <-errCh:
		log.Printf("Server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
