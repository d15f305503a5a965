package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/messlens/backend/internal/domain"
)

// AnalysisServiceConfig holds configuration for the analysis service
type AnalysisServiceConfig struct {
	CacheTTL      time.Duration
	DefaultWindow string
}

// AnalysisService wraps the pure analyzer with result caching and run history
type AnalysisService struct {
	analyzer      *Analyzer
	cache         domain.CacheRepository
	runs          domain.RunRepository
	cacheTTL      time.Duration
	defaultWindow string
	now           func() time.Time
	newID         func() string
}

// NewAnalysisService creates a new analysis service with dependencies.
// cache and runs may be nil to disable caching or persistence.
func NewAnalysisService(
	analyzer *Analyzer,
	cache domain.CacheRepository,
	runs domain.RunRepository,
	config AnalysisServiceConfig,
) *AnalysisService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	defaultWindow := config.DefaultWindow
	if defaultWindow == "" {
		defaultWindow = domain.WindowWeek
	}

	return &AnalysisService{
		analyzer:      analyzer,
		cache:         cache,
		runs:          runs,
		cacheTTL:      cacheTTL,
		defaultWindow: defaultWindow,
		now:           time.Now,
		newID:         func() string { return uuid.NewString() },
	}
}

// Analyze scores a menu log.
// Flow: check cache -> run pipeline -> persist run -> cache -> return
func (s *AnalysisService) Analyze(
	ctx context.Context,
	entries []domain.MenuEntry,
	window string,
) (*domain.AnalysisOutcome, error) {
	if window == "" {
		window = s.defaultWindow
	}

	cacheKey := generateCacheKey(entries, window)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil && cached != nil {
		cached.Cached = true
		return cached, nil
	}

	report, err := s.analyzer.Analyze(entries, window)
	if err != nil {
		return nil, err
	}

	outcome := &domain.AnalysisOutcome{
		RunID:          s.newID(),
		AnalysisReport: *report,
	}

	if s.runs != nil {
		run := &domain.AnalysisRun{
			ID:         outcome.RunID,
			CreatedAt:  s.now().UTC(),
			Window:     report.Window,
			WindowSize: report.WindowSize,
			EntryCount: len(entries),
			Unmatched:  report.UnmatchedDishes,
			Result:     report.Result,
		}
		if err := s.runs.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to save analysis run: %w", err)
		}
	}

	if err := s.setInCache(ctx, cacheKey, outcome); err != nil {
		// Caching is best effort
		log.Printf("[ANALYZE] Failed to cache result %s: %v", outcome.RunID, err)
	}

	return outcome, nil
}

// GetRun returns a stored analysis run
func (s *AnalysisService) GetRun(ctx context.Context, id string) (*domain.AnalysisRun, error) {
	if id == "" {
		return nil, domain.ErrInvalidRequest
	}
	if s.runs == nil {
		return nil, domain.ErrRunNotFound
	}
	return s.runs.GetRun(ctx, id)
}

// ListRuns returns the most recent analysis runs, newest first
func (s *AnalysisService) ListRuns(ctx context.Context, limit int) ([]domain.AnalysisRun, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidRequest
	}
	if s.runs == nil {
		return []domain.AnalysisRun{}, nil
	}
	return s.runs.ListRuns(ctx, limit)
}

// ResolveDish shows how one dish name resolves against the reference table
func (s *AnalysisService) ResolveDish(dish string) (DishResolution, error) {
	if dish == "" {
		return DishResolution{}, domain.ErrInvalidRequest
	}
	return s.analyzer.ResolveDish(dish), nil
}

// generateCacheKey digests the window and every entry in input order.
// Format: "analysis:{sha256 hex}"
func generateCacheKey(entries []domain.MenuEntry, window string) string {
	h := sha256.New()
	h.Write([]byte(window))
	for _, e := range entries {
		h.Write([]byte{0})
		h.Write([]byte(e.Date.Format(domain.DateLayout)))
		h.Write([]byte{0})
		h.Write([]byte(e.Dish))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(e.QuantityG, 'g', -1, 64)))
	}
	return "analysis:" + hex.EncodeToString(h.Sum(nil))
}

// getFromCache retrieves an outcome from cache
func (s *AnalysisService) getFromCache(ctx context.Context, key string) (*domain.AnalysisOutcome, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if outcome, ok := value.(*domain.AnalysisOutcome); ok {
		copied := *outcome
		return &copied, nil
	}

	// The memory cache stores JSON-decoded values
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, domain.ErrCacheMiss
	}
	var outcome domain.AnalysisOutcome
	if err := json.Unmarshal(raw, &outcome); err != nil {
		return nil, domain.ErrCacheMiss
	}
	return &outcome, nil
}

// setInCache stores an outcome in cache
func (s *AnalysisService) setInCache(ctx context.Context, key string, outcome *domain.AnalysisOutcome) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, key, outcome, s.cacheTTL)
}
