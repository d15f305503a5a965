package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RunRepository persists completed analysis runs
type RunRepository interface {
	SaveRun(ctx context.Context, run *AnalysisRun) error
	GetRun(ctx context.Context, id string) (*AnalysisRun, error)
	ListRuns(ctx context.Context, limit int) ([]AnalysisRun, error)
}
