// Package cache provides driver-selectable storage for finished analysis
// results, keyed by image payload and user context.
package cache

import (
	"context"
	"time"

	"aidpal-server-go/internal/domain/analysis"
)

// Store defines the behaviour required by the analysis orchestrator. It is a
// superset of analysis.ResultCache so a Store can be wired in directly.
type Store interface {
	Get(ctx context.Context, key string) (*analysis.Result, bool, error)
	Set(ctx context.Context, key string, result *analysis.Result) error
	Delete(ctx context.Context, key string) error
	Stats(ctx context.Context) (map[string]any, error)
	Close(ctx context.Context) error
}

// Config describes the high level store selection parameters.
type Config struct {
	Driver string
	TTL    time.Duration
	Redis  *RedisConfig
	Memory *MemoryConfig
}

// MemoryConfig holds in-memory tuning knobs.
type MemoryConfig struct {
	GCInterval time.Duration
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}
