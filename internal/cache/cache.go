package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
)

// Query operation names. Cache keys are (operation, arguments); for
// user-scoped operations the first argument is the user id, which is what
// InvalidateUser relies on.
const (
	OpUserProgress   = "user_progress"
	OpUnits          = "units"
	OpCourseProgress = "course_progress"
)

var userScopedOps = []string{OpUserProgress, OpUnits, OpCourseProgress}

// QueryCache memoizes read-path query results. It is constructed once per
// process and handed to consumers by reference; there is no package-level
// state.
type QueryCache interface {
	GetJSON(ctx context.Context, op string, args []string, out any) (bool, error)
	SetJSON(ctx context.Context, op string, args []string, val any) error
	InvalidateUser(ctx context.Context, userID string) error
	Close() error
}

// Config carries externally configured TTLs per operation. Zero entries fall
// back to DefaultTTL.
type Config struct {
	Addr       string
	DefaultTTL time.Duration
	TTLs       map[string]time.Duration
}

type redisCache struct {
	log *logger.Logger
	rdb *goredis.Client
	cfg Config
}

func NewRedisCache(log *logger.Logger, cfg Config) (QueryCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisCache{
		log: log.With("service", "QueryCache"),
		rdb: rdb,
		cfg: cfg,
	}, nil
}

func cacheKey(op string, args []string) string {
	if len(args) == 0 {
		return "query:" + op
	}
	return "query:" + op + ":" + strings.Join(args, ":")
}

func (c *redisCache) ttlFor(op string) time.Duration {
	if ttl, ok := c.cfg.TTLs[op]; ok && ttl > 0 {
		return ttl
	}
	return c.cfg.DefaultTTL
}

func (c *redisCache) GetJSON(ctx context.Context, op string, args []string, out any) (bool, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(op, args)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *redisCache) SetJSON(ctx context.Context, op string, args []string, val any) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(op, args), raw, c.ttlFor(op)).Err()
}

func (c *redisCache) InvalidateUser(ctx context.Context, userID string) error {
	keys := make([]string, 0, len(userScopedOps))
	for _, op := range userScopedOps {
		keys = append(keys, cacheKey(op, []string{userID}))
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *redisCache) Close() error {
	return c.rdb.Close()
}

// Noop is used when no redis address is configured and by tests; every read
// misses and writes vanish.
type noopCache struct{}

func NewNoop() QueryCache { return noopCache{} }

func (noopCache) GetJSON(context.Context, string, []string, any) (bool, error) { return false, nil }
func (noopCache) SetJSON(context.Context, string, []string, any) error         { return nil }
func (noopCache) InvalidateUser(context.Context, string) error                 { return nil }
func (noopCache) Close() error                                                 { return nil }
