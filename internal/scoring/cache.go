package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// EvalCache memoizes Evaluate results in redis.
//
// Evaluation is a pure function of (configuration version, inputs,
// normalization rule), so results may be cached and re-served without
// coordination. Cache failures degrade to a direct evaluation; the cache is
// never load-bearing.
type EvalCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewEvalCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *EvalCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &EvalCache{rdb: rdb, ttl: ttl, log: log}
}

// Evaluate returns the cached evaluation when present, computing and storing
// it otherwise. normName identifies the caller's normalization rule; two
// callers with different rules must not share cache entries.
func (c *EvalCache) Evaluate(ctx context.Context, cfg Configuration, values map[string]float64, normalize Normalizer, normName string) (Evaluation, error) {
	if c == nil || c.rdb == nil {
		return Evaluate(cfg, values, normalize)
	}

	key := cacheKey(cfg, values, normName)

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached Evaluation
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	eval, err := Evaluate(cfg, values, normalize)
	if err != nil {
		return Evaluation{}, err
	}

	if raw, err := json.Marshal(eval); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn("scoring cache set failed", "key", key, "err", err)
		}
	}
	return eval, nil
}

func cacheKey(cfg Configuration, values map[string]float64, normName string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%.12g;", k, values[k])
	}
	return fmt.Sprintf("scoring:eval:%s:v%d:%s:%s", cfg.Type, cfg.Version, normName, hex.EncodeToString(h.Sum(nil)))
}
