package services

import (
	"encoding/json"
	"time"

	"github.com/milkroute/delivery-gateway/internal/model"
	"github.com/milkroute/delivery-gateway/pkg/logger"
	"github.com/milkroute/delivery-gateway/pkg/redis"
)

// summaryCacheTTL keeps cached statistics short-lived; the ledger changes
// continuously during a delivery round.
const summaryCacheTTL = 30 * time.Second

// SummaryCache memoizes summary statistics in redis. A nil cache is valid
// and disables memoization, so reports never depend on redis being up.
type SummaryCache struct {
	kv redis.RedisAdapter
}

func NewSummaryCache(kv redis.RedisAdapter) *SummaryCache {
	if kv == nil {
		return nil
	}
	return &SummaryCache{kv: kv}
}

func (c *SummaryCache) Get(key string) (model.DeliveryStats, bool) {
	if c == nil {
		return model.DeliveryStats{}, false
	}
	raw, err := c.kv.Get(key)
	if err != nil {
		if err != redis.NilError {
			logger.Warn("summary cache read failed", "key", key, "error", err)
		}
		return model.DeliveryStats{}, false
	}
	var stats model.DeliveryStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return model.DeliveryStats{}, false
	}
	return stats, true
}

// Set memoizes the statistics unless an entry is already live. SetNX keeps
// concurrent recomputations from stomping each other and from sliding the
// entry's expiry forward.
func (c *SummaryCache) Set(key string, stats model.DeliveryStats) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if _, err := c.kv.SetNX(key, raw, summaryCacheTTL); err != nil {
		logger.Warn("summary cache write failed", "key", key, "error", err)
	}
}
