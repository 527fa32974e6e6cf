package http

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"grocerysales/schema"
)

// predictionCache remembers recent successful predictions. The model never
// changes while the process runs, so an entry is valid for as long as it
// stays in the cache. A nil cache is disabled.
type predictionCache struct {
	entries *lru.Cache[schema.InputRecord, float64]
}

func newPredictionCache(size int) (*predictionCache, error) {
	if size <= 0 {
		return nil, nil
	}
	entries, err := lru.New[schema.InputRecord, float64](size)
	if err != nil {
		return nil, err
	}
	return &predictionCache{entries: entries}, nil
}

func (c *predictionCache) get(record schema.InputRecord) (float64, bool) {
	if c == nil {
		return 0, false
	}
	return c.entries.Get(record)
}

func (c *predictionCache) add(record schema.InputRecord, sales float64) {
	if c == nil {
		return
	}
	c.entries.Add(record, sales)
}

func (c *predictionCache) len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
