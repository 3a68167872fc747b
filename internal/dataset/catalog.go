package dataset

import (
	"sync"
	"time"

	"github.com/hitoshi/nycbites/internal/model"
)

// Catalog は読み込み済みの店舗スナップショットを保持する。
// 起動時に1回書き込まれ、以降はリクエストごとに並行して読み出される。
type Catalog struct {
	mu          sync.RWMutex
	restaurants []model.Restaurant
	byKey       map[string]int
	loadedAt    time.Time
	loaded      bool
}

// NewCatalog は空のCatalogを生成する。
func NewCatalog() *Catalog {
	return &Catalog{byKey: make(map[string]int)}
}

// Replace はスナップショット全体を差し替える。
func (c *Catalog) Replace(restaurants []model.Restaurant, loadedAt time.Time) {
	snapshot := make([]model.Restaurant, len(restaurants))
	copy(snapshot, restaurants)

	byKey := make(map[string]int, len(snapshot))
	for i, r := range snapshot {
		if _, exists := byKey[r.Key()]; !exists {
			byKey[r.Key()] = i
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.restaurants = snapshot
	c.byKey = byKey
	c.loadedAt = loadedAt
	c.loaded = true
}

// All は全店舗を返す。呼び出し側は返されたスライスを変更してはならない。
func (c *Catalog) All() []model.Restaurant {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.restaurants
}

// Find はKeyで店舗を検索する。
func (c *Catalog) Find(key string) (model.Restaurant, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byKey[key]
	if !ok {
		return model.Restaurant{}, false
	}
	return c.restaurants[i], true
}

// Len は店舗数を返す。
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.restaurants)
}

// Loaded はデータセットの読み込みに成功したかを返す。
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// LoadedAt は読み込み時刻を返す。
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}
