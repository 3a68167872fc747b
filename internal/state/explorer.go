package state

import (
	"sync"

	"github.com/hitoshi/nycbites/internal/filter"
	"github.com/hitoshi/nycbites/internal/model"
)

// Explorer はStoreとデータセットを結び付け、状態が変わるたびに
// 表示対象を全件から再計算する。地図とリストが共有する選択状態も保持する。
type Explorer struct {
	mu          sync.RWMutex
	store       *Store
	restaurants []model.Restaurant
	derived     []model.Restaurant
	selected    string
	unsubscribe func()
}

// NewExplorer はExplorerを生成し、Storeの変更を購読する。
func NewExplorer(store *Store, restaurants []model.Restaurant) *Explorer {
	e := &Explorer{store: store}
	e.restaurants = restaurants
	e.recompute(store.State())
	e.unsubscribe = store.Subscribe(e.recompute)
	return e
}

// SetDataset はデータセットを差し替えて再計算する。
func (e *Explorer) SetDataset(restaurants []model.Restaurant) {
	e.mu.Lock()
	e.restaurants = restaurants
	e.mu.Unlock()
	e.recompute(e.store.State())
}

// Results は現在の表示対象を返す。
func (e *Explorer) Results() []model.Restaurant {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.derived
}

// Select は表示対象に含まれる店舗を選択する。含まれない場合は false を返す。
func (e *Explorer) Select(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if indexOf(e.derived, key) < 0 {
		return false
	}
	e.selected = key
	return true
}

// ClearSelection は選択を解除する。
func (e *Explorer) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = ""
}

// SelectedKey は選択中の店舗のKeyを返す。未選択なら空文字列。
func (e *Explorer) SelectedKey() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selected
}

// Selected は選択中の店舗を返す。
func (e *Explorer) Selected() (model.Restaurant, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i := indexOf(e.derived, e.selected)
	if e.selected == "" || i < 0 {
		return model.Restaurant{}, false
	}
	return e.derived[i], true
}

// Close は購読を解除する。
func (e *Explorer) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
}

func (e *Explorer) recompute(f model.FilterState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.derived = filter.Apply(e.restaurants, f)
	// 絞り込みで外れた店舗の選択は解除する
	if e.selected != "" && indexOf(e.derived, e.selected) < 0 {
		e.selected = ""
	}
}

func indexOf(restaurants []model.Restaurant, key string) int {
	for i, r := range restaurants {
		if r.Key() == key {
			return i
		}
	}
	return -1
}
