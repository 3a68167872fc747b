// Package state は絞り込み条件の状態管理を行う。
//
// FilterState は常に値全体で差し替えられ、変更のたびに購読者へ同期的に通知される。
package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hitoshi/nycbites/internal/model"
)

// Listener は状態変更の通知を受け取る関数。
type Listener func(model.FilterState)

// Locator は利用者の現在位置を1回だけ取得する。
type Locator interface {
	Locate(ctx context.Context) (model.LatLng, error)
}

// LocatorFunc は関数をLocatorとして扱うためのアダプタ。
type LocatorFunc func(ctx context.Context) (model.LatLng, error)

// Locate はLocatorインターフェースを実装する。
func (f LocatorFunc) Locate(ctx context.Context) (model.LatLng, error) {
	return f(ctx)
}

type subscription struct {
	id int
	fn Listener
}

// Store は現在のFilterStateを保持し、購読者に変更を通知する。
type Store struct {
	mu          sync.Mutex
	state       model.FilterState
	subscribers []subscription
	nextID      int
	logger      *slog.Logger
}

// NewStore は初期状態を持つStoreを生成する。
func NewStore(initial model.FilterState, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		state:  initial.Clone(),
		logger: logger,
	}
}

// State は現在の状態の複製を返す。
func (s *Store) State() model.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Dispatch はActionを順に適用して状態を差し替え、購読順に1回だけ通知する。
func (s *Store) Dispatch(actions ...Action) model.FilterState {
	s.mu.Lock()
	for _, a := range actions {
		s.state = Reduce(s.state, a)
	}
	current := s.state.Clone()
	subs := make([]subscription, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(current.Clone())
	}
	return current
}

// Subscribe は購読者を登録し、登録解除用の関数を返す。
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// RequestNearMe は現在位置を1回だけ取得し、結果に応じて1回の状態遷移を行う。
// 成功時は位置を設定して「近くの店」を有効にする。
// 失敗時はログに記録し、トグルをオフに戻す。リトライはしない。
func (s *Store) RequestNearMe(ctx context.Context, locator Locator) error {
	loc, err := locator.Locate(ctx)
	if err != nil {
		s.logger.Warn("現在位置の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		s.Dispatch(SetNearMe{Enabled: false})
		return err
	}

	s.Dispatch(SetUserLocation{Location: &loc}, SetNearMe{Enabled: true})
	return nil
}
