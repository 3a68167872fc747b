package state

import "github.com/hitoshi/nycbites/internal/model"

// Action はFilterStateに対する1回の操作を表す。
type Action interface {
	isAction()
}

// SetSearch は検索文字列を置き換える。
type SetSearch struct{ Query string }

// ToggleBorough は区の選択を反転する。
type ToggleBorough struct{ Borough model.Borough }

// SetLunch はランチ営業の条件を切り替える。
type SetLunch struct{ Enabled bool }

// TogglePublication は出典の選択を反転する。
type TogglePublication struct{ Source string }

// TogglePriceRange は価格帯の選択を反転する。
type TogglePriceRange struct{ Value string }

// ToggleCuisine は料理ジャンルの選択を反転する。
type ToggleCuisine struct{ Value string }

// ToggleNeighborhood は地域名の選択を反転する。
type ToggleNeighborhood struct{ Value string }

// SetNearMe は「近くの店」を切り替える。
type SetNearMe struct{ Enabled bool }

// SetUserLocation は利用者の位置を設定する。nil で位置を破棄する。
type SetUserLocation struct{ Location *model.LatLng }

// Reset は初期状態に戻す。
type Reset struct{}

func (SetSearch) isAction()          {}
func (ToggleBorough) isAction()      {}
func (SetLunch) isAction()           {}
func (TogglePublication) isAction()  {}
func (TogglePriceRange) isAction()   {}
func (ToggleCuisine) isAction()      {}
func (ToggleNeighborhood) isAction() {}
func (SetNearMe) isAction()          {}
func (SetUserLocation) isAction()    {}
func (Reset) isAction()              {}

// Reduce は現在の状態にActionを適用した新しい状態を返す。
// 引数の状態は変更しない。
func Reduce(s model.FilterState, a Action) model.FilterState {
	next := s.Clone()

	switch a := a.(type) {
	case SetSearch:
		next.SearchQuery = a.Query
	case ToggleBorough:
		next.Boroughs = toggle(next.Boroughs, a.Borough)
	case SetLunch:
		next.OpenForLunch = a.Enabled
	case TogglePublication:
		next.Publications = toggle(next.Publications, a.Source)
	case TogglePriceRange:
		next.PriceRanges = toggle(next.PriceRanges, a.Value)
	case ToggleCuisine:
		next.Cuisines = toggle(next.Cuisines, a.Value)
	case ToggleNeighborhood:
		next.Neighborhoods = toggle(next.Neighborhoods, a.Value)
	case SetNearMe:
		next.NearMe = a.Enabled
	case SetUserLocation:
		if a.Location == nil {
			next.UserLocation = nil
		} else {
			loc := *a.Location
			next.UserLocation = &loc
		}
	case Reset:
		next = model.DefaultFilterState()
	}

	return next
}

// toggle は値が含まれていれば取り除き、含まれていなければ末尾に追加する。
func toggle[T comparable](set []T, v T) []T {
	for i, existing := range set {
		if existing == v {
			return append(set[:i:i], set[i+1:]...)
		}
	}
	return append(set, v)
}
