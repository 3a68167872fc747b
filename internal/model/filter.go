package model

// FilterState はユーザーが選択中の絞り込み条件を表す。
// 変更時は部分更新せず、値全体を差し替える。
// 各集合フィールドは空のとき「制限なし」を意味する。
type FilterState struct {
	SearchQuery  string    `json:"search_query"`
	Boroughs     []Borough `json:"boroughs"`
	OpenForLunch bool      `json:"open_for_lunch"`
	Publications []string  `json:"publications"`

	// 旧バリアントの条件
	PriceRanges   []string `json:"price_ranges"`
	Cuisines      []string `json:"cuisines"`
	Neighborhoods []string `json:"neighborhoods"`
	NearMe        bool     `json:"near_me"`
	UserLocation  *LatLng  `json:"user_location,omitempty"`
}

// DefaultFilterState は起動時の初期状態を返す。
// 出典は全選択（NYT, NYM）から始まり、UI から空集合にはならない。
func DefaultFilterState() FilterState {
	pubs := make([]string, len(AllSources))
	copy(pubs, AllSources)
	return FilterState{Publications: pubs}
}

// ProximityActive は「近くの店」ステージが有効かを返す。
func (f FilterState) ProximityActive() bool {
	return f.NearMe && f.UserLocation != nil
}

// Clone はスライスを共有しない複製を返す。
func (f FilterState) Clone() FilterState {
	out := f
	out.Boroughs = append([]Borough(nil), f.Boroughs...)
	out.Publications = append([]string(nil), f.Publications...)
	out.PriceRanges = append([]string(nil), f.PriceRanges...)
	out.Cuisines = append([]string(nil), f.Cuisines...)
	out.Neighborhoods = append([]string(nil), f.Neighborhoods...)
	if f.UserLocation != nil {
		loc := *f.UserLocation
		out.UserLocation = &loc
	}
	return out
}
