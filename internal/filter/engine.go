// Package filter は店舗一覧の絞り込みと並べ替えを行う。
//
// Apply は全店舗とFilterStateから表示対象を導出する純粋関数で、
// 地図とリストの両方がこの結果を使って描画する。
package filter

import (
	"sort"
	"strings"

	"github.com/hitoshi/nycbites/internal/geo"
	"github.com/hitoshi/nycbites/internal/hours"
	"github.com/hitoshi/nycbites/internal/model"
)

// stage は1つの絞り込み段階。作業集合を受け取り、部分集合を返す。
type stage func(in []model.Restaurant) []model.Restaurant

// Apply はFilterStateに従って店舗を絞り込む。
//
// 段階の適用順序:
//
//	検索 → カテゴリ（価格帯・料理・区・出典） → 地域名 → ランチ → 近い順
//
// 入力スライスは変更しない。近い順が有効でない限り入力の順序を保つ。
func Apply(restaurants []model.Restaurant, f model.FilterState) []model.Restaurant {
	out := make([]model.Restaurant, len(restaurants))
	copy(out, restaurants)

	for _, s := range stages(f) {
		out = s(out)
	}
	return out
}

// stages は有効な条件に対応する段階だけを組み立てる。
func stages(f model.FilterState) []stage {
	var ss []stage

	if f.SearchQuery != "" {
		ss = append(ss, searchStage(f.SearchQuery))
	}
	if len(f.PriceRanges) > 0 {
		ss = append(ss, membershipStage(f.PriceRanges, func(r model.Restaurant) []string {
			return []string{r.PriceRange}
		}))
	}
	if len(f.Cuisines) > 0 {
		ss = append(ss, membershipStage(f.Cuisines, func(r model.Restaurant) []string {
			return []string{r.Cuisine}
		}))
	}
	if len(f.Boroughs) > 0 {
		ss = append(ss, boroughStage(f.Boroughs))
	}
	if len(f.Publications) > 0 {
		ss = append(ss, membershipStage(f.Publications, func(r model.Restaurant) []string {
			return r.Sources
		}))
	}
	if len(f.Neighborhoods) > 0 {
		ss = append(ss, neighborhoodStage(f.Neighborhoods))
	}
	if f.OpenForLunch {
		ss = append(ss, keep(func(r model.Restaurant) bool {
			return hours.IsOpenDuring(r.OpeningHours, hours.LunchWindow)
		}))
	}
	if f.ProximityActive() {
		ss = append(ss, proximityStage(*f.UserLocation))
	}

	return ss
}

// keep は述語を満たすレコードだけを残す段階を返す。
func keep(pred func(model.Restaurant) bool) stage {
	return func(in []model.Restaurant) []model.Restaurant {
		out := make([]model.Restaurant, 0, len(in))
		for _, r := range in {
			if pred(r) {
				out = append(out, r)
			}
		}
		return out
	}
}

// searchStage は名前・料理ジャンル・説明文のいずれかに部分一致するレコードを残す。
func searchStage(query string) stage {
	q := strings.ToLower(query)
	return keep(func(r model.Restaurant) bool {
		return containsFold(r.Name, q) || containsFold(r.Cuisine, q) || containsFold(r.Description, q)
	})
}

// containsFold は s が空でなく、小文字化した s に lowerSub が含まれるかを返す。
func containsFold(s, lowerSub string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), lowerSub)
}

// membershipStage はフィールド値のいずれかが選択集合に含まれるレコードを残す。
// 部分一致ではなく完全一致で判定する。空文字列は不明として一致しない。
func membershipStage(selected []string, values func(model.Restaurant) []string) stage {
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[s] = struct{}{}
	}
	return keep(func(r model.Restaurant) bool {
		for _, v := range values(r) {
			if v == "" {
				continue
			}
			if _, ok := set[v]; ok {
				return true
			}
		}
		return false
	})
}

// boroughStage は住所から判定した区が選択集合に含まれるレコードを残す。
// 区を判定できないレコードは除外する。
func boroughStage(selected []model.Borough) stage {
	set := make(map[model.Borough]struct{}, len(selected))
	for _, b := range selected {
		set[b] = struct{}{}
	}
	return keep(func(r model.Restaurant) bool {
		b, ok := geo.Classify(r.FormattedAddress)
		if !ok {
			return false
		}
		_, hit := set[b]
		return hit
	})
}

// neighborhoodStage は住所に選択した地域名のいずれかを含むレコードを残す。
func neighborhoodStage(selected []string) stage {
	lowered := make([]string, 0, len(selected))
	for _, n := range selected {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			lowered = append(lowered, n)
		}
	}
	return keep(func(r model.Restaurant) bool {
		for _, n := range lowered {
			if containsFold(r.FormattedAddress, n) {
				return true
			}
		}
		return false
	})
}

// proximityStage は座標のないレコードを除外し、利用者からの距離の昇順に並べ替える。
// 距離が同じ場合は元の順序を保つ。
func proximityStage(user model.LatLng) stage {
	return func(in []model.Restaurant) []model.Restaurant {
		type located struct {
			r    model.Restaurant
			dist float64
		}

		withDist := make([]located, 0, len(in))
		for _, r := range in {
			loc, ok := r.Location()
			if !ok {
				continue
			}
			withDist = append(withDist, located{
				r:    r,
				dist: geo.DistanceMiles(user.Lat, user.Lng, loc.Lat, loc.Lng),
			})
		}

		sort.SliceStable(withDist, func(i, j int) bool {
			return withDist[i].dist < withDist[j].dist
		})

		out := make([]model.Restaurant, len(withDist))
		for i, l := range withDist {
			out[i] = l.r
		}
		return out
	}
}
