package filter

import (
	"sort"

	"github.com/hitoshi/nycbites/internal/geo"
	"github.com/hitoshi/nycbites/internal/hours"
	"github.com/hitoshi/nycbites/internal/model"
)

// FacetCount は選択肢とその件数。
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FacetSet はフィルタUIの選択肢を組み立てるための集計結果。
type FacetSet struct {
	Boroughs     []FacetCount `json:"boroughs"`
	Publications []FacetCount `json:"publications"`
	PriceRanges  []FacetCount `json:"price_ranges"`
	Cuisines     []FacetCount `json:"cuisines"`
	Unclassified int          `json:"unclassified"` // 区を判定できない店舗数
	WithLunch    int          `json:"with_lunch"`
	Total        int          `json:"total"`
}

// Facets は全店舗を対象に各選択肢の件数を数える。
// 区と出典は固定の表示順、価格帯と料理ジャンルは件数の多い順（同数は名前順）に並べる。
func Facets(restaurants []model.Restaurant) FacetSet {
	boroughCounts := make(map[model.Borough]int)
	sourceCounts := make(map[string]int)
	priceCounts := make(map[string]int)
	cuisineCounts := make(map[string]int)

	fs := FacetSet{Total: len(restaurants)}

	for _, r := range restaurants {
		if b, ok := geo.Classify(r.FormattedAddress); ok {
			boroughCounts[b]++
		} else {
			fs.Unclassified++
		}
		for _, s := range r.Sources {
			sourceCounts[s]++
		}
		if r.PriceRange != "" {
			priceCounts[r.PriceRange]++
		}
		if r.Cuisine != "" {
			cuisineCounts[r.Cuisine]++
		}
		if hours.IsOpenDuring(r.OpeningHours, hours.LunchWindow) {
			fs.WithLunch++
		}
	}

	for _, b := range model.AllBoroughs {
		fs.Boroughs = append(fs.Boroughs, FacetCount{Value: string(b), Count: boroughCounts[b]})
	}
	for _, s := range model.AllSources {
		fs.Publications = append(fs.Publications, FacetCount{Value: s, Count: sourceCounts[s]})
	}
	fs.PriceRanges = sortedCounts(priceCounts)
	fs.Cuisines = sortedCounts(cuisineCounts)

	return fs
}

func sortedCounts(m map[string]int) []FacetCount {
	out := make([]FacetCount, 0, len(m))
	for v, c := range m {
		out = append(out, FacetCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
