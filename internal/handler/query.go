package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hitoshi/nycbites/internal/model"
)

// filterQuery はクエリ文字列から復元した絞り込み条件と選択中の店舗。
type filterQuery struct {
	State    model.FilterState
	Selected string
}

// parseFilterQuery はクエリパラメータをFilterStateに変換する。
//
// 対応するパラメータ:
//
//	q, borough, lunch, publication, price, cuisine, neighborhood, near_me, lat, lng, selected
//
// publication が指定されない場合は全出典を対象にする。
// near_me=true でも座標が欠けている・読めない場合は near_me をオフに戻す。
func parseFilterQuery(values url.Values) (filterQuery, error) {
	state := model.DefaultFilterState()

	state.SearchQuery = values.Get("q")

	for _, raw := range splitList(values["borough"]) {
		b, err := model.ParseBorough(raw)
		if err != nil {
			return filterQuery{}, model.NewInvalidBoroughError(raw)
		}
		state.Boroughs = appendUnique(state.Boroughs, b)
	}

	lunch, err := parseBoolParam(values, "lunch")
	if err != nil {
		return filterQuery{}, err
	}
	state.OpenForLunch = lunch

	if pubs, ok := values["publication"]; ok {
		state.Publications = nil
		for _, raw := range splitList(pubs) {
			source, err := parseSource(raw)
			if err != nil {
				return filterQuery{}, err
			}
			state.Publications = appendUnique(state.Publications, source)
		}
	}

	for _, v := range values["price"] {
		if v = strings.TrimSpace(v); v != "" {
			state.PriceRanges = appendUnique(state.PriceRanges, v)
		}
	}
	for _, v := range values["cuisine"] {
		if v = strings.TrimSpace(v); v != "" {
			state.Cuisines = appendUnique(state.Cuisines, v)
		}
	}
	for _, v := range values["neighborhood"] {
		if v = strings.TrimSpace(v); v != "" {
			state.Neighborhoods = appendUnique(state.Neighborhoods, v)
		}
	}

	nearMe, err := parseBoolParam(values, "near_me")
	if err != nil {
		return filterQuery{}, err
	}

	loc, err := parseLocation(values)
	if err != nil {
		return filterQuery{}, err
	}
	state.UserLocation = loc
	// 位置情報がない場合はトグルをオフに戻す
	state.NearMe = nearMe && loc != nil

	return filterQuery{
		State:    state,
		Selected: values.Get("selected"),
	}, nil
}

// parseLocation は lat と lng を読み取る。
// どちらかが欠けている・数値でない場合は nil を返す。範囲外の場合はエラー。
func parseLocation(values url.Values) (*model.LatLng, error) {
	latStr, lngStr := values.Get("lat"), values.Get("lng")
	if latStr == "" || lngStr == "" {
		return nil, nil
	}

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lng, errLng := strconv.ParseFloat(lngStr, 64)
	if errLat != nil || errLng != nil {
		return nil, nil
	}

	if lat < -90 || lat > 90 {
		return nil, model.NewInvalidLocationError(fmt.Sprintf("lat=%s", latStr))
	}
	if lng < -180 || lng > 180 {
		return nil, model.NewInvalidLocationError(fmt.Sprintf("lng=%s", lngStr))
	}

	return &model.LatLng{Lat: lat, Lng: lng}, nil
}

// parseBoolParam は真偽値パラメータを読み取る。未指定は false。
func parseBoolParam(values url.Values, key string) (bool, error) {
	raw := values.Get(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, model.NewInvalidRequestError(fmt.Sprintf("%s must be true or false", key))
	}
	return b, nil
}

// parseSource は出典タグを正規化する。
func parseSource(raw string) (string, error) {
	for _, s := range model.AllSources {
		if strings.EqualFold(raw, s) {
			return s, nil
		}
	}
	return "", model.NewInvalidRequestError(fmt.Sprintf("unknown publication %q", raw))
}

// splitList は繰り返し指定とカンマ区切りの両方を受け付け、空要素を除く。
func splitList(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func appendUnique[T comparable](set []T, v T) []T {
	for _, existing := range set {
		if existing == v {
			return set
		}
	}
	return append(set, v)
}
