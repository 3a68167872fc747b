package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Borough はニューヨーク市の5区を表す。
type Borough string

const (
	BoroughManhattan    Borough = "Manhattan"
	BoroughBrooklyn     Borough = "Brooklyn"
	BoroughQueens       Borough = "Queens"
	BoroughBronx        Borough = "Bronx"
	BoroughStatenIsland Borough = "Staten Island"
)

// AllBoroughs は5区の一覧（表示順）。
var AllBoroughs = []Borough{
	BoroughManhattan,
	BoroughBrooklyn,
	BoroughQueens,
	BoroughBronx,
	BoroughStatenIsland,
}

// ParseBorough は表示名・小文字・ケバブケース（staten-island）のいずれかから Borough を得る。
func ParseBorough(s string) (Borough, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	norm = strings.Join(strings.Fields(norm), " ")

	switch norm {
	case "manhattan":
		return BoroughManhattan, nil
	case "brooklyn":
		return BoroughBrooklyn, nil
	case "queens":
		return BoroughQueens, nil
	case "bronx", "the bronx":
		return BoroughBronx, nil
	case "staten island", "statenisland":
		return BoroughStatenIsland, nil
	default:
		return "", fmt.Errorf("unknown borough: %q", s)
	}
}

// UnmarshalJSON は ParseBorough と同じ表記ゆれを許容する。
func (b *Borough) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBorough(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
