package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/hitoshi/nycbites/internal/config"
	"github.com/hitoshi/nycbites/internal/model"
	"github.com/hitoshi/nycbites/internal/state"
	"github.com/hitoshi/nycbites/internal/view"
)

// defaultTableWidth は端末幅を取得できない場合の表の幅。
const defaultTableWidth = 100

// minNameWidth は店名列の最小幅。
const minNameWidth = 12

// listOptions はlistサブコマンドのフラグ。
type listOptions struct {
	query        string
	boroughs     string
	lunch        bool
	publications string
	near         string
	selected     string
	limit        int
}

// parseListOptions はlistサブコマンドの引数を解析する。
func parseListOptions(args []string, stderr io.Writer) (listOptions, error) {
	var opts listOptions

	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.query, "q", "", "店名・料理ジャンル・説明文の部分一致検索")
	fs.StringVar(&opts.boroughs, "borough", "", "区（カンマ区切り）例: manhattan,brooklyn")
	fs.BoolVar(&opts.lunch, "lunch", false, "12:00〜14:00に営業している店のみ")
	fs.StringVar(&opts.publications, "publication", "", "出典（カンマ区切り）例: NYT")
	fs.StringVar(&opts.near, "near", "", "現在位置 lat,lng を指定すると近い順に並べる")
	fs.StringVar(&opts.selected, "select", "", "選択状態にする店舗のキー")
	fs.IntVar(&opts.limit, "limit", 0, "表示件数の上限（0は無制限）")

	if err := fs.Parse(args); err != nil {
		return listOptions{}, err
	}
	return opts, nil
}

// runList はデータセットを読み込み、絞り込み結果を表形式でstdoutに出力する。
// サーバーと同じ状態ストアと絞り込みを使う。
func runList(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, args []string) error {
	opts, err := parseListOptions(args, stderr)
	if err != nil {
		return fmt.Errorf("invalid list arguments: %w", err)
	}

	actions, err := listActions(opts)
	if err != nil {
		return err
	}

	log := slog.Default()
	result, err := loadDataset(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	store := state.NewStore(model.DefaultFilterState(), log)
	explorer := state.NewExplorer(store, result.Restaurants)
	defer explorer.Close()

	store.Dispatch(actions...)

	if opts.near != "" {
		loc, err := parseLatLng(opts.near)
		if err != nil {
			return err
		}
		locator := state.LocatorFunc(func(context.Context) (model.LatLng, error) {
			return loc, nil
		})
		if err := store.RequestNearMe(ctx, locator); err != nil {
			return fmt.Errorf("failed to resolve location: %w", err)
		}
	}

	if opts.selected != "" && !explorer.Select(opts.selected) {
		log.Warn("選択した店舗は絞り込み結果に含まれていません",
			slog.String("key", opts.selected),
		)
	}

	results := explorer.Results()
	total := len(results)
	if opts.limit > 0 && len(results) > opts.limit {
		results = results[:opts.limit]
	}

	cards := view.ListCards(results, time.Now(), explorer.SelectedKey(), store.State().UserLocation)
	renderTable(stdout, cards, terminalWidth(stdout))
	fmt.Fprintf(stdout, "\n%d of %d restaurants\n", total, len(result.Restaurants))

	return nil
}

// listActions はフラグをFilterStateへのActionに変換する。
func listActions(opts listOptions) ([]state.Action, error) {
	actions := []state.Action{state.SetSearch{Query: opts.query}}

	for _, raw := range splitFlag(opts.boroughs) {
		b, err := model.ParseBorough(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --borough: %w", err)
		}
		actions = append(actions, state.ToggleBorough{Borough: b})
	}

	if opts.lunch {
		actions = append(actions, state.SetLunch{Enabled: true})
	}

	// 出典は全選択から始まるため、指定されなかった出典をトグルで外す
	if pubs := splitFlag(opts.publications); len(pubs) > 0 {
		wanted := make(map[string]bool, len(pubs))
		for _, p := range pubs {
			source, ok := knownSource(p)
			if !ok {
				return nil, fmt.Errorf("invalid --publication: unknown publication %q", p)
			}
			wanted[source] = true
		}
		for _, source := range model.AllSources {
			if !wanted[source] {
				actions = append(actions, state.TogglePublication{Source: source})
			}
		}
	}

	return actions, nil
}

func knownSource(raw string) (string, bool) {
	for _, s := range model.AllSources {
		if strings.EqualFold(raw, s) {
			return s, true
		}
	}
	return "", false
}

// parseLatLng は "lat,lng" 形式の座標を解析する。
func parseLatLng(s string) (model.LatLng, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return model.LatLng{}, errors.New("--near must be in lat,lng format")
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLng != nil {
		return model.LatLng{}, fmt.Errorf("--near has non-numeric coordinates: %q", s)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return model.LatLng{}, fmt.Errorf("--near is out of range: %q", s)
	}
	return model.LatLng{Lat: lat, Lng: lng}, nil
}

func splitFlag(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// terminalWidth はwが端末なら桁数を、そうでなければ既定値を返す。
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultTableWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultTableWidth
	}
	return width
}

// column は表の1列。
type column struct {
	title string
	width int
	value func(view.Card) string
}

// renderTable はカードを固定幅の表として書き出す。
// 店名列は残りの幅を使い、全角文字は表示幅で数える。
func renderTable(w io.Writer, cards []view.Card, width int) {
	cols := []column{
		{"", 1, func(c view.Card) string {
			if c.Selected {
				return "*"
			}
			return ""
		}},
		{"#", 4, func(c view.Card) string { return strconv.Itoa(c.CombinedOrder) }},
		{"NAME", 0, func(c view.Card) string { return c.Name }},
		{"CUISINE", 14, func(c view.Card) string { return c.Cuisine }},
		{"BOROUGH", 13, func(c view.Card) string { return string(c.Borough) }},
		{"PRICE", 11, func(c view.Card) string { return c.PriceRange }},
		{"OPEN", 4, func(c view.Card) string { return formatOpen(c.OpenNow) }},
		{"SOURCES", 7, func(c view.Card) string { return strings.Join(c.Sources, ",") }},
	}

	hasDistance := false
	for _, c := range cards {
		if c.DistanceMiles != nil {
			hasDistance = true
			break
		}
	}
	if hasDistance {
		cols = append(cols, column{"MILES", 6, func(c view.Card) string {
			if c.DistanceMiles == nil {
				return ""
			}
			return strconv.FormatFloat(*c.DistanceMiles, 'f', 2, 64)
		}})
	}

	fixed := 0
	for _, col := range cols {
		fixed += col.width + 1
	}
	nameWidth := width - fixed
	if nameWidth < minNameWidth {
		nameWidth = minNameWidth
	}
	for i := range cols {
		if cols[i].width == 0 {
			cols[i].width = nameWidth
		}
	}

	cells := make([]string, len(cols))
	for i, col := range cols {
		cells[i] = runewidth.FillRight(col.title, col.width)
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, " "), " "))

	for _, card := range cards {
		for i, col := range cols {
			cells[i] = runewidth.FillRight(runewidth.Truncate(col.value(card), col.width, "…"), col.width)
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, " "), " "))
	}
}

func formatOpen(open *bool) string {
	switch {
	case open == nil:
		return "-"
	case *open:
		return "yes"
	default:
		return "no"
	}
}
