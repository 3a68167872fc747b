// Package hours は店舗の営業時間帯（毎週繰り返すPeriod）の評価を行う。
//
// 2つのモードを提供する:
//   - IsOpenDuring: 固定の時間帯（ランチ 12:00〜14:00）を丸ごとカバーするPeriodがあるか
//   - IsOpenAt: 指定時刻に営業中か（Periodがない場合は「不明」）
package hours

import (
	"time"
	_ "time/tzdata" // distrolessイメージでもAmerica/New_Yorkを解決するため

	"github.com/hitoshi/nycbites/internal/model"
)

// minutesPerDay は1日の分数。
const minutesPerDay = 24 * 60

// ReferenceZone は営業時間を解釈する基準タイムゾーン（米国東部）。
const ReferenceZone = "America/New_York"

// Window は1日の中の固定時間帯 [StartMinute, EndMinute) を表す。
type Window struct {
	StartMinute int
	EndMinute   int
}

// LunchWindow はランチフィルタで使う 12:00〜14:00。
var LunchWindow = Window{StartMinute: 12 * 60, EndMinute: 14 * 60}

// Instant は基準タイムゾーンにおける曜日と0時からの経過分。
type Instant struct {
	Day         int // 0 = 日曜日
	MinuteOfDay int
}

var referenceLocation = mustLoadLocation(ReferenceZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("failed to load time zone " + name + ": " + err.Error())
	}
	return loc
}

// IsOpenDuring は periods のいずれかが時間帯 w を丸ごとカバーするかを返す。
// 曜日は見ない。ある曜日だけランチ営業している店も、どの曜日に評価しても true になる。
func IsOpenDuring(periods []model.Period, w Window) bool {
	for _, p := range periods {
		if p.Open.Minutes() <= w.StartMinute && p.Close.Minutes() >= w.EndMinute {
			return true
		}
	}
	return false
}

// IsOpenAt は指定時刻に営業中のPeriodがあるかを返す。
// periods が空の場合は nil（不明）を返し、「閉店」とは区別する。
func IsOpenAt(periods []model.Period, at Instant) *bool {
	if len(periods) == 0 {
		return nil
	}

	open := false
	for _, p := range periods {
		if periodActive(p, at) {
			open = true
			break
		}
	}
	return &open
}

func periodActive(p model.Period, at Instant) bool {
	openMin := p.Open.Minutes()
	closeMin := p.Close.Minutes()

	if !p.Overnight() {
		return at.Day == p.Open.Day && openMin <= at.MinuteOfDay && at.MinuteOfDay < closeMin
	}

	// 日付をまたぐPeriod: 開店日の開店時刻以降、または閉店日の閉店時刻より前
	return (at.Day == p.Open.Day && at.MinuteOfDay >= openMin) ||
		(at.Day == p.Close.Day && at.MinuteOfDay < closeMin)
}

// InstantAt は t を基準タイムゾーンの曜日・経過分に変換する。
func InstantAt(t time.Time) Instant {
	local := t.In(referenceLocation)
	return Instant{
		Day:         int(local.Weekday()),
		MinuteOfDay: (local.Hour()*60 + local.Minute()) % minutesPerDay,
	}
}

// OpenNow は時刻 t における営業状態を返す。Periodがない場合は nil。
func OpenNow(periods []model.Period, t time.Time) *bool {
	return IsOpenAt(periods, InstantAt(t))
}
