// Package prefs は端末ごとに保存する表示設定を扱う。
// 保存対象はダークモードの真偽値だけで、Cookieに保持する。
package prefs

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DarkModeCookieName はダークモード設定を保持するCookie名。
const DarkModeCookieName = "nycbites_dark_mode"

// colorSchemeHint はOSの配色設定を伝えるクライアントヒント。
const colorSchemeHint = "Sec-CH-Prefers-Color-Scheme"

const cookieMaxAge = 365 * 24 * time.Hour

// Theme は解決済みの表示設定。
type Theme struct {
	DarkMode bool `json:"dark_mode"`
	// Source は値の出どころ（cookie, client_hint, default）。
	Source string `json:"source"`
}

// Resolve はリクエストからダークモード設定を解決する。
// Cookieが有効ならそれを使い、なければOSの配色設定、どちらもなければ false。
func Resolve(r *http.Request) Theme {
	if c, err := r.Cookie(DarkModeCookieName); err == nil {
		if v, err := strconv.ParseBool(c.Value); err == nil {
			return Theme{DarkMode: v, Source: "cookie"}
		}
	}

	if hint := strings.Trim(strings.TrimSpace(r.Header.Get(colorSchemeHint)), `"`); hint != "" {
		return Theme{DarkMode: strings.EqualFold(hint, "dark"), Source: "client_hint"}
	}

	return Theme{DarkMode: false, Source: "default"}
}

// Write はダークモード設定をCookieに書き込む。
func Write(w http.ResponseWriter, darkMode, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     DarkModeCookieName,
		Value:    strconv.FormatBool(darkMode),
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// AcceptHints はクライアントヒントを要求するレスポンスヘッダーを設定する。
func AcceptHints(w http.ResponseWriter) {
	w.Header().Set("Accept-CH", colorSchemeHint)
	w.Header().Add("Vary", colorSchemeHint)
}
