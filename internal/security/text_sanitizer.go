// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はスクレイピング由来の説明文からHTMLを取り除き、
// 一覧やポップアップにそのまま表示できるプレーンテキストにする。
package security

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はテキストのサニタイズ機能のインターフェースを定義する。
// データセット読み込み時に説明文へ適用される。
type TextSanitizerService interface {
	// Sanitize はHTMLタグを除去し、連続する空白を1つにまとめたテキストを返す。
	// script, style の中身は残さない。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	blockBoundary = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/h[1-6])\b[^>]*>`)
)

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicyを保持し、スレッドセーフにサニタイズ処理を行う。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はHTMLを除去したプレーンテキストを返す。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}

	// 元データには改行がエスケープされたまま "\n" として残っているものがある
	text := strings.ReplaceAll(raw, `\n`, " ")

	// ブロック要素の境界で単語が連結しないよう空白に置き換える
	text = blockBoundary.ReplaceAllString(text, " ")

	text = s.policy.Sanitize(text)

	// StrictPolicyはエスケープ済みのテキストを返すため、表示用に戻す
	text = html.UnescapeString(text)

	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}
