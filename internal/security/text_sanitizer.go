// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ユーザー名やタスク件名はプレーンテキストとして保存し、書き換えない。
// HTMLマークアップを含む入力は保存前に拒否する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextPolicy はプレーンテキスト入力にHTMLマークアップが含まれているかを判定する。
// bluemondayのStrictPolicyで除去される部分があれば、その入力はマークアップを含む。
type TextPolicy struct {
	policy *bluemonday.Policy
}

// NewTextPolicy はTextPolicyを生成する。StrictPolicyはスレッドセーフに使用できる。
func NewTextPolicy() *TextPolicy {
	return &TextPolicy{
		policy: bluemonday.StrictPolicy(),
	}
}

// Strip はすべてのHTMLタグを除去したテキストを返す。
// script, styleなどの要素は中身ごと除去される。
// StrictPolicyは残したテキストをHTMLエスケープして返すため、元の文字に戻してから返す。
func (p *TextPolicy) Strip(text string) string {
	if text == "" {
		return ""
	}
	return html.UnescapeString(p.policy.Sanitize(text))
}

// IsPlainText はtextがマークアップを含まないプレーンテキストかどうかを返す。
// &, <, > などの記号は、ブラウザがタグとして解釈しない並びであれば許容する。
func (p *TextPolicy) IsPlainText(text string) bool {
	return p.Strip(text) == normalizeText(text)
}

// normalizeText はHTMLトークナイザーと同じ改行・文字参照の扱いにそろえる。
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return html.UnescapeString(text)
}
