package security

import (
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// DealSanitizer はデザイナーが入力したキャンペーン説明文とURLを無害化する。
// bluemondayのポリシーは生成後に変更しないため、複数のゴルーチンから安全に使用できる。
type DealSanitizer struct {
	policy *bluemonday.Policy
}

// NewDealSanitizer はDealSanitizerを生成する。
//
// 説明文で許可するのは段落・改行・リスト・強調・リンクのみ。
// リンクは絶対URLに限り、target="_blank" と rel="noopener noreferrer" を付与する。
// 画像はimage_urlで別途扱うため、説明文中のimgは除去する。
func NewDealSanitizer() *DealSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements("p", "br", "ul", "ol", "li", "strong", "em")

	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("https", "http", "mailto")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &DealSanitizer{policy: p}
}

// Description は説明文のHTMLをサニタイズする。同一入力に対して常に同一出力を返す。
func (s *DealSanitizer) Description(rawHTML string) string {
	return strings.TrimSpace(s.policy.Sanitize(rawHTML))
}

// ImageURL は画像URLを検証し、httpsの絶対URLでなければ空文字列を返す。
func (s *DealSanitizer) ImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Scheme, "https") || u.Host == "" {
		return ""
	}
	return u.String()
}
