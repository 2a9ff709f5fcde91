package scrape

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/hubscout/internal/domain"
)

// LinkRules 是详情页链接分类的声明式规则。新增托管站点只改表，不改流程。
type LinkRules struct {
	// Scope 是候选锚点的选择器；为空时扫描全页 "a[href]"。
	Scope string
	// HostMarkers：href 包含其中任意一个（大小写不敏感）即判定为下载/播放链接。
	HostMarkers []string
	// TextKeywords：可见文本包含其中任意一个（大小写不敏感）即判定为下载/播放链接。
	TextKeywords []string
}

// DefaultLinkRules 覆盖目前见到的托管站点与按钮文案。
var DefaultLinkRules = LinkRules{
	HostMarkers: []string{
		"hubcloud",
		"hubcdn",
		"hubdrive",
		"drive",
		"download",
		"pixeldrain",
		"streamtape",
		"gadgetsweb",
		"gdflix",
		"gofile",
	},
	TextKeywords: []string{
		"download",
		"watch",
		"stream",
		"play",
	},
}

func (r LinkRules) scope() string {
	if s := strings.TrimSpace(r.Scope); s != "" {
		return s
	}
	return "a[href]"
}

func (r LinkRules) qualifies(foldedHref, foldedText string) bool {
	return containsAny(foldedHref, r.HostMarkers) || containsAny(foldedText, r.TextKeywords)
}

// ExtractLinks 扫描详情页锚点，按文档顺序返回合格的 RawLink。
//
// 剧集过滤：query 同时有 season 与 episode 时，锚点可见文本必须同时包含
// "s"+两位季号 与 "e"+两位集号（大小写不敏感）。不满足的直接丢弃，
// 即使已经按 host/关键词合格；过滤后为空也不回退到未过滤结果。
func ExtractLinks(html []byte, pageURL string, q domain.MediaQuery, rules LinkRules) ([]domain.RawLink, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	var seasonTok, episodeTok string
	if q.HasEpisode() {
		seasonTok = fmt.Sprintf("s%02d", q.Season)
		episodeTok = fmt.Sprintf("e%02d", q.Episode)
	}

	out := make([]domain.RawLink, 0, 32)
	doc.Find(rules.scope()).Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		text := normSpace(s.Text())
		ft := fold(text)
		if !rules.qualifies(fold(href), ft) {
			return
		}
		if seasonTok != "" && (!strings.Contains(ft, seasonTok) || !strings.Contains(ft, episodeTok)) {
			return
		}
		out = append(out, domain.RawLink{Href: resolveURL(pageURL, href), Text: text})
	})
	return out, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, fold(sub)) {
			return true
		}
	}
	return false
}
