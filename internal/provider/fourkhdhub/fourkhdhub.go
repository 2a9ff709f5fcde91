package fourkhdhub

import (
	"net/http"
	"strings"

	"github.com/John-Robertt/hubscout/internal/scrape"
)

// Name 是 registry 中的名字。
const Name = "4khdhub"

// DefaultBaseURL 是当前可用域名；站点经常换域名，可通过配置覆盖。
const DefaultBaseURL = "https://4khdhub.dad"

// Site 返回 4KHDHub 的站点描述。
//
// 搜索是 WordPress 风格的 "/?s="，结果是 a.movie-card 卡片；
// 详情页的下载按钮散落在全文中，因此链接扫描范围是整页。
func Site(baseURL string) scrape.Site {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	h := make(http.Header)
	h.Set("Referer", base+"/")
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	return scrape.Site{
		Name:    Name,
		BaseURL: base,
		Cards: scrape.CardSelectors{
			Card:  "a.movie-card",
			Title: ".movie-card-title",
			Meta:  ".movie-card-meta",
		},
		Links:  scrape.DefaultLinkRules,
		Header: h,
	}
}

// New 组装 4KHDHub 的 pipeline。
func New(baseURL string, d scrape.Deps) *scrape.Pipeline {
	return d.Pipeline(Site(baseURL))
}
