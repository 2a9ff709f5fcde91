package xdmovies

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/John-Robertt/hubscout/internal/scrape"
)

// Name 是 registry 中的名字。
const Name = "xdmovies"

// DefaultBaseURL 是当前可用域名，可通过配置覆盖。
const DefaultBaseURL = "https://xdmovies.site"

// Site 返回 XDMovies 的站点描述。
//
// 搜索走 JSON 接口（结果带 tmdb_id，用于交叉校验），接口要求 XHR 头；
// 详情页的链接只在下载区与分集卡片里。
func Site(baseURL string) scrape.Site {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	h := make(http.Header)
	h.Set("Referer", base+"/")
	h.Set("X-Requested-With", "XMLHttpRequest")

	links := scrape.DefaultLinkRules
	links.Scope = "div.download-item a[href], div.episode-card a[href]"
	return scrape.Site{
		Name:      Name,
		BaseURL:   base,
		SearchURL: searchURL,
		Links:     links,
		Header:    h,
	}
}

func searchURL(base, title string) string {
	return base + "/php/search_api.php?query=" + url.QueryEscape(title) + "&fuzzy=true"
}

// New 组装 XDMovies 的 pipeline。
func New(baseURL string, d scrape.Deps) *scrape.Pipeline {
	return d.Pipeline(Site(baseURL))
}
