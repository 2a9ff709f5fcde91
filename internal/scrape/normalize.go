package scrape

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/John-Robertt/hubscout/internal/domain"
)

// hostRule：host 同时包含 tokens 中所有子串时归类为 label。
// 表按优先级排列，更具体的变体（CDN 节点）必须排在通用品牌之前。
type hostRule struct {
	tokens []string
	label  string
}

var hostRules = []hostRule{
	{tokens: []string{"hubcloud", "fsl"}, label: "HubCloud FSL"},
	{tokens: []string{"hubcloud", "s3"}, label: "HubCloud S3"},
	{tokens: []string{"hubcloud", "buzz"}, label: "HubCloud Buzz"},
	{tokens: []string{"hubcloud"}, label: "HubCloud"},
	{tokens: []string{"hubcdn"}, label: "HubCdn"},
	{tokens: []string{"hubdrive"}, label: "HubDrive"},
	{tokens: []string{"hblinks"}, label: "HbLinks"},
	{tokens: []string{"hubstream"}, label: "Hubstream"},
	{tokens: []string{"pixeldrain"}, label: "Pixeldrain"},
	{tokens: []string{"streamtape"}, label: "StreamTape"},
	{tokens: []string{"gdflix"}, label: "GDFlix"},
	{tokens: []string{"gofile"}, label: "GoFile"},
}

// qualityRule：文本包含任一 marker 即为该档位。按从高到低排列，先命中者胜。
type qualityRule struct {
	markers []string
	quality domain.Quality
}

var qualityRules = []qualityRule{
	{markers: []string{"2160p", "4k"}, quality: domain.Quality2160p},
	{markers: []string{"1440p"}, quality: domain.Quality1440p},
	{markers: []string{"1080p"}, quality: domain.Quality1080p},
	{markers: []string{"720p"}, quality: domain.Quality720p},
	{markers: []string{"480p"}, quality: domain.Quality480p},
	{markers: []string{"360p"}, quality: domain.Quality360p},
}

// defaultQuality 是没有任何画质标记时的基线档位（刻意取 1080p，而不是 Unknown）。
const defaultQuality = domain.Quality1080p

var sizeRE = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(GB|MB|TB)`)

// Normalizer 把解析后的链接变成最终输出。
type Normalizer struct {
	Source    string // 站点名（写入 StreamDescriptor.Source）
	UserAgent string // 写入 headers 的 UA，必须与实际请求使用的一致
}

// Normalize 按输入顺序生成 StreamDescriptor：按最终 URL 去重（先到者胜，
// 派生字段全部来自第一次出现的链接文本）。
func (n Normalizer) Normalize(links []domain.ResolvedLink, info domain.MediaInfo, q domain.MediaQuery, match domain.SelectedMatch) []domain.StreamDescriptor {
	out := make([]domain.StreamDescriptor, 0, len(links))
	seen := make(map[string]struct{}, len(links))
	title := DisplayTitle(info, q)

	for _, l := range links {
		if l.URL == "" {
			continue
		}
		if _, ok := seen[l.URL]; ok {
			continue
		}
		seen[l.URL] = struct{}{}

		provider := ClassifyHost(l.URL)
		quality := ExtractQuality(l.Link.Text)
		out = append(out, domain.StreamDescriptor{
			Name:      fmt.Sprintf("%s - %s", provider, quality),
			Title:     title,
			URL:       l.URL,
			Quality:   quality,
			SizeBytes: ExtractSize(l.Link.Text),
			Headers: map[string]string{
				"User-Agent": n.UserAgent,
				"Referer":    match.URL,
			},
			ProviderID: provider,
			Source:     n.Source,
		})
	}
	return out
}

// ClassifyHost 按 hostRules 归类托管站点；都不命中时取去掉 "www." 后的第一段域名。
func ClassifyHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "unknown"
	}
	for _, r := range hostRules {
		if containsAll(host, r.tokens) {
			return r.label
		}
	}
	host = strings.TrimPrefix(host, "www.")
	if i := strings.IndexByte(host, '.'); i > 0 {
		return host[:i]
	}
	return host
}

// ExtractQuality 从链接文本中取画质；没有标记时返回基线 1080p。
func ExtractQuality(text string) domain.Quality {
	t := fold(text)
	for _, r := range qualityRules {
		if containsAny(t, r.markers) {
			return r.quality
		}
	}
	return defaultQuality
}

// ExtractSize 从链接文本中取 "<数字> GB/MB/TB"，按二进制单位换算为字节；没有则为 SizeUnknown。
func ExtractSize(text string) int64 {
	m := sizeRE.FindStringSubmatch(text)
	if m == nil {
		return domain.SizeUnknown
	}
	unit := strings.ToUpper(m[2])[:1] + "iB"
	n, err := humanize.ParseBytes(m[1] + " " + unit)
	if err != nil {
		return domain.SizeUnknown
	}
	return int64(n)
}

// DisplayTitle 生成展示标题：剧集 "Title S01E02"，电影 "Title (Year)"，年份未知时只有标题。
func DisplayTitle(info domain.MediaInfo, q domain.MediaQuery) string {
	if tag := q.EpisodeTag(); tag != "" {
		return info.Title + " " + tag
	}
	if info.Year > 0 {
		return fmt.Sprintf("%s (%d)", info.Title, info.Year)
	}
	return info.Title
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
