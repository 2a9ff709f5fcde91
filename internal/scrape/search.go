package scrape

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/hubscout/internal/domain"
)

// CardSelectors 描述 HTML 搜索结果卡片的结构。
type CardSelectors struct {
	Card  string // 卡片本身（通常就是 <a>），例如 "a.movie-card"
	Title string // 卡片内的标题元素；为空时用卡片全部文本
	Meta  string // 卡片内的附加信息（年份/画质）；可为空
}

// ParseSearch 按响应类型解析搜索结果：JSON 接口与 HTML 搜索页都要支持。
// 返回顺序与站点展示顺序一致。
func ParseSearch(body []byte, contentType string, sel CardSelectors) ([]domain.CandidateEntry, error) {
	if looksJSON(contentType, body) {
		return ParseSearchJSON(body)
	}
	return ParseSearchHTML(body, sel)
}

func looksJSON(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "json") {
		return true
	}
	b := bytes.TrimSpace(body)
	return len(b) > 0 && (b[0] == '[' || b[0] == '{')
}

// ParseSearchHTML 从搜索页中提取候选卡片。
//
// 页面上没有任何卡片时（改版/主题不同），退化为扫描所有带文本的 <a>，
// 排除分类页与搜索页自身的链接。
func ParseSearchHTML(body []byte, sel CardSelectors) ([]domain.CandidateEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := make([]domain.CandidateEntry, 0, 16)

	cards := doc.Find(sel.Card)
	if strings.TrimSpace(sel.Card) != "" && cards.Length() > 0 {
		cards.Each(func(_ int, s *goquery.Selection) {
			href := cardHref(s)
			title := ""
			if sel.Title != "" {
				title = normSpace(s.Find(sel.Title).First().Text())
			}
			if title == "" {
				title = normSpace(s.Text())
			}
			if href == "" || title == "" {
				return
			}
			meta := ""
			if sel.Meta != "" {
				meta = normSpace(s.Find(sel.Meta).First().Text())
			}
			out = append(out, domain.CandidateEntry{Title: title, URL: href, Meta: meta})
		})
		return out, nil
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		text := normSpace(s.Text())
		if href == "" || text == "" {
			return
		}
		if strings.Contains(href, "/category/") || strings.Contains(href, "/?s=") {
			return
		}
		out = append(out, domain.CandidateEntry{Title: text, URL: href})
	})
	return out, nil
}

func cardHref(s *goquery.Selection) string {
	if href, ok := s.Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	return strings.TrimSpace(s.Find("a[href]").First().AttrOr("href", ""))
}

// searchItem 兼容常见的 JSON 搜索接口字段名。
type searchItem struct {
	Title       string     `json:"title"`
	Name        string     `json:"name"`
	Path        string     `json:"path"`
	URL         string     `json:"url"`
	TMDBID      flexString `json:"tmdb_id"`
	Year        flexString `json:"year"`
	ReleaseYear flexString `json:"release_year"`
	Quality     string     `json:"quality"`
}

// ParseSearchJSON 解析 JSON 搜索结果：顶层是数组，或是带 results/data 数组的对象。
func ParseSearchJSON(body []byte) ([]domain.CandidateEntry, error) {
	var items []searchItem
	b := bytes.TrimSpace(body)
	if len(b) > 0 && b[0] == '{' {
		var wrapped struct {
			Results []searchItem `json:"results"`
			Data    []searchItem `json:"data"`
		}
		if err := json.Unmarshal(b, &wrapped); err != nil {
			return nil, err
		}
		items = wrapped.Results
		if len(items) == 0 {
			items = wrapped.Data
		}
	} else if err := json.Unmarshal(b, &items); err != nil {
		return nil, err
	}

	out := make([]domain.CandidateEntry, 0, len(items))
	for _, it := range items {
		href := strings.TrimSpace(it.Path)
		if href == "" {
			href = strings.TrimSpace(it.URL)
		}
		if href == "" {
			continue
		}
		title := normSpace(it.Title)
		if title == "" {
			title = normSpace(it.Name)
		}

		year, _ := strconv.Atoi(string(it.Year))
		if year == 0 {
			year, _ = strconv.Atoi(string(it.ReleaseYear))
		}

		out = append(out, domain.CandidateEntry{
			Title:    title,
			URL:      href,
			Meta:     normSpace(it.Quality),
			YearHint: year,
			ID:       strings.TrimSpace(string(it.TMDBID)),
		})
	}
	return out, nil
}

// flexString 接受 JSON 中的字符串或数字（同一接口里 tmdb_id 两种写法都出现过）。
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("既不是字符串也不是数字：" + string(b))
	}
	*f = flexString(n.String())
	return nil
}
