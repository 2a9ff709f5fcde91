package metadata

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tmdb "github.com/ryanbradynd05/go-tmdb"

	"github.com/John-Robertt/hubscout/internal/domain"
)

const defaultLanguage = "en-US"

// TMDBClient 是 TMDB 客户端的最小子集（与 *tmdb.TMDb 的方法签名一致，便于测试替换）。
type TMDBClient interface {
	GetMovieInfo(id int, options map[string]string) (*tmdb.Movie, error)
	GetTvInfo(id int, options map[string]string) (*tmdb.TV, error)
}

// TMDB 通过 TMDB API 解析本地化标题、年份与 IMDb id。
type TMDB struct {
	client   TMDBClient
	language string
}

// NewTMDB 用 API key 构造真实客户端。
func NewTMDB(apiKey, language string) (*TMDB, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb.api_key 不能为空")
	}
	client := tmdb.Init(tmdb.Config{
		APIKey:   apiKey,
		Proxies:  nil,
		UseProxy: false,
	})
	return NewTMDBWithClient(client, language), nil
}

// NewTMDBWithClient 允许注入任意 TMDBClient（测试用）。
func NewTMDBWithClient(client TMDBClient, language string) *TMDB {
	language = strings.TrimSpace(language)
	if language == "" {
		language = defaultLanguage
	}
	return &TMDB{client: client, language: language}
}

// Resolve 按 kind 调用 movie 或 tv 详情接口（附带 external_ids）。
func (p *TMDB) Resolve(ctx context.Context, id string, kind domain.Kind) (domain.MediaInfo, error) {
	if p == nil || p.client == nil {
		return domain.MediaInfo{}, unavailable("tmdb client 未配置", nil)
	}
	if err := ctx.Err(); err != nil {
		return domain.MediaInfo{}, unavailable("ctx 已结束", err)
	}

	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || n <= 0 {
		return domain.MediaInfo{}, unavailable("非法 tmdb id "+strconv.Quote(id), err)
	}

	options := map[string]string{
		"language":           p.language,
		"append_to_response": "external_ids",
	}

	var (
		title   string
		release string
		extID   string
	)
	switch kind {
	case domain.KindMovie:
		m, err := p.client.GetMovieInfo(n, options)
		if err != nil {
			return domain.MediaInfo{}, unavailable("tmdb movie", err)
		}
		if m == nil {
			return domain.MediaInfo{}, unavailable("tmdb movie 响应为空", nil)
		}
		title, release, extID = m.Title, m.ReleaseDate, m.ImdbID
	case domain.KindSeries:
		tv, err := p.client.GetTvInfo(n, options)
		if err != nil {
			return domain.MediaInfo{}, unavailable("tmdb tv", err)
		}
		if tv == nil {
			return domain.MediaInfo{}, unavailable("tmdb tv 响应为空", nil)
		}
		title, release = tv.Name, tv.FirstAirDate
		if tv.ExternalIDs != nil {
			extID = tv.ExternalIDs.ImdbID
		}
	default:
		return domain.MediaInfo{}, unavailable("未知媒体类型 "+strconv.Quote(string(kind)), nil)
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return domain.MediaInfo{}, unavailable("缺少标题", nil)
	}

	return domain.MediaInfo{
		Title:      title,
		Year:       yearFromDate(release),
		ExternalID: strings.TrimSpace(extID),
	}, nil
}

// yearFromDate 取 "YYYY-MM-DD" 的年份；格式不对返回 0（未知）。
func yearFromDate(s string) int {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return 0
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil || y <= 0 {
		return 0
	}
	return y
}
