package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/John-Robertt/hubscout/internal/domain"
	"github.com/John-Robertt/hubscout/internal/infra/httpx"
	"github.com/John-Robertt/hubscout/internal/metadata"
)

// Site 描述一个目标站点。站点之间的差异只允许出现在这里，流程本身完全共享。
type Site struct {
	Name    string // registry 名（小写），也写入 StreamDescriptor.Source
	BaseURL string

	// SearchURL 构造搜索地址；为 nil 时使用 WordPress 风格的 "<base>/?s=<title>"。
	SearchURL func(base, title string) string

	Cards CardSelectors
	Links LinkRules

	// Header 附加到该站点的所有请求（搜索、详情、重定向探测）。
	Header http.Header
}

func (s Site) baseURL() string {
	return strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
}

func (s Site) searchURL(title string) string {
	if s.SearchURL != nil {
		return s.SearchURL(s.baseURL(), title)
	}
	return s.baseURL() + "/?s=" + url.QueryEscape(title)
}

// Pipeline 是单个站点的流解析流程：
// metadata → search → match → detail → links → redirects → normalize。
//
// 约束：
// - 严格顺序执行，只有 redirects 阶段内部并发
// - 每个阶段自己吞掉错误并降级为空/部分结果；metadata 与 detail 失败直接短路
// - 不缓存、不重试，调用之间无共享可变状态
type Pipeline struct {
	Site     Site
	Metadata metadata.Resolver
	// Client 用于搜索与详情页（正常跟随重定向）。
	Client *http.Client
	// Redirects 负责最多一跳的重定向解析。
	Redirects *RedirectResolver

	Log zerolog.Logger
}

// NewPipeline 组装一个站点的 pipeline。probe 为重定向探测用 client（可与 client 相同，
// RedirectResolver 内部会禁用自动跟随）。
func NewPipeline(site Site, meta metadata.Resolver, client, probe *http.Client, redirectConcurrency int, log zerolog.Logger) *Pipeline {
	if site.Links.HostMarkers == nil && site.Links.TextKeywords == nil {
		site.Links.HostMarkers = DefaultLinkRules.HostMarkers
		site.Links.TextKeywords = DefaultLinkRules.TextKeywords
	}
	log = log.With().Str("provider", site.Name).Logger()
	return &Pipeline{
		Site:     site,
		Metadata: meta,
		Client:   client,
		Redirects: &RedirectResolver{
			Client:         probe,
			Header:         site.Header,
			MaxConcurrency: redirectConcurrency,
			Log:            log,
		},
		Log: log,
	}
}

// Deps 是所有站点共享的依赖；站点包用它加上自己的 Site 组装 pipeline。
type Deps struct {
	Metadata            metadata.Resolver
	Client              *http.Client
	Probe               *http.Client // 为 nil 时复用 Client
	RedirectConcurrency int
	Log                 zerolog.Logger
}

func (d Deps) Pipeline(site Site) *Pipeline {
	probe := d.Probe
	if probe == nil {
		probe = d.Client
	}
	return NewPipeline(site, d.Metadata, d.Client, probe, d.RedirectConcurrency, d.Log)
}

func (p *Pipeline) Name() string { return p.Site.Name }

// BaseURL 是站点实际使用的域名（已去掉末尾的 "/"）。
func (p *Pipeline) BaseURL() string { return p.Site.baseURL() }

// ResolveStreams 是对外入口：永不返回错误，失败只体现为空或更短的结果。
func (p *Pipeline) ResolveStreams(ctx context.Context, q domain.MediaQuery) []domain.StreamDescriptor {
	streams, _ := p.ResolveStreamsTrace(ctx, q)
	return streams
}

// ResolveStreamsTrace 与 ResolveStreams 相同，但额外返回各阶段的执行轨迹（用于解释降级原因）。
func (p *Pipeline) ResolveStreamsTrace(ctx context.Context, q domain.MediaQuery) ([]domain.StreamDescriptor, []domain.StageResult) {
	log := p.Log.With().Str("call_id", uuid.NewString()).Stringer("query", q).Logger()
	tr := &tracer{log: log}

	if p.Metadata == nil {
		tr.fail(domain.StageMetadata, ErrMetadataUnavailable, errors.New("metadata resolver 未配置"))
		return []domain.StreamDescriptor{}, tr.stages
	}
	info, err := p.Metadata.Resolve(ctx, q.ID, q.Kind)
	if err != nil {
		tr.fail(domain.StageMetadata, ErrMetadataUnavailable, err)
		return []domain.StreamDescriptor{}, tr.stages
	}
	tr.ok(domain.StageMetadata, 1)
	log.Debug().Str("title", info.Title).Int("year", info.Year).Msg("元数据就绪")

	cands, err := p.search(ctx, info.Title)
	if err != nil {
		tr.fail(domain.StageSearch, ErrSearchUnavailable, err)
		cands = nil
	} else {
		tr.ok(domain.StageSearch, len(cands))
	}

	match, ok := SelectMatch(info, q.ID, p.Site.baseURL(), cands)
	if !ok {
		tr.fail(domain.StageMatch, ErrNoEligibleMatch, nil)
		return []domain.StreamDescriptor{}, tr.stages
	}
	tr.ok(domain.StageMatch, 1)
	log.Debug().Str("match_url", match.URL).Str("match_title", match.Title).Msg("选中候选")

	page, _, err := fetchPage(ctx, p.Client, match.URL, p.Site.Header)
	if err != nil {
		tr.fail(domain.StageDetail, ErrDetailPageUnavailable, err)
		return []domain.StreamDescriptor{}, tr.stages
	}
	tr.ok(domain.StageDetail, 1)

	links, err := ExtractLinks(page, match.URL, q, p.Site.Links)
	switch {
	case err != nil:
		tr.fail(domain.StageLinks, ErrLinkExtractionEmpty, err)
		links = nil
	case len(links) == 0:
		tr.fail(domain.StageLinks, ErrLinkExtractionEmpty, nil)
	default:
		tr.ok(domain.StageLinks, len(links))
	}

	resolved, errs := p.Redirects.Resolve(ctx, links)
	if len(errs) > 0 {
		tr.partial(domain.StageRedirects, len(resolved), fmt.Sprintf("%d/%d 条链接重定向解析失败", len(errs), len(links)))
	} else {
		tr.ok(domain.StageRedirects, len(resolved))
	}

	n := Normalizer{Source: p.Site.Name, UserAgent: p.userAgent()}
	streams := n.Normalize(resolved, info, q, match)
	tr.ok(domain.StageNormalize, len(streams))

	log.Info().Int("streams", len(streams)).Msg("解析完成")
	return streams, tr.stages
}

// userAgent 是请求实际带出的 UA：站点头优先，否则取 transport 的固定 UA。
func (p *Pipeline) userAgent() string {
	if ua := p.Site.Header.Get("User-Agent"); ua != "" {
		return ua
	}
	return httpx.UserAgentOf(p.Client)
}

func (p *Pipeline) search(ctx context.Context, title string) ([]domain.CandidateEntry, error) {
	body, contentType, err := fetchPage(ctx, p.Client, p.Site.searchURL(title), p.Site.Header)
	if err != nil {
		return nil, err
	}
	return ParseSearch(body, contentType, p.Site.Cards)
}

// tracer 收集阶段结果并负责日志；只在单次调用内使用。
type tracer struct {
	log    zerolog.Logger
	stages []domain.StageResult
}

func (t *tracer) ok(stage string, count int) {
	t.stages = append(t.stages, domain.StageResult{Stage: stage, Count: count})
	t.log.Debug().Str("stage", stage).Int("count", count).Msg("阶段完成")
}

func (t *tracer) partial(stage string, count int, msg string) {
	t.stages = append(t.stages, domain.StageResult{Stage: stage, Count: count, Error: msg})
	t.log.Warn().Str("stage", stage).Int("count", count).Msg(msg)
}

func (t *tracer) fail(stage string, kind, err error) {
	se := &StageError{Stage: stage, Kind: kind, Err: err}
	t.stages = append(t.stages, domain.StageResult{Stage: stage, Error: se.Error()})
	t.log.Warn().Err(se).Str("stage", stage).Msg("阶段降级")
}
