package scrape

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/John-Robertt/hubscout/internal/domain"
)

// DefaultRedirectConcurrency 是同时在途的重定向探测数上限。
const DefaultRedirectConcurrency = 8

// 探测请求只关心状态码与 Location，body 最多读这么多就丢弃（便于连接复用）。
const maxDrainBytes = 64 << 10

// RedirectResolver 对每条链接最多跟随一跳重定向。
type RedirectResolver struct {
	// Client 用于探测；Resolve 内部会强制禁用自动重定向。
	Client *http.Client
	// Header 附加到每个探测请求（例如站点 Referer）。
	Header http.Header
	// MaxConcurrency <= 0 时使用 DefaultRedirectConcurrency。
	MaxConcurrency int

	Log zerolog.Logger
}

type redirectSlot struct {
	url string
	err error
}

// Resolve 并发解析所有链接，等待全部结束后按输入顺序返回成功项。
//
// 每个任务只写自己的 slot；单条失败（网络错误、Location 畸形）只让该条消失，
// 不取消、不阻塞其它任务。errs 与失败项一一对应（按输入顺序），仅用于诊断。
func (r *RedirectResolver) Resolve(ctx context.Context, links []domain.RawLink) (resolved []domain.ResolvedLink, errs []error) {
	if len(links) == 0 {
		return nil, nil
	}

	c := r.probeClient()
	n := r.MaxConcurrency
	if n <= 0 {
		n = DefaultRedirectConcurrency
	}

	slots := make([]redirectSlot, len(links))
	p := pool.New().WithMaxGoroutines(n)
	for i := range links {
		p.Go(func() {
			u, err := r.resolveOne(ctx, c, links[i].Href)
			slots[i] = redirectSlot{url: u, err: err}
		})
	}
	p.Wait()

	resolved = make([]domain.ResolvedLink, 0, len(links))
	for i, s := range slots {
		if s.err != nil {
			r.Log.Debug().Err(s.err).Str("href", links[i].Href).Msg("重定向解析失败，丢弃该链接")
			errs = append(errs, s.err)
			continue
		}
		resolved = append(resolved, domain.ResolvedLink{URL: s.url, Link: links[i]})
	}
	return resolved, errs
}

func (r *RedirectResolver) probeClient() *http.Client {
	var c http.Client
	if r.Client != nil {
		c = *r.Client
	}
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &c
}

func (r *RedirectResolver) resolveOne(ctx context.Context, c *http.Client, href string) (string, error) {
	if !isHTTPURL(href) {
		return "", &RedirectError{Href: href, Reason: "malformed-href"}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return "", &RedirectError{Href: href, Reason: "malformed-href", Err: err}
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", &RedirectError{Href: href, Reason: "request", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return href, nil
	}

	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", &RedirectError{Href: href, Reason: "missing-location"}
	}
	lu, err := url.Parse(loc)
	if err != nil {
		return "", &RedirectError{Href: href, Reason: "malformed-location", Err: err}
	}
	final := req.URL.ResolveReference(lu)
	if final.Scheme != "http" && final.Scheme != "https" {
		return "", &RedirectError{Href: href, Reason: "malformed-location", Err: errors.New("非 http(s) 跳转：" + loc)}
	}
	return final.String(), nil
}
