package scrape

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// 单页最大读取量；目录站的详情页通常不到 1 MiB。
const maxPageBytes = 8 << 20

// 反爬验证页的特征（Cloudflare 的“Just a moment...”等）。
var challengeMarkers = [][]byte{
	[]byte("cf-browser-verification"),
	[]byte("challenge-platform"),
	[]byte("<title>Just a moment...</title>"),
}

// fetchPage 发一次 GET 并返回 body 与 Content-Type。
//
// 约束：只发一次，不重试；非 2xx、空页面、验证页都视为失败。
func fetchPage(ctx context.Context, c *http.Client, u string, header http.Header) ([]byte, string, error) {
	if c == nil {
		return nil, "", errors.New("http client 不能为空")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &HTTPStatusError{URL: u, StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, "", err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, "", errors.New("页面为空：" + u)
	}
	for _, m := range challengeMarkers {
		if bytes.Contains(b, m) {
			return nil, "", &BlockedError{URL: u, Reason: "cf-challenge"}
		}
	}
	return b, resp.Header.Get("Content-Type"), nil
}

// resolveURL 把 href 解析为相对 base 的绝对地址；无法解析时原样返回。
func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	bu, err := url.Parse(base)
	if err != nil {
		return href
	}
	ru, err := url.Parse(href)
	if err != nil {
		return href
	}
	return bu.ResolveReference(ru).String()
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }
