package scrape

import (
	"errors"
	"fmt"
	"strings"
)

// 各阶段的降级原因。它们只出现在 trace / 日志里，从不越过 ResolveStreams 返回给调用方。
var (
	ErrMetadataUnavailable   = errors.New("metadata unavailable")
	ErrSearchUnavailable     = errors.New("search unavailable")
	ErrNoEligibleMatch       = errors.New("no eligible match")
	ErrDetailPageUnavailable = errors.New("detail page unavailable")
	ErrLinkExtractionEmpty   = errors.New("link extraction empty")
)

// StageError 是 pipeline 阶段的可追溯错误：Kind 是上面的哨兵错误之一，Err 是原始原因。
// errors.Is 同时能匹配 Kind 与 Err 链。
type StageError struct {
	Stage string
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("stage=%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("stage=%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Is(target error) bool { return e.Kind != nil && target == e.Kind }

func (e *StageError) Unwrap() error { return e.Err }

// HTTPStatusError 表示站点返回了非 2xx 的 HTTP 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}

// BlockedError 表示请求被站点引导到了“验证/拦截”页面（通常意味着需要浏览器执行 JS）。
// 产品约束：不尝试绕过，直接视为该请求失败。
type BlockedError struct {
	URL    string
	Reason string // 例如 "cf-challenge"
}

func (e *BlockedError) Error() string {
	if e == nil {
		return "blocked"
	}
	if strings.TrimSpace(e.Reason) == "" {
		return "blocked"
	}
	return "blocked: " + strings.TrimSpace(e.Reason)
}

// RedirectError 是单条链接的重定向解析失败；只影响该链接本身。
type RedirectError struct {
	Href   string
	Reason string // "request" / "malformed-href" / "missing-location" / "malformed-location"
	Err    error
}

func (e *RedirectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("redirect %s (%s): %v", e.Href, e.Reason, e.Err)
	}
	return fmt.Sprintf("redirect %s (%s)", e.Href, e.Reason)
}

func (e *RedirectError) Unwrap() error { return e.Err }
