package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout 是单个请求的总超时（含读 body）。
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent 是固定 UA：输出的 StreamDescriptor.Headers 会带上它，
	// 因此不能像随机 UA 池那样每次变化（相同输入必须得到相同输出）。
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36"
)

// Options 描述一个 client 的网络策略。零值可用：直连 + 默认超时 + 默认 UA。
type Options struct {
	ProxyURL  string
	Timeout   time.Duration
	UserAgent string
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o Options) userAgent() string {
	if ua := strings.TrimSpace(o.UserAgent); ua != "" {
		return ua
	}
	return DefaultUserAgent
}

// Transport 把“固定 UA + 代理 + keep-alive 策略”固化为统一策略。
//
// 约束：不做重试。一次调用内每个请求只发一次，失败由上层降级处理。
type Transport struct {
	Base *http.Transport

	UserAgent string

	// DisableKeepAlives 决定是否对 Request 设置 Close=true（额外保险）。
	// 真正禁用 keep-alive 依赖 Base.DisableKeepAlives。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// Clone 会复制 Header 等，避免在 RoundTripper 内部“污染”调用方的 request。
	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", t.UserAgent)
	}
	if t.DisableKeepAlives {
		r.Close = true
	}
	return t.Base.RoundTrip(r)
}

// NewClient 构造用于搜索页/详情页抓取的 HTTP client（正常跟随重定向）。
//
// 规则：
// - ProxyURL 非空：必须走代理，且禁用 keep-alive（每请求新连接）
// - 固定 UA（请求自带 User-Agent 时不覆盖）
// - 每请求有界总超时
func NewClient(opts Options) (*http.Client, error) {
	tr, err := newTransport(opts)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: tr,
		Timeout:   opts.timeout(),
	}, nil
}

// NewNoRedirectClient 构造禁用自动重定向的 client：3xx 响应原样返回给调用方，
// 由调用方读取 Location（只跟一跳）。
func NewNoRedirectClient(opts Options) (*http.Client, error) {
	c, err := NewClient(opts)
	if err != nil {
		return nil, err
	}
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return c, nil
}

// UserAgentOf 返回 client 实际会发送的 UA（非本包构造的 client 返回默认 UA）。
func UserAgentOf(c *http.Client) string {
	if c != nil {
		if tr, ok := c.Transport.(*Transport); ok && strings.TrimSpace(tr.UserAgent) != "" {
			return tr.UserAgent
		}
	}
	return DefaultUserAgent
}

func newTransport(opts Options) (*Transport, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: opts.timeout(),
		MaxIdleConnsPerHost:   8,
	}

	disableKeepAlives := false
	if proxyURL := strings.TrimSpace(opts.ProxyURL); proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy url 缺少 scheme 或 host：" + proxyURL)
		}
		base.Proxy = http.ProxyURL(u)
		// proxy 模式强制每请求新连接（代理池轮换依赖该行为）。
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	return &Transport{
		Base:              base,
		UserAgent:         opts.userAgent(),
		DisableKeepAlives: disableKeepAlives,
	}, nil
}
