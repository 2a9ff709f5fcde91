package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/hubscout/internal/app/run"
	"github.com/John-Robertt/hubscout/internal/config"
	"github.com/John-Robertt/hubscout/internal/domain"
	"github.com/John-Robertt/hubscout/internal/mediaid"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端下的进度输出。
//
// 约束：
// - 只写 stderr（或 fallback 到 stdout 的 TTY），不混进 JSON 输出
// - 站点完成事件来自并发任务，所有写入都在 mu 下进行
// - keepalive：长时间没有站点完成时定期输出一行
type progressUI struct {
	w   io.Writer
	eff config.EffectiveConfig

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	order   []string
	total   int
	done    int
	pending map[string]bool

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer, eff config.EffectiveConfig) *progressUI {
	return &progressUI{
		w:                  w,
		eff:                eff,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(q domain.MediaQuery, providers []string) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.startedAt = now
	p.order = providers
	p.total = len(providers)
	p.pending = make(map[string]bool, len(providers))
	for _, name := range providers {
		p.pending[name] = true
	}

	fmt.Fprintf(p.w, "[%s] hubscout streams %s (%s)\n", now.Format("15:04:05"), mediaid.Format(q), q.Kind)
	fmt.Fprintln(p.w, "配置（生效）:")
	if p.eff.Source != "" {
		fmt.Fprintf(p.w, "  config: %s\n", p.eff.Source)
	}
	fmt.Fprintf(p.w, "  providers: %s\n", strings.Join(providers, ", "))
	for _, name := range providers {
		if base := p.eff.BaseURL(name); base != "" {
			fmt.Fprintf(p.w, "  %s.base_url: %s\n", name, truncate(base, 120))
		}
	}
	fmt.Fprintf(p.w, "  timeout: %s\n", p.eff.Timeout)
	fmt.Fprintf(p.w, "  redirect_concurrency: %d\n", p.eff.RedirectConcurrency)
	fmt.Fprintf(p.w, "  proxy: %s\n", formatProxy(p.eff.ProxyURL))
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
	if p.total > 0 && !p.tickerStarted {
		p.startTickerLocked()
	}
}

func (p *progressUI) OnProviderDone(res domain.ProviderResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	delete(p.pending, res.Provider)

	dur := time.Duration(res.DurationMS) * time.Millisecond
	switch res.Status {
	case domain.StatusOK:
		fmt.Fprintf(p.w, "[%d/%d] %s OK streams=%d (%s)\n",
			p.done, p.total, res.Provider, res.Streams, formatShortDuration(dur),
		)
	default:
		fmt.Fprintf(p.w, "[%d/%d] %s EMPTY %s (%s)\n",
			p.done, p.total, res.Provider, truncate(emptyReason(res), 160), formatShortDuration(dur),
		)
	}
	p.lastPrinted = time.Now()

	// 最后一个站点完成：停掉 ticker，避免结束后又冒出 keepalive。
	if p.done >= p.total {
		p.stopLocked()
	}
}

func (p *progressUI) OnDone(rep domain.ResolveReport) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	fmt.Fprintf(p.w, "\n合并: streams=%d ok=%d empty=%d (%s)\n\n",
		rep.Summary.Streams, rep.Summary.OK, rep.Summary.Empty,
		formatShortDuration(rep.FinishedAt.Sub(rep.StartedAt)),
	)
}

// Stop 可重复调用。
func (p *progressUI) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *progressUI) stopLocked() {
	if p.tickerStarted {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true
	stop := p.stopCh

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.done >= p.total {
					p.mu.Unlock()
					return
				}
				if time.Since(p.lastPrinted) > threshold {
					fmt.Fprintf(p.w, "进度: done=%d/%d waiting=%s elapsed=%s\n",
						p.done, p.total, strings.Join(p.pendingNamesLocked(), ","), formatElapsed(time.Since(p.startedAt)),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func (p *progressUI) pendingNamesLocked() []string {
	out := make([]string, 0, len(p.pending))
	for _, name := range p.order {
		if p.pending[name] {
			out = append(out, name)
		}
	}
	return out
}

func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on (" + truncate(raw, 120) + ")"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
