package provider

import (
	"context"
	"time"

	"github.com/John-Robertt/hubscout/internal/domain"
)

// Outcome 是单个 provider 一次调用的结果与轨迹。
type Outcome struct {
	Provider string
	Streams  []domain.StreamDescriptor
	Stages   []domain.StageResult
	Duration time.Duration
}

// Resolve 调用单个 provider；实现了 Tracer 时一并收集阶段轨迹。
func Resolve(ctx context.Context, p Provider, q domain.MediaQuery) Outcome {
	start := time.Now()
	var (
		streams []domain.StreamDescriptor
		stages  []domain.StageResult
	)
	if t, ok := p.(Tracer); ok {
		streams, stages = t.ResolveStreamsTrace(ctx, q)
	} else {
		streams = p.ResolveStreams(ctx, q)
	}
	if streams == nil {
		streams = []domain.StreamDescriptor{}
	}
	return Outcome{
		Provider: normName(p.Name()),
		Streams:  streams,
		Stages:   stages,
		Duration: time.Since(start),
	}
}

// Result 转成 report 里的 ProviderResult。
func (o Outcome) Result() domain.ProviderResult {
	status := domain.StatusOK
	if len(o.Streams) == 0 {
		status = domain.StatusEmpty
	}
	stages := o.Stages
	if stages == nil {
		stages = []domain.StageResult{}
	}
	return domain.ProviderResult{
		Provider:   o.Provider,
		Status:     status,
		Streams:    len(o.Streams),
		DurationMS: o.Duration.Milliseconds(),
		Stages:     stages,
	}
}

// Merge 按 outcomes 的顺序拼接输出，并丢弃前面的 provider 已经给出过的 URL。
func Merge(outcomes []Outcome) []domain.StreamDescriptor {
	n := 0
	for _, o := range outcomes {
		n += len(o.Streams)
	}
	out := make([]domain.StreamDescriptor, 0, n)
	seen := make(map[string]struct{}, n)
	for _, o := range outcomes {
		for _, s := range o.Streams {
			if _, ok := seen[s.URL]; ok {
				continue
			}
			seen[s.URL] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
