package provider

import (
	"context"

	"github.com/John-Robertt/hubscout/internal/domain"
)

// Provider 把“站点变化”限制在 provider 包内部；上层只依赖这一个入口。
//
// 约束：
// - ResolveStreams 永不返回错误：任何阶段失败都只体现为空或更短的结果
// - 相同的外部响应必须得到相同的输出（内容与顺序）
// - 不缓存、不重试，调用之间不共享可变状态
type Provider interface {
	Name() string
	ResolveStreams(ctx context.Context, q domain.MediaQuery) []domain.StreamDescriptor
}

// Tracer 是可选能力：额外返回各阶段的执行轨迹，用于解释降级原因。
type Tracer interface {
	ResolveStreamsTrace(ctx context.Context, q domain.MediaQuery) ([]domain.StreamDescriptor, []domain.StageResult)
}
