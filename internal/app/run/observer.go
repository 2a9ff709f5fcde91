package run

import (
	"github.com/John-Robertt/hubscout/internal/domain"
)

// Observer 用于把“运行进度/站点结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - Observer 的实现必须并发安全：OnProviderDone 来自多个 goroutine。
type Observer interface {
	// OnStart 在开始解析前调用，providers 是本次实际参与的站点（registry 顺序）。
	OnStart(q domain.MediaQuery, providers []string)
	// OnProviderDone 在单个站点完成时调用（完成顺序，不保证是 registry 顺序）。
	OnProviderDone(res domain.ProviderResult)
	// OnDone 在 report 定稿后调用一次。
	OnDone(rep domain.ResolveReport)
}
