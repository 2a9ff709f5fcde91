package run

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/John-Robertt/hubscout/internal/domain"
	"github.com/John-Robertt/hubscout/internal/provider"
)

// Execute 用 names 指定的站点（为空 = 全部）解析一次查询，返回对外稳定的 ResolveReport。
//
// 站点之间并发执行，每个任务只写自己的 slot；合并顺序固定为 registry 顺序，
// 与完成顺序无关。唯一的错误是请求了未注册的站点。
func Execute(ctx context.Context, reg provider.Registry, names []string, q domain.MediaQuery) (domain.ResolveReport, error) {
	return ExecuteWithObserver(ctx, reg, names, q, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度（由上层决定是否启用）。
func ExecuteWithObserver(ctx context.Context, reg provider.Registry, names []string, q domain.MediaQuery, obs Observer) (domain.ResolveReport, error) {
	ps, err := reg.Select(names)
	if err != nil {
		return domain.ResolveReport{}, err
	}

	started := time.Now()
	if obs != nil {
		selected := make([]string, 0, len(ps))
		for _, p := range ps {
			selected = append(selected, p.Name())
		}
		obs.OnStart(q, selected)
	}

	outcomes := make([]provider.Outcome, len(ps))
	if len(ps) > 0 {
		wp := pool.New().WithMaxGoroutines(len(ps))
		for i := range ps {
			wp.Go(func() {
				o := provider.Resolve(ctx, ps[i], q)
				outcomes[i] = o
				if obs != nil {
					obs.OnProviderDone(o.Result())
				}
			})
		}
		wp.Wait()
	}

	results := make([]domain.ProviderResult, 0, len(outcomes))
	for _, o := range outcomes {
		results = append(results, o.Result())
	}
	rep := domain.ResolveReport{
		Query:      q,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Providers:  results,
		Streams:    provider.Merge(outcomes),
	}
	rep.Finalize()

	if obs != nil {
		obs.OnDone(rep)
	}
	return rep, nil
}
