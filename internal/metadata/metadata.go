package metadata

import (
	"context"
	"errors"

	"github.com/John-Robertt/hubscout/internal/domain"
)

// ErrUnavailable 是元数据不可用的唯一对外错误：非 2xx、body 畸形、缺少标题都折叠到它。
// 上层用 errors.Is 判断，原始原因通过 Unwrap 链保留（用于日志）。
var ErrUnavailable = errors.New("metadata unavailable")

// Resolver 把 (id, kind) 解析为规范标题/年份。
//
// 约束：每次调用只发一次外部请求；不缓存、不重试。
type Resolver interface {
	Resolve(ctx context.Context, id string, kind domain.Kind) (domain.MediaInfo, error)
}

// ResolverFunc 让普通函数满足 Resolver（测试与组合时使用）。
type ResolverFunc func(ctx context.Context, id string, kind domain.Kind) (domain.MediaInfo, error)

func (f ResolverFunc) Resolve(ctx context.Context, id string, kind domain.Kind) (domain.MediaInfo, error) {
	return f(ctx, id, kind)
}

type unavailableError struct {
	reason string
	err    error
}

func (e *unavailableError) Error() string {
	if e.err != nil {
		return "metadata unavailable: " + e.reason + ": " + e.err.Error()
	}
	return "metadata unavailable: " + e.reason
}

func (e *unavailableError) Is(target error) bool { return target == ErrUnavailable }

func (e *unavailableError) Unwrap() error { return e.err }

func unavailable(reason string, err error) error {
	return &unavailableError{reason: reason, err: err}
}
