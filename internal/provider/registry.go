package provider

import (
	"fmt"
	"strings"
)

// Registry 是 provider 的只读注册表（按 name 索引）。
// 同时保留注册顺序：多站点合并输出时以此为准，保证结果稳定。
type Registry struct {
	byName map[string]Provider
	order  []string
}

func NewRegistry(providers ...Provider) (Registry, error) {
	byName := make(map[string]Provider, len(providers))
	order := make([]string, 0, len(providers))
	for _, p := range providers {
		if p == nil {
			return Registry{}, fmt.Errorf("provider 不能为空")
		}
		name := normName(p.Name())
		if name == "" {
			return Registry{}, fmt.Errorf("provider.Name 不能为空")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("重复的 provider：%q", name)
		}
		byName[name] = p
		order = append(order, name)
	}
	return Registry{byName: byName, order: order}, nil
}

func (r Registry) Get(name string) (Provider, bool) {
	if r.byName == nil {
		return nil, false
	}
	p, ok := r.byName[normName(name)]
	return p, ok
}

// Names 按注册顺序返回所有 provider 名。
func (r Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Select 按注册顺序返回 names 指定的 provider；names 为空时返回全部。
// 重复的名字只取一次，未注册的名字返回 *UnknownError。
func (r Registry) Select(names []string) ([]Provider, error) {
	if len(names) == 0 {
		out := make([]Provider, 0, len(r.order))
		for _, n := range r.order {
			out = append(out, r.byName[n])
		}
		return out, nil
	}

	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = normName(n)
		if n == "" {
			continue
		}
		if _, ok := r.byName[n]; !ok {
			return nil, &UnknownError{Name: n, Known: r.Names()}
		}
		want[n] = struct{}{}
	}
	if len(want) == 0 {
		return r.Select(nil)
	}

	out := make([]Provider, 0, len(want))
	for _, n := range r.order {
		if _, ok := want[n]; ok {
			out = append(out, r.byName[n])
		}
	}
	return out, nil
}

// UnknownError 表示请求了未注册的 provider。
type UnknownError struct {
	Name  string
	Known []string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("未知 provider：%q（可用：%s）", e.Name, strings.Join(e.Known, ", "))
}

func normName(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
