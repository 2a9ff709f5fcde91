package domain

import (
	"encoding/json"
	"time"
)

const (
	StatusOK    = "ok"    // 至少产出一条 stream
	StatusEmpty = "empty" // 某阶段降级导致没有输出（不是错误）
)

// 阶段名（trace / report 中使用的稳定字符串）。
const (
	StageMetadata  = "metadata"
	StageSearch    = "search"
	StageMatch     = "match"
	StageDetail    = "detail"
	StageLinks     = "links"
	StageRedirects = "redirects"
	StageNormalize = "normalize"
)

// ResolveReport 是一次查询对外稳定输出（stdout JSON / HTTP 调试）的结构。
type ResolveReport struct {
	Query MediaQuery `json:"query"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary   ReportSummary      `json:"summary"`
	Providers []ProviderResult   `json:"providers"`
	Streams   []StreamDescriptor `json:"streams"`

	// Error 只在解析根本没有开始时出现（配置/参数错误），此时 providers 与 streams 为空。
	Error *ReportError `json:"error,omitempty"`
}

// ReportError 是带 error_code 的启动失败原因。
type ReportError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ReportSummary struct {
	Providers int `json:"providers"`
	OK        int `json:"ok"`
	Empty     int `json:"empty"`
	Streams   int `json:"streams"`
}

// ProviderResult 记录单个站点的执行轨迹。
type ProviderResult struct {
	Provider   string        `json:"provider"`
	Status     string        `json:"status"`
	Streams    int           `json:"streams"`
	DurationMS int64         `json:"duration_ms"`
	Stages     []StageResult `json:"stages"`
}

// StageResult 是 pipeline 某一阶段的结果：产出数量 + 降级原因（若有）。
type StageResult struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) nil 切片换成空切片（JSON 输出 [] 而不是 null）
// 3) summary 由 providers/streams 计算得出
//
// providers 保持 registry 顺序，不排序：streams 的合并顺序依赖它。
func (r *ResolveReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	if r.Providers == nil {
		r.Providers = []ProviderResult{}
	}
	if r.Streams == nil {
		r.Streams = []StreamDescriptor{}
	}

	var s ReportSummary
	for i := range r.Providers {
		if r.Providers[i].Stages == nil {
			r.Providers[i].Stages = []StageResult{}
		}
		s.Providers++
		switch r.Providers[i].Status {
		case StatusOK:
			s.OK++
		case StatusEmpty:
			s.Empty++
		}
	}
	s.Streams = len(r.Streams)
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r ResolveReport) MarshalJSON() ([]byte, error) {
	type Alias ResolveReport
	return json.Marshal(Alias(r))
}
