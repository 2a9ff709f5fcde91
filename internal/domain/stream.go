package domain

import "github.com/dustin/go-humanize"

// Quality 是流的分辨率档位。
type Quality string

const (
	Quality360p    Quality = "360p"
	Quality480p    Quality = "480p"
	Quality720p    Quality = "720p"
	Quality1080p   Quality = "1080p"
	Quality1440p   Quality = "1440p"
	Quality2160p   Quality = "2160p"
	QualityUnknown Quality = "Unknown"
)

// SizeUnknown 表示无法从链接文本中提取大小。
const SizeUnknown int64 = -1

// StreamDescriptor 是最终输出单元。
//
// 约束：
// - 同一次调用的输出中 URL 两两不同
// - 输出顺序有意义，相同的外部响应必须得到相同顺序
type StreamDescriptor struct {
	Name       string            `json:"name"`
	Title      string            `json:"title"`
	URL        string            `json:"url"`
	Quality    Quality           `json:"quality"`
	SizeBytes  int64             `json:"size_bytes"`
	Headers    map[string]string `json:"headers"`
	ProviderID string            `json:"provider_id"`
	// Source 是产生该条目的站点（provider registry 中的名字）。
	Source string `json:"source"`
}

// Size 返回便于展示的大小（二进制单位），未知时返回 "Unknown"。
func (s StreamDescriptor) Size() string {
	if s.SizeBytes < 0 {
		return "Unknown"
	}
	return humanize.IBytes(uint64(s.SizeBytes))
}
