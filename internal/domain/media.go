package domain

// MediaInfo 是元数据解析的结果：每次调用只产生一次，之后只读。
type MediaInfo struct {
	Title string `json:"title"`
	// Year 为 0 表示未知。
	Year int `json:"year,omitempty"`
	// ExternalID 是可选的外部 ID（目前是 IMDb id，例如 tt0903747）。
	ExternalID string `json:"external_id,omitempty"`
}
