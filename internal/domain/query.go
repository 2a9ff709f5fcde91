package domain

import "fmt"

// Kind 是媒体类型（只有电影与剧集两种）。
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// ParseKind 接受 "movie" / "series"，以及 TMDB 风格的 "tv" 别名。
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "movie":
		return KindMovie, true
	case "series", "tv", "show":
		return KindSeries, true
	default:
		return "", false
	}
}

// MediaQuery 是 pipeline 的唯一输入。
//
// 约束：
// - Season/Episode 为 0 表示“未提供”
// - 传入 pipeline 后只读，任何阶段都不允许修改
type MediaQuery struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Season  int    `json:"season,omitempty"`
	Episode int    `json:"episode,omitempty"`
}

// HasEpisode 表示 season 与 episode 是否同时存在（剧集过滤与标题格式都依赖它）。
func (q MediaQuery) HasEpisode() bool {
	return q.Season > 0 && q.Episode > 0
}

// EpisodeTag 返回 "S01E02" 形式的标签；未指定集数时为空串。
func (q MediaQuery) EpisodeTag() string {
	if !q.HasEpisode() {
		return ""
	}
	return fmt.Sprintf("S%02dE%02d", q.Season, q.Episode)
}

func (q MediaQuery) String() string {
	if tag := q.EpisodeTag(); tag != "" {
		return fmt.Sprintf("%s/%s %s", q.Kind, q.ID, tag)
	}
	return fmt.Sprintf("%s/%s", q.Kind, q.ID)
}
