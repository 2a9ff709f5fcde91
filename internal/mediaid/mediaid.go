package mediaid

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/John-Robertt/hubscout/internal/domain"
)

// 允许的 ID 形态：可选 "tmdb:" 前缀 + 数字 ID + 可选 ":season:episode"。
// Stremio 风格的剧集 ID 就是这种写法（tmdb:1396:1:2）。
var idRE = regexp.MustCompile(`(?i)^(?:tmdb:)?([0-9]+)(?::([0-9]+):([0-9]+))?$`)

type InvalidError struct {
	// Kind: "empty" / "malformed" / "kind" / "episode"
	Kind  string
	Input string
}

func (e *InvalidError) Error() string {
	switch e.Kind {
	case "empty":
		return "媒体 ID 不能为空"
	case "malformed":
		return "无法解析媒体 ID：" + strconv.Quote(e.Input) + "（期望 1396 / tmdb:1396 / tmdb:1396:1:2）"
	case "kind":
		return "未知媒体类型：" + strconv.Quote(e.Input) + "（只能是 movie 或 series）"
	case "episode":
		return "season/episode 必须同时为正整数，且只能用于 series：" + strconv.Quote(e.Input)
	default:
		return "invalid media id"
	}
}

// Parse 把文本 ID 与媒体类型解析为 MediaQuery。
//
// 规则：
// - id 中带的 season/episode 优先于参数 season/episode
// - season 与 episode 要么都为正，要么都为 0
// - movie 不允许带 season/episode
func Parse(id string, kind string, season, episode int) (domain.MediaQuery, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.MediaQuery{}, &InvalidError{Kind: "empty"}
	}

	k, ok := domain.ParseKind(strings.ToLower(strings.TrimSpace(kind)))
	if !ok {
		return domain.MediaQuery{}, &InvalidError{Kind: "kind", Input: kind}
	}

	m := idRE.FindStringSubmatch(id)
	if m == nil {
		return domain.MediaQuery{}, &InvalidError{Kind: "malformed", Input: id}
	}
	if m[2] != "" {
		season, _ = strconv.Atoi(m[2])
		episode, _ = strconv.Atoi(m[3])
	}

	if season < 0 || episode < 0 || (season == 0) != (episode == 0) {
		return domain.MediaQuery{}, &InvalidError{Kind: "episode", Input: id}
	}
	if k == domain.KindMovie && season > 0 {
		return domain.MediaQuery{}, &InvalidError{Kind: "episode", Input: id}
	}

	return domain.MediaQuery{
		ID:      m[1],
		Kind:    k,
		Season:  season,
		Episode: episode,
	}, nil
}

// Format 是 Parse 的逆操作，输出 Stremio 风格 ID。
func Format(q domain.MediaQuery) string {
	if q.HasEpisode() {
		return "tmdb:" + q.ID + ":" + strconv.Itoa(q.Season) + ":" + strconv.Itoa(q.Episode)
	}
	return "tmdb:" + q.ID
}
