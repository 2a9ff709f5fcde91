package scrape

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/John-Robertt/hubscout/internal/domain"
)

// missingYearPenalty 是“找不到年份”时的年份距离：比任何合理年份差都差，
// 但仍允许在没有更好候选时被选中。
const missingYearPenalty = 5

var yearRE = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// fold 做大小写折叠（比 ToLower 更适合非 ASCII 标题）。
// cases.Caser 有状态，不能跨 goroutine 共享，因此每次新建。
func fold(s string) string {
	return cases.Fold().String(s)
}

// SelectMatch 从候选中选出至多一个条目。
//
// 规则：
//   - 标题（大小写不敏感）包含查询标题才有资格（纯子串包含）
//   - 候选带 ID 时与 queryID 交叉校验：相同则直接有资格且距离为 0；不同则淘汰
//   - 距离 = |候选年份 - 查询年份|；候选年份取标题、meta、YearHint 中第一个；找不到记为 5
//   - 查询年份未知时所有候选距离为 0
//   - 取距离最小者；并列时保留扫描顺序中的第一个
//
// 不设距离上限：最优候选无条件接受。
func SelectMatch(info domain.MediaInfo, queryID, baseURL string, cands []domain.CandidateEntry) (domain.SelectedMatch, bool) {
	want := fold(strings.TrimSpace(info.Title))
	if want == "" {
		return domain.SelectedMatch{}, false
	}

	var (
		best      domain.SelectedMatch
		bestScore int
		found     bool
	)
	for _, c := range cands {
		score, ok := scoreCandidate(c, want, info.Year, queryID)
		if !ok {
			continue
		}
		u := resolveURL(baseURL, c.URL)
		if !isHTTPURL(u) {
			continue
		}
		if !found || score < bestScore {
			best = domain.SelectedMatch{URL: u, Title: c.Title}
			bestScore = score
			found = true
		}
	}
	return best, found
}

func scoreCandidate(c domain.CandidateEntry, foldedTitle string, year int, queryID string) (int, bool) {
	if c.ID != "" && queryID != "" {
		if sameID(c.ID, queryID) {
			return 0, true
		}
		return 0, false
	}
	if !strings.Contains(fold(c.Title), foldedTitle) {
		return 0, false
	}
	if year <= 0 {
		return 0, true
	}
	y := candidateYear(c)
	if y == 0 {
		return missingYearPenalty, true
	}
	d := y - year
	if d < 0 {
		d = -d
	}
	return d, true
}

// candidateYear 返回候选可发现的年份，找不到为 0。
func candidateYear(c domain.CandidateEntry) int {
	for _, s := range []string{c.Title, c.Meta} {
		if m := yearRE.FindString(s); m != "" {
			y, _ := strconv.Atoi(m)
			return y
		}
	}
	return c.YearHint
}

// sameID 以数值比较为主（"0603" == "603"），非数字时退回字符串比较。
func sameID(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na == nb
	}
	return strings.EqualFold(a, b)
}
