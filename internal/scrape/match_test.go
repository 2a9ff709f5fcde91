package scrape

import (
	"testing"

	"github.com/John-Robertt/hubscout/internal/domain"
)

const testBase = "https://site.test"

func TestSelectMatch_CaseInsensitiveSubstring(t *testing.T) {
	info := domain.MediaInfo{Title: "Breaking Bad", Year: 2008}
	cands := []domain.CandidateEntry{
		{Title: "Breaking News", URL: "/news/"},
		{Title: "BREAKING BAD (2008) – Season 1", URL: "/bb/"},
	}

	got, ok := SelectMatch(info, "", testBase, cands)
	if !ok {
		t.Fatalf("期望选中候选")
	}
	if got.URL != testBase+"/bb/" {
		t.Fatalf("期望选中 /bb/，实际 %q", got.URL)
	}

	if _, ok := SelectMatch(info, "", testBase, cands[:1]); ok {
		t.Fatalf("Breaking News 不应匹配 Breaking Bad")
	}
}

func TestSelectMatch_SubstringNotTokens(t *testing.T) {
	// 纯子串包含：查询标题的字母被拆开或乱序都不算。
	info := domain.MediaInfo{Title: "Bad Breaking", Year: 2008}
	cands := []domain.CandidateEntry{{Title: "Breaking Bad 2008", URL: "/bb/"}}
	if _, ok := SelectMatch(info, "", testBase, cands); ok {
		t.Fatalf("乱序标题不应匹配")
	}
}

func TestSelectMatch_YearDistance(t *testing.T) {
	info := domain.MediaInfo{Title: "Breaking Bad", Year: 2008}
	cands := []domain.CandidateEntry{
		{Title: "Breaking Bad (2011)", URL: "/2011/"},
		{Title: "Breaking Bad", Meta: "2007 · WEB", URL: "/2007/"},
	}

	got, ok := SelectMatch(info, "", testBase, cands)
	if !ok || got.URL != testBase+"/2007/" {
		t.Fatalf("期望选中距离 1 的 2007，实际 %+v ok=%v", got, ok)
	}
}

func TestSelectMatch_MissingYearPenalty(t *testing.T) {
	info := domain.MediaInfo{Title: "Breaking Bad", Year: 2008}

	for _, y := range []string{"2004", "2008", "2012"} {
		cands := []domain.CandidateEntry{
			{Title: "Breaking Bad", URL: "/no-year/"},
			{Title: "Breaking Bad " + y, URL: "/with-year/"},
		}
		got, ok := SelectMatch(info, "", testBase, cands)
		if !ok || got.URL != testBase+"/with-year/" {
			t.Fatalf("year=%s：无年份候选不应胜出，实际 %+v", y, got)
		}
	}

	// 只剩无年份候选时仍然可以被选中（不设距离上限）。
	got, ok := SelectMatch(info, "", testBase, []domain.CandidateEntry{{Title: "Breaking Bad", URL: "/no-year/"}})
	if !ok || got.URL != testBase+"/no-year/" {
		t.Fatalf("唯一的无年份候选应被选中，实际 %+v ok=%v", got, ok)
	}
}

func TestSelectMatch_TieKeepsFirst(t *testing.T) {
	info := domain.MediaInfo{Title: "Dune", Year: 2021}
	cands := []domain.CandidateEntry{
		{Title: "Dune (2020)", URL: "/first/"},
		{Title: "Dune (2022)", URL: "/second/"},
		{Title: "Dune", URL: "/third/", YearHint: 2020},
	}
	got, _ := SelectMatch(info, "", testBase, cands)
	if got.URL != testBase+"/first/" {
		t.Fatalf("并列时应保留第一个，实际 %q", got.URL)
	}
}

func TestSelectMatch_YearHintUsedWhenTextHasNoYear(t *testing.T) {
	info := domain.MediaInfo{Title: "Dune", Year: 2021}
	cands := []domain.CandidateEntry{
		{Title: "Dune", URL: "/old/", YearHint: 1984},
		{Title: "Dune", URL: "/new/", YearHint: 2021},
	}
	got, _ := SelectMatch(info, "", testBase, cands)
	if got.URL != testBase+"/new/" {
		t.Fatalf("应按 YearHint 选中 2021，实际 %q", got.URL)
	}
}

func TestSelectMatch_UnknownQueryYear(t *testing.T) {
	info := domain.MediaInfo{Title: "Dune"}
	cands := []domain.CandidateEntry{
		{Title: "Dune", URL: "/no-year/"},
		{Title: "Dune (2021)", URL: "/2021/"},
	}
	got, _ := SelectMatch(info, "", testBase, cands)
	if got.URL != testBase+"/no-year/" {
		t.Fatalf("查询年份未知时应取第一个合格候选，实际 %q", got.URL)
	}
}

func TestSelectMatch_IDCrossCheck(t *testing.T) {
	info := domain.MediaInfo{Title: "Breaking Bad", Year: 2008}
	cands := []domain.CandidateEntry{
		{Title: "Breaking Bad", URL: "/wrong-id/", ID: "999", YearHint: 2008},
		{Title: "Breaking Bad: Original Minisodes", URL: "/no-id/"},
		{Title: "Ruptura total", URL: "/localized/", ID: "1396"},
	}

	got, ok := SelectMatch(info, "1396", testBase, cands)
	if !ok || got.URL != testBase+"/localized/" {
		t.Fatalf("ID 相同的候选应以距离 0 胜出，实际 %+v", got)
	}

	// ID 不同的候选被淘汰，即使标题与年份完全一致。
	got, ok = SelectMatch(info, "1396", testBase, cands[:2])
	if !ok || got.URL != testBase+"/no-id/" {
		t.Fatalf("ID 不同的候选应被淘汰，实际 %+v", got)
	}
}

func TestSelectMatch_ResolvesRelativeAndSkipsBadURL(t *testing.T) {
	info := domain.MediaInfo{Title: "Heat", Year: 1995}
	cands := []domain.CandidateEntry{
		{Title: "Heat (1995)", URL: "javascript:void(0)"},
		{Title: "Heat (1995)", URL: "movies/heat-1995/"},
	}
	got, ok := SelectMatch(info, "", testBase+"/", cands)
	if !ok || got.URL != testBase+"/movies/heat-1995/" {
		t.Fatalf("期望绝对地址 %s/movies/heat-1995/，实际 %+v", testBase, got)
	}
	if got.Title != "Heat (1995)" {
		t.Fatalf("标题不符：%q", got.Title)
	}
}

func TestSelectMatch_EmptyInputs(t *testing.T) {
	if _, ok := SelectMatch(domain.MediaInfo{Title: "X"}, "", testBase, nil); ok {
		t.Fatalf("没有候选时不应选中")
	}
	if _, ok := SelectMatch(domain.MediaInfo{}, "", testBase, []domain.CandidateEntry{{Title: "X", URL: "/x"}}); ok {
		t.Fatalf("标题为空时不应选中")
	}
}
