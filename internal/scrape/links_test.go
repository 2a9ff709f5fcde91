package scrape

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/John-Robertt/hubscout/internal/domain"
)

const moviePage = "https://4khdhub.test/the-matrix-1999/"

func TestExtractLinks_Movie(t *testing.T) {
	q := domain.MediaQuery{ID: "603", Kind: domain.KindMovie}
	got, err := ExtractLinks(readFixture(t, "detail_movie.html"), moviePage, q, DefaultLinkRules)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	want := []domain.RawLink{
		{Href: "https://gadgetsweb.test/?id=aaa", Text: "The.Matrix.1999.2160p.UHD.BluRay [24.5 GB]"},
		{Href: "https://hubcloud.test/drive/bbb", Text: "HubCloud 1080p x264 [2.1 GB]"},
		{Href: "https://4khdhub.test/go/ccc", Text: "Watch Online 720p"},
		{Href: "https://pixeldrain.test/u/ddd", Text: "Mirror 480p 700MB"},
		{Href: "javascript:void(0)", Text: "Play trailer"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("链接不符 (-want +got):\n%s", diff)
	}
}

func TestExtractLinks_Scope(t *testing.T) {
	rules := DefaultLinkRules
	rules.Scope = "div.download-item a[href]"

	got, err := ExtractLinks(readFixture(t, "detail_movie.html"), moviePage, domain.MediaQuery{ID: "603", Kind: domain.KindMovie}, rules)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 4 {
		t.Fatalf("期望 4 条（只扫描 download-item），实际 %d：%+v", len(got), got)
	}
}

func TestExtractLinks_SeriesFilter(t *testing.T) {
	q := domain.MediaQuery{ID: "1396", Kind: domain.KindSeries, Season: 1, Episode: 2}
	got, err := ExtractLinks(readFixture(t, "detail_series.html"), "https://4khdhub.test/breaking-bad/", q, DefaultLinkRules)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	want := []domain.RawLink{
		{Href: "https://hubcloud.test/s1e2", Text: "Breaking.Bad.S01E02.1080p [1.1 GB] Download"},
		{Href: "https://hubcloud.test/s1e2-720", Text: "breaking.bad.s01e02.720p Download"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("链接不符 (-want +got):\n%s", diff)
	}
}

func TestExtractLinks_SeriesFilterNoFallback(t *testing.T) {
	q := domain.MediaQuery{ID: "1396", Kind: domain.KindSeries, Season: 3, Episode: 7}
	got, err := ExtractLinks(readFixture(t, "detail_series.html"), "https://4khdhub.test/breaking-bad/", q, DefaultLinkRules)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 0 {
		t.Fatalf("过滤后为空时不应回退，实际 %+v", got)
	}
}

func TestExtractLinks_SeriesWithoutEpisodeKeepsAll(t *testing.T) {
	q := domain.MediaQuery{ID: "1396", Kind: domain.KindSeries}
	got, err := ExtractLinks(readFixture(t, "detail_series.html"), "https://4khdhub.test/breaking-bad/", q, DefaultLinkRules)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 5 {
		t.Fatalf("没有集号时不过滤，期望 5 条，实际 %d", len(got))
	}
}

func TestExtractLinks_HostMarkerCaseInsensitive(t *testing.T) {
	html := []byte(`<a href="https://PIXELDRAIN.test/u/x">Mirror</a><a href="https://other.test/">DOWNLOAD NOW</a><a href="">Download</a>`)
	got, err := ExtractLinks(html, moviePage, domain.MediaQuery{}, DefaultLinkRules)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 条（空 href 跳过），实际 %+v", got)
	}
}
