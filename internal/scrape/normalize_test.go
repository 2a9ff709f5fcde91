package scrape

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/John-Robertt/hubscout/internal/domain"
)

func TestClassifyHost(t *testing.T) {
	cases := map[string]string{
		"https://fsl.hubcloud.one/x.mkv":  "HubCloud FSL",
		"https://s3.hubcloud.bz/x":        "HubCloud S3",
		"https://buzz.hubcloud.ink/x":     "HubCloud Buzz",
		"https://hubcloud.foo/drive/x":    "HubCloud",
		"https://cdn.hubcdn.fans/x":       "HubCdn",
		"https://HUBDRIVE.space/file/1":   "HubDrive",
		"https://pixeldrain.com/u/abc":    "Pixeldrain",
		"https://streamtape.to/e/1":       "StreamTape",
		"https://new.gdflix.dad/file/x":   "GDFlix",
		"https://gofile.io/d/x":           "GoFile",
		"https://www.example.org/a":       "example",
		"https://mirror.files.test/x.mkv": "mirror",
		"/relative/only":                  "unknown",
	}
	for in, want := range cases {
		if got := ClassifyHost(in); got != want {
			t.Fatalf("ClassifyHost(%q)：期望 %q，实际 %q", in, want, got)
		}
	}
}

func TestExtractQuality(t *testing.T) {
	cases := map[string]domain.Quality{
		"Movie.2160p.UHD":         domain.Quality2160p,
		"4K HDR Remux":            domain.Quality2160p,
		"1440P WEB":               domain.Quality1440p,
		"x264 1080p [2 GB]":       domain.Quality1080p,
		"720p and 1080p together": domain.Quality1080p,
		"HDRip 720P":              domain.Quality720p,
		"480p mobile":             domain.Quality480p,
		"360p":                    domain.Quality360p,
		"Download now":            domain.Quality1080p,
	}
	for in, want := range cases {
		if got := ExtractQuality(in); got != want {
			t.Fatalf("ExtractQuality(%q)：期望 %s，实际 %s", in, want, got)
		}
	}
}

func TestExtractSize(t *testing.T) {
	cases := map[string]int64{
		"[1.5 GB]":     1610612736,
		"Mirror 700MB": 734003200,
		"remux 2 tb":   2199023255552,
		"[24.5 GB]":    26306674688,
		"no size here": domain.SizeUnknown,
		"1080p [GB]":   domain.SizeUnknown,
		"12.75gb file": 13690208256,
	}
	for in, want := range cases {
		if got := ExtractSize(in); got != want {
			t.Fatalf("ExtractSize(%q)：期望 %d，实际 %d", in, want, got)
		}
	}
}

func TestDisplayTitle(t *testing.T) {
	info := domain.MediaInfo{Title: "Breaking Bad", Year: 2008}
	if got := DisplayTitle(info, domain.MediaQuery{Kind: domain.KindSeries, Season: 1, Episode: 2}); got != "Breaking Bad S01E02" {
		t.Fatalf("剧集标题不符：%q", got)
	}
	if got := DisplayTitle(info, domain.MediaQuery{Kind: domain.KindMovie}); got != "Breaking Bad (2008)" {
		t.Fatalf("电影标题不符：%q", got)
	}
	if got := DisplayTitle(domain.MediaInfo{Title: "Untitled"}, domain.MediaQuery{Kind: domain.KindMovie}); got != "Untitled" {
		t.Fatalf("年份未知时只有标题，实际 %q", got)
	}
}

func TestNormalize_DedupFirstWins(t *testing.T) {
	n := Normalizer{Source: "4khdhub", UserAgent: "UA/1"}
	match := domain.SelectedMatch{URL: "https://4khdhub.test/the-matrix-1999/", Title: "The Matrix"}
	links := []domain.ResolvedLink{
		{URL: "https://fsl.hubcloud.test/a.mkv", Link: domain.RawLink{Text: "2160p [24.5 GB]"}},
		{URL: "https://pixeldrain.test/u/b", Link: domain.RawLink{Text: "480p"}},
		{URL: "https://fsl.hubcloud.test/a.mkv", Link: domain.RawLink{Text: "720p [1 GB]"}},
	}

	got := n.Normalize(links, domain.MediaInfo{Title: "The Matrix", Year: 1999}, domain.MediaQuery{ID: "603", Kind: domain.KindMovie}, match)

	headers := map[string]string{"User-Agent": "UA/1", "Referer": match.URL}
	want := []domain.StreamDescriptor{
		{
			Name: "HubCloud FSL - 2160p", Title: "The Matrix (1999)", URL: "https://fsl.hubcloud.test/a.mkv",
			Quality: domain.Quality2160p, SizeBytes: 26306674688, Headers: headers, ProviderID: "HubCloud FSL", Source: "4khdhub",
		},
		{
			Name: "Pixeldrain - 480p", Title: "The Matrix (1999)", URL: "https://pixeldrain.test/u/b",
			Quality: domain.Quality480p, SizeBytes: domain.SizeUnknown, Headers: headers, ProviderID: "Pixeldrain", Source: "4khdhub",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("输出不符 (-want +got):\n%s", diff)
	}
}

func TestNormalize_EmptyIsNonNil(t *testing.T) {
	got := Normalizer{}.Normalize(nil, domain.MediaInfo{Title: "X"}, domain.MediaQuery{}, domain.SelectedMatch{})
	if got == nil || len(got) != 0 {
		t.Fatalf("期望非 nil 的空切片，实际 %#v", got)
	}
}
