package mediaid

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/John-Robertt/hubscout/internal/domain"
)

func TestParse_Variants(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		kind    string
		season  int
		episode int
		want    domain.MediaQuery
	}{
		{name: "bare", id: "603", kind: "movie", want: domain.MediaQuery{ID: "603", Kind: domain.KindMovie}},
		{name: "prefixed", id: "TMDB:603", kind: "movie", want: domain.MediaQuery{ID: "603", Kind: domain.KindMovie}},
		{name: "stremio_episode", id: "tmdb:1396:1:2", kind: "series", want: domain.MediaQuery{ID: "1396", Kind: domain.KindSeries, Season: 1, Episode: 2}},
		{name: "flag_episode", id: "1396", kind: "tv", season: 3, episode: 7, want: domain.MediaQuery{ID: "1396", Kind: domain.KindSeries, Season: 3, Episode: 7}},
		{name: "series_without_episode", id: "1396", kind: "series", want: domain.MediaQuery{ID: "1396", Kind: domain.KindSeries}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.id, tt.kind, tt.season, tt.episode)
			if err != nil {
				t.Fatalf("不期望错误：%v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Parse 结果不符 (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		kind     string
		season   int
		episode  int
		wantKind string
	}{
		{name: "empty", id: "  ", kind: "movie", wantKind: "empty"},
		{name: "imdb_not_supported", id: "tt0903747", kind: "movie", wantKind: "malformed"},
		{name: "unknown_kind", id: "603", kind: "anime", wantKind: "kind"},
		{name: "season_only", id: "1396", kind: "series", season: 1, wantKind: "episode"},
		{name: "movie_with_episode", id: "tmdb:603:1:1", kind: "movie", wantKind: "episode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.id, tt.kind, tt.season, tt.episode)
			var ie *InvalidError
			if !errors.As(err, &ie) || ie.Kind != tt.wantKind {
				t.Fatalf("期望 %s，实际 err=%v", tt.wantKind, err)
			}
		})
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	q := domain.MediaQuery{ID: "1396", Kind: domain.KindSeries, Season: 1, Episode: 2}
	s := Format(q)
	if s != "tmdb:1396:1:2" {
		t.Fatalf("期望 tmdb:1396:1:2，实际 %q", s)
	}
	got, err := Parse(s, "series", 0, 0)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != q {
		t.Fatalf("往返不一致：%+v != %+v", got, q)
	}
}
