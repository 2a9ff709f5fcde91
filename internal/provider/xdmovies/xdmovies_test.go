package xdmovies

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/John-Robertt/hubscout/internal/domain"
	"github.com/John-Robertt/hubscout/internal/infra/httpx"
	"github.com/John-Robertt/hubscout/internal/metadata"
	"github.com/John-Robertt/hubscout/internal/scrape"
)

func TestSite_SearchURL(t *testing.T) {
	s := Site("https://xd.test/")
	got := s.SearchURL(s.BaseURL, "The Office & Co")
	want := "https://xd.test/php/search_api.php?query=The+Office+%26+Co&fuzzy=true"
	if got != want {
		t.Fatalf("期望 %s，实际 %s", want, got)
	}
	if s.Header.Get("X-Requested-With") != "XMLHttpRequest" {
		t.Fatalf("缺少 XHR 头")
	}
	if Site("").BaseURL != DefaultBaseURL {
		t.Fatalf("默认域名不符")
	}
}

const detailPage = `<html><body>
<div class="download-item"><a href="%[1]s/hubcloud/1">Breaking.Bad.S01E02.1080p [1.4 GB]</a></div>
<div class="download-item"><a href="%[1]s/about">S01E02 说明</a></div>
<div class="episode-card"><a href="%[1]s/dl/2">S01E02 720p Download</a></div>
<div class="episode-card"><a href="%[1]s/dl/3">S01E03 720p Download</a></div>
<footer><a href="https://hubcloud.test/ad">S01E02 Download (ad)</a></footer>
</body></html>`

func TestNew_EndToEnd(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/php/search_api.php":
			if r.Header.Get("X-Requested-With") != "XMLHttpRequest" || r.URL.Query().Get("fuzzy") != "true" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"title":"Breaking Bad","path":"/series/bb-fake","tmdb_id":"42","year":2008},
				{"title":"Breaking Bad","path":"/series/bb","tmdb_id":1396,"year":2008}
			]`))
		case "/series/bb":
			_, _ = w.Write([]byte(fmt.Sprintf(detailPage, srv.URL)))
		case "/hubcloud/1":
			w.Header().Set("Location", "https://pixeldrain.test/u/1")
			w.WriteHeader(http.StatusFound)
		case "/dl/2":
			w.Header().Set("Location", "https://gofile.test/d/2")
			w.WriteHeader(http.StatusFound)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := httpx.NewClient(httpx.Options{})
	if err != nil {
		t.Fatalf("创建 client 失败：%v", err)
	}
	meta := metadata.ResolverFunc(func(context.Context, string, domain.Kind) (domain.MediaInfo, error) {
		return domain.MediaInfo{Title: "Breaking Bad", Year: 2008}, nil
	})
	p := New(srv.URL, scrape.Deps{Metadata: meta, Client: c, Log: zerolog.Nop()})

	got, stages := p.ResolveStreamsTrace(context.Background(), domain.MediaQuery{ID: "1396", Kind: domain.KindSeries, Season: 1, Episode: 2})
	if len(got) != 2 {
		t.Fatalf("期望 2 条流，实际 %+v（stages=%+v）", got, stages)
	}
	if got[0].URL != "https://pixeldrain.test/u/1" || got[0].ProviderID != "Pixeldrain" || got[0].Title != "Breaking Bad S01E02" {
		t.Fatalf("第 1 条不符：%+v", got[0])
	}
	if got[1].URL != "https://gofile.test/d/2" || got[1].Quality != domain.Quality720p {
		t.Fatalf("第 2 条不符：%+v", got[1])
	}
	if got[0].Headers["Referer"] != srv.URL+"/series/bb" {
		t.Fatalf("应按 tmdb_id 选中 /series/bb，实际 Referer=%q", got[0].Headers["Referer"])
	}
}

func TestSite_LinksNeedMarkerOrKeyword(t *testing.T) {
	const page = "https://xd.test/series/bb"
	html := fmt.Sprintf(detailPage, "https://xd.test")

	q := domain.MediaQuery{ID: "1396", Kind: domain.KindSeries, Season: 1, Episode: 2}
	links, err := scrape.ExtractLinks([]byte(html), page, q, Site("https://xd.test").Links)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	var got []string
	for _, l := range links {
		got = append(got, strings.TrimPrefix(l.Href, "https://xd.test"))
	}
	want := []string{"/hubcloud/1", "/dl/2"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("期望 %v，实际 %v", want, got)
	}
}
