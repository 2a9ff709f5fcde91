package run

import (
	"github.com/rs/zerolog"

	"github.com/John-Robertt/hubscout/internal/config"
	"github.com/John-Robertt/hubscout/internal/infra/httpx"
	"github.com/John-Robertt/hubscout/internal/metadata"
	"github.com/John-Robertt/hubscout/internal/provider"
	"github.com/John-Robertt/hubscout/internal/provider/fourkhdhub"
	"github.com/John-Robertt/hubscout/internal/provider/xdmovies"
	"github.com/John-Robertt/hubscout/internal/scrape"
)

// NewMetadata 用生效配置构造 TMDB 元数据解析器。没有 api key 时返回 config_missing_tmdb_key。
func NewMetadata(eff config.EffectiveConfig) (metadata.Resolver, error) {
	if err := eff.RequireTMDBKey(); err != nil {
		return nil, err
	}
	t, err := metadata.NewTMDB(eff.TMDBAPIKey, eff.TMDBLanguage)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// NewRegistry 组装所有内置站点。注册顺序就是多站点合并输出的顺序。
func NewRegistry(eff config.EffectiveConfig, meta metadata.Resolver, log zerolog.Logger) (provider.Registry, error) {
	opts := httpx.Options{
		ProxyURL:  eff.ProxyURL,
		Timeout:   eff.Timeout,
		UserAgent: eff.UserAgent,
	}
	client, err := httpx.NewClient(opts)
	if err != nil {
		return provider.Registry{}, err
	}
	probe, err := httpx.NewNoRedirectClient(opts)
	if err != nil {
		return provider.Registry{}, err
	}

	d := scrape.Deps{
		Metadata:            meta,
		Client:              client,
		Probe:               probe,
		RedirectConcurrency: eff.RedirectConcurrency,
		Log:                 log,
	}
	return provider.NewRegistry(
		fourkhdhub.New(eff.BaseURL(fourkhdhub.Name), d),
		xdmovies.New(eff.BaseURL(xdmovies.Name), d),
	)
}
