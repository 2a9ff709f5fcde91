package main

import (
	"errors"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/hubscout/internal/app/run"
	"github.com/John-Robertt/hubscout/internal/config"
	"github.com/John-Robertt/hubscout/internal/domain"
	"github.com/John-Robertt/hubscout/internal/mediaid"
	"github.com/John-Robertt/hubscout/internal/provider"
)

// 非配置类的启动错误码。
const (
	errCodeInvalidID       = "invalid_id"
	errCodeUnknownProvider = "unknown_provider"
)

type streamsFlags struct {
	kind      string
	season    int
	episode   int
	providers []string
	timeout   time.Duration
	output    string
}

func newStreamsCommand(env *cliEnv, g *globalFlags) *cobra.Command {
	f := &streamsFlags{}
	cmd := &cobra.Command{
		Use:   "streams <id>",
		Short: "解析一个 TMDB ID 的可播放链接",
		Example: `  hubscout streams 603
  hubscout streams tmdb:1396:1:2
  hubscout streams 1396 --kind series --season 1 --episode 2 --provider 4khdhub`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStreams(cmd, env, g, f, args[0])
		},
	}
	cmd.Flags().StringVarP(&f.kind, "kind", "k", "movie", "媒体类型：movie|series（ID 带季/集时默认 series）")
	cmd.Flags().IntVarP(&f.season, "season", "s", 0, "季号（series）")
	cmd.Flags().IntVarP(&f.episode, "episode", "e", 0, "集号（series）")
	cmd.Flags().StringSliceVarP(&f.providers, "provider", "p", nil, "只使用指定站点（可重复或逗号分隔；默认全部）")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "单个请求超时（例如 20s）")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "同时把 ResolveReport JSON 写入该文件（原子替换）")
	return cmd
}

func runStreams(cmd *cobra.Command, env *cliEnv, g *globalFlags, f *streamsFlags, id string) error {
	started := time.Now()

	kind := f.kind
	if !cmd.Flags().Changed("kind") {
		kind = inferKind(id, f.season, f.episode)
	}
	q, err := mediaid.Parse(id, kind, f.season, f.episode)
	if err != nil {
		return env.fail(domain.MediaQuery{}, errCodeInvalidID, err, started)
	}

	cli := g.cliArgs(cmd)
	cli.Providers = f.providers
	cli.ProvidersSet = cmd.Flags().Changed("provider")
	cli.Timeout = f.timeout
	cli.TimeoutSet = cmd.Flags().Changed("timeout")

	eff, err := env.loadConfig(cli)
	if err != nil {
		return env.fail(q, codeOr(err, config.ErrCodeInvalid), err, started)
	}
	log, closer, err := env.logger(eff)
	if err != nil {
		return env.fail(q, config.ErrCodeInvalid, err, started)
	}
	defer closer.Close()

	reg, err := env.buildRegistry(eff, true, log)
	if err != nil {
		return env.fail(q, codeOr(err, config.ErrCodeInvalid), err, started)
	}

	var obs run.Observer
	if w, ok := env.progressWriter(); ok {
		ui := newProgressUI(w, eff)
		defer ui.Stop()
		obs = ui
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rep, err := run.ExecuteWithObserver(ctx, reg, eff.Providers, q, obs)
	if err != nil {
		code := config.ErrCodeInvalid
		var ue *provider.UnknownError
		if errors.As(err, &ue) {
			code = errCodeUnknownProvider
		}
		return env.fail(q, code, err, started)
	}
	env.emitReport(rep)
	if f.output != "" {
		if err := writeReportFile(f.output, rep); err != nil {
			log.Error().Err(err).Str("path", f.output).Msg("写入 report 失败")
			return err
		}
	}
	return nil
}

// inferKind：ID 或参数里带季/集时按剧集处理。
func inferKind(id string, season, episode int) string {
	if season > 0 || episode > 0 || strings.Count(id, ":") >= 2 {
		return string(domain.KindSeries)
	}
	return string(domain.KindMovie)
}

func codeOr(err error, fallback string) string {
	if c := config.Code(err); c != "" {
		return c
	}
	return fallback
}
