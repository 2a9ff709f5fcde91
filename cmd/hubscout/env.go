package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/John-Robertt/hubscout/internal/app/run"
	"github.com/John-Robertt/hubscout/internal/config"
	"github.com/John-Robertt/hubscout/internal/infra/logx"
	"github.com/John-Robertt/hubscout/internal/metadata"
	"github.com/John-Robertt/hubscout/internal/provider"
)

// cliEnv 收拢命令依赖的进程环境，测试里整体替换。
type cliEnv struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
	cwd    func() (string, error)

	// buildRegistry 组装站点；needMeta=false 时（例如只列出站点）不要求 TMDB api key。
	buildRegistry func(eff config.EffectiveConfig, needMeta bool, log zerolog.Logger) (provider.Registry, error)
}

func defaultEnv() *cliEnv {
	return &cliEnv{
		stdout:        os.Stdout,
		stderr:        os.Stderr,
		getenv:        os.Getenv,
		cwd:           os.Getwd,
		buildRegistry: defaultRegistry,
	}
}

func defaultRegistry(eff config.EffectiveConfig, needMeta bool, log zerolog.Logger) (provider.Registry, error) {
	var meta metadata.Resolver
	if needMeta {
		m, err := run.NewMetadata(eff)
		if err != nil {
			return provider.Registry{}, err
		}
		meta = m
	}
	return run.NewRegistry(eff, meta, log)
}

func (e *cliEnv) loadConfig(cli config.CLIArgs) (config.EffectiveConfig, error) {
	cwd, err := e.cwd()
	if err != nil {
		return config.EffectiveConfig{}, err
	}
	return config.LoadEffective(cwd, cli, e.getenv)
}

func (e *cliEnv) logger(eff config.EffectiveConfig) (zerolog.Logger, io.Closer, error) {
	return logx.New(logx.Options{
		Level:      eff.Log.Level,
		Format:     eff.Log.Format,
		File:       eff.Log.File,
		MaxSizeMB:  eff.Log.MaxSizeMB,
		MaxBackups: eff.Log.MaxBackups,
	}, e.stderr)
}

// progressWriter 选择进度输出位置：只在交互终端启用，默认走 stderr（不污染 stdout JSON）。
func (e *cliEnv) progressWriter() (io.Writer, bool) {
	if isTTY(e.stderr) {
		return e.stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(e.stdout) {
		return e.stdout, true
	}
	return nil, false
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
