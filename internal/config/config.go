package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

const (
	// ErrCodeNotFound 表示 --config 指定的文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingTMDBKey 表示需要解析流但没有 TMDB api key。
	ErrCodeMissingTMDBKey = "config_missing_tmdb_key"
)

// FileName 是 cwd 下自动发现的配置文件名。
const FileName = "hubscout.toml"

// 环境变量覆盖（优先级介于 CLI 与配置文件之间）。
const (
	EnvTMDBAPIKey = "HUBSCOUT_TMDB_API_KEY"
	EnvProxy      = "HUBSCOUT_PROXY"
)

const (
	DefaultTimeout             = 15 * time.Second
	DefaultRedirectConcurrency = 8
	DefaultTMDBLanguage        = "en-US"
	DefaultListen              = ":7000"
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "auto"
	DefaultLogMaxSizeMB        = 50
	DefaultLogMaxBackups       = 3
)

// CLIArgs 是 CLI 能覆盖的字段，并保留“是否显式指定”的信息。
type CLIArgs struct {
	ConfigPath string

	Providers    []string
	ProvidersSet bool

	Timeout    time.Duration
	TimeoutSet bool

	LogLevel    string
	LogLevelSet bool

	Listen    string
	ListenSet bool
}

// FileConfig 对应 hubscout.toml 的解析结构。
type FileConfig struct {
	Providers           []string              `toml:"providers"`
	Timeout             string                `toml:"timeout"`
	RedirectConcurrency int                   `toml:"redirect_concurrency"`
	UserAgent           string                `toml:"user_agent"`
	Proxy               ProxyConfig           `toml:"proxy"`
	TMDB                TMDBConfig            `toml:"tmdb"`
	Sites               map[string]SiteConfig `toml:"sites"`
	Log                 LogConfig             `toml:"log"`
	Server              ServerConfig          `toml:"server"`
}

type ProxyConfig struct {
	URL string `toml:"url"`
}

type TMDBConfig struct {
	APIKey   string `toml:"api_key"`
	Language string `toml:"language"`
}

type SiteConfig struct {
	BaseURL string `toml:"base_url"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

type ServerConfig struct {
	Listen string `toml:"listen"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// Source 是实际读取的配置文件；没有文件时为空。
	Source string

	Providers           []string
	Timeout             time.Duration
	RedirectConcurrency int
	UserAgent           string
	ProxyURL            string

	TMDBAPIKey   string
	TMDBLanguage string

	// SiteBaseURLs 是按站点名（小写）覆盖的域名。
	SiteBaseURLs map[string]string

	Log    LogConfig
	Listen string
}

// BaseURL 返回站点的覆盖域名；没有配置时为空串（由站点包使用默认值）。
func (c EffectiveConfig) BaseURL(site string) string {
	return c.SiteBaseURLs[strings.ToLower(strings.TrimSpace(site))]
}

// RequireTMDBKey 在需要解析流的命令里调用。
func (c EffectiveConfig) RequireTMDBKey() error {
	if strings.TrimSpace(c.TMDBAPIKey) == "" {
		return &Error{Code: ErrCodeMissingTMDBKey, Path: c.Source}
	}
	return nil
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingTMDBKey:
		return fmt.Sprintf("%s：缺少 TMDB api key（[tmdb] api_key 或环境变量 %s）", e.Code, EnvTMDBAPIKey)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与环境变量、CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：必须存在
// 2) 否则尝试 <cwd>/hubscout.toml（可选，不存在时全部取默认值）
//
// 覆盖优先级（固定）：CLI > 环境变量 > 配置文件 > 默认值。
// getenv 为 nil 时使用 os.Getenv。
func LoadEffective(cwd string, cli CLIArgs, getenv func(string) string) (EffectiveConfig, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	var (
		cfgPath string
		fc      FileConfig
		exists  bool
	)
	if p := strings.TrimSpace(cli.ConfigPath); p != "" {
		cfgPath = absCleanFrom(cwdAbs, p)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	} else {
		cfgPath = filepath.Join(cwdAbs, FileName)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	}

	eff, err := merge(cli, fc, getenv)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if exists {
		eff.Source = cfgPath
	}
	return eff, nil
}

func merge(cli CLIArgs, fc FileConfig, getenv func(string) string) (EffectiveConfig, error) {
	// providers：CLI > config > 默认（空 = 全部已注册站点）
	providers := normNames(fc.Providers)
	if cli.ProvidersSet {
		providers = normNames(cli.Providers)
	}

	// timeout：CLI > config > 默认
	timeout := DefaultTimeout
	if s := strings.TrimSpace(fc.Timeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return EffectiveConfig{}, fmt.Errorf("timeout 无效：%q", s)
		}
		timeout = d
	}
	if cli.TimeoutSet {
		if cli.Timeout <= 0 {
			return EffectiveConfig{}, fmt.Errorf("--timeout 必须大于 0")
		}
		timeout = cli.Timeout
	}

	concurrency := fc.RedirectConcurrency
	if concurrency == 0 {
		concurrency = DefaultRedirectConcurrency
	}
	// 范围 [1, 32]；超出截断。
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 32 {
		concurrency = 32
	}

	// proxy：env > config
	proxyURL := strings.TrimSpace(fc.Proxy.URL)
	if v := strings.TrimSpace(getenv(EnvProxy)); v != "" {
		proxyURL = v
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return EffectiveConfig{}, fmt.Errorf("proxy.url 无效：%q", proxyURL)
		}
	}

	apiKey := strings.TrimSpace(fc.TMDB.APIKey)
	if v := strings.TrimSpace(getenv(EnvTMDBAPIKey)); v != "" {
		apiKey = v
	}
	language := strings.TrimSpace(fc.TMDB.Language)
	if language == "" {
		language = DefaultTMDBLanguage
	}

	sites := make(map[string]string, len(fc.Sites))
	names := make([]string, 0, len(fc.Sites))
	for name := range fc.Sites {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		base := strings.TrimRight(strings.TrimSpace(fc.Sites[name].BaseURL), "/")
		if base == "" {
			continue
		}
		u, err := url.Parse(base)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return EffectiveConfig{}, fmt.Errorf("sites.%s.base_url 必须是 http/https 地址：%q", name, base)
		}
		sites[strings.ToLower(strings.TrimSpace(name))] = base
	}

	logCfg, err := mergeLog(cli, fc.Log)
	if err != nil {
		return EffectiveConfig{}, err
	}

	listen := strings.TrimSpace(fc.Server.Listen)
	if cli.ListenSet {
		listen = strings.TrimSpace(cli.Listen)
	}
	if listen == "" {
		listen = DefaultListen
	}

	return EffectiveConfig{
		Providers:           providers,
		Timeout:             timeout,
		RedirectConcurrency: concurrency,
		UserAgent:           strings.TrimSpace(fc.UserAgent),
		ProxyURL:            proxyURL,
		TMDBAPIKey:          apiKey,
		TMDBLanguage:        language,
		SiteBaseURLs:        sites,
		Log:                 logCfg,
		Listen:              listen,
	}, nil
}

func mergeLog(cli CLIArgs, lc LogConfig) (LogConfig, error) {
	out := LogConfig{
		Level:      strings.ToLower(strings.TrimSpace(lc.Level)),
		Format:     strings.ToLower(strings.TrimSpace(lc.Format)),
		File:       strings.TrimSpace(lc.File),
		MaxSizeMB:  lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
	}
	if cli.LogLevelSet {
		out.Level = strings.ToLower(strings.TrimSpace(cli.LogLevel))
	}
	if out.Level == "" {
		out.Level = DefaultLogLevel
	}
	if _, err := zerolog.ParseLevel(out.Level); err != nil {
		return LogConfig{}, fmt.Errorf("log.level 无效：%q", out.Level)
	}
	switch out.Format {
	case "":
		out.Format = DefaultLogFormat
	case "auto", "console", "json":
	default:
		return LogConfig{}, fmt.Errorf("log.format 只能是 auto/console/json，实际是 %q", out.Format)
	}
	if out.MaxSizeMB <= 0 {
		out.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if out.MaxBackups < 0 {
		return LogConfig{}, fmt.Errorf("log.max_backups 不能为负数")
	}
	if out.MaxBackups == 0 {
		out.MaxBackups = DefaultLogMaxBackups
	}
	return out, nil
}

func normNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 TOML 配置文件（未知字段视为错误）。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
