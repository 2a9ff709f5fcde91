package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options 对应配置文件的 [log] 段。
type Options struct {
	Level  string // trace/debug/info/warn/error，空串 = info
	Format string // auto/console/json，空串 = auto（stderr 是 TTY 时用 console）
	File   string // 非空时额外写入滚动日志文件（始终 JSON）

	MaxSizeMB  int
	MaxBackups int
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New 构造进程级 logger。
//
// 约束：
// - 日志只写 stderr / 文件，stdout 留给结果输出（JSON 契约）
// - 返回的 Closer 负责关闭日志文件；没有文件时是 no-op
func New(opts Options, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("log.level 无效：%q", s)
		}
		level = l
	}

	var out io.Writer
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", FormatAuto:
		out = stderr
		if isTerminal(stderr) {
			out = consoleWriter(stderr)
		}
	case FormatConsole:
		out = consoleWriter(stderr)
	case FormatJSON:
		out = stderr
	default:
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("log.format 只能是 auto/console/json，实际是 %q", opts.Format)
	}

	var closer io.Closer = nopCloser{}
	if file := strings.TrimSpace(opts.File); file != "" {
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    positiveOr(opts.MaxSizeMB, 10),
			MaxBackups: positiveOr(opts.MaxBackups, 3),
		}
		out = zerolog.MultiLevelWriter(out, lj)
		closer = lj
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: !isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
