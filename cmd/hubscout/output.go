package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/John-Robertt/hubscout/internal/domain"
	"github.com/John-Robertt/hubscout/internal/infra/fsx"
)

// reportedError 表示错误已经以 report 的形式输出过，main 不再重复打印。
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// fail 把启动阶段的错误也包装成一个 ResolveReport 输出（保持 stdout 契约）。
func (e *cliEnv) fail(q domain.MediaQuery, code string, err error, started time.Time) error {
	rep := domain.ResolveReport{
		Query:      q,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Error:      &domain.ReportError{Code: code, Message: err.Error()},
	}
	rep.Finalize()
	e.emitReport(rep)
	return &reportedError{err: err}
}

// emitReport 输出最终结果。
//
// 契约：
// - stdout 是 TTY：人读的逐行结果，失败原因写 stderr
// - stdout 非 TTY：stdout 必须且仅输出一个 ResolveReport JSON（摘要走 stderr）
func (e *cliEnv) emitReport(rep domain.ResolveReport) {
	if isTTY(e.stdout) {
		if rep.Error != nil {
			fmt.Fprintf(e.stderr, "%s: %s\n", rep.Error.Code, rep.Error.Message)
			return
		}
		for i, s := range rep.Streams {
			fmt.Fprintf(e.stdout, "%2d. %-22s %10s  %s [%s]\n    %s\n", i+1, s.Name, s.Size(), s.Title, s.Source, s.URL)
		}
		fmt.Fprintln(e.stdout, summaryLine(rep))
		for _, p := range rep.Providers {
			if p.Status != domain.StatusEmpty {
				continue
			}
			fmt.Fprintf(e.stderr, "%s empty: %s\n", p.Provider, emptyReason(p))
		}
		return
	}

	enc := json.NewEncoder(e.stdout)
	_ = enc.Encode(rep)
	if rep.Error != nil {
		fmt.Fprintf(e.stderr, "%s: %s\n", rep.Error.Code, rep.Error.Message)
		return
	}
	fmt.Fprintln(e.stderr, summaryLine(rep))
}

func summaryLine(rep domain.ResolveReport) string {
	return fmt.Sprintf("完成：streams=%d providers=%d ok=%d empty=%d",
		rep.Summary.Streams, rep.Summary.Providers, rep.Summary.OK, rep.Summary.Empty,
	)
}

// emptyReason 取第一个带错误的阶段；都没有错误时说明链接全部被过滤。
func emptyReason(p domain.ProviderResult) string {
	for _, s := range p.Stages {
		if s.Error != "" {
			return s.Error
		}
	}
	if len(p.Stages) > 0 {
		last := p.Stages[len(p.Stages)-1]
		return fmt.Sprintf("stage=%s count=%d", last.Stage, last.Count)
	}
	return "无输出"
}

func writeReportFile(path string, rep domain.ResolveReport) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(path, append(b, '\n'))
}
