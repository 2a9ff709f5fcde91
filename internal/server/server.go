package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/John-Robertt/hubscout/internal/app/run"
	"github.com/John-Robertt/hubscout/internal/domain"
	"github.com/John-Robertt/hubscout/internal/mediaid"
	"github.com/John-Robertt/hubscout/internal/provider"
)

// 关闭时等待在途请求的上限。
const shutdownTimeout = 10 * time.Second

// Server 把解析入口暴露为 HTTP 接口（Stremio addon 风格的路由）。
//
// 约束：
// - 解析结果永远是 200（可能为空），只有请求本身不合法才返回 4xx
// - 每个请求带一个 request id（响应头 X-Request-Id，同时写入日志）
type Server struct {
	reg    provider.Registry
	log    zerolog.Logger
	router *mux.Router
}

func New(reg provider.Registry, log zerolog.Logger) *Server {
	s := &Server{reg: reg, log: log}

	r := mux.NewRouter()
	r.Use(s.requestLog)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/providers", s.handleProviders).Methods(http.MethodGet)
	r.HandleFunc("/stream/{kind}/{id}.json", s.handleStreams).Methods(http.MethodGet)
	r.HandleFunc("/report/{kind}/{id}.json", s.handleReport).Methods(http.MethodGet)
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe 监听 addr，直到 ctx 结束后优雅关闭。
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("listen", addr).Msg("HTTP 服务已启动")
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"providers": s.reg.Names()})
}

type streamsResponse struct {
	Streams []domain.StreamDescriptor `json:"streams"`
}

func (s *Server) handleStreams(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.resolve(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, streamsResponse{Streams: rep.Streams})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.resolve(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (domain.ResolveReport, bool) {
	vars := mux.Vars(r)
	q, err := mediaid.Parse(vars["id"], vars["kind"], 0, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return domain.ResolveReport{}, false
	}

	rep, err := run.Execute(r.Context(), s.reg, splitProviders(r.URL.Query()["provider"]), q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return domain.ResolveReport{}, false
	}
	zerolog.Ctx(r.Context()).Info().
		Str("query", q.String()).
		Int("streams", rep.Summary.Streams).
		Int("providers_ok", rep.Summary.OK).
		Msg("解析完成")
	return rep, true
}

// splitProviders 同时支持 ?provider=a,b 与 ?provider=a&provider=b。
func splitProviders(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
