package health

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"optiondesk/internal/httputil"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler reports liveness and readiness. A nil pool means the service runs
// on in-memory stores and readiness does not depend on a database.
type Handler struct {
	pool      *pgxpool.Pool
	startedAt time.Time
	httpAddr  string
	appMode   string
}

func NewHandler(pool *pgxpool.Pool, startedAt time.Time, httpAddr, appMode string) *Handler {
	start := startedAt.UTC()
	if start.IsZero() {
		start = time.Now().UTC()
	}
	return &Handler{
		pool:      pool,
		startedAt: start,
		httpAddr:  strings.TrimSpace(httpAddr),
		appMode:   strings.TrimSpace(appMode),
	}
}

type liveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	UptimeSec int64  `json:"uptime_sec"`
	Uptime    string `json:"uptime"`
}

type storageStats struct {
	Backend   string `json:"backend"`
	Reachable bool   `json:"reachable"`
	PingMs    int64  `json:"ping_ms"`
	Error     string `json:"error,omitempty"`
	CheckedAt string `json:"checked_at"`
}

type readyResponse struct {
	liveResponse
	Storage storageStats `json:"storage"`
}

type fullResponse struct {
	readyResponse
	App struct {
		HTTPAddr string `json:"http_addr"`
		Mode     string `json:"mode"`
	} `json:"app"`
	Runtime struct {
		GoVersion  string `json:"go_version"`
		Goroutines int    `json:"goroutines"`
		GoMaxProcs int    `json:"gomaxprocs"`
		NumGC      uint32 `json:"num_gc"`
		AllocBytes uint64 `json:"alloc_bytes"`
		SysBytes   uint64 `json:"sys_bytes"`
	} `json:"runtime"`
	Process struct {
		PID      int    `json:"pid"`
		Hostname string `json:"hostname"`
	} `json:"process"`
	Build struct {
		MainPath string `json:"main_path"`
		Version  string `json:"version"`
	} `json:"build"`
}

func (h *Handler) live(now time.Time) liveResponse {
	uptime := now.Sub(h.startedAt)
	if uptime < 0 {
		uptime = 0
	}
	return liveResponse{
		Status:    "ok",
		Timestamp: now.Format(time.RFC3339),
		UptimeSec: int64(uptime.Seconds()),
		Uptime:    uptime.String(),
	}
}

func (h *Handler) checkStorage(ctx context.Context) storageStats {
	if h.pool == nil {
		return storageStats{Backend: "memory", Reachable: true, CheckedAt: time.Now().UTC().Format(time.RFC3339)}
	}
	st := storageStats{Backend: "postgres"}
	start := time.Now()
	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	err := h.pool.Ping(pingCtx)
	cancel()
	st.PingMs = time.Since(start).Milliseconds()
	st.CheckedAt = time.Now().UTC().Format(time.RFC3339)
	if err != nil {
		st.Error = err.Error()
	} else {
		st.Reachable = true
	}
	return st
}

func (h *Handler) ready(ctx context.Context) (int, readyResponse) {
	resp := readyResponse{liveResponse: h.live(time.Now().UTC()), Storage: h.checkStorage(ctx)}
	if !resp.Storage.Reachable {
		resp.Status = "degraded"
		return http.StatusServiceUnavailable, resp
	}
	return http.StatusOK, resp
}

// Live does not touch storage.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.live(time.Now().UTC()))
}

// Ready returns 503 when the database is configured but unreachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	status, resp := h.ready(r.Context())
	httputil.WriteJSON(w, status, resp)
}

// Full adds runtime and build diagnostics. Mount behind the internal token.
func (h *Handler) Full(w http.ResponseWriter, r *http.Request) {
	status, ready := h.ready(r.Context())
	resp := fullResponse{readyResponse: ready}
	resp.App.HTTPAddr = h.httpAddr
	resp.App.Mode = h.appMode

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	resp.Runtime.GoVersion = runtime.Version()
	resp.Runtime.Goroutines = runtime.NumGoroutine()
	resp.Runtime.GoMaxProcs = runtime.GOMAXPROCS(0)
	resp.Runtime.NumGC = mem.NumGC
	resp.Runtime.AllocBytes = mem.Alloc
	resp.Runtime.SysBytes = mem.Sys

	resp.Process.PID = os.Getpid()
	if host, err := os.Hostname(); err == nil {
		resp.Process.Hostname = host
	}
	if info, ok := debug.ReadBuildInfo(); ok && info != nil {
		resp.Build.MainPath = strings.TrimSpace(info.Main.Path)
		resp.Build.Version = strings.TrimSpace(info.Main.Version)
	}
	httputil.WriteJSON(w, status, resp)
}

// Metrics writes Prometheus text format. Mount behind the internal token.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	live := h.live(time.Now().UTC())
	st := h.checkStorage(r.Context())
	up := 0
	if st.Reachable {
		up = 1
	}
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "# HELP optiondesk_up Service process is running.\n")
	_, _ = fmt.Fprintf(w, "# TYPE optiondesk_up gauge\n")
	_, _ = fmt.Fprintf(w, "optiondesk_up 1\n")
	_, _ = fmt.Fprintf(w, "# HELP optiondesk_uptime_seconds Service uptime in seconds.\n")
	_, _ = fmt.Fprintf(w, "# TYPE optiondesk_uptime_seconds gauge\n")
	_, _ = fmt.Fprintf(w, "optiondesk_uptime_seconds %d\n", live.UptimeSec)
	_, _ = fmt.Fprintf(w, "# HELP optiondesk_storage_up Storage reachability (1=ok,0=down).\n")
	_, _ = fmt.Fprintf(w, "# TYPE optiondesk_storage_up gauge\n")
	_, _ = fmt.Fprintf(w, "optiondesk_storage_up{backend=%q} %d\n", st.Backend, up)
	_, _ = fmt.Fprintf(w, "optiondesk_storage_ping_milliseconds %d\n", st.PingMs)
	_, _ = fmt.Fprintf(w, "optiondesk_go_goroutines %d\n", runtime.NumGoroutine())
	_, _ = fmt.Fprintf(w, "optiondesk_go_mem_alloc_bytes %d\n", mem.Alloc)
	_, _ = fmt.Fprintf(w, "optiondesk_go_gc_count %d\n", mem.NumGC)
}
