package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"taeu.kr/fitedge/internal/journal"
	"taeu.kr/fitedge/internal/platform/web"
	"taeu.kr/fitedge/internal/system"
)

const summaryWindow = 24 * time.Hour

type Prober interface {
	Probe(ctx context.Context) BackendStatus
}

type RefreshJournal interface {
	Summary(ctx context.Context, since time.Time) (*journal.Summary, error)
	Recent(ctx context.Context, limit int) ([]*journal.Event, error)
}

type StatusResponse struct {
	Status  string               `json:"status"`
	Backend BackendStatus        `json:"backend"`
	Refresh *journal.Summary     `json:"refresh,omitempty"`
	Process *system.ProcessStats `json:"process,omitempty"`
	Hosts   []string             `json:"hosts"`
}

type RefreshEventResponse struct {
	*journal.Event
	LatencyMs int64 `json:"latencyMs"`
}

type Handler struct {
	prober  Prober
	journal RefreshJournal
	port    string
	// processStats는 테스트에서 교체한다
	processStats func(ctx context.Context) (*system.ProcessStats, error)
}

func NewHandler(prober Prober, refreshJournal RefreshJournal, port string) *Handler {
	return &Handler{
		prober:       prober,
		journal:      refreshJournal,
		port:         port,
		processStats: system.CurrentProcessStats,
	}
}

// RegisterRoutes는 공개 리스너에 헬스 체크만 올린다
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /_edge/health", web.Handler(h.handleHealth))
}

// RegisterAdminRoutes는 호스트 정보와 갱신 기록을 담은 운영용 경로를 올린다.
// 관리 리스너에만 등록한다
func (h *Handler) RegisterAdminRoutes(mux *http.ServeMux) {
	mux.Handle("GET /_edge/health", web.Handler(h.handleHealth))
	mux.Handle("GET /_edge/status", web.Handler(h.handleStatus))
	mux.Handle("GET /_edge/refreshes", web.Handler(h.handleRecentRefreshes))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) *web.Error {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	return nil
}

// handleStatus는 백엔드 도달 여부, 최근 24시간 갱신 통계, 프로세스 자원을 보여준다.
// 백엔드에 닿지 않거나 통계 조회가 실패하면 degraded
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) *web.Error {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := StatusResponse{
		Status:  "ok",
		Backend: h.prober.Probe(ctx),
		Hosts:   h.getAccessibleHosts(),
	}
	if !resp.Backend.Reachable {
		resp.Status = "degraded"
	}

	summary, err := h.journal.Summary(ctx, time.Now().Add(-summaryWindow))
	if err != nil {
		log.Warn().Err(err).Msg("[Status] failed to load refresh summary")
		resp.Status = "degraded"
	} else {
		resp.Refresh = summary
	}

	if stats, err := h.processStats(ctx); err != nil {
		log.Warn().Err(err).Msg("[Status] failed to read process stats")
	} else {
		resp.Process = stats
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return &web.Error{Err: err, Code: http.StatusInternalServerError, Message: "Failed to encode status response"}
	}
	return nil
}

// handleRecentRefreshes는 최근 갱신 시도를 최신순으로 돌려준다 (?limit=N)
func (h *Handler) handleRecentRefreshes(w http.ResponseWriter, r *http.Request) *web.Error {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return &web.Error{Code: http.StatusBadRequest, Message: "limit must be a positive integer"}
		}
		limit = min(parsed, journal.MaxRecentLimit)
	}

	events, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		return &web.Error{Err: err, Code: http.StatusInternalServerError, Message: "Failed to load refresh events"}
	}

	resp := make([]RefreshEventResponse, 0, len(events))
	for _, event := range events {
		resp = append(resp, RefreshEventResponse{Event: event, LatencyMs: event.Latency.Milliseconds()})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return &web.Error{Err: err, Code: http.StatusInternalServerError, Message: "Failed to encode refresh events"}
	}
	return nil
}

func (h *Handler) getAccessibleHosts() []string {
	hosts := []string{fmt.Sprintf("localhost:%s", h.port)}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return hosts
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() || ipNet.IP.To4() == nil {
			continue
		}
		hosts = append(hosts, fmt.Sprintf("%s:%s", ipNet.IP.String(), h.port))
	}

	return hosts
}
