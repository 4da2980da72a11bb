package status

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

type BackendProbeConfig struct {
	BaseURL        string
	CacheTTL       time.Duration
	RequestTimeout time.Duration
}

type BackendStatus struct {
	URL        string `json:"url"`
	Reachable  bool   `json:"reachable"`
	StatusCode int    `json:"statusCode,omitempty"`
	LatencyMs  int64  `json:"latencyMs"`
	CheckedAt  string `json:"checkedAt"`
	Error      string `json:"error,omitempty"`
}

type cachedBackendStatus struct {
	expiresAt time.Time
	status    BackendStatus
}

// BackendProbe는 백엔드 API 서버에 연결할 수 있는지 확인한다.
// 어떤 HTTP 응답이든 받으면 도달 가능으로 보며, 결과는 CacheTTL 동안 재사용한다
type BackendProbe struct {
	baseURL  string
	cacheTTL time.Duration
	client   *http.Client

	mu     sync.Mutex
	cached *cachedBackendStatus
}

func NewBackendProbe(cfg BackendProbeConfig) *BackendProbe {
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Second
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 3 * time.Second
	}

	return &BackendProbe{
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		cacheTTL: cacheTTL,
		client: &http.Client{
			Timeout: requestTimeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (p *BackendProbe) Probe(ctx context.Context) BackendStatus {
	now := time.Now().UTC()
	if status, ok := p.getCached(now); ok {
		return status
	}

	status := BackendStatus{
		URL:       p.baseURL,
		CheckedAt: now.Format(time.RFC3339),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/", nil)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	req.Header.Set("User-Agent", "fitedge-status-probe")

	started := time.Now()
	resp, err := p.client.Do(req)
	status.LatencyMs = time.Since(started).Milliseconds()
	if err != nil {
		status.Error = err.Error()
		p.setCached(now, status)
		return status
	}
	resp.Body.Close()

	status.Reachable = true
	status.StatusCode = resp.StatusCode
	p.setCached(now, status)
	return status
}

func (p *BackendProbe) getCached(now time.Time) (BackendStatus, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached == nil || !now.Before(p.cached.expiresAt) {
		return BackendStatus{}, false
	}
	return p.cached.status, true
}

func (p *BackendProbe) setCached(now time.Time, status BackendStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cached = &cachedBackendStatus{
		expiresAt: now.Add(p.cacheTTL),
		status:    status,
	}
}
