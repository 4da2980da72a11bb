package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"taeu.kr/fitedge/internal/journal"
	journalstore "taeu.kr/fitedge/internal/journal/store"
	"taeu.kr/fitedge/internal/platform/database"
	"taeu.kr/fitedge/internal/system"
)

type stubProber struct {
	status BackendStatus
}

func (s stubProber) Probe(context.Context) BackendStatus {
	return s.status
}

type stubJournal struct {
	summary   *journal.Summary
	err       error
	events    []*journal.Event
	lastLimit *int
}

func (s stubJournal) Summary(context.Context, time.Time) (*journal.Summary, error) {
	return s.summary, s.err
}

func (s stubJournal) Recent(_ context.Context, limit int) ([]*journal.Event, error) {
	if s.lastLimit != nil {
		*s.lastLimit = limit
	}
	return s.events, s.err
}

func newTestHandler(prober Prober, refreshJournal RefreshJournal) *Handler {
	h := NewHandler(prober, refreshJournal, "3000")
	h.processStats = func(context.Context) (*system.ProcessStats, error) {
		return &system.ProcessStats{PID: 42, RSSBytes: 1024, Goroutines: 3}, nil
	}
	return h
}

func serveStatus(t *testing.T, h *Handler) StatusResponse {
	t.Helper()

	mux := http.NewServeMux()
	h.RegisterAdminRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_edge/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestHandleStatusHealthy(t *testing.T) {
	summary := &journal.Summary{Total: 3, ByOutcome: map[journal.Outcome]int{journal.OutcomeSuccess: 3}}
	h := newTestHandler(
		stubProber{status: BackendStatus{URL: "http://api", Reachable: true, StatusCode: 404}},
		stubJournal{summary: summary},
	)

	resp := serveStatus(t, h)

	if resp.Status != "ok" {
		t.Fatalf("expected ok status, got %q", resp.Status)
	}
	if !resp.Backend.Reachable || resp.Backend.StatusCode != 404 {
		t.Fatalf("unexpected backend status %+v", resp.Backend)
	}
	if resp.Refresh == nil || resp.Refresh.ByOutcome[journal.OutcomeSuccess] != 3 {
		t.Fatalf("expected refresh summary, got %+v", resp.Refresh)
	}
	if resp.Process == nil || resp.Process.PID != 42 {
		t.Fatalf("expected process stats, got %+v", resp.Process)
	}
	if len(resp.Hosts) == 0 || resp.Hosts[0] != "localhost:3000" {
		t.Fatalf("expected localhost host first, got %v", resp.Hosts)
	}
}

func TestHandleStatusDegraded(t *testing.T) {
	t.Run("backend unreachable", func(t *testing.T) {
		h := newTestHandler(
			stubProber{status: BackendStatus{Error: "connection refused"}},
			stubJournal{summary: &journal.Summary{}},
		)

		if resp := serveStatus(t, h); resp.Status != "degraded" {
			t.Fatalf("expected degraded, got %q", resp.Status)
		}
	})

	t.Run("journal unavailable", func(t *testing.T) {
		h := newTestHandler(
			stubProber{status: BackendStatus{Reachable: true}},
			stubJournal{err: errors.New("database is locked")},
		)

		resp := serveStatus(t, h)
		if resp.Status != "degraded" {
			t.Fatalf("expected degraded, got %q", resp.Status)
		}
		if resp.Refresh != nil {
			t.Fatalf("expected no refresh summary, got %+v", resp.Refresh)
		}
	})
}

func TestHandleHealth(t *testing.T) {
	mux := http.NewServeMux()
	newTestHandler(stubProber{}, stubJournal{}).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_edge/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "{\"status\":\"ok\"}\n" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestHandleRecentRefreshes(t *testing.T) {
	t.Run("returns events with latency in ms", func(t *testing.T) {
		var limit int
		occurred := time.UnixMilli(1_700_000_000_000).UTC()
		h := newTestHandler(stubProber{}, stubJournal{
			lastLimit: &limit,
			events: []*journal.Event{{
				ID:         7,
				OccurredAt: occurred,
				Path:       "/profile",
				Outcome:    journal.OutcomeRejected,
				StatusCode: http.StatusUnauthorized,
				Latency:    1500 * time.Millisecond,
			}},
		})
		mux := http.NewServeMux()
		h.RegisterAdminRoutes(mux)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_edge/refreshes?limit=500", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if limit != journal.MaxRecentLimit {
			t.Fatalf("expected limit capped at %d, got %d", journal.MaxRecentLimit, limit)
		}

		var resp []map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp) != 1 {
			t.Fatalf("expected 1 event, got %d", len(resp))
		}
		if resp[0]["path"] != "/profile" || resp[0]["outcome"] != "rejected" {
			t.Fatalf("unexpected event %v", resp[0])
		}
		if resp[0]["latencyMs"] != float64(1500) || resp[0]["statusCode"] != float64(401) {
			t.Fatalf("unexpected latency or status %v", resp[0])
		}
	})

	t.Run("invalid limit", func(t *testing.T) {
		mux := http.NewServeMux()
		newTestHandler(stubProber{}, stubJournal{}).RegisterAdminRoutes(mux)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_edge/refreshes?limit=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("journal failure", func(t *testing.T) {
		mux := http.NewServeMux()
		newTestHandler(stubProber{}, stubJournal{err: errors.New("database is locked")}).RegisterAdminRoutes(mux)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_edge/refreshes", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected status 500, got %d", rec.Code)
		}
	})
}

func TestHandleRecentRefreshesWithJournalService(t *testing.T) {
	db, err := database.NewDB(database.MemoryPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	svc := journal.NewService(journalstore.NewStore(db))
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < journal.MaxRecentLimit+50; i++ {
		event := journal.Event{OccurredAt: base.Add(time.Duration(i) * time.Second), Path: "/events", Outcome: journal.OutcomeSuccess}
		if err := svc.Record(ctx, event); err != nil {
			t.Fatalf("record event %d: %v", i, err)
		}
	}

	mux := http.NewServeMux()
	newTestHandler(stubProber{}, svc).RegisterAdminRoutes(mux)

	testCases := []struct {
		query string
		want  int
	}{
		{query: "", want: journal.DefaultRecentLimit},
		{query: "?limit=150", want: 150},
		{query: "?limit=500", want: journal.MaxRecentLimit},
	}

	for _, tc := range testCases {
		t.Run("limit"+tc.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/_edge/refreshes"+tc.query, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}
			var resp []RefreshEventResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if len(resp) != tc.want {
				t.Fatalf("expected %d events, got %d", tc.want, len(resp))
			}
		})
	}
}

func TestPublicRoutesOnlyServeHealth(t *testing.T) {
	mux := http.NewServeMux()
	newTestHandler(stubProber{}, stubJournal{}).RegisterRoutes(mux)

	for _, path := range []string{"/_edge/status", "/_edge/refreshes"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected %s to be unregistered on the public mux, got %d", path, rec.Code)
		}
	}
}

func TestBackendProbe(t *testing.T) {
	t.Run("any response is reachable and cached", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		probe := NewBackendProbe(BackendProbeConfig{BaseURL: server.URL, CacheTTL: time.Minute})
		first := probe.Probe(context.Background())
		second := probe.Probe(context.Background())

		if !first.Reachable || first.StatusCode != http.StatusNotFound {
			t.Fatalf("expected reachable 404, got %+v", first)
		}
		if second != first {
			t.Fatalf("expected cached result, got %+v", second)
		}
		if hits.Load() != 1 {
			t.Fatalf("expected 1 backend hit, got %d", hits.Load())
		}
	})

	t.Run("connection failure is unreachable", func(t *testing.T) {
		probe := NewBackendProbe(BackendProbeConfig{BaseURL: "http://127.0.0.1:1"})
		result := probe.Probe(context.Background())

		if result.Reachable {
			t.Fatalf("expected unreachable, got %+v", result)
		}
		if result.Error == "" {
			t.Fatal("expected error message")
		}
	})
}
