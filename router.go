package main

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"taeu.kr/fitedge/internal/platform/web"
)

const requestIDHeader = "X-Request-Id"

type routeRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

type routeRegistrarFunc func(mux *http.ServeMux)

func (f routeRegistrarFunc) RegisterRoutes(mux *http.ServeMux) {
	f(mux)
}

type routerDeps struct {
	gateway interface{ Middleware(http.Handler) http.Handler }
	origin  http.Handler

	// public은 인터넷에 열리는 /_edge/ 경로. 각 핸들러가 스스로 자격을 확인해야 한다
	public []routeRegistrar
	admin  []routeRegistrar
}

// newRouter는 공개 리스너의 핸들러. 여기 등록되지 않은 /_edge/ 경로는
// 게이트웨이와 페이지 서버로 넘기지 않고 404로 끝낸다
func newRouter(deps routerDeps) http.Handler {
	mux := http.NewServeMux()
	for _, registrar := range deps.public {
		registrar.RegisterRoutes(mux)
	}
	mux.Handle("/_edge/", web.Handler(edgeNotFound))
	mux.Handle("/", deps.gateway.Middleware(deps.origin))

	return requestID(accessLog(mux))
}

// newAdminRouter는 관리 리스너의 핸들러. 상태, 갱신 기록, 버전, 설정 경로만 있다
func newAdminRouter(deps routerDeps) http.Handler {
	mux := http.NewServeMux()
	for _, registrar := range deps.admin {
		registrar.RegisterRoutes(mux)
	}
	return requestID(accessLog(mux))
}

func edgeNotFound(w http.ResponseWriter, r *http.Request) *web.Error {
	return &web.Error{Code: http.StatusNotFound, Message: "Not found"}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(started)).
			Str("request_id", w.Header().Get(requestIDHeader)).
			Msg("[HTTP] request")
	})
}

// requestID는 들어온 요청 ID를 유지하거나 새로 발급해 응답 헤더에 싣는다
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
