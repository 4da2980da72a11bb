package spa

import (
	"fmt"
	"io"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"
)

type spaResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

// WriteHeader는 404를 삼키고 나머지 상태만 전달한다
func (w *spaResponseWriter) WriteHeader(status int) {
	w.status = status
	w.wroteHeader = true

	if status != http.StatusNotFound {
		w.ResponseWriter.WriteHeader(status)
	}
}

func (w *spaResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	// 404 본문은 버림
	if w.status == http.StatusNotFound {
		return len(b), nil
	}

	return w.ResponseWriter.Write(b)
}

// NewSPAHandler는 assets의 파일을 서빙하고, 없는 경로에는 index.html을 돌려준다.
// 클라이언트 라우팅 경로(/events/42 등)가 새로고침에도 같은 앱으로 열리게 한다
func NewSPAHandler(assets fs.FS) (http.HandlerFunc, error) {
	if _, err := fs.Stat(assets, "index.html"); err != nil {
		return nil, fmt.Errorf("index.html not found: %w", err)
	}

	fileServer := http.FileServer(http.FS(assets))

	return func(w http.ResponseWriter, r *http.Request) {
		wrapper := &spaResponseWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
		}

		fileServer.ServeHTTP(wrapper, r)

		if wrapper.status != http.StatusNotFound {
			return
		}

		file, err := assets.Open("index.html")
		if err != nil {
			log.Error().Err(err).Msg("[SPA] failed to open index.html")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		defer file.Close()

		// FileServer가 404 응답용으로 설정한 헤더를 되돌린다
		w.Header().Del("X-Content-Type-Options")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)

		if _, err := io.Copy(w, file); err != nil {
			log.Error().Err(err).Msg("[SPA] error serving index.html")
		}
	}, nil
}
