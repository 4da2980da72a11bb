// Package origin은 게이트웨이를 통과한 요청을 받는 페이지 서버를 구성한다.
package origin

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"taeu.kr/fitedge/internal/platform/web"
	"taeu.kr/fitedge/internal/spa"
)

type Config struct {
	URL       string
	StaticDir string
}

// New는 URL이 있으면 리버스 프록시를, 없으면 정적 디렉터리의 SPA 핸들러를 만든다.
// 둘 다 없으면 모든 요청에 502를 돌려준다
func New(cfg Config) (http.Handler, error) {
	if rawURL := strings.TrimSpace(cfg.URL); rawURL != "" {
		return newProxy(rawURL)
	}

	if dir := strings.TrimSpace(cfg.StaticDir); dir != "" {
		handler, err := spa.NewSPAHandler(os.DirFS(dir))
		if err != nil {
			return nil, fmt.Errorf("static origin %q: %w", dir, err)
		}
		log.Info().Str("dir", dir).Msg("[Origin] serving static files")
		return handler, nil
	}

	log.Warn().Msg("[Origin] no origin configured, pages will return 502")
	return web.Handler(func(w http.ResponseWriter, r *http.Request) *web.Error {
		return &web.Error{Code: http.StatusBadGateway, Message: "No page origin configured"}
	}), nil
}

func newProxy(rawURL string) (http.Handler, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse origin url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.New("origin url must be absolute")
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = pr.In.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			web.Handler(func(http.ResponseWriter, *http.Request) *web.Error {
				return &web.Error{Code: http.StatusBadGateway, Message: "Page origin unavailable", Err: err}
			}).ServeHTTP(w, r)
		},
	}

	log.Info().Str("url", target.String()).Msg("[Origin] proxying pages")
	return proxy, nil
}
