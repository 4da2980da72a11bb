// Package auth는 페이지 렌더링 앞단에서 세션 쿠키를 보고
// 통과, 갱신 후 같은 URL로 리다이렉트, 로그인 리다이렉트 중 하나를 결정한다.
package auth

import (
	"context"

	"taeu.kr/fitedge/internal/refresh"
)

const (
	AccessCookieName  = "access_token"
	RefreshCookieName = refresh.RefreshCookieName

	// HopCookieName은 연속된 갱신 리다이렉트 횟수를 센다
	HopCookieName   = "edge_refresh_hops"
	hopCookieMaxAge = 30

	DefaultLoginPath      = "/login"
	DefaultMaxRefreshHops = 2
)

type Decision int

const (
	DecisionPass Decision = iota
	DecisionRedirectSameURL
	DecisionRedirectLogin
)

func (d Decision) String() string {
	switch d {
	case DecisionPass:
		return "pass"
	case DecisionRedirectSameURL:
		return "redirect_same_url"
	case DecisionRedirectLogin:
		return "redirect_login"
	default:
		return "unknown"
	}
}

// Config는 게이트웨이 설정. MaxRefreshHops가 0이면 루프 차단을 끈다
type Config struct {
	LoginPath      string
	PublicRoutes   []string
	BypassPrefixes []string
	MaxRefreshHops int
}

// Refresher는 refresh 토큰으로 새 세션 쿠키를 받아온다
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*refresh.Result, error)
}
