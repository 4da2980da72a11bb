package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"
	"taeu.kr/fitedge/internal/journal"
	"taeu.kr/fitedge/internal/refresh"
)

// Recorder는 갱신 시도를 기록한다. 기록 실패는 결정에 영향을 주지 않는다
type Recorder interface {
	Record(ctx context.Context, event journal.Event) error
}

type GatewayOption func(*Gateway)

func WithRecorder(recorder Recorder) GatewayOption {
	return func(g *Gateway) {
		g.recorder = recorder
	}
}

func WithCredentials(fn CredentialsFunc) GatewayOption {
	return func(g *Gateway) {
		g.credentials = fn
	}
}

type Gateway struct {
	routes      *Routes
	loginPath   string
	maxHops     int
	refresher   Refresher
	recorder    Recorder
	credentials CredentialsFunc
	now         func() time.Time
}

func NewGateway(config Config, refresher Refresher, opts ...GatewayOption) *Gateway {
	loginPath := strings.TrimSpace(config.LoginPath)
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	maxHops := config.MaxRefreshHops
	if maxHops < 0 {
		maxHops = 0
	}

	g := &Gateway{
		routes:      NewRoutes(config.PublicRoutes, config.BypassPrefixes),
		loginPath:   loginPath,
		maxHops:     maxHops,
		refresher:   refresher,
		credentials: CookieCredentials,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) Routes() *Routes {
	return g.routes
}

func (g *Gateway) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.decide(w, r) == DecisionPass {
			next.ServeHTTP(w, r)
		}
	})
}

// decide는 요청 하나에 대한 결정을 내리고, 리다이렉트인 경우 응답까지 쓴다
func (g *Gateway) decide(w http.ResponseWriter, r *http.Request) Decision {
	path := r.URL.Path

	if g.routes.Bypass(path) {
		return DecisionPass
	}
	if g.routes.Classify(path) == RoutePublic {
		return DecisionPass
	}

	creds := g.credentials(r)
	hops := hopCount(r)

	if creds.HasAccess() {
		if hops > 0 {
			clearHopCookie(w, r)
		}
		return DecisionPass
	}

	refreshToken, ok := creds.RefreshToken()
	if !ok {
		log.Debug().Str("path", path).Msg("[Gateway] no session credentials, redirecting to login")
		return g.redirectToLogin(w, r, hops)
	}

	if g.maxHops > 0 && hops >= g.maxHops {
		log.Warn().Str("path", path).Int("hops", hops).Msg("[Gateway] refresh redirect loop detected, redirecting to login")
		g.record(r.Context(), journal.Event{
			Path:        path,
			Outcome:     journal.OutcomeLoopBroken,
			Fingerprint: fingerprint(refreshToken),
		})
		return g.redirectToLogin(w, r, hops)
	}

	return g.refreshAndRedirect(w, r, refreshToken, hops)
}

func (g *Gateway) refreshAndRedirect(w http.ResponseWriter, r *http.Request, refreshToken string, hops int) Decision {
	path := r.URL.Path
	started := g.now()
	result, err := g.refresher.Refresh(r.Context(), refreshToken)
	latency := g.now().Sub(started)

	event := journal.Event{
		Path:        path,
		Fingerprint: fingerprint(refreshToken),
		Latency:     latency,
	}

	if err != nil {
		var rejected *refresh.RejectedError
		if errors.As(err, &rejected) {
			event.Outcome = journal.OutcomeRejected
			event.StatusCode = rejected.StatusCode
		} else {
			event.Outcome = journal.OutcomeTransportError
		}
		log.Info().Err(err).Str("path", path).Str("outcome", string(event.Outcome)).Msg("[Gateway] session refresh failed")
		g.record(r.Context(), event)
		return g.redirectToLogin(w, r, hops)
	}

	event.Outcome = journal.OutcomeSuccess
	event.StatusCode = http.StatusOK
	g.record(r.Context(), event)

	for _, setCookie := range result.SetCookies {
		w.Header().Add("Set-Cookie", setCookie)
	}
	if g.maxHops > 0 {
		setHopCookie(w, r, hops+1)
	}

	log.Info().Str("path", path).Int("cookies", len(result.SetCookies)).Dur("latency", latency).Msg("[Gateway] session refreshed, redirecting to same url")
	http.Redirect(w, r, r.URL.RequestURI(), http.StatusTemporaryRedirect)
	return DecisionRedirectSameURL
}

func (g *Gateway) redirectToLogin(w http.ResponseWriter, r *http.Request, hops int) Decision {
	if hops > 0 {
		clearHopCookie(w, r)
	}
	http.Redirect(w, r, g.loginPath, http.StatusTemporaryRedirect)
	return DecisionRedirectLogin
}

func (g *Gateway) record(ctx context.Context, event journal.Event) {
	if g.recorder == nil {
		return
	}
	event.OccurredAt = g.now()
	if err := g.recorder.Record(ctx, event); err != nil {
		log.Error().Err(err).Str("path", event.Path).Msg("[Gateway] failed to record refresh event")
	}
}

func hopCount(r *http.Request) int {
	cookie, err := r.Cookie(HopCookieName)
	if err != nil {
		return 0
	}
	hops, err := strconv.Atoi(cookie.Value)
	if err != nil || hops < 0 {
		return 0
	}
	return hops
}

func setHopCookie(w http.ResponseWriter, r *http.Request, hops int) {
	http.SetCookie(w, &http.Cookie{
		Name:     HopCookieName,
		Value:    strconv.Itoa(hops),
		Path:     "/",
		MaxAge:   hopCookieMaxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearHopCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     HopCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// fingerprint는 토큰 원문 대신 기록하는 짧은 blake2b 해시
func fingerprint(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
