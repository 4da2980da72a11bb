// Package refresh는 백엔드 /refresh 엔드포인트 호출을 담당한다.
// 게이트웨이는 refresh 토큰을 쿠키 헤더로 직접 넘기고,
// API 클라이언트는 쿠키 jar가 붙은 http.Client를 넘겨 사용한다.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	Path = "/refresh"

	RefreshCookieName = "refresh_token"
)

// ErrRejected는 백엔드가 2xx가 아닌 응답으로 갱신을 거절한 경우
var ErrRejected = errors.New("refresh rejected")

// RejectedError는 거절 응답의 상태 코드를 담는다. errors.Is(err, ErrRejected)로 판별한다
type RejectedError struct {
	StatusCode int
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: status %d", ErrRejected, e.StatusCode)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// Result는 갱신 응답에서 받은 쿠키 정보
type Result struct {
	// SetCookies는 응답의 Set-Cookie 헤더 원문. 게이트웨이가 그대로 다시 붙인다
	SetCookies []string
	Cookies    []*http.Cookie
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New는 refresh 클라이언트를 만든다. httpClient가 nil이면 기본 클라이언트를 쓴다
func New(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.RequestTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: httpClient,
	}
}

// Refresh는 POST /refresh를 한 번 호출한다.
// refreshToken이 비어 있으면 쿠키 헤더를 만들지 않고 jar에 맡긴다.
// 토큰은 받은 그대로 보낸다. http.Cookie를 거치면 쿠키 값에 허용되지 않는 바이트가 빠진다
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+Path, nil)
	if err != nil {
		return nil, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if refreshToken != "" {
		req.Header.Set("Cookie", RefreshCookieName+"="+refreshToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RejectedError{StatusCode: resp.StatusCode}
	}

	return &Result{
		SetCookies: resp.Header.Values("Set-Cookie"),
		Cookies:    resp.Cookies(),
	}, nil
}
