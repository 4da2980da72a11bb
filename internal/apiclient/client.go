// Package apiclient는 백엔드 API 호출의 단일 진입점이다.
//
// 대화형(브라우저 역할) 호출이 인증 실패를 받으면 세션 갱신을 한 번만 시도하고
// 원래 요청을 한 번 다시 보낸다. 갱신이 실패하면 로그인 경로로 보내고 호출을 포기한다.
// 서버 측 호출은 갱신하지 않고 에러를 그대로 돌려준다.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
	"taeu.kr/fitedge/internal/refresh"
)

type Config struct {
	BaseURL        string
	LoginPath      string
	RequestTimeout time.Duration
}

// RequestOptions는 한 번의 API 호출 옵션
type RequestOptions struct {
	Method string
	Header http.Header
	// Body는 JSON으로 인코딩된다. []byte는 그대로 보낸다
	Body any
	// ServerSide는 서버 렌더링 중의 호출. 들어온 요청의 쿠키를 전달하고 갱신하지 않는다
	ServerSide bool
}

// LoginRedirector는 세션을 되살릴 수 없을 때 사용자를 로그인으로 보낸다
type LoginRedirector interface {
	RedirectToLogin(ctx context.Context, loginPath string)
}

type LoginRedirectorFunc func(ctx context.Context, loginPath string)

func (f LoginRedirectorFunc) RedirectToLogin(ctx context.Context, loginPath string) {
	f(ctx, loginPath)
}

type Option func(*Client)

// WithHTTPClient는 대화형 호출에 쓸 클라이언트를 지정한다. 쿠키 jar를 가져야 한다
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLoginRedirector(redirector LoginRedirector) Option {
	return func(c *Client) {
		c.loginRedirector = redirector
	}
}

func WithRefresher(refresher Refresher) Option {
	return func(c *Client) {
		c.refresher = refresher
	}
}

type Client struct {
	baseURL         string
	loginPath       string
	timeout         time.Duration
	httpClient      *http.Client
	serverClient    *http.Client
	refresher       Refresher
	loginRedirector LoginRedirector
	refreshes       *refreshCoordinator
}

func New(cfg Config, opts ...Option) (*Client, error) {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	loginPath := strings.TrimSpace(cfg.LoginPath)
	if loginPath == "" {
		loginPath = "/login"
	}

	c := &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		loginPath: loginPath,
		timeout:   timeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		c.httpClient = &http.Client{Jar: jar, Timeout: timeout}
	}
	// 서버 측 호출은 jar 없이 전달받은 쿠키만 보낸다
	c.serverClient = &http.Client{
		Transport:     c.httpClient.Transport,
		CheckRedirect: c.httpClient.CheckRedirect,
		Timeout:       c.httpClient.Timeout,
	}
	if c.refresher == nil {
		c.refresher = refresh.New(refresh.Config{BaseURL: c.baseURL, RequestTimeout: timeout}, c.httpClient)
	}
	if c.loginRedirector == nil {
		c.loginRedirector = LoginRedirectorFunc(func(_ context.Context, loginPath string) {
			log.Warn().Str("login", loginPath).Msg("[APIClient] session expired, login required")
		})
	}
	c.refreshes = newRefreshCoordinator(c.refresher, timeout)

	return c, nil
}

// Jar는 대화형 호출의 쿠키 jar
func (c *Client) Jar() http.CookieJar {
	return c.httpClient.Jar
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do는 API를 호출하고 성공 응답을 out에 디코딩한다.
// 갱신 실패로 호출이 포기되면 nil을 반환하고 out은 건드리지 않는다
func (c *Client) Do(ctx context.Context, path string, opts RequestOptions, out any) error {
	_, err := c.execute(ctx, path, opts, out)
	return err
}

// Call은 Do의 제네릭 버전. 호출이 포기되면 nil 포인터와 nil 에러를 반환한다
func Call[T any](ctx context.Context, c *Client, path string, opts RequestOptions) (*T, error) {
	var out T
	completed, err := c.execute(ctx, path, opts, &out)
	if err != nil || !completed {
		return nil, err
	}
	return &out, nil
}

type preparedRequest struct {
	method     string
	url        string
	header     http.Header
	body       []byte
	serverSide bool
}

func (c *Client) execute(ctx context.Context, path string, opts RequestOptions, out any) (bool, error) {
	prepared, err := c.prepare(ctx, path, opts)
	if err != nil {
		return false, err
	}

	if prepared.serverSide {
		return true, c.performRequest(ctx, prepared, out)
	}
	return c.performRequestWithRefreshRecovery(ctx, prepared, out)
}

func (c *Client) prepare(ctx context.Context, path string, opts RequestOptions) (*preparedRequest, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body []byte
	switch b := opts.Body.(type) {
	case nil:
	case []byte:
		body = b
	case json.RawMessage:
		body = b
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = encoded
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	for key, values := range opts.Header {
		header.Del(key)
		for _, value := range values {
			header.Add(key, value)
		}
	}

	if opts.ServerSide {
		if cookieHeader := cookieHeaderFromContext(ctx); cookieHeader != "" {
			header.Set("Cookie", cookieHeader)
		}
	}

	return &preparedRequest{
		method:     method,
		url:        c.baseURL + path,
		header:     header,
		body:       body,
		serverSide: opts.ServerSide,
	}, nil
}

// performRequestWithRefreshRecovery는 인증 실패 시 갱신 후 한 번만 재시도한다.
// 재시도는 performRequest로만 수행되므로 중첩된 갱신은 일어나지 않는다
func (c *Client) performRequestWithRefreshRecovery(ctx context.Context, prepared *preparedRequest, out any) (bool, error) {
	err := c.performRequest(ctx, prepared, out)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.IsAuthFailure() {
		return true, err
	}

	log.Debug().Str("method", prepared.method).Str("url", prepared.url).Msg("[APIClient] auth failure, refreshing session")

	if refreshErr := c.refreshes.startOrJoin(ctx); refreshErr != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		log.Warn().Err(refreshErr).Msg("[APIClient] session refresh failed")
		c.loginRedirector.RedirectToLogin(ctx, c.loginPath)
		return false, nil
	}

	return true, c.performRequest(ctx, prepared, out)
}

func (c *Client) performRequest(ctx context.Context, prepared *preparedRequest, out any) error {
	var bodyReader io.Reader
	if prepared.body != nil {
		bodyReader = bytes.NewReader(prepared.body)
	}

	req, err := http.NewRequestWithContext(ctx, prepared.method, prepared.url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header = prepared.header.Clone()

	httpClient := c.httpClient
	if prepared.serverSide {
		httpClient = c.serverClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
