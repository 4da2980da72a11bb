package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"taeu.kr/fitedge/internal/account"
	"taeu.kr/fitedge/internal/apiclient"
	"taeu.kr/fitedge/internal/session"
)

var version = "dev"

const defaultBaseURL = "http://localhost:8080"

type globalOptions struct {
	baseURL     string
	sessionPath string
	timeout     time.Duration
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "edgectl",
		Short:         "edgectl: sign in and manage your account against the fitness events API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "backend API base URL (default: session, $API_BASE_URL_DEV or "+defaultBaseURL+")")
	rootCmd.PersistentFlags().StringVar(&opts.sessionPath, "session", session.DefaultPath(), "session file path")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")

	rootCmd.AddCommand(
		newSignupCmd(opts),
		newSigninCmd(opts),
		newConfirmCmd(opts),
		newResendOTPCmd(opts),
		newUpdatePhoneCmd(opts),
		newSessionCmd(opts),
		newLogoutCmd(opts),
	)
	return rootCmd
}

// runner는 명령 하나의 실행 동안 세션 파일, 쿠키 jar, API 클라이언트를 묶는다
type runner struct {
	out           io.Writer
	opts          *globalOptions
	sess          *session.Session
	jar           *session.Jar
	baseURL       *url.URL
	service       *account.Service
	loginRequired bool
}

func newRunner(cmd *cobra.Command, opts *globalOptions) (*runner, error) {
	sess, err := session.Load(opts.sessionPath)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	rawBaseURL := resolveBaseURL(opts.baseURL, sess.BaseURL)
	baseURL, err := url.Parse(rawBaseURL)
	if err != nil || baseURL.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", rawBaseURL)
	}
	if sess.BaseURL != "" && sess.BaseURL != rawBaseURL {
		// 다른 백엔드의 쿠키는 쓰지 않는다
		sess.Clear()
	}
	sess.BaseURL = rawBaseURL

	jar, err := session.NewJar()
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	jar.Restore(baseURL, sess.Cookies)

	r := &runner{
		out:     cmd.OutOrStdout(),
		opts:    opts,
		sess:    sess,
		jar:     jar,
		baseURL: baseURL,
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL:        rawBaseURL,
		RequestTimeout: opts.timeout,
	},
		apiclient.WithHTTPClient(&http.Client{Jar: jar, Timeout: opts.timeout}),
		apiclient.WithLoginRedirector(apiclient.LoginRedirectorFunc(func(context.Context, string) {
			r.loginRequired = true
		})),
	)
	if err != nil {
		return nil, err
	}
	r.service = account.NewService(client)
	return r, nil
}

// finish는 갱신된 쿠키를 저장한다. 로그인이 필요해졌으면 세션을 비운다
func (r *runner) finish(callErr error) error {
	if r.loginRequired || errors.Is(callErr, account.ErrLoginRequired) {
		r.sess.Clear()
		if err := r.sess.Save(r.opts.sessionPath); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		fmt.Fprintln(r.out, "Session expired; run `edgectl signin` to sign in again.")
		return nil
	}

	r.sess.Cookies = r.jar.Snapshot()
	if err := r.sess.Save(r.opts.sessionPath); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return describeError(callErr)
}

func resolveBaseURL(flagValue, sessionValue string) string {
	for _, candidate := range []string{flagValue, sessionValue, os.Getenv("API_BASE_URL_DEV")} {
		if trimmed := strings.TrimRight(strings.TrimSpace(candidate), "/"); trimmed != "" {
			return trimmed
		}
	}
	return defaultBaseURL
}

// describeError는 API 에러를 사람이 읽을 수 있는 형태로 바꾼다
func describeError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	var b strings.Builder
	b.WriteString(apiErr.Message)
	if apiErr.IsUnconfirmed() {
		b.WriteString(" (account not confirmed; run `edgectl confirm --otp <code>`)")
	}
	for _, cause := range apiErr.Causes {
		fmt.Fprintf(&b, "\n  %s: %s", cause.Field, cause.Message)
	}
	return errors.New(b.String())
}
