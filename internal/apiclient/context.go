package apiclient

import (
	"context"
	"net/http"
)

type cookieHeaderContextKey struct{}

// WithIncomingRequest는 서버 측 호출에서 전달할 쿠키 헤더를 컨텍스트에 담는다
func WithIncomingRequest(ctx context.Context, r *http.Request) context.Context {
	return WithCookieHeader(ctx, r.Header.Get("Cookie"))
}

func WithCookieHeader(ctx context.Context, header string) context.Context {
	return context.WithValue(ctx, cookieHeaderContextKey{}, header)
}

func cookieHeaderFromContext(ctx context.Context) string {
	header, _ := ctx.Value(cookieHeaderContextKey{}).(string)
	return header
}
