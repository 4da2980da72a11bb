package auth

import "net/http"

// Credentials는 요청의 세션 자격 증명. 값의 유효성은 보지 않고 존재 여부만 본다
type Credentials interface {
	HasAccess() bool
	RefreshToken() (string, bool)
}

type CredentialsFunc func(r *http.Request) Credentials

type cookieCredentials struct {
	r *http.Request
}

// CookieCredentials는 access_token, refresh_token 쿠키를 읽는다. 빈 값은 없는 것으로 본다
func CookieCredentials(r *http.Request) Credentials {
	return cookieCredentials{r: r}
}

func (c cookieCredentials) HasAccess() bool {
	cookie, err := c.r.Cookie(AccessCookieName)
	return err == nil && cookie.Value != ""
}

func (c cookieCredentials) RefreshToken() (string, bool) {
	cookie, err := c.r.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
