package session

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Jar는 표준 쿠키 jar를 감싸 백엔드가 내려준 쿠키의 전체 속성을 기억한다.
// cookiejar는 Cookies에서 이름과 값만 돌려주므로 파일로 보존하려면 따로 추적해야 한다
type Jar struct {
	inner http.CookieJar
	now   func() time.Time

	mu      sync.Mutex
	cookies map[string]*http.Cookie
}

func NewJar() (*Jar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &Jar{
		inner:   inner,
		now:     time.Now,
		cookies: map[string]*http.Cookie{},
	}, nil
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)

	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	for _, cookie := range cookies {
		stored := *cookie
		stored.Path = effectivePath(u, cookie.Path)
		key := cookieKey(u, &stored)

		if cookie.MaxAge < 0 || (!cookie.Expires.IsZero() && !cookie.Expires.After(now)) {
			delete(j.cookies, key)
			continue
		}
		if stored.MaxAge > 0 {
			stored.Expires = now.Add(time.Duration(stored.MaxAge) * time.Second)
			stored.MaxAge = 0
		}
		j.cookies[key] = &stored
	}
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

// Restore는 저장된 쿠키를 jar에 다시 넣는다. 만료된 쿠키는 건너뛴다
func (j *Jar) Restore(u *url.URL, stored []Cookie) {
	now := j.now()
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		if !c.Expires.IsZero() && !c.Expires.After(now) {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			HttpOnly: c.HttpOnly,
			Secure:   c.Secure,
		})
	}
	j.SetCookies(u, cookies)
}

// Snapshot은 추적 중인 쿠키를 이름, 도메인, 경로 순으로 돌려준다
func (j *Jar) Snapshot() []Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	snapshot := make([]Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		if !c.Expires.IsZero() && !c.Expires.After(now) {
			continue
		}
		snapshot = append(snapshot, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			HttpOnly: c.HttpOnly,
			Secure:   c.Secure,
		})
	}
	sort.Slice(snapshot, func(a, b int) bool {
		if snapshot[a].Name != snapshot[b].Name {
			return snapshot[a].Name < snapshot[b].Name
		}
		if snapshot[a].Domain != snapshot[b].Domain {
			return snapshot[a].Domain < snapshot[b].Domain
		}
		return snapshot[a].Path < snapshot[b].Path
	})
	return snapshot
}

// cookieKey는 cookiejar처럼 이름, 도메인, 경로가 모두 같을 때만 같은 쿠키로 본다.
// Domain이 없는 쿠키는 요청 호스트에 묶인다
func cookieKey(u *url.URL, c *http.Cookie) string {
	domain := strings.ToLower(strings.TrimPrefix(c.Domain, "."))
	if domain == "" {
		domain = strings.ToLower(u.Hostname())
	}
	return c.Name + ";" + domain + ";" + c.Path
}

// effectivePath는 Path가 없거나 /로 시작하지 않으면 요청 경로의 디렉터리를 쓴다 (RFC 6265 5.1.4)
func effectivePath(u *url.URL, path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	dir := u.Path
	if dir == "" || dir[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(dir, "/")
	if i == 0 {
		return "/"
	}
	return dir[:i]
}
