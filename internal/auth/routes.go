package auth

import "strings"

type RouteClass int

const (
	RouteProtected RouteClass = iota
	RoutePublic
)

func (c RouteClass) String() string {
	if c == RoutePublic {
		return "public"
	}
	return "protected"
}

var (
	DefaultPublicRoutes   = []string{"/login", "/signup"}
	DefaultBypassPrefixes = []string{"/_next", "/api", "/_edge"}
)

// Routes는 공개 경로 목록과 게이트웨이를 거치지 않는 접두사를 가진다
type Routes struct {
	public         map[string]struct{}
	bypassPrefixes []string
}

// NewRoutes는 nil 목록에 기본값을 쓴다. 빈 슬라이스는 그대로 비어 있는 목록이다
func NewRoutes(publicRoutes, bypassPrefixes []string) *Routes {
	if publicRoutes == nil {
		publicRoutes = DefaultPublicRoutes
	}
	if bypassPrefixes == nil {
		bypassPrefixes = DefaultBypassPrefixes
	}

	public := make(map[string]struct{}, len(publicRoutes))
	for _, route := range publicRoutes {
		public[route] = struct{}{}
	}
	return &Routes{
		public:         public,
		bypassPrefixes: append([]string(nil), bypassPrefixes...),
	}
}

// Classify는 정확히 일치하는 경로만 공개로 본다. /signup/confirm은 보호 경로다
func (rt *Routes) Classify(path string) RouteClass {
	if _, ok := rt.public[path]; ok {
		return RoutePublic
	}
	return RouteProtected
}

// Bypass는 정적 파일과 API 경로처럼 게이트웨이가 관여하지 않는 요청인지 판단한다
func (rt *Routes) Bypass(path string) bool {
	for _, prefix := range rt.bypassPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return strings.Contains(path, ".")
}

func (rt *Routes) PublicRoutes() []string {
	routes := make([]string, 0, len(rt.public))
	for route := range rt.public {
		routes = append(routes, route)
	}
	return routes
}
