package config

import "time"

var Conf Config

type Config struct {
	Server     Server     `mapstructure:"server" json:"server" yaml:"server"`
	Backend    Backend    `mapstructure:"backend" json:"backend" yaml:"backend"`
	Gateway    Gateway    `mapstructure:"gateway" json:"gateway" yaml:"gateway"`
	Origin     Origin     `mapstructure:"origin" json:"origin" yaml:"origin"`
	Datasource Datasource `mapstructure:"database" json:"database" yaml:"database"`
}

type Server struct {
	Port string `mapstructure:"port" json:"port" yaml:"port"`

	// AdminAddr는 상태/갱신 기록/설정 경로를 여는 관리 리스너 주소. 비우면 열지 않는다
	AdminAddr string `mapstructure:"admin_addr" json:"adminAddr" yaml:"admin_addr"`
}

// Backend는 API 서버 주소 설정. 운영/개발 값이 따로 있다
type Backend struct {
	BaseURL        string        `mapstructure:"base_url" json:"baseUrl" yaml:"base_url"`
	DevBaseURL     string        `mapstructure:"dev_base_url" json:"devBaseUrl" yaml:"dev_base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"requestTimeout" yaml:"request_timeout"`
}

type Gateway struct {
	LoginPath      string   `mapstructure:"login_path" json:"loginPath" yaml:"login_path"`
	PublicRoutes   []string `mapstructure:"public_routes" json:"publicRoutes" yaml:"public_routes"`
	BypassPrefixes []string `mapstructure:"bypass_prefixes" json:"bypassPrefixes" yaml:"bypass_prefixes"`
	MaxRefreshHops int      `mapstructure:"max_refresh_hops" json:"maxRefreshHops" yaml:"max_refresh_hops"`
}

// Origin은 게이트웨이 뒤의 페이지 서버. URL이 있으면 프록시, 없으면 정적 디렉터리
type Origin struct {
	URL       string `mapstructure:"url" json:"url" yaml:"url"`
	StaticDir string `mapstructure:"static_dir" json:"staticDir" yaml:"static_dir"`
}

type Datasource struct {
	URL string `mapstructure:"url" json:"url" yaml:"url"`
}
