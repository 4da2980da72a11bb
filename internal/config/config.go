package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	defaultDevBaseURL     = "http://localhost:8080"
	defaultRequestTimeout = 10 * time.Second
	defaultAdminAddr      = "127.0.0.1:3100"
)

var configFilePath string

// SetConfig는 환경에 맞는 설정 파일을 읽어 Conf에 반영합니다
func SetConfig(goEnv string) {
	log.Info().Msgf("Loading configuration for environment: %s", goEnv)

	v := viper.New()
	v.AddConfigPath("config")
	v.SetConfigType("yaml")

	if goEnv == "production" {
		v.SetConfigName("config.prod")
	} else {
		v.SetConfigName("config.dev")
	}

	applyDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to read config file")
	}

	configFilePath = v.ConfigFileUsed()
	log.Info().Msgf("Config file loaded: %s", configFilePath)

	if err := v.Unmarshal(&Conf); err != nil {
		log.Fatal().Err(err).Msg("Failed to unmarshal config")
	}
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.admin_addr", defaultAdminAddr)
	v.SetDefault("backend.dev_base_url", defaultDevBaseURL)
	v.SetDefault("backend.request_timeout", defaultRequestTimeout)
	v.SetDefault("gateway.login_path", "/login")
	v.SetDefault("gateway.public_routes", []string{"/login", "/signup"})
	v.SetDefault("gateway.bypass_prefixes", []string{"/_next", "/api", "/_edge"})
	v.SetDefault("gateway.max_refresh_hops", 2)
	v.SetDefault("database.url", "data/fitedge.db")
}

// 프런트엔드 빌드와 같은 변수명을 그대로 받는다
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("backend.base_url", "API_BASE_URL")
	_ = v.BindEnv("backend.dev_base_url", "API_BASE_URL_DEV")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.admin_addr", "ADMIN_ADDR")
	_ = v.BindEnv("origin.url", "ORIGIN_URL")
}

// ResolveBaseURL은 환경에 따라 백엔드 주소를 고른다
func (b Backend) ResolveBaseURL(goEnv string) string {
	if goEnv == "production" {
		return strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	}

	dev := strings.TrimSpace(b.DevBaseURL)
	if dev == "" {
		dev = defaultDevBaseURL
	}
	return strings.TrimRight(dev, "/")
}

// Timeout은 설정이 비어 있으면 기본값을 돌려준다
func (b Backend) Timeout() time.Duration {
	if b.RequestTimeout <= 0 {
		return defaultRequestTimeout
	}
	return b.RequestTimeout
}
