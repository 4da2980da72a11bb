package config

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"taeu.kr/fitedge/internal/platform/web"
)

// Handler는 config API 핸들러입니다
type Handler struct {
	goEnv string
}

type PublicConfigResponse struct {
	Environment    string  `json:"environment"`
	BackendBaseURL string  `json:"backendBaseUrl"`
	Gateway        Gateway `json:"gateway"`
}

func NewHandler(goEnv string) *Handler {
	return &Handler{goEnv: goEnv}
}

// RegisterRoutes는 라우트를 등록합니다
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /_edge/config", web.Handler(h.GetConfig))
}

// GetConfig는 민감하지 않은 게이트웨이 설정을 반환합니다
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) *web.Error {
	w.Header().Set("Content-Type", "application/json")
	response := PublicConfigResponse{
		Environment:    h.goEnv,
		BackendBaseURL: Conf.Backend.ResolveBaseURL(h.goEnv),
		Gateway:        Conf.Gateway,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		return &web.Error{Err: err, Code: http.StatusInternalServerError, Message: "Failed to encode config"}
	}
	return nil
}

// Validate는 기동 전에 설정을 검사합니다
func Validate(cfg Config, goEnv string) *web.Error {
	if err := validateServerConfig(cfg.Server); err != nil {
		return err
	}
	if goEnv == "production" && strings.TrimSpace(cfg.Backend.BaseURL) == "" {
		return badConfig("backend.base_url is required in production")
	}
	return validateGatewayConfig(cfg.Gateway)
}

func validateServerConfig(server Server) *web.Error {
	port := strings.TrimSpace(server.Port)
	if port == "" {
		return badConfig("server.port is required")
	}
	if !validPort(port) {
		return badConfig("server.port must be an integer between 1 and 65535")
	}

	adminAddr := strings.TrimSpace(server.AdminAddr)
	if adminAddr == "" {
		return nil
	}
	host, adminPort, err := net.SplitHostPort(adminAddr)
	if err != nil || !validPort(adminPort) {
		return badConfig("server.admin_addr must be host:port")
	}
	if adminPort == port && (host == "" || host == "0.0.0.0" || host == "::") {
		return badConfig("server.admin_addr must not share server.port")
	}
	return nil
}

func validPort(port string) bool {
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

func validateGatewayConfig(gw Gateway) *web.Error {
	if !strings.HasPrefix(gw.LoginPath, "/") {
		return badConfig("gateway.login_path must start with /")
	}

	loginIsPublic := false
	for _, route := range gw.PublicRoutes {
		if !strings.HasPrefix(route, "/") {
			return badConfig("gateway.public_routes entries must start with /")
		}
		if route == gw.LoginPath {
			loginIsPublic = true
		}
	}
	// 로그인 경로가 보호되면 리다이렉트가 끝나지 않는다
	if !loginIsPublic {
		return badConfig("gateway.login_path must be listed in gateway.public_routes")
	}

	for _, prefix := range gw.BypassPrefixes {
		if !strings.HasPrefix(prefix, "/") {
			return badConfig("gateway.bypass_prefixes entries must start with /")
		}
	}
	if gw.MaxRefreshHops < 0 {
		return badConfig("gateway.max_refresh_hops must not be negative")
	}
	return nil
}

func badConfig(message string) *web.Error {
	return &web.Error{Code: http.StatusBadRequest, Message: message}
}
