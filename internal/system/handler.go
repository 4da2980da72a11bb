package system

import (
	"encoding/json"
	"net/http"
	"strings"

	"taeu.kr/fitedge/internal/platform/web"
)

type Meta struct {
	Version   string
	Commit    string
	BuildDate string
}

// Handler는 빌드 정보 API 핸들러입니다
type Handler struct {
	meta Meta
}

func NewHandler(meta Meta) *Handler {
	return &Handler{meta: NormalizeMeta(meta)}
}

func NormalizeMeta(meta Meta) Meta {
	version := strings.TrimSpace(meta.Version)
	if version == "" {
		version = "dev"
	}
	return Meta{
		Version:   version,
		Commit:    strings.TrimSpace(meta.Commit),
		BuildDate: strings.TrimSpace(meta.BuildDate),
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /_edge/version", web.Handler(h.GetVersion))
}

func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) *web.Error {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"version":   h.meta.Version,
		"commit":    h.meta.Commit,
		"buildDate": h.meta.BuildDate,
	}); err != nil {
		return &web.Error{Err: err, Code: http.StatusInternalServerError, Message: "Failed to encode version response"}
	}
	return nil
}
