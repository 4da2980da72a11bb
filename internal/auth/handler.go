package auth

import (
	"encoding/json"
	"net/http"

	"taeu.kr/fitedge/internal/platform/web"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /_edge/confirmation", web.Handler(h.handleConfirmation))
}

type confirmationResponse struct {
	Phone string `json:"phone"`
	// ExpiresAt은 밀리초 단위 유닉스 시간
	ExpiresAt *int64 `json:"expiresAt"`
}

// handleConfirmation은 가입 확인 화면에 보여줄 전화번호와 만료 시각을 돌려준다
func (h *Handler) handleConfirmation(w http.ResponseWriter, r *http.Request) *web.Error {
	accessCookie, err := r.Cookie(AccessCookieName)
	if err != nil || accessCookie.Value == "" {
		return &web.Error{Code: http.StatusUnauthorized, Message: "Access token not found", Err: err}
	}

	resp := confirmationResponse{}
	if claims, ok := DecodeDisplayClaims(accessCookie.Value); ok {
		resp.Phone = claims.Phone
		if claims.ExpiresAt != nil {
			ms := claims.ExpiresAt.UnixMilli()
			resp.ExpiresAt = &ms
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(resp)
	return nil
}
