package web

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Cause는 필드 단위 검증 실패를 나타낸다
type Cause struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error는 웹 계층의 커스텀 에러 타입을 정의
// 응답 본문은 백엔드 API 에러와 같은 모양으로 기록된다
type Error struct {
	Code      int
	ErrorCode string
	Message   string
	Causes    []Cause
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

type errorBody struct {
	Message string  `json:"message"`
	Error   string  `json:"error"`
	Code    int     `json:"code"`
	Causes  []Cause `json:"causes,omitempty"`
}

// Hanlder는 에러를 반환하는 웹 계층의 커스텀 핸들러 타입을 정의
type Handler func(w http.ResponseWriter, r *http.Request) *Error

func (fn Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := fn(w, r); err != nil {
		log.Error().
			Err(err.Err).            // 레벨: Error
			Str("method", r.Method). // HTTP 메서드
			Str("path", r.URL.Path). // 요청 경로
			Int("status", err.Code). // 상태 코드
			Msg(err.Message)         // 메시지

		WriteError(w, err)
	}
}

// WriteError는 에러를 JSON 본문으로 기록한다
func WriteError(w http.ResponseWriter, err *Error) {
	code := err.ErrorCode
	if code == "" {
		code = codeForStatus(err.Code)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	_ = json.NewEncoder(w).Encode(errorBody{
		Message: err.Message,
		Error:   code,
		Code:    err.Code,
		Causes:  err.Causes,
	})
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusBadGateway:
		return "bad_gateway"
	default:
		return "internal"
	}
}
