package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// 백엔드가 401과 함께 내려주는 에러 코드
const (
	CodeUnauthenticated = "unauthenticated"
	CodeUnconfirmed     = "unconfirmed"
	CodeUnauthorized    = "unauthorized"

	// 에러 본문이 JSON이 아닐 때 사용
	CodeUnexpectedResponse = "unexpected_response"
)

type ErrorCause struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError는 백엔드의 구조화된 에러 응답
type APIError struct {
	Message   string       `json:"message"`
	ErrorCode string       `json:"error"`
	Code      int          `json:"code"`
	Causes    []ErrorCause `json:"causes,omitempty"`

	// StatusCode는 실제 HTTP 응답 상태
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	if e.ErrorCode == "" {
		return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (%d %s): %s", e.StatusCode, e.ErrorCode, e.Message)
}

// IsAuthFailure는 갱신 후 재시도 대상인지 판단한다. unconfirmed는 포함하지 않는다
func (e *APIError) IsAuthFailure() bool {
	if e.StatusCode != http.StatusUnauthorized {
		return false
	}
	return e.ErrorCode == CodeUnauthenticated || e.ErrorCode == CodeUnauthorized
}

func (e *APIError) IsUnconfirmed() bool {
	return e.ErrorCode == CodeUnconfirmed
}

// FieldErrors는 causes를 필드명 기준으로 모은다. 같은 필드는 첫 메시지를 쓴다
func (e *APIError) FieldErrors() map[string]string {
	fields := make(map[string]string, len(e.Causes))
	for _, cause := range e.Causes {
		if _, exists := fields[cause.Field]; exists {
			continue
		}
		fields[cause.Field] = cause.Message
	}
	return fields
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{}
	if len(body) == 0 || json.Unmarshal(body, apiErr) != nil {
		apiErr = &APIError{
			Message:   http.StatusText(status),
			ErrorCode: CodeUnexpectedResponse,
			Code:      status,
		}
	}
	apiErr.StatusCode = status
	if apiErr.Code == 0 {
		apiErr.Code = status
	}
	return apiErr
}
