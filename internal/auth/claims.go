package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DisplayClaims는 확인 화면 표시용 값. 서명을 검증하지 않으므로 권한 판단에 쓰면 안 된다
type DisplayClaims struct {
	Phone     string
	ExpiresAt *time.Time
}

func DecodeDisplayClaims(token string) (*DisplayClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}

	display := &DisplayClaims{}
	if phone, ok := claims["phone"].(string); ok {
		display.Phone = phone
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt := exp.Time
		display.ExpiresAt = &expiresAt
	}
	return display, true
}
