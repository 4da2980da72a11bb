// Package account는 백엔드의 가입, 로그인, 전화번호 확인 API를 감싼다.
package account

type SignupRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	BirthDate string `json:"birth_date"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	CPF       string `json:"cpf"`
}

type SignupResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ConfirmRequest는 SMS로 받은 OTP 확인 요청
type ConfirmRequest struct {
	OTP string `json:"otp"`
}

type ConfirmResponse struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Status    string `json:"status"`
}

type UpdatePhoneRequest struct {
	Phone string `json:"phone"`
}

type UpdatePhoneResponse struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
}
