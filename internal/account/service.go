package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"taeu.kr/fitedge/internal/apiclient"
)

const (
	signupPath      = "/signup"
	signinPath      = "/signin"
	confirmUserPath = "/api/confirm_user"
	resendOTPPath   = "/api/resend_otp"
	updatePhonePath = "/api/update_phone"
)

// ErrLoginRequired는 세션 갱신에 실패해 호출이 포기된 경우
var ErrLoginRequired = errors.New("login required")

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*SignupResponse, error) {
	return call[SignupResponse](ctx, s.client, signupPath, http.MethodPost, req)
}

func (s *Service) ConfirmUser(ctx context.Context, req *ConfirmRequest) (*ConfirmResponse, error) {
	return call[ConfirmResponse](ctx, s.client, confirmUserPath, http.MethodPost, req)
}

func (s *Service) Signin(ctx context.Context, req *SigninRequest) (*SigninResponse, error) {
	return call[SigninResponse](ctx, s.client, signinPath, http.MethodPost, req)
}

func (s *Service) ResendOTP(ctx context.Context) error {
	_, err := call[json.RawMessage](ctx, s.client, resendOTPPath, http.MethodGet, nil)
	return err
}

func (s *Service) UpdatePhone(ctx context.Context, req *UpdatePhoneRequest) (*UpdatePhoneResponse, error) {
	return call[UpdatePhoneResponse](ctx, s.client, updatePhonePath, http.MethodPut, req)
}

func call[T any](ctx context.Context, client *apiclient.Client, path, method string, body any) (*T, error) {
	opts := apiclient.RequestOptions{Method: method}
	if body != nil {
		opts.Body = body
	}

	resp, err := apiclient.Call[T](ctx, client, path, opts)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, ErrLoginRequired
	}
	return resp, nil
}
