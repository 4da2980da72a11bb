package account_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"taeu.kr/fitedge/internal/account"
	"taeu.kr/fitedge/internal/apiclient"
)

type recordedRequest struct {
	method string
	path   string
	body   map[string]any
}

func newTestService(t *testing.T, handler http.HandlerFunc) (*account.Service, *apiclient.Client, *[]recordedRequest) {
	t.Helper()

	requests := &[]recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rec := recordedRequest{method: r.Method, path: r.URL.Path}
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &rec.body))
		}
		*requests = append(*requests, rec)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: server.URL},
		apiclient.WithLoginRedirector(apiclient.LoginRedirectorFunc(func(context.Context, string) {})))
	require.NoError(t, err)

	return account.NewService(client), client, requests
}

func respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestSignup(t *testing.T) {
	svc, client, requests := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "a1", Path: "/"})
		respond(w, http.StatusCreated, `{"id":"u-1","email":"ana@example.com"}`)
	})

	resp, err := svc.Signup(context.Background(), &account.SignupRequest{
		Name:      "Ana",
		Email:     "ana@example.com",
		BirthDate: "1990-04-02",
		Phone:     "11999990000",
		Password:  "s3cret!",
		CPF:       "12345678900",
	})

	require.NoError(t, err)
	require.Equal(t, &account.SignupResponse{ID: "u-1", Email: "ana@example.com"}, resp)
	require.Len(t, *requests, 1)
	got := (*requests)[0]
	require.Equal(t, http.MethodPost, got.method)
	require.Equal(t, "/signup", got.path)
	require.Equal(t, "1990-04-02", got.body["birth_date"])
	require.Equal(t, "12345678900", got.body["cpf"])

	u, _ := url.Parse(client.BaseURL())
	cookies := client.Jar().Cookies(u)
	require.Len(t, cookies, 1)
	require.Equal(t, "a1", cookies[0].Value)
}

func TestSignupValidationErrorKeepsCauses(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusUnprocessableEntity, `{"message":"invalid payload","error":"validation","code":422,"causes":[{"field":"cpf","message":"invalid cpf"}]}`)
	})

	resp, err := svc.Signup(context.Background(), &account.SignupRequest{Email: "x"})

	require.Nil(t, resp)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, map[string]string{"cpf": "invalid cpf"}, apiErr.FieldErrors())
}

func TestSignin(t *testing.T) {
	svc, _, requests := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, `{"id":"u-1","email":"ana@example.com","name":"Ana","avatarUrl":"https://cdn/a.png","status":"active"}`)
	})

	resp, err := svc.Signin(context.Background(), &account.SigninRequest{Email: "ana@example.com", Password: "pw"})

	require.NoError(t, err)
	require.Equal(t, "https://cdn/a.png", resp.AvatarURL)
	require.Equal(t, "active", resp.Status)
	require.Equal(t, "/signin", (*requests)[0].path)
	require.Equal(t, "pw", (*requests)[0].body["password"])
}

func TestConfirmUserUnconfirmedPropagates(t *testing.T) {
	var refreshCalls atomic.Int32
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/refresh" {
			refreshCalls.Add(1)
		}
		respond(w, http.StatusUnauthorized, `{"message":"wrong code","error":"unconfirmed","code":401}`)
	})

	resp, err := svc.ConfirmUser(context.Background(), &account.ConfirmRequest{OTP: "000000"})

	require.Nil(t, resp)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	require.True(t, apiErr.IsUnconfirmed())
	require.Equal(t, int32(0), refreshCalls.Load())
}

func TestConfirmUser(t *testing.T) {
	svc, _, requests := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, `{"id":"u-1","phone":"11999990000"}`)
	})

	resp, err := svc.ConfirmUser(context.Background(), &account.ConfirmRequest{OTP: "123456"})

	require.NoError(t, err)
	require.Equal(t, "11999990000", resp.Phone)
	require.Equal(t, "/api/confirm_user", (*requests)[0].path)
	require.Equal(t, "123456", (*requests)[0].body["otp"])
}

func TestResendOTP(t *testing.T) {
	svc, _, requests := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, svc.ResendOTP(context.Background()))
	require.Equal(t, http.MethodGet, (*requests)[0].method)
	require.Equal(t, "/api/resend_otp", (*requests)[0].path)
	require.Nil(t, (*requests)[0].body)
}

func TestUpdatePhoneRefreshesExpiredSession(t *testing.T) {
	var refreshed atomic.Bool
	svc, _, requests := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/refresh":
			refreshed.Store(true)
			http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "renewed", Path: "/"})
			w.WriteHeader(http.StatusOK)
		case !refreshed.Load():
			respond(w, http.StatusUnauthorized, `{"message":"expired","error":"unauthenticated","code":401}`)
		default:
			respond(w, http.StatusOK, `{"id":"u-1","phone":"11911112222"}`)
		}
	})

	resp, err := svc.UpdatePhone(context.Background(), &account.UpdatePhoneRequest{Phone: "11911112222"})

	require.NoError(t, err)
	require.Equal(t, "11911112222", resp.Phone)
	require.Len(t, *requests, 3)
	require.Equal(t, "/api/update_phone", (*requests)[2].path)
	require.Equal(t, http.MethodPut, (*requests)[2].method)
	require.Equal(t, (*requests)[0].body, (*requests)[2].body)
}

func TestUpdatePhoneLoginRequired(t *testing.T) {
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusUnauthorized, `{"message":"expired","error":"unauthenticated","code":401}`)
	})

	resp, err := svc.UpdatePhone(context.Background(), &account.UpdatePhoneRequest{Phone: "1"})

	require.Nil(t, resp)
	require.ErrorIs(t, err, account.ErrLoginRequired)
}
