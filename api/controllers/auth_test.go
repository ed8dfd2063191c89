package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gudangmitra/gudang-backend/internal/auth"
	"github.com/gudangmitra/gudang-backend/internal/users"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
)

type stubAuthService struct {
	loginFn    func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
	registerFn func(ctx context.Context, req auth.RegisterRequest) (*auth.LoginResponse, error)
}

func (s stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.loginFn(ctx, req)
}

func (s stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.LoginResponse, error) {
	return s.registerFn(ctx, req)
}

func TestAuthLoginSuccess(t *testing.T) {
	svc := stubAuthService{
		loginFn: func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
			if req.Email != "admin@gudang.test" {
				t.Fatalf("unexpected email %s", req.Email)
			}
			return &auth.LoginResponse{AccessToken: "token", TokenType: "Bearer", ExpiresIn: 3600, User: &users.UserDTO{Email: req.Email}}, nil
		},
	}
	req := newJSONRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"admin@gudang.test","password":"secret"}`)
	resp := httptest.NewRecorder()
	AuthLogin(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var out auth.LoginResponse
	decodeData(t, resp, &out)
	if out.AccessToken != "token" || out.TokenType != "Bearer" {
		t.Fatalf("unexpected response %+v", out)
	}
}

func TestAuthLoginValidationAndFailure(t *testing.T) {
	svc := stubAuthService{
		loginFn: func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		},
	}

	resp := httptest.NewRecorder()
	AuthLogin(svc, testLogger())(resp, newJSONRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"not-an-email"}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	AuthLogin(svc, testLogger())(resp, newJSONRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"a@b.co","password":"wrong"}`))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRegisterReturnsCreated(t *testing.T) {
	svc := stubAuthService{
		registerFn: func(ctx context.Context, req auth.RegisterRequest) (*auth.LoginResponse, error) {
			return &auth.LoginResponse{AccessToken: "token"}, nil
		},
	}
	body := `{"name":"Sari","email":"sari@gudang.test","password":"longenough"}`
	resp := httptest.NewRecorder()
	AuthRegister(svc, testLogger())(resp, newJSONRequest(http.MethodPost, "/api/v1/auth/register", body))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	AuthRegister(svc, testLogger())(resp, newJSONRequest(http.MethodPost, "/api/v1/auth/register", `{"name":"Sari","email":"sari@gudang.test","password":"short"}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password got %d", resp.Code)
	}
}
