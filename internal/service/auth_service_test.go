package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ftrhpr/estimator-sub002/internal/domain"
)

func newAuthService(t *testing.T, pin string) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return NewAuthService(string(hash), "test-secret", time.Hour, zap.NewNop())
}

func TestLoginAndVerify(t *testing.T) {
	svc := newAuthService(t, "4321")

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{Name: "Keti", PIN: "4321"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.TokenType != "Bearer" || resp.AccessToken == "" {
		t.Errorf("response = %+v", resp)
	}
	if resp.ExpiresIn != 3600 {
		t.Errorf("ExpiresIn = %d, want 3600", resp.ExpiresIn)
	}

	name, err := svc.VerifyToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if name != "Keti" {
		t.Errorf("subject = %q, want Keti", name)
	}
}

func TestLoginWrongPIN(t *testing.T) {
	svc := newAuthService(t, "4321")

	_, err := svc.Login(context.Background(), &domain.LoginRequest{Name: "Keti", PIN: "0000"})
	var uErr *domain.ErrUnauthorized
	if !errors.As(err, &uErr) {
		t.Errorf("Login() error = %v, want unauthorized", err)
	}
}

func TestLoginDefaultsName(t *testing.T) {
	svc := newAuthService(t, "4321")

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{PIN: "4321"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.Name != "shop" {
		t.Errorf("Name = %q, want shop", resp.Name)
	}
}

func TestLoginNotConfigured(t *testing.T) {
	svc := NewAuthService("", "test-secret", time.Hour, zap.NewNop())

	_, err := svc.Login(context.Background(), &domain.LoginRequest{PIN: "4321"})
	var uErr *domain.ErrUnauthorized
	if !errors.As(err, &uErr) {
		t.Errorf("Login() error = %v, want unauthorized when no hash configured", err)
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	svc := newAuthService(t, "4321")

	if _, err := svc.VerifyToken("not.a.token"); err == nil {
		t.Error("VerifyToken() accepted garbage")
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	issuer := newAuthService(t, "4321")
	verifier := NewAuthService("irrelevant", "other-secret", time.Hour, zap.NewNop())

	resp, err := issuer.Login(context.Background(), &domain.LoginRequest{PIN: "4321"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := verifier.VerifyToken(resp.AccessToken); err == nil {
		t.Error("VerifyToken() accepted token signed with a different secret")
	}
}
