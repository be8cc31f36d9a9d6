package service

import (
	"errors"
	"testing"

	"github.com/giftlink-next/internal/config"
)

func setupAuthServiceTest(t *testing.T, password string) *AuthService {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret-key-0123456789-0123456789"
	cfg.JWT.ExpireHours = 1
	cfg.Admin.Username = "admin"

	svc := NewAuthService(cfg)
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	cfg.Admin.PasswordHash = hash
	return svc
}

func TestAuthServiceLogin(t *testing.T) {
	svc := setupAuthServiceTest(t, "correct horse")

	token, expiresAt, err := svc.Login("admin", "correct horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" || expiresAt.IsZero() {
		t.Fatalf("invalid login result: token=%q expires=%v", token, expiresAt)
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse jwt failed: %v", err)
	}
	if claims.Username != "admin" {
		t.Fatalf("claims username want admin got %s", claims.Username)
	}
}

func TestAuthServiceLoginRejections(t *testing.T) {
	svc := setupAuthServiceTest(t, "correct horse")

	if _, _, err := svc.Login("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials got %v", err)
	}
	if _, _, err := svc.Login("nobody", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong username want ErrInvalidCredentials got %v", err)
	}

	svc.cfg.Admin.PasswordHash = ""
	if _, _, err := svc.Login("admin", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("empty hash want ErrInvalidCredentials got %v", err)
	}
}

func TestAuthServiceParseJWTRejectsTampered(t *testing.T) {
	svc := setupAuthServiceTest(t, "correct horse")
	token, _, err := svc.Login("admin", "correct horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	other := &config.Config{}
	other.JWT.SecretKey = "another-secret-key-9876543210-9876543210"
	otherSvc := NewAuthService(other)
	if _, err := otherSvc.ParseJWT(token); err == nil {
		t.Fatalf("token signed with different secret should be rejected")
	}
}
