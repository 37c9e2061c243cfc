package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
	"github.com/devinfinitee/AI-health-companion/internal/platform/auth"
)

func codeOf(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func TestSignupThenLogin(t *testing.T) {
	users := newMemUsers()
	issuer := auth.NewTokenIssuer("secret", time.Hour)
	svc := NewAuthService(users, issuer)
	ctx := context.Background()

	res, err := svc.Signup(ctx, &domain.SignupRequest{Name: " Ada ", Email: " Ada@Example.COM ", Password: "longenough"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if res.User.Email != "ada@example.com" || res.User.Name != "Ada" {
		t.Fatalf("not normalized: %+v", res.User)
	}
	claims, err := issuer.Verify(res.Token)
	if err != nil || claims.UserID != res.User.ID {
		t.Fatalf("token: %v %+v", err, claims)
	}
	if users.byEmail["ada@example.com"].PasswordHash == "longenough" {
		t.Fatal("password stored in clear")
	}

	login, err := svc.Login(ctx, &domain.LoginRequest{Email: "ADA@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.ID != res.User.ID || login.Token == "" {
		t.Fatalf("login response: %+v", login)
	}
}

func TestSignup_Validation(t *testing.T) {
	svc := NewAuthService(newMemUsers(), auth.NewTokenIssuer("secret", time.Hour))
	cases := map[string]struct {
		req  domain.SignupRequest
		code string
	}{
		"missing name":   {domain.SignupRequest{Email: "a@b.co", Password: "longenough"}, domain.CodeMissingFields},
		"bad email":      {domain.SignupRequest{Name: "A", Email: "nope", Password: "longenough"}, domain.CodeInvalidEmail},
		"short password": {domain.SignupRequest{Name: "A", Email: "a@b.co", Password: "short"}, domain.CodeWeakPassword},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := tc.req
			_, err := svc.Signup(context.Background(), &req)
			if domain.KindOf(err) != domain.KindValidation || codeOf(err) != tc.code {
				t.Fatalf("err=%v", err)
			}
		})
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := NewAuthService(newMemUsers(), auth.NewTokenIssuer("secret", time.Hour))
	req := func() *domain.SignupRequest {
		return &domain.SignupRequest{Name: "A", Email: "a@b.co", Password: "longenough"}
	}
	if _, err := svc.Signup(context.Background(), req()); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Signup(context.Background(), req())
	if domain.KindOf(err) != domain.KindConflict || codeOf(err) != domain.CodeEmailExists {
		t.Fatalf("err=%v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	users := newMemUsers()
	svc := NewAuthService(users, auth.NewTokenIssuer("secret", time.Hour))
	ctx := context.Background()
	_, _ = svc.Signup(ctx, &domain.SignupRequest{Name: "A", Email: "a@b.co", Password: "longenough"})

	for name, req := range map[string]*domain.LoginRequest{
		"wrong password": {Email: "a@b.co", Password: "wrongpass"},
		"unknown email":  {Email: "x@b.co", Password: "longenough"},
	} {
		_, err := svc.Login(ctx, req)
		if domain.KindOf(err) != domain.KindAuth || codeOf(err) != domain.CodeInvalidCredentials {
			t.Errorf("%s: err=%v", name, err)
		}
	}
}

func TestLogin_StoreFault(t *testing.T) {
	users := newMemUsers()
	users.err = errors.New("db down")
	svc := NewAuthService(users, auth.NewTokenIssuer("secret", time.Hour))
	_, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "a@b.co", Password: "x"})
	if domain.KindOf(err) != domain.KindInternal {
		t.Fatalf("err=%v", err)
	}
}
