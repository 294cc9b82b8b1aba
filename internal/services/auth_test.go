package services

import (
	"context"
	"testing"
	"time"

	"github.com/skillforge/skillforge-backend/internal/platform/ctxutil"
	"github.com/skillforge/skillforge-backend/internal/types"
)

func newTestAuth(env *testEnv) AuthService {
	return NewAuthService(env.db, env.log, env.userRepo, env.userTokenRepo,
		"test-secret", time.Hour, 24*time.Hour)
}

func TestRegisterCoercesUnknownRoles(t *testing.T) {
	env := newTestEnv(t)
	auth := newTestAuth(env)

	user := &types.User{
		Email:     "Admin.Wannabe@Example.com",
		Password:  "longenough",
		FirstName: "Eve",
		LastName:  "Adams",
		Role:      types.RoleAdmin,
	}
	if err := auth.Register(context.Background(), user); err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != types.RoleStudent {
		t.Fatalf("self-registration must not grant %s", user.Role)
	}
	if user.Email != "admin.wannabe@example.com" {
		t.Fatalf("email should be normalized, got %q", user.Email)
	}
	if user.Password == "longenough" {
		t.Fatal("password must be stored hashed")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	auth := newTestAuth(env)

	first := &types.User{Email: "dup@example.com", Password: "longenough", Role: types.RoleStudent}
	if err := auth.Register(context.Background(), first); err != nil {
		t.Fatalf("register: %v", err)
	}
	second := &types.User{Email: "DUP@example.com", Password: "longenough", Role: types.RoleStudent}
	if err := auth.Register(context.Background(), second); err == nil {
		t.Fatal("expected duplicate email to fail")
	}
}

func TestLoginAndTokenRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	auth := newTestAuth(env)

	user := &types.User{Email: "login@example.com", Password: "longenough", Role: types.RoleTeacher}
	if err := auth.Register(context.Background(), user); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := auth.Login(context.Background(), "login@example.com", "wrongpass"); err == nil {
		t.Fatal("expected wrong password to fail")
	}

	access, refresh, err := auth.Login(context.Background(), "login@example.com", "longenough")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("expected both tokens")
	}

	ctx, err := auth.SetContextFromToken(context.Background(), access)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != user.ID || rd.Role != types.RoleTeacher {
		t.Fatalf("unexpected principal %+v", rd)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	env := newTestEnv(t)
	auth := newTestAuth(env)

	user := &types.User{Email: "rotate@example.com", Password: "longenough", Role: types.RoleStudent}
	if err := auth.Register(context.Background(), user); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, refresh, err := auth.Login(context.Background(), "rotate@example.com", "longenough")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{RefreshToken: refresh})
	access2, refresh2, err := auth.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access2 == "" || refresh2 == "" || refresh2 == refresh {
		t.Fatal("expected a rotated token pair")
	}

	// The old refresh token is single use.
	if _, _, err := auth.Refresh(ctx); err == nil {
		t.Fatal("expected spent refresh token to be rejected")
	}
}

func TestLogoutRevokesTokens(t *testing.T) {
	env := newTestEnv(t)
	auth := newTestAuth(env)

	user := &types.User{Email: "bye@example.com", Password: "longenough", Role: types.RoleStudent}
	if err := auth.Register(context.Background(), user); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, refresh, err := auth.Login(context.Background(), "bye@example.com", "longenough")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := auth.Logout(asUser(user)); err != nil {
		t.Fatalf("logout: %v", err)
	}
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{RefreshToken: refresh})
	if _, _, err := auth.Refresh(ctx); err == nil {
		t.Fatal("expected revoked refresh token to be rejected")
	}
}
