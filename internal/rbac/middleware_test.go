package rbac

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atlas-backoffice/atlas/internal/token"
)

func newTestTokens(t *testing.T) *token.Service {
	t.Helper()
	signer, err := token.NewSigner("middleware-secret", "HS256")
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return token.NewService(signer, time.Hour)
}

func protectedHandler(t *testing.T, mw Middleware, scope Scope) http.Handler {
	t.Helper()
	var ok http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("granted"))
	})
	return mw.Authenticate(mw.RequireScope(scope)(ok))
}

func TestAuthenticateMissingToken(t *testing.T) {
	tokens := newTestTokens(t)
	mw := Middleware{Tokens: tokens, Resolver: newTestResolver(&stubStores{}, time.Now())}
	handler := protectedHandler(t, mw, ScopeUsers)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/users", nil))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d want 401", res.Code)
	}
	if res.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Fatal("missing WWW-Authenticate challenge")
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	tokens := newTestTokens(t)
	mw := Middleware{Tokens: tokens, Resolver: newTestResolver(&stubStores{}, time.Now())}
	handler := protectedHandler(t, mw, ScopeUsers)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d want 401", res.Code)
	}
	if body := res.Body.String(); !contains(body, "Invalid token") {
		t.Fatalf("expected Invalid token reason, got %s", body)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	tokens := newTestTokens(t)
	mw := Middleware{Tokens: tokens, Resolver: newTestResolver(&stubStores{}, time.Now())}
	handler := protectedHandler(t, mw, ScopeUsers)

	raw, err := tokens.Issue("ivanov", 7, -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d want 401", res.Code)
	}
	if body := res.Body.String(); !contains(body, "Token expired") {
		t.Fatalf("expected Token expired reason, got %s", body)
	}
}

func TestRequireScopeAllowsAndDenies(t *testing.T) {
	now := time.Now()
	tokens := newTestTokens(t)
	stores := &stubStores{
		locked: map[int64]bool{7: false},
		grants: map[int64][]RoleGrant{
			7: {{UserID: 7, RoleID: 3, ActiveFrom: now.AddDate(0, 0, -30)}},
		},
		functions: map[int64][]Function{3: {FuncManageUsers}},
	}
	mw := Middleware{Tokens: tokens, Resolver: newTestResolver(stores, now)}

	raw, err := tokens.IssueAccessToken("ivanov", 7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	res := httptest.NewRecorder()
	protectedHandler(t, mw, ScopeUsers).ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("scope users: status = %d want 200, body %s", res.Code, res.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/settings", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	res = httptest.NewRecorder()
	protectedHandler(t, mw, ScopeSettings).ServeHTTP(res, req)
	if res.Code != http.StatusForbidden {
		t.Fatalf("scope settings: status = %d want 403", res.Code)
	}
}

func TestRequireScopeLockedAccount(t *testing.T) {
	now := time.Now()
	tokens := newTestTokens(t)
	stores := &stubStores{
		locked: map[int64]bool{7: true},
		grants: map[int64][]RoleGrant{
			7: {{UserID: 7, RoleID: 9, ActiveFrom: now.AddDate(0, 0, -1)}},
		},
		functions: map[int64][]Function{9: {FuncManageAll}},
	}
	mw := Middleware{Tokens: tokens, Resolver: newTestResolver(stores, now)}

	raw, err := tokens.IssueAccessToken("ivanov", 7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	res := httptest.NewRecorder()
	protectedHandler(t, mw, ScopeUsers).ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("status = %d want 400", res.Code)
	}
	if body := res.Body.String(); !contains(body, "Inactive user") {
		t.Fatalf("expected Inactive user, got %s", body)
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}
