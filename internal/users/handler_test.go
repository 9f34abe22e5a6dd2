package users_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/atlas-backoffice/atlas/internal/rbac"
	"github.com/atlas-backoffice/atlas/internal/token"
	"github.com/atlas-backoffice/atlas/internal/users"
	_ "github.com/atlas-backoffice/atlas/testing"
)

type rbacStores struct {
	locked    map[int64]bool
	grants    map[int64][]rbac.RoleGrant
	functions map[int64][]rbac.Function
}

func (s rbacStores) IsLocked(ctx context.Context, userID int64) (bool, error) {
	return s.locked[userID], nil
}

func (s rbacStores) ActiveGrantsForUser(ctx context.Context, userID int64, asOf time.Time) ([]rbac.RoleGrant, error) {
	return s.grants[userID], nil
}

func (s rbacStores) FunctionsForRole(ctx context.Context, roleID int64) ([]rbac.Function, error) {
	return s.functions[roleID], nil
}

// newUsersRouter builds a router with the real middleware chain: user 1
// holds manage_users through role 10, user 2 has no grants.
func newUsersRouter(t *testing.T) (http.Handler, *token.Service) {
	t.Helper()
	signer, err := token.NewSigner("users-handler-test", "HS256")
	require.NoError(t, err)
	tokens := token.NewService(signer, time.Hour)

	stores := rbacStores{
		locked: map[int64]bool{},
		grants: map[int64][]rbac.RoleGrant{
			1: {{UserID: 1, RoleID: 10, ActiveFrom: time.Now().Add(-time.Hour)}},
		},
		functions: map[int64][]rbac.Function{
			10: {rbac.FuncManageUsers},
		},
	}
	resolver := rbac.NewResolver(stores, stores, stores, rbac.NewMatrix(), nil)
	mw := rbac.Middleware{Tokens: tokens, Resolver: resolver}

	svc := users.NewService(newStubStore(), nil)
	handler := users.NewHandler(nil, svc, mw.RequireScope(rbac.ScopeUsers))

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate)
		r.Route("/users", handler.MountRoutes)
	})
	return r, tokens
}

func bearerFor(t *testing.T, tokens *token.Service, userID int64) string {
	t.Helper()
	raw, err := tokens.IssueAccessToken("tester", userID)
	require.NoError(t, err)
	return "Bearer " + raw
}

func TestUsersRequireToken(t *testing.T) {
	router, _ := newUsersRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/users/", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestUsersRequireScope(t *testing.T) {
	router, tokens := newUsersRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/users/", nil)
	req.Header.Set("Authorization", bearerFor(t, tokens, 2))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestUsersCreateAndGet(t *testing.T) {
	router, tokens := newUsersRouter(t)
	auth := bearerFor(t, tokens, 1)

	body := `{"company_id":1,"group_id":1,"username":"petrov","first_name":"Petr","last_name":"Petrov","password":"supersecret"}`
	req := httptest.NewRequest(http.MethodPost, "/users/", strings.NewReader(body))
	req.Header.Set("Authorization", auth)
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusCreated, res.Code)

	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	require.NotContains(t, res.Body.String(), "password")

	get := httptest.NewRequest(http.MethodGet, "/users/1", nil)
	get.Header.Set("Authorization", auth)
	got := httptest.NewRecorder()
	router.ServeHTTP(got, get)
	require.Equal(t, http.StatusOK, got.Code)
	require.Contains(t, got.Body.String(), `"username":"petrov"`)
}

func TestUsersCreateValidation(t *testing.T) {
	router, tokens := newUsersRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/users/", strings.NewReader(`{"username":"x"}`))
	req.Header.Set("Authorization", bearerFor(t, tokens, 1))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestUsersDelete(t *testing.T) {
	router, tokens := newUsersRouter(t)
	auth := bearerFor(t, tokens, 1)

	body := `{"company_id":1,"group_id":1,"username":"petrov","first_name":"Petr","last_name":"Petrov","password":"supersecret"}`
	req := httptest.NewRequest(http.MethodPost, "/users/", strings.NewReader(body))
	req.Header.Set("Authorization", auth)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusCreated, res.Code)

	del := httptest.NewRequest(http.MethodDelete, "/users/1", nil)
	del.Header.Set("Authorization", auth)
	deleted := httptest.NewRecorder()
	router.ServeHTTP(deleted, del)
	require.Equal(t, http.StatusNoContent, deleted.Code)

	miss := httptest.NewRequest(http.MethodDelete, "/users/1", nil)
	miss.Header.Set("Authorization", auth)
	missed := httptest.NewRecorder()
	router.ServeHTTP(missed, miss)
	require.Equal(t, http.StatusNotFound, missed.Code)
}
