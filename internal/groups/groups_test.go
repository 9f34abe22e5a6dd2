package groups_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/atlas-backoffice/atlas/internal/groups"
	"github.com/atlas-backoffice/atlas/internal/rbac"
	"github.com/atlas-backoffice/atlas/internal/token"
	_ "github.com/atlas-backoffice/atlas/testing"
)

type stubStore struct {
	groups []groups.Group
}

func (s *stubStore) ListGroups(ctx context.Context, companyID int64) ([]groups.Group, error) {
	if companyID == 0 {
		return s.groups, nil
	}
	var out []groups.Group
	for _, g := range s.groups {
		if g.CompanyID == companyID {
			out = append(out, g)
		}
	}
	return out, nil
}

type rbacStores struct{}

func (rbacStores) IsLocked(ctx context.Context, userID int64) (bool, error) { return false, nil }

func (rbacStores) ActiveGrantsForUser(ctx context.Context, userID int64, asOf time.Time) ([]rbac.RoleGrant, error) {
	return []rbac.RoleGrant{{UserID: userID, RoleID: 1, ActiveFrom: asOf.Add(-time.Hour)}}, nil
}

func (rbacStores) FunctionsForRole(ctx context.Context, roleID int64) ([]rbac.Function, error) {
	return []rbac.Function{rbac.FuncManageGroups}, nil
}

func newGroupsRouter(t *testing.T, store groups.Store) (http.Handler, string) {
	t.Helper()
	signer, err := token.NewSigner("groups-handler-test", "HS256")
	require.NoError(t, err)
	tokens := token.NewService(signer, time.Hour)

	resolver := rbac.NewResolver(rbacStores{}, rbacStores{}, rbacStores{}, rbac.NewMatrix(), nil)
	mw := rbac.Middleware{Tokens: tokens, Resolver: resolver}
	handler := groups.NewHandler(nil, store, mw.RequireScope(rbac.ScopeGroups))

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate)
		r.Route("/groups", handler.MountRoutes)
	})

	raw, err := tokens.IssueAccessToken("tester", 1)
	require.NoError(t, err)
	return r, "Bearer " + raw
}

func TestListGroupsByCompany(t *testing.T) {
	store := &stubStore{groups: []groups.Group{
		{ID: 1, CompanyID: 1, Name: "Accounting"},
		{ID: 2, CompanyID: 2, Name: "Logistics"},
	}}
	router, auth := newGroupsRouter(t, store)

	req := httptest.NewRequest(http.MethodGet, "/groups/?company_id=2", nil)
	req.Header.Set("Authorization", auth)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), "Logistics")
	require.NotContains(t, res.Body.String(), "Accounting")
}

func TestListGroupsEmpty(t *testing.T) {
	router, auth := newGroupsRouter(t, &stubStore{})
	req := httptest.NewRequest(http.MethodGet, "/groups/", nil)
	req.Header.Set("Authorization", auth)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "[]\n", res.Body.String())
}
