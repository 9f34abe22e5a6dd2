package rbac

import (
	"testing"
	"time"
)

func TestGrantActiveAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	cases := []struct {
		name  string
		grant RoleGrant
		want  bool
	}{
		{"open ended", RoleGrant{ActiveFrom: yesterday}, true},
		{"inside window", RoleGrant{ActiveFrom: yesterday, ActiveTo: &tomorrow}, true},
		{"starts at now", RoleGrant{ActiveFrom: now}, true},
		{"not started yet", RoleGrant{ActiveFrom: tomorrow}, false},
		{"ends exactly now", RoleGrant{ActiveFrom: yesterday, ActiveTo: &now}, true},
		{"ended yesterday", RoleGrant{ActiveFrom: now.AddDate(0, 0, -30), ActiveTo: &yesterday}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.grant.ActiveAt(now); got != tc.want {
				t.Fatalf("ActiveAt = %v want %v", got, tc.want)
			}
		})
	}
}

func TestMatrixWildcardSatisfiesEveryScope(t *testing.T) {
	m := NewMatrix()
	superuser := map[Function]struct{}{FuncManageAll: {}}
	for _, scope := range m.Scopes() {
		if !m.Satisfies(scope, superuser) {
			t.Fatalf("manage_all must satisfy scope %s", scope)
		}
	}
}

func TestMatrixEveryScopeRequiresManageAll(t *testing.T) {
	m := NewMatrix()
	for _, scope := range m.Scopes() {
		found := false
		for _, fn := range m.RequiredFunctions(scope) {
			if fn == FuncManageAll {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("scope %s does not list manage_all", scope)
		}
	}
}

func TestMatrixAnyOneCapabilitySuffices(t *testing.T) {
	m := NewMatrix()
	granted := map[Function]struct{}{FuncManageUsers: {}, FuncExportData: {}}
	if !m.Satisfies(ScopeUsers, granted) {
		t.Fatal("manage_users must satisfy scope users")
	}
	if !m.Satisfies(ScopeCompanies, granted) {
		t.Fatal("export_data must satisfy scope companies")
	}
	if m.Satisfies(ScopeSettings, granted) {
		t.Fatal("scope settings must not be satisfied without manage_settings")
	}
}

func TestMatrixEmptyGrantDeniesEveryScope(t *testing.T) {
	m := NewMatrix()
	for _, scope := range m.Scopes() {
		if m.Satisfies(scope, nil) {
			t.Fatalf("empty grant set must not satisfy scope %s", scope)
		}
	}
}

func TestMatrixUnknownScope(t *testing.T) {
	m := NewMatrix()
	if m.Known("reports") {
		t.Fatal("scope reports must be unknown")
	}
	if m.Satisfies("reports", map[Function]struct{}{FuncManageAll: {}}) {
		t.Fatal("unknown scope must never be satisfied")
	}
	if m.RequiredFunctions("reports") != nil {
		t.Fatal("unknown scope must have no required functions")
	}
}
