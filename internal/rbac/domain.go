// Package rbac resolves whether an authenticated user may act within an
// administrative scope, by mapping time-bounded role grants through
// role-function links onto a fixed capability matrix.
package rbac

import "time"

// Scope is a named administrative area requiring authorization.
type Scope string

// Administrative scopes of the back office.
const (
	ScopeCompanies Scope = "companies"
	ScopeUsers     Scope = "users"
	ScopeSettings  Scope = "settings"
	ScopeGroups    Scope = "groups"
	ScopeRoles     Scope = "roles"
)

// Function is an atomic capability code; roles compose from these.
type Function string

// Capability codes. FuncManageAll is the superuser capability and is a
// member of every scope's required set.
const (
	FuncManageAll       Function = "manage_all"
	FuncReadUsers       Function = "read_users"
	FuncCreateUsers     Function = "create_users"
	FuncDeleteUsers     Function = "delete_users"
	FuncListUsers       Function = "list_users"
	FuncManageUsers     Function = "manage_users"
	FuncManageCompanies Function = "manage_companies"
	FuncManageSettings  Function = "manage_settings"
	FuncManageGroups    Function = "manage_groups"
	FuncManageRoles     Function = "manage_roles"
	FuncExportData      Function = "export_data"
	FuncImportData      Function = "import_data"
)

// RoleGrant assigns a role to a user for the window [ActiveFrom, ActiveTo].
// A nil ActiveTo means the grant has no end date. Grants are never expired
// in storage; activity is evaluated at check time.
type RoleGrant struct {
	UserID     int64
	RoleID     int64
	ActiveFrom time.Time
	ActiveTo   *time.Time
}

// ActiveAt reports whether the grant is in effect at the given instant.
// The upper bound is inclusive: a grant whose ActiveTo equals now is still
// active.
func (g RoleGrant) ActiveAt(now time.Time) bool {
	if now.Before(g.ActiveFrom) {
		return false
	}
	if g.ActiveTo == nil {
		return true
	}
	return !now.After(*g.ActiveTo)
}
