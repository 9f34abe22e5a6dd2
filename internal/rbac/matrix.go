package rbac

// Matrix is the fixed scope-to-capability table. It is built once at
// startup, never mutated afterwards, and therefore safe for concurrent
// reads without locking.
type Matrix struct {
	required map[Scope]map[Function]struct{}
}

// NewMatrix builds the capability matrix. Every scope's set contains
// FuncManageAll, which makes it a universal grant.
func NewMatrix() *Matrix {
	table := map[Scope][]Function{
		ScopeUsers: {
			FuncReadUsers,
			FuncCreateUsers,
			FuncDeleteUsers,
			FuncListUsers,
			FuncManageUsers,
		},
		ScopeCompanies: {
			FuncManageCompanies,
			FuncManageSettings,
			FuncManageGroups,
			FuncManageRoles,
			FuncExportData,
			FuncImportData,
		},
		ScopeSettings: {
			FuncManageSettings,
		},
		ScopeGroups: {
			FuncManageGroups,
		},
		ScopeRoles: {
			FuncManageRoles,
		},
	}

	required := make(map[Scope]map[Function]struct{}, len(table))
	for scope, funcs := range table {
		set := make(map[Function]struct{}, len(funcs)+1)
		set[FuncManageAll] = struct{}{}
		for _, fn := range funcs {
			set[fn] = struct{}{}
		}
		required[scope] = set
	}
	return &Matrix{required: required}
}

// Scopes lists every scope the matrix knows, for enumeration in tests and
// administrative listings.
func (m *Matrix) Scopes() []Scope {
	scopes := make([]Scope, 0, len(m.required))
	for scope := range m.required {
		scopes = append(scopes, scope)
	}
	return scopes
}

// Known reports whether the scope is part of the closed enumeration.
func (m *Matrix) Known(scope Scope) bool {
	_, ok := m.required[scope]
	return ok
}

// RequiredFunctions returns the set of functions any one of which
// satisfies a check against the scope.
func (m *Matrix) RequiredFunctions(scope Scope) []Function {
	set, ok := m.required[scope]
	if !ok {
		return nil
	}
	funcs := make([]Function, 0, len(set))
	for fn := range set {
		funcs = append(funcs, fn)
	}
	return funcs
}

// Satisfies reports whether the granted set intersects the scope's
// required set. Any single matching capability is sufficient. An unknown
// scope is never satisfied.
func (m *Matrix) Satisfies(scope Scope, granted map[Function]struct{}) bool {
	required, ok := m.required[scope]
	if !ok {
		return false
	}
	for fn := range granted {
		if _, ok := required[fn]; ok {
			return true
		}
	}
	return false
}
