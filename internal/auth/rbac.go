package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/mla/planning-backend/internal/domain"
)

// Objects guarded by the enforcer.
const (
	ObjectPlanning   = "planning"
	ObjectSlot       = "slot"
	ObjectAssignment = "assignment"
	ObjectAudit      = "audit"
)

// Actions checked against objects.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionStatus = "status"
)

// rbacModel is a plain RBAC model with role inheritance.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

var defaultPolicies = [][]string{
	{string(domain.UserRoleMember), ObjectPlanning, ActionRead},
	{string(domain.UserRoleMember), ObjectAssignment, ActionRead},
	{string(domain.UserRoleMember), ObjectAssignment, ActionStatus},

	{string(domain.UserRoleResponsable), ObjectPlanning, ActionWrite},
	{string(domain.UserRoleResponsable), ObjectSlot, ActionWrite},
	{string(domain.UserRoleResponsable), ObjectAssignment, ActionWrite},

	{string(domain.UserRoleAdmin), ObjectAudit, ActionRead},
}

// ADMIN inherits RESPONSABLE_MLA which inherits MEMBRE_MLA.
var defaultHierarchy = [][]string{
	{string(domain.UserRoleAdmin), string(domain.UserRoleResponsable)},
	{string(domain.UserRoleResponsable), string(domain.UserRoleMember)},
}

// Enforcer answers role/object/action questions.
type Enforcer struct {
	e *casbin.Enforcer
}

// NewEnforcer builds an in-memory enforcer loaded with the default policy.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("rbac: parse model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("rbac: new enforcer: %w", err)
	}

	for _, p := range defaultPolicies {
		if _, err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, fmt.Errorf("rbac: add policy %v: %w", p, err)
		}
	}
	for _, g := range defaultHierarchy {
		if _, err := e.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, fmt.Errorf("rbac: add grouping %v: %w", g, err)
		}
	}

	return &Enforcer{e: e}, nil
}

// Allowed reports whether role may perform action on object.
// An empty role is never allowed.
func (en *Enforcer) Allowed(role domain.UserRole, object, action string) (bool, error) {
	if role == "" {
		return false, nil
	}
	ok, err := en.e.Enforce(string(role), object, action)
	if err != nil {
		return false, fmt.Errorf("rbac: enforce: %w", err)
	}
	return ok, nil
}
