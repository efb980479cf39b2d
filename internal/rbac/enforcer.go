package rbac

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

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

// Policies are static: this service exposes no role-management surface, so
// role grants live in code instead of a policy table.
var policies = [][]string{
	{"EMPLOYEE", "punch", "read"},
	{"EMPLOYEE", "time_entry", "clock"},
	{"EMPLOYEE", "time_entry", "read"},
	{"EMPLOYEE", "time_entry", "submit"},
	{"EMPLOYEE", "break", "use"},
	{"EMPLOYEE", "break", "read"},
	{"EMPLOYEE", "shift_swap", "create"},
	{"EMPLOYEE", "shift_swap", "read"},
	{"EMPLOYEE", "shift_swap", "respond"},
	{"EMPLOYEE", "time_off", "create"},
	{"EMPLOYEE", "time_off", "read"},

	{"MANAGER", "time_entry", "approve"},
	{"MANAGER", "time_entry", "export"},
	{"MANAGER", "break_violation", "review"},
	{"MANAGER", "break_violation", "read"},
	{"MANAGER", "shift_swap", "decide"},
	{"MANAGER", "shift_swap", "execute"},
	{"MANAGER", "time_off", "decide"},
}

// Role inheritance: managers and admins can do everything an employee can.
var groupings = [][]string{
	{"MANAGER", "EMPLOYEE"},
	{"HR", "MANAGER"},
	{"ADMIN", "MANAGER"},
	{"SUPER_ADMIN", "ADMIN"},
}

func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}
	for _, g := range groupings {
		if _, err := enforcer.AddGroupingPolicy(g[0], g[1]); err != nil {
			return nil, err
		}
	}

	return enforcer, nil
}
