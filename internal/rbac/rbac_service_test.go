package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestService(t *testing.T) Service {
	enforcer, err := NewEnforcer()
	assert.NoError(t, err)
	return NewService(enforcer)
}

func TestEnforce_EmployeeGrants(t *testing.T) {
	svc := newTestService(t)

	ok, err := svc.Enforce(EnforceRequest{Role: "EMPLOYEE", Resource: "break", Action: "use"})
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Enforce(EnforceRequest{Role: "EMPLOYEE", Resource: "time_entry", Action: "approve"})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestEnforce_ManagerInheritsEmployee(t *testing.T) {
	svc := newTestService(t)

	ok, err := svc.Enforce(EnforceRequest{Role: "MANAGER", Resource: "time_entry", Action: "clock"})
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Enforce(EnforceRequest{Role: "MANAGER", Resource: "shift_swap", Action: "execute"})
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestEnforce_AdminChainReachesEmployeeGrants(t *testing.T) {
	svc := newTestService(t)

	ok, err := svc.Enforce(EnforceRequest{Role: "SUPER_ADMIN", Resource: "break_violation", Action: "review"})
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Enforce(EnforceRequest{Role: "SUPER_ADMIN", Resource: "punch", Action: "read"})
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestEnforce_UnknownRoleDenied(t *testing.T) {
	svc := newTestService(t)

	ok, err := svc.Enforce(EnforceRequest{Role: "CONTRACTOR", Resource: "punch", Action: "read"})
	assert.NoError(t, err)
	assert.False(t, ok)
}
