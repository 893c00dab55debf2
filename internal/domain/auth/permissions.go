package auth

import "context"

const (
	RoleHRAdmin  = "HR Admin"
	RoleHR       = "HR"
	RoleDepotHR  = "Depot HR"
	RoleEmployee = "Employee"
)

const (
	PermRequirementsRead     = "requirements.read"
	PermRequirementsValidate = "requirements.validate"
	PermRequirementsRequest  = "requirements.request"
	PermReportsRead          = "reports.read"
	PermAuditRead            = "audit.read"
)

// DefaultPermissions is every permission the service checks; HR Admin holds all of them.
var DefaultPermissions = []string{
	PermRequirementsRead,
	PermRequirementsValidate,
	PermRequirementsRequest,
	PermReportsRead,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermRequirementsRead,
	},
	RoleDepotHR: {
		PermRequirementsRead,
		PermRequirementsValidate,
		PermReportsRead,
	},
	RoleHR: {
		PermRequirementsRead,
		PermRequirementsValidate,
		PermRequirementsRequest,
		PermReportsRead,
		PermAuditRead,
	},
	RoleHRAdmin: DefaultPermissions,
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct {
	index map[string]map[string]struct{}
}

func NewStaticPermissions(roles map[string][]string) *StaticPermissions {
	index := make(map[string]map[string]struct{}, len(roles))
	for role, perms := range roles {
		set := make(map[string]struct{}, len(perms))
		for _, perm := range perms {
			set[perm] = struct{}{}
		}
		index[role] = set
	}
	return &StaticPermissions{index: index}
}

func (p *StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	_, ok := p.index[role][permission]
	return ok, nil
}
