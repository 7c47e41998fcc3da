package enums

import "fmt"

// Role is the viewer role resolved by the external auth layer.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleSeller     Role = "seller"
	RoleCollector  Role = "collector"
)

var validRoles = []Role{
	RoleAdmin,
	RoleSupervisor,
	RoleSeller,
	RoleCollector,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// SeesAllOrders reports whether the role bypasses ownership filtering.
func (r Role) SeesAllOrders() bool {
	return r == RoleAdmin || r == RoleSupervisor
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
