package enums

import "fmt"

// UserRole scopes what a back-office user may do.
type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleOperador UserRole = "operador"
	UserRoleConsulta UserRole = "consulta"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleOperador,
	UserRoleConsulta,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// CanWrite reports whether the role may create or mutate records.
func (u UserRole) CanWrite() bool {
	return u == UserRoleAdmin || u == UserRoleOperador
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
