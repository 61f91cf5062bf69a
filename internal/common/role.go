package common

import "fmt"

// Role is the closed set of caller roles the platform knows about.
type Role string

const (
	RoleHospital Role = "Hospital"
	RoleAdmin    Role = "Admin"
	RoleCourier  Role = "Courier"
)

// ParseRole maps a header value onto a known role, rejecting typos instead of
// silently comparing free strings.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleHospital:
		return RoleHospital, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleCourier:
		return RoleCourier, nil
	}

	return "", fmt.Errorf("unknown role %q", s)
}
