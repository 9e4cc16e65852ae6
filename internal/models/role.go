package models

import "fmt"

type Role string

const (
	RoleManager  Role = "MANAGER"
	RoleReportee Role = "REPORTEE"
)

// ParseRole converts a raw value into a Role, rejecting anything unknown.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleManager, RoleReportee:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	return string(r)
}
