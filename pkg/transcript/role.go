// Package transcript holds the shared, append-only conversation log of one run.
package transcript

import "fmt"

// Role identifies who authored a message.
type Role int8

const (
	RoleUser Role = iota
	RoleAnalyst
	RoleEngineer
	RoleReviewer
)

// String returns the lower-case role identifier.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAnalyst:
		return "analyst"
	case RoleEngineer:
		return "engineer"
	case RoleReviewer:
		return "reviewer"
	default:
		return fmt.Sprintf("role(%d)", int8(r))
	}
}

// DisplayName is the name shown in the conversation stream.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAnalyst:
		return "BusinessAnalyst"
	case RoleEngineer:
		return "SoftwareEngineer"
	case RoleReviewer:
		return "ProductOwner"
	default:
		return r.String()
	}
}

// IsParticipant reports whether the role belongs to a scripted participant.
func (r Role) IsParticipant() bool {
	switch r {
	case RoleAnalyst, RoleEngineer, RoleReviewer:
		return true
	case RoleUser:
		return false
	default:
		return false
	}
}

// ParseRole maps a role identifier back to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "analyst":
		return RoleAnalyst, nil
	case "engineer":
		return RoleEngineer, nil
	case "reviewer":
		return RoleReviewer, nil
	default:
		return RoleUser, fmt.Errorf("unknown role %q", s)
	}
}
