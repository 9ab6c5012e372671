package navigation

import (
	"context"

	"github.com/trezcool/shiksha/core"
)

// Role is the user's selected mode. It gates which dashboard is shown.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// RoleKey is the fixed key the selected role is persisted under.
const RoleKey = "currentRole"

func ParseRole(s string) (Role, error) {
	r := Role(core.CleanString(s, true /* lower */))
	if !r.IsValid() {
		return "", ErrUnknownRole
	}
	return r, nil
}

func (r Role) IsValid() bool { return r == RoleTeacher || r == RoleStudent }

func (r Role) String() string { return string(r) }

// RoleStore persists the selected role outside of the Session.
// scope isolates the entry of one session from the others; the entry itself is always RoleKey.
type RoleStore interface {
	// GetRole returns ErrNoRole when nothing is stored for scope.
	GetRole(ctx context.Context, scope string) (Role, error)
	// SetRole overwrites any previous value.
	SetRole(ctx context.Context, scope string, role Role) error
	// DeleteRole is a no-op when nothing is stored.
	DeleteRole(ctx context.Context, scope string) error
}
