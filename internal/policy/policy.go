// Package policy supplies the capability checks consulted before any
// catalog mutation. Read paths never go through it.
package policy

// Actor identifies the caller of a catalog operation. A zero Actor is an
// anonymous, unauthenticated caller.
type Actor struct {
	ID   string
	Role string
}

const (
	RoleAdmin  = "ADMIN"
	RoleEditor = "EDITOR"
	RoleViewer = "VIEWER"
)

// Policy answers yes/no capability questions about an actor.
type Policy interface {
	IsAuthenticated(a Actor) bool
	CanCreate(a Actor) bool
	CanEdit(a Actor) bool
	CanDelete(a Actor) bool
}

// RolePolicy grants capabilities from the actor's role. Editors may
// create and edit; deletion is a separate grant reserved for admins.
type RolePolicy struct{}

func NewRolePolicy() RolePolicy { return RolePolicy{} }

func (RolePolicy) IsAuthenticated(a Actor) bool {
	return a.ID != ""
}

func (RolePolicy) CanCreate(a Actor) bool {
	return a.Role == RoleAdmin || a.Role == RoleEditor
}

func (RolePolicy) CanEdit(a Actor) bool {
	return a.Role == RoleAdmin || a.Role == RoleEditor
}

func (RolePolicy) CanDelete(a Actor) bool {
	return a.Role == RoleAdmin
}
