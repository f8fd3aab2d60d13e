package access

// Role is a tenant-scoped role. Wire values match the membership table
// exactly.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

// Roles returns every declared role, highest rank first.
func Roles() []Role {
	return []Role{RoleOwner, RoleAdmin, RoleEditor, RoleViewer}
}

// Rank places roles in a total order: OWNER=4 > ADMIN=3 > EDITOR=2 >
// VIEWER=1. Unknown roles rank 0 and therefore never satisfy any gate.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 4
	case RoleAdmin:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

func (r Role) Valid() bool {
	return r.Rank() > 0
}

// AtLeast reports whether r satisfies a minimum-role gate. This is a rank
// comparison, not equality: an OWNER passes an EDITOR gate.
func (r Role) AtLeast(min Role) bool {
	return r.Rank() >= min.Rank()
}
