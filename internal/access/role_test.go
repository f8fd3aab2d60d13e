package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Rank_TotalOrder(t *testing.T) {
	assert.Equal(t, 4, RoleOwner.Rank())
	assert.Equal(t, 3, RoleAdmin.Rank())
	assert.Equal(t, 2, RoleEditor.Rank())
	assert.Equal(t, 1, RoleViewer.Rank())
	assert.Equal(t, 0, Role("SUPERUSER").Rank())
	assert.Equal(t, 0, Role("").Rank())
}

// Roles() and Rank() must cover exactly the same variants, so the ordering
// cannot drift from the declared enum.
func TestRoles_CoversExactlyDeclaredVariants(t *testing.T) {
	roles := Roles()
	assert.Len(t, roles, 4)

	seen := make(map[Role]bool)
	for _, r := range roles {
		assert.True(t, r.Valid(), "declared role %q must have a rank", r)
		assert.False(t, seen[r], "role %q listed twice", r)
		seen[r] = true
	}

	// Ranks are distinct and dense: 1..len(roles)
	ranks := make(map[int]bool)
	for _, r := range roles {
		ranks[r.Rank()] = true
	}
	for i := 1; i <= len(roles); i++ {
		assert.True(t, ranks[i], "missing rank %d", i)
	}
}

func TestRole_AtLeast_Grid(t *testing.T) {
	for _, caller := range Roles() {
		for _, required := range Roles() {
			want := caller.Rank() >= required.Rank()
			assert.Equal(t, want, caller.AtLeast(required),
				"caller=%s required=%s", caller, required)
		}
	}
}

func TestRole_AtLeast_UnknownRoleNeverPasses(t *testing.T) {
	for _, required := range Roles() {
		assert.False(t, Role("GUEST").AtLeast(required))
	}
}
