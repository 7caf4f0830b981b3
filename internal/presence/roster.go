package presence

import (
	"cmp"
	"slices"

	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/types"
)

// CompareRoster orders members online first, then by role rank, then by
// contribution count descending, then by join order. Every key is a member
// attribute, so the order does not depend on the input order.
func CompareRoster(a, b models.WorkspaceMember) int {
	if a.IsOnline != b.IsOnline {
		if a.IsOnline {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(types.RoleRank(a.Role), types.RoleRank(b.Role)); c != 0 {
		return c
	}
	if c := cmp.Compare(b.ContributionCount, a.ContributionCount); c != 0 {
		return c
	}
	return cmp.Compare(a.Seq, b.Seq)
}

// SortRoster sorts members in place into canonical roster order.
func SortRoster(members []models.WorkspaceMember) {
	slices.SortStableFunc(members, CompareRoster)
}
