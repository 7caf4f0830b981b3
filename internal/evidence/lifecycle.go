package evidence

import (
	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/types"
)

// transitions lists the allowed moves. Verified and disputed can be
// re-evaluated freely; nothing returns to pending once reviewed.
var transitions = map[types.VerificationStatus][]types.VerificationStatus{
	types.StatusPending:  {types.StatusVerified, types.StatusDisputed},
	types.StatusVerified: {types.StatusDisputed},
	types.StatusDisputed: {types.StatusVerified},
}

// CheckTransition reports whether from → to is allowed. Staying in the
// same state is always allowed.
func CheckTransition(from, to types.VerificationStatus) error {
	if !types.IsValidVerificationStatus(to) {
		return apperr.Validation("status", "unknown verification status "+string(to))
	}
	if from == to {
		return nil
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return apperr.Validation("status", "cannot move evidence from "+string(from)+" to "+string(to))
}
