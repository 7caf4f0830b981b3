package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleRank(t *testing.T) {
	assert.Equal(t, 0, RoleRank(RoleOwner))
	assert.Equal(t, 1, RoleRank(RoleAdmin))
	assert.Equal(t, 2, RoleRank(RoleInvestigator))
	assert.Equal(t, 3, RoleRank(RoleResearcher))
	assert.Equal(t, 4, RoleRank(RoleViewer))
	assert.Equal(t, 5, RoleRank(Role("intern")))
}

func TestValidators(t *testing.T) {
	assert.True(t, IsValidEvidenceType(EvidenceLink))
	assert.False(t, IsValidEvidenceType(EvidenceType("spreadsheet")))
	assert.True(t, IsValidVerificationStatus(StatusDisputed))
	assert.False(t, IsValidVerificationStatus(VerificationStatus("rejected")))
	assert.True(t, IsValidMimeCategory(MimeArchive))
	assert.False(t, IsValidPriority(Priority("urgent")))
	assert.True(t, IsValidVisibility(VisibilityPrivate))
	assert.False(t, IsValidRole(Role("member")))
}
