package models

import (
	"time"

	"github.com/Marga-Ghale/ora-casework/internal/types"
)

// ============================================
// Member Management Models
// ============================================

type WorkspaceMember struct {
	ID                string             `json:"id"`
	DisplayName       string             `json:"displayName"`
	Role              types.Role         `json:"role"`
	Status            types.MemberStatus `json:"status"`
	IsOnline          bool               `json:"isOnline"`
	PresenceAt        time.Time          `json:"presenceAt"`
	LastActiveAt      time.Time          `json:"lastActiveAt"`
	JoinedAt          time.Time          `json:"joinedAt"`
	ContributionCount int                `json:"contributionCount"`
	ExpertiseTags     []string           `json:"expertiseTags"`

	// Seq is the join position inside the workspace and the final roster tie-break.
	Seq int64 `json:"seq"`
}

func (m WorkspaceMember) Clone() WorkspaceMember {
	m.ExpertiseTags = cloneStrings(m.ExpertiseTags)
	return m
}

// IsActive reports whether the member has not been soft-removed.
func (m WorkspaceMember) IsActive() bool {
	return m.Status != types.MemberRemoved
}

type AddMemberRequest struct {
	ID            string     `json:"id" yaml:"id" validate:"required,max=128"`
	DisplayName   string     `json:"displayName" yaml:"displayName" validate:"required,max=200"`
	Role          types.Role `json:"role" yaml:"role" validate:"required,oneof=owner admin investigator researcher viewer"`
	ExpertiseTags []string   `json:"expertiseTags" yaml:"expertiseTags" validate:"dive,required,max=64"`
}

type UpdateMemberRoleRequest struct {
	Role types.Role `json:"role" validate:"required,oneof=owner admin investigator researcher viewer"`
}
