package models

import (
	"time"

	"github.com/Marga-Ghale/ora-casework/internal/types"
)

// Evidence is an item under review. Only VerificationStatus and
// Connections change after creation.
type Evidence struct {
	ID                 string                   `json:"id"`
	WorkspaceID        string                   `json:"workspaceId"`
	Title              string                   `json:"title"`
	Description        string                   `json:"description"`
	Type               types.EvidenceType       `json:"type"`
	VerificationStatus types.VerificationStatus `json:"verificationStatus"`
	Source             string                   `json:"source"`
	SourceURL          *string                  `json:"sourceUrl,omitempty"`
	Tags               []string                 `json:"tags"`
	AddedBy            string                   `json:"addedBy"`
	AddedAt            time.Time                `json:"addedAt"`
	Connections        []string                 `json:"connections"`
}

func (e Evidence) Clone() Evidence {
	e.SourceURL = cloneStringPtr(e.SourceURL)
	e.Tags = cloneStrings(e.Tags)
	e.Connections = cloneStrings(e.Connections)
	return e
}

// CreateEvidenceRequest carries caller input. VerificationStatus is accepted
// on the wire but never honored: new evidence always starts pending.
type CreateEvidenceRequest struct {
	Title              string                   `json:"title" yaml:"title" validate:"max=300"`
	Description        string                   `json:"description" yaml:"description" validate:"max=10000"`
	Type               types.EvidenceType       `json:"type" yaml:"type" validate:"required,oneof=document image video audio link"`
	VerificationStatus types.VerificationStatus `json:"verificationStatus,omitempty" yaml:"verificationStatus"`
	Source             string                   `json:"source" yaml:"source" validate:"max=500"`
	SourceURL          *string                  `json:"sourceUrl,omitempty" yaml:"sourceUrl" validate:"omitempty,url"`
	Tags               []string                 `json:"tags" yaml:"tags" validate:"dive,required,max=64"`
	AddedBy            string                   `json:"addedBy" yaml:"addedBy" validate:"required"`
	Connections        []string                 `json:"connections" yaml:"connections"`
}

type UpdateEvidenceStatusRequest struct {
	Status types.VerificationStatus `json:"status" validate:"required,oneof=pending verified disputed"`
}

// EvidenceFilter is applied conjunctively; zero fields match everything.
type EvidenceFilter struct {
	Type   types.EvidenceType       `json:"type,omitempty" form:"type"`
	Status types.VerificationStatus `json:"status,omitempty" form:"status"`
	Query  string                   `json:"query,omitempty" form:"q"`
}

// EvidenceStats counts items per verification status.
type EvidenceStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Verified int `json:"verified"`
	Disputed int `json:"disputed"`
}
