package types

// Workspace Priority values
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Workspace Visibility values
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Workspace Member Roles, highest authority first
type Role string

const (
	RoleOwner        Role = "owner"
	RoleAdmin        Role = "admin"
	RoleInvestigator Role = "investigator"
	RoleResearcher   Role = "researcher"
	RoleViewer       Role = "viewer"
)

// Member Status values. Removed members are kept for authorship.
type MemberStatus string

const (
	MemberActive  MemberStatus = "active"
	MemberRemoved MemberStatus = "removed"
)

// Message Kind values
type MessageKind string

const (
	MessageText   MessageKind = "text"
	MessageSystem MessageKind = "system"
)

// Evidence Type values
type EvidenceType string

const (
	EvidenceDocument EvidenceType = "document"
	EvidenceImage    EvidenceType = "image"
	EvidenceVideo    EvidenceType = "video"
	EvidenceAudio    EvidenceType = "audio"
	EvidenceLink     EvidenceType = "link"
)

// Verification Status values
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusVerified VerificationStatus = "verified"
	StatusDisputed VerificationStatus = "disputed"
)

// Document Mime Category values
type MimeCategory string

const (
	MimeDocument    MimeCategory = "document"
	MimeImage       MimeCategory = "image"
	MimeVideo       MimeCategory = "video"
	MimeAudio       MimeCategory = "audio"
	MimeSpreadsheet MimeCategory = "spreadsheet"
	MimeArchive     MimeCategory = "archive"
	MimeOther       MimeCategory = "other"
)

// Valid values for validation
var ValidPriorities = []Priority{
	PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow,
}

var ValidVisibilities = []Visibility{
	VisibilityPublic, VisibilityPrivate,
}

var ValidRoles = []Role{
	RoleOwner, RoleAdmin, RoleInvestigator, RoleResearcher, RoleViewer,
}

var ValidEvidenceTypes = []EvidenceType{
	EvidenceDocument, EvidenceImage, EvidenceVideo, EvidenceAudio, EvidenceLink,
}

var ValidVerificationStatuses = []VerificationStatus{
	StatusPending, StatusVerified, StatusDisputed,
}

var ValidMimeCategories = []MimeCategory{
	MimeDocument, MimeImage, MimeVideo, MimeAudio,
	MimeSpreadsheet, MimeArchive, MimeOther,
}

// Helper functions for validation
func IsValidPriority(p Priority) bool {
	return contains(ValidPriorities, p)
}

func IsValidVisibility(v Visibility) bool {
	return contains(ValidVisibilities, v)
}

func IsValidRole(r Role) bool {
	return contains(ValidRoles, r)
}

func IsValidEvidenceType(t EvidenceType) bool {
	return contains(ValidEvidenceTypes, t)
}

func IsValidVerificationStatus(s VerificationStatus) bool {
	return contains(ValidVerificationStatuses, s)
}

func IsValidMimeCategory(c MimeCategory) bool {
	return contains(ValidMimeCategories, c)
}

// RoleRank orders roles by authority: owner is 0, viewer is 4.
// Unknown roles sort after every known role.
func RoleRank(r Role) int {
	for i, known := range ValidRoles {
		if known == r {
			return i
		}
	}
	return len(ValidRoles)
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
