package models

import (
	"time"

	"github.com/Marga-Ghale/ora-casework/internal/types"
)

// Virtual folder labels. Neither is ever stored on a document.
const (
	FolderAll           = "All"
	FolderUncategorized = "Uncategorized"
)

type WorkspaceDocument struct {
	ID            string             `json:"id"`
	WorkspaceID   string             `json:"workspaceId"`
	Name          string             `json:"name"`
	MimeCategory  types.MimeCategory `json:"mimeCategory"`
	SizeBytes     int64              `json:"sizeBytes"`
	Folder        *string            `json:"folder,omitempty"`
	UploadedBy    string             `json:"uploadedBy"`
	UploadedAt    time.Time          `json:"uploadedAt"`
	DownloadCount int                `json:"downloadCount"`
	IsPublic      bool               `json:"isPublic"`
}

func (d WorkspaceDocument) Clone() WorkspaceDocument {
	d.Folder = cloneStringPtr(d.Folder)
	return d
}

// FolderLabel returns the display folder, using the virtual label when unset.
func (d WorkspaceDocument) FolderLabel() string {
	if d.Folder == nil {
		return FolderUncategorized
	}
	return *d.Folder
}

type UploadDocumentRequest struct {
	Name         string             `json:"name" yaml:"name" validate:"max=255"`
	MimeCategory types.MimeCategory `json:"mimeCategory" yaml:"mimeCategory" validate:"required,mime_category"`
	SizeBytes    int64              `json:"sizeBytes" yaml:"sizeBytes" validate:"gte=0"`
	Folder       *string            `json:"folder,omitempty" yaml:"folder" validate:"omitempty,max=200"`
	UploadedBy   string             `json:"uploadedBy" yaml:"uploadedBy" validate:"required"`
	IsPublic     bool               `json:"isPublic" yaml:"isPublic"`
}

// FolderGroup is one entry of the grouped library view.
type FolderGroup struct {
	Name      string              `json:"name"`
	Virtual   bool                `json:"virtual"`
	Documents []WorkspaceDocument `json:"documents"`
}

// LibraryView is the grouped document listing: All, derived folders, then
// Uncategorized when any document has no folder.
type LibraryView struct {
	All     []WorkspaceDocument `json:"all"`
	Folders []string            `json:"folders"`
	Groups  []FolderGroup       `json:"groups"`
}
