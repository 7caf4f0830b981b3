package workspace

import (
	"context"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-casework/internal/library"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/validate"
)

// UploadDocument records document metadata. The folder is created
// implicitly by the first document that names it.
func (s *Store) UploadDocument(ctx context.Context, workspaceID string, req models.UploadDocumentRequest) (models.WorkspaceDocument, error) {
	var out models.WorkspaceDocument
	err := s.mutate("upload_document", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		if err := validate.Required("name", req.Name); err != nil {
			return nil, err
		}
		if err := validate.Struct(req); err != nil {
			return nil, err
		}
		if _, err := s.actor(ctx, a, req.UploadedBy, ""); err != nil {
			return nil, err
		}

		doc := a.library.Add(models.WorkspaceDocument{
			ID:           s.newID(),
			WorkspaceID:  a.ws.ID,
			Name:         strings.TrimSpace(req.Name),
			MimeCategory: req.MimeCategory,
			SizeBytes:    req.SizeBytes,
			Folder:       library.NormalizeFolder(req.Folder),
			UploadedBy:   req.UploadedBy,
			UploadedAt:   now,
			IsPublic:     req.IsPublic,
		})
		a.members.Credit(req.UploadedBy)
		a.members.Touch(req.UploadedBy, now)
		touchActivity(a, now)
		out = doc
		return []Event{{Type: EventDocumentUploaded, ActorID: req.UploadedBy, Payload: doc.Clone()}}, nil
	})
	return out, err
}

// DeleteDocument hard-deletes a document. A folder disappears with its last
// document.
func (s *Store) DeleteDocument(ctx context.Context, workspaceID, actorID, documentID string) error {
	return s.mutate("delete_document", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		if _, err := s.actor(ctx, a, actorID, ActionDeleteDocument); err != nil {
			return nil, err
		}
		doc, err := a.library.Remove(documentID)
		if err != nil {
			return nil, err
		}
		touchActivity(a, now)
		return []Event{{Type: EventDocumentDeleted, ActorID: actorID, Payload: doc}}, nil
	})
}

// RecordDownload increments the download counter of a document.
func (s *Store) RecordDownload(ctx context.Context, workspaceID, documentID string) (models.WorkspaceDocument, error) {
	var out models.WorkspaceDocument
	err := s.mutate("record_download", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		doc, err := a.library.RecordDownload(documentID)
		if err != nil {
			return nil, err
		}
		out = doc
		return []Event{{Type: EventDocumentDownloaded, Payload: doc.Clone()}}, nil
	})
	return out, err
}

// DocumentsByFolder returns the grouped library view, optionally narrowed
// by a case-insensitive name query.
func (s *Store) DocumentsByFolder(ctx context.Context, workspaceID, query string) (models.LibraryView, error) {
	var out models.LibraryView
	err := s.read(workspaceID, func(a *aggregate) error {
		out = a.library.View(query)
		return nil
	})
	return out, err
}

// SearchDocuments returns documents matching query inside folder.
func (s *Store) SearchDocuments(ctx context.Context, workspaceID, query, folder string) ([]models.WorkspaceDocument, error) {
	var out []models.WorkspaceDocument
	err := s.read(workspaceID, func(a *aggregate) error {
		out = a.library.Search(query, folder)
		if out == nil {
			out = []models.WorkspaceDocument{}
		}
		return nil
	})
	return out, err
}

// Document returns one document.
func (s *Store) Document(ctx context.Context, workspaceID, documentID string) (models.WorkspaceDocument, error) {
	var out models.WorkspaceDocument
	err := s.read(workspaceID, func(a *aggregate) error {
		var err error
		out, err = a.library.Get(documentID)
		return err
	})
	return out, err
}
