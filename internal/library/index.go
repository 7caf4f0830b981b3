// Package library indexes workspace documents. Folders are never stored on
// their own: the folder list is derived from the current documents on every
// read, so a folder exists exactly while some document references it.
package library

import (
	"slices"
	"strings"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/models"
)

// Index holds the documents of one workspace in upload order.
type Index struct {
	docs []*models.WorkspaceDocument
	byID map[string]*models.WorkspaceDocument
}

func NewIndex() *Index {
	return &Index{byID: make(map[string]*models.WorkspaceDocument)}
}

// NormalizeFolder trims a caller-supplied folder. Blank values and the
// virtual labels collapse to nil so they are never stored.
func NormalizeFolder(folder *string) *string {
	if folder == nil {
		return nil
	}
	name := strings.TrimSpace(*folder)
	if name == "" || strings.EqualFold(name, models.FolderUncategorized) || strings.EqualFold(name, models.FolderAll) {
		return nil
	}
	return &name
}

// Add stores a document. The caller provides a fully populated record.
func (x *Index) Add(doc models.WorkspaceDocument) models.WorkspaceDocument {
	d := doc.Clone()
	d.Folder = NormalizeFolder(d.Folder)
	x.docs = append(x.docs, &d)
	x.byID[d.ID] = &d
	return d.Clone()
}

func (x *Index) Get(id string) (models.WorkspaceDocument, error) {
	d, ok := x.byID[id]
	if !ok {
		return models.WorkspaceDocument{}, apperr.NotFound("document", id)
	}
	return d.Clone(), nil
}

// Remove hard-deletes a document.
func (x *Index) Remove(id string) (models.WorkspaceDocument, error) {
	d, ok := x.byID[id]
	if !ok {
		return models.WorkspaceDocument{}, apperr.NotFound("document", id)
	}
	delete(x.byID, id)
	x.docs = slices.DeleteFunc(x.docs, func(candidate *models.WorkspaceDocument) bool {
		return candidate.ID == id
	})
	return d.Clone(), nil
}

// RecordDownload increments the download counter.
func (x *Index) RecordDownload(id string) (models.WorkspaceDocument, error) {
	d, ok := x.byID[id]
	if !ok {
		return models.WorkspaceDocument{}, apperr.NotFound("document", id)
	}
	d.DownloadCount++
	return d.Clone(), nil
}

// Len returns the number of documents.
func (x *Index) Len() int {
	return len(x.docs)
}

// All returns every document in upload order.
func (x *Index) All() []models.WorkspaceDocument {
	out := make([]models.WorkspaceDocument, 0, len(x.docs))
	for _, d := range x.docs {
		out = append(out, d.Clone())
	}
	return out
}

// Folders returns the distinct folder names in use, sorted by name.
func (x *Index) Folders() []string {
	seen := make(map[string]struct{})
	folders := []string{}
	for _, d := range x.docs {
		if d.Folder == nil {
			continue
		}
		if _, ok := seen[*d.Folder]; ok {
			continue
		}
		seen[*d.Folder] = struct{}{}
		folders = append(folders, *d.Folder)
	}
	slices.Sort(folders)
	return folders
}

// Search returns documents whose name contains query, ignoring case.
// folder narrows the result: "" or "All" means every document,
// "Uncategorized" means documents without a folder.
func (x *Index) Search(query, folder string) []models.WorkspaceDocument {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []models.WorkspaceDocument
	for _, d := range x.docs {
		if !inFolder(d, folder) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(d.Name), q) {
			continue
		}
		out = append(out, d.Clone())
	}
	return out
}

// View builds the grouped listing, optionally filtered by a name query.
// Groups appear as All, each derived folder by name, then Uncategorized
// when at least one matching document has no folder.
func (x *Index) View(query string) models.LibraryView {
	matches := x.Search(query, "")
	view := models.LibraryView{
		All:     matches,
		Folders: x.Folders(),
	}
	if view.All == nil {
		view.All = []models.WorkspaceDocument{}
	}
	view.Groups = append(view.Groups, models.FolderGroup{
		Name:      models.FolderAll,
		Virtual:   true,
		Documents: view.All,
	})

	grouped := make(map[string][]models.WorkspaceDocument)
	var uncategorized []models.WorkspaceDocument
	for _, d := range matches {
		if d.Folder == nil {
			uncategorized = append(uncategorized, d)
			continue
		}
		grouped[*d.Folder] = append(grouped[*d.Folder], d)
	}
	for _, name := range view.Folders {
		docs := grouped[name]
		if docs == nil {
			docs = []models.WorkspaceDocument{}
		}
		view.Groups = append(view.Groups, models.FolderGroup{Name: name, Documents: docs})
	}
	if len(uncategorized) > 0 {
		view.Groups = append(view.Groups, models.FolderGroup{
			Name:      models.FolderUncategorized,
			Virtual:   true,
			Documents: uncategorized,
		})
	}
	return view
}

func inFolder(d *models.WorkspaceDocument, folder string) bool {
	switch {
	case folder == "" || folder == models.FolderAll:
		return true
	case folder == models.FolderUncategorized:
		return d.Folder == nil
	default:
		return d.Folder != nil && *d.Folder == folder
	}
}
