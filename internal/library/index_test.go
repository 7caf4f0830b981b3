package library

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/types"
)

func strPtr(s string) *string { return &s }

func doc(id, name string, folder *string) models.WorkspaceDocument {
	return models.WorkspaceDocument{
		ID:           id,
		WorkspaceID:  "ws1",
		Name:         name,
		MimeCategory: types.MimeDocument,
		SizeBytes:    1024,
		Folder:       folder,
		UploadedBy:   "u1",
		UploadedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func groupNames(v models.LibraryView) []string {
	var names []string
	for _, g := range v.Groups {
		names = append(names, g.Name)
	}
	return names
}

func TestFolderDerivation_LastDocumentRemovesFolder(t *testing.T) {
	x := NewIndex()
	x.Add(doc("a", "a.pdf", strPtr("Case1")))
	x.Add(doc("b", "b.pdf", strPtr("Case1")))
	assert.Equal(t, []string{"Case1"}, x.Folders())

	_, err := x.Remove("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"Case1"}, x.Folders())

	_, err = x.Remove("b")
	require.NoError(t, err)
	assert.Empty(t, x.Folders())
	assert.Equal(t, []string{models.FolderAll}, groupNames(x.View("")))
}

func TestFolderDerivation_NewFolderAppearsImplicitly(t *testing.T) {
	x := NewIndex()
	x.Add(doc("a", "a.pdf", strPtr("Witnesses")))
	x.Add(doc("b", "b.pdf", strPtr("Autopsy")))
	x.Add(doc("c", "c.pdf", nil))

	assert.Equal(t, []string{"Autopsy", "Witnesses"}, x.Folders())
	assert.Equal(t,
		[]string{models.FolderAll, "Autopsy", "Witnesses", models.FolderUncategorized},
		groupNames(x.View("")))
}

func TestNormalizeFolder_VirtualLabelsNeverStored(t *testing.T) {
	x := NewIndex()
	stored := x.Add(doc("a", "a.pdf", strPtr("  Uncategorized ")))
	assert.Nil(t, stored.Folder)
	stored = x.Add(doc("b", "b.pdf", strPtr("   ")))
	assert.Nil(t, stored.Folder)
	stored = x.Add(doc("c", "c.pdf", strPtr(" Case1 ")))
	require.NotNil(t, stored.Folder)
	assert.Equal(t, "Case1", *stored.Folder)
	assert.Equal(t, models.FolderUncategorized, x.All()[0].FolderLabel())
	assert.Equal(t, []string{"Case1"}, x.Folders())
}

func TestSearch(t *testing.T) {
	x := NewIndex()
	x.Add(doc("a", "Bank-Statement.pdf", strPtr("Finance")))
	x.Add(doc("b", "statement_witness.docx", nil))
	x.Add(doc("c", "map.png", strPtr("Finance")))

	assert.Len(t, x.Search("STATEMENT", ""), 2)
	assert.Len(t, x.Search("statement", "Finance"), 1)
	assert.Len(t, x.Search("", models.FolderUncategorized), 1)
	assert.Len(t, x.Search("", models.FolderAll), 3)
	assert.Empty(t, x.Search("invoice", ""))
}

func TestView_QueryKeepsFolderList(t *testing.T) {
	x := NewIndex()
	x.Add(doc("a", "a.pdf", strPtr("Case1")))
	x.Add(doc("b", "b.pdf", strPtr("Case2")))

	v := x.View("a.pdf")
	assert.Equal(t, []string{"Case1", "Case2"}, v.Folders)
	require.Len(t, v.All, 1)
	assert.Equal(t, "a", v.All[0].ID)
	assert.Len(t, v.Groups, 3)
	assert.Empty(t, v.Groups[2].Documents)
}

func TestRecordDownloadAndNotFound(t *testing.T) {
	x := NewIndex()
	x.Add(doc("a", "a.pdf", nil))

	d, err := x.RecordDownload("a")
	require.NoError(t, err)
	assert.Equal(t, 1, d.DownloadCount)

	_, err = x.RecordDownload("zzz")
	assert.True(t, apperr.IsNotFound(err))
	_, err = x.Remove("zzz")
	assert.True(t, apperr.IsNotFound(err))
	_, err = x.Get("zzz")
	assert.True(t, apperr.IsNotFound(err))
}

func TestReturnedDocumentsAreCopies(t *testing.T) {
	x := NewIndex()
	x.Add(doc("a", "a.pdf", strPtr("Case1")))

	got, err := x.Get("a")
	require.NoError(t, err)
	*got.Folder = "Tampered"
	assert.Equal(t, []string{"Case1"}, x.Folders())
}

func TestView_EmptyListsEncodeAsArrays(t *testing.T) {
	x := NewIndex()
	x.Add(doc("a", "loose.pdf", nil))

	raw, err := json.Marshal(x.View(""))
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.JSONEq(t, `[]`, string(decoded["folders"]))
	assert.Equal(t, []string{}, x.Folders())
}
