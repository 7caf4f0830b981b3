package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/models"
)

func TestStruct_ReportsJSONFieldName(t *testing.T) {
	err := Struct(models.CreateEvidenceRequest{Title: "Ledger", AddedBy: "u1", Type: "spreadsheet"})
	require.Error(t, err)

	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "type", verr.Field)
	assert.Contains(t, verr.Reason, "one of")
}

func TestStruct_RejectsNegativeSize(t *testing.T) {
	err := Struct(models.UploadDocumentRequest{
		Name: "a.pdf", MimeCategory: "document", SizeBytes: -1, UploadedBy: "u1",
	})
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "sizeBytes", verr.Field)
}

func TestStruct_Valid(t *testing.T) {
	url := "https://example.org/report"
	err := Struct(models.CreateEvidenceRequest{
		Title: "Report", Type: "link", AddedBy: "u1", SourceURL: &url,
	})
	assert.NoError(t, err)
}

func TestStruct_BadURL(t *testing.T) {
	url := "not a url"
	err := Struct(models.CreateEvidenceRequest{Title: "Report", Type: "link", AddedBy: "u1", SourceURL: &url})
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "sourceUrl", verr.Field)
}

func TestRequired(t *testing.T) {
	assert.NoError(t, Required("content", "hello"))
	err := Required("content", "   \n\t")
	assert.True(t, apperr.IsValidation(err))
	assert.Contains(t, err.Error(), "content")
}

func TestStruct_EnumTags(t *testing.T) {
	err := Struct(models.UploadDocumentRequest{Name: "a.bin", MimeCategory: "binary", UploadedBy: "u1"})
	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "mimeCategory", verr.Field)
	assert.Equal(t, "is not a known mime category", verr.Reason)

	owner := models.AddMemberRequest{ID: "u1", DisplayName: "Ana", Role: "owner"}
	err = Struct(models.CreateWorkspaceRequest{Name: "Case", Visibility: "secret", Owner: owner})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "visibility", verr.Field)

	assert.NoError(t, Struct(models.CreateWorkspaceRequest{Name: "Case", Priority: "high", Visibility: "public", Owner: owner}))
}
