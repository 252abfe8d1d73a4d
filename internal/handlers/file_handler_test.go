package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tabeshpress/order-panel/internal/models"
)

func TestNextVersion(t *testing.T) {
	assert.Equal(t, 1, nextVersion(nil), "first upload starts at version 1")
	assert.Equal(t, 2, nextVersion(&models.OrderFile{Version: 1}))
	assert.Equal(t, 8, nextVersion(&models.OrderFile{Version: 7}))
}

func TestExtAllowed(t *testing.T) {
	assert.True(t, extAllowed(models.FileTypeText, ".pdf"))
	assert.True(t, extAllowed(models.FileTypeText, ".docx"))
	assert.False(t, extAllowed(models.FileTypeText, ".png"))

	assert.True(t, extAllowed(models.FileTypeCover, ".psd"))
	assert.False(t, extAllowed(models.FileTypeCover, ".docx"))

	assert.True(t, extAllowed(models.FileTypeDocuments, ".jpg"))
	assert.False(t, extAllowed(models.FileTypeDocuments, ".exe"))

	// unknown file types allow nothing
	assert.False(t, extAllowed(models.FileType("invoice"), ".pdf"))
}
