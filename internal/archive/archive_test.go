package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniconv/omniconv/internal/models"
)

func TestCreateZip(t *testing.T) {
	dir := t.TempDir()

	contents := map[string]string{
		"first.pdf":  "pdf bytes",
		"second.txt": "plain text",
	}
	var outputs []models.ConvertedOutput
	for name, data := range contents {
		path := filepath.Join(dir, "raw-"+name)
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
		outputs = append(outputs, models.ConvertedOutput{Path: path, DisplayName: name})
	}

	zipPath := filepath.Join(dir, "bundle.zip")
	require.NoError(t, CreateZip(outputs, zipPath))

	reader, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer reader.Close()

	require.Len(t, reader.File, 2)
	for _, entry := range reader.File {
		expected, ok := contents[entry.Name]
		require.True(t, ok, "unexpected entry %s", entry.Name)

		rc, err := entry.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, expected, string(data))
	}
}

func TestCreateZip_MissingSource(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "bundle.zip")

	err := CreateZip([]models.ConvertedOutput{
		{Path: filepath.Join(dir, "ghost.pdf"), DisplayName: "ghost.pdf"},
	}, zipPath)
	require.Error(t, err)

	_, statErr := os.Stat(zipPath)
	assert.True(t, os.IsNotExist(statErr), "partial archive should be removed on failure")
}

func TestCreateZip_EmptyList(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "empty.zip")
	assert.Error(t, CreateZip(nil, zipPath), "archiving nothing is a programming error")
}
