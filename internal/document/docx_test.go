package document

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readDocxPart(t *testing.T, docx []byte, name string) []byte {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	require.NoError(t, err)
	for _, entry := range reader.File {
		if entry.Name == name {
			rc, err := entry.Open()
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			return data
		}
	}
	t.Fatalf("docx part %s not found", name)
	return nil
}

func TestBuildImageDocx(t *testing.T) {
	imageData := []byte{0xff, 0xd8, 0xff, 0xe0, 1, 2, 3, 4}
	docx, err := buildImageDocx("holiday.jpg", imageData)
	require.NoError(t, err)

	t.Run("package parts present", func(t *testing.T) {
		reader, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
		require.NoError(t, err)

		names := make([]string, len(reader.File))
		for i, f := range reader.File {
			names[i] = f.Name
		}
		assert.Contains(t, names, "[Content_Types].xml")
		assert.Contains(t, names, "_rels/.rels")
		assert.Contains(t, names, "word/_rels/document.xml.rels")
		assert.Contains(t, names, "word/document.xml")
		assert.Contains(t, names, "word/media/image1.jpg")
	})

	t.Run("image bytes stored verbatim", func(t *testing.T) {
		assert.Equal(t, imageData, readDocxPart(t, docx, "word/media/image1.jpg"))
	})

	t.Run("document references the image relationship", func(t *testing.T) {
		doc := string(readDocxPart(t, docx, "word/document.xml"))
		assert.Contains(t, doc, `r:embed="rIdImg1"`)
		assert.Contains(t, doc, "holiday.jpg")
	})

	t.Run("content types declare the image extension", func(t *testing.T) {
		types := string(readDocxPart(t, docx, "[Content_Types].xml"))
		assert.Contains(t, types, `Extension="jpg"`)
		assert.Contains(t, types, "image/jpeg")
	})
}

func TestBuildImageDocx_UnknownExtensionDefaultsToPng(t *testing.T) {
	docx, err := buildImageDocx("mystery.xyz", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, readDocxPart(t, docx, "word/media/image1.png"))
}

func TestXMLEscape(t *testing.T) {
	assert.Equal(t, "a&amp;b &lt;tag&gt; &quot;q&quot; &apos;s&apos;", xmlEscape(`a&b <tag> "q" 's'`))
	assert.Equal(t, "plain.png", xmlEscape("plain.png"))
}
