package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected Domain
	}{
		{"JPEG image", "photo.jpg", DomainImage},
		{"Uppercase PNG", "SCAN.PNG", DomainImage},
		{"HEIC image", "IMG_0001.heic", DomainImage},
		{"Word document", "report.docx", DomainDocument},
		{"PDF document", "manual.pdf", DomainDocument},
		{"Plain text", "notes.txt", DomainDocument},
		{"Video file", "clip.mp4", DomainOther},
		{"No extension", "README", DomainOther},
		{"Empty name", "", DomainOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.filename))
		})
	}
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("picture.webp"))
	assert.True(t, IsImageFile("archive/photo.JPEG"))
	assert.False(t, IsImageFile("document.docx"))
	assert.False(t, IsImageFile("movie.mp4"))
}

func TestIsDocumentFile(t *testing.T) {
	assert.True(t, isDocumentFile("slides.pptx"))
	assert.True(t, isDocumentFile("data.xlsx"))
	assert.False(t, isDocumentFile("photo.png"))
}

func TestIsSupportedDocumentTarget(t *testing.T) {
	for _, ext := range []string{".pdf", ".docx", ".pptx", ".xlsx", ".odt", ".txt", ".PDF"} {
		assert.True(t, IsSupportedDocumentTarget(ext), ext)
	}
	for _, ext := range []string{".doc", ".rtf", ".html", "pdf", ""} {
		assert.False(t, IsSupportedDocumentTarget(ext), ext)
	}
}

func TestIsSupportedImageOutput(t *testing.T) {
	for _, format := range []string{"jpeg", "jpg", "png", "webp", "avif", "tiff", "bmp", "gif", "PNG"} {
		assert.True(t, IsSupportedImageOutput(format), format)
	}
	for _, format := range []string{"svg", "ico", "heic", "", "exe"} {
		assert.False(t, IsSupportedImageOutput(format), format)
	}
}

func TestIsSupportedMediaOutput(t *testing.T) {
	assert.True(t, IsSupportedMediaOutput("mp3"))
	assert.True(t, IsSupportedMediaOutput("MP4"))
	assert.False(t, IsSupportedMediaOutput("avi"))
	assert.False(t, IsSupportedMediaOutput(""))
}

func TestContentType(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"song.mp3", "audio/mpeg"},
		{"clip.mp4", "video/mp4"},
		{"photo.jpg", "image/jpeg"},
		{"scan.tiff", "image/tiff"},
		{"report.pdf", "application/pdf"},
		{"bundle.zip", "application/zip"},
		{"letter.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"unknown.xyz", "application/octet-stream"},
		{"noextension", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContentType(tt.filename))
		})
	}
}
