// Package formats classifies filenames by extension and holds the
// supported-format allow-lists and MIME mappings.
package formats

import (
	"path/filepath"
	"strings"
)

// Domain identifies which conversion service handles a file.
type Domain int

const (
	DomainOther Domain = iota
	DomainImage
	DomainDocument
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
	".bmp": true, ".tiff": true, ".tif": true, ".svg": true, ".ico": true,
	".avif": true, ".heic": true, ".heif": true,
}

var documentExtensions = map[string]bool{
	".pdf": true, ".docx": true, ".pptx": true, ".xlsx": true, ".odt": true, ".txt": true,
}

// Output formats the image service can encode to.
var imageOutputFormats = map[string]bool{
	"jpeg": true, "jpg": true, "png": true, "webp": true, "avif": true,
	"tiff": true, "tif": true, "bmp": true, "gif": true,
}

// Output formats the media service can produce.
var mediaOutputFormats = map[string]bool{
	"mp3": true, "mp4": true,
}

var mimeTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".m4a":  "audio/mp4",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".avif": "image/avif",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".bmp":  "image/bmp",
	".ico":  "image/x-icon",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".odt":  "application/vnd.oasis.opendocument.text",
	".txt":  "text/plain",
	".zip":  "application/zip",
}

// Classify maps a filename's extension to its conversion domain.
func Classify(filename string) Domain {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case imageExtensions[ext]:
		return DomainImage
	case documentExtensions[ext]:
		return DomainDocument
	default:
		return DomainOther
	}
}

// IsImageFile reports whether the filename carries a supported image extension.
func IsImageFile(filename string) bool {
	return Classify(filename) == DomainImage
}

// isDocumentFile reports whether the filename carries a supported document extension.
func isDocumentFile(filename string) bool {
	return Classify(filename) == DomainDocument
}

// IsSupportedDocumentTarget validates a document target extension (with leading dot).
func IsSupportedDocumentTarget(ext string) bool {
	return documentExtensions[strings.ToLower(ext)]
}

// IsSupportedImageOutput validates an image output format name (no dot).
func IsSupportedImageOutput(format string) bool {
	return imageOutputFormats[strings.ToLower(format)]
}

// IsSupportedMediaOutput validates a media output format name (no dot).
func IsSupportedMediaOutput(format string) bool {
	return mediaOutputFormats[strings.ToLower(format)]
}

// SupportedDocumentTargets lists the document target extensions for error messages.
func SupportedDocumentTargets() []string {
	return []string{".pdf", ".docx", ".pptx", ".xlsx", ".odt", ".txt"}
}

// ContentType returns the MIME type for a filename based on its extension,
// falling back to application/octet-stream.
func ContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if mime, ok := mimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
