// Package constants defines application-wide constant values
package constants

import (
	"os"
	"time"
)

// HTTP Server Configuration
const (
	// DefaultPort is the default server port
	DefaultPort = "5000"

	// HTTPReadTimeout is the maximum duration for reading the entire request
	HTTPReadTimeout = 10 * time.Minute

	// HTTPWriteTimeout is the maximum duration before timing out writes of the response
	HTTPWriteTimeout = 20 * time.Minute

	// HTTPIdleTimeout is the maximum amount of time to wait for the next request
	HTTPIdleTimeout = 180 * time.Second

	// ShutdownTimeout is the graceful shutdown timeout
	ShutdownTimeout = 30 * time.Second
)

// Request Size Limits
const (
	// MaxJSONRequestSize is the maximum size for JSON request bodies
	MaxJSONRequestSize = 1 * 1024 * 1024 // 1 MB

	// MultipartMemoryLimit is the maximum memory used for multipart form parsing
	MultipartMemoryLimit = 32 << 20 // 32 MB

	// UploadSizeBuffer is extra buffer added to MaxFileSize for upload handling
	UploadSizeBuffer = 1 * 1024 * 1024 // 1 MB
)

// File Cleanup Configuration
const (
	// FileCleanupInitialDelay is the delay before the first cleanup run
	FileCleanupInitialDelay = 5 * time.Minute

	// FileCleanupInterval is the interval between cleanup runs
	FileCleanupInterval = 1 * time.Hour

	// FileMaxAge is the maximum age of stray scratch files before the
	// periodic sweep removes them. Per-request cleanup normally deletes
	// everything as soon as the response is sent; this is the backstop.
	FileMaxAge = 6 * time.Hour
)

// External Tool Configuration
const (
	// ToolProbeTimeout bounds availability probes such as `yt-dlp --version`
	ToolProbeTimeout = 10 * time.Second

	// DefaultMediaTimeoutSec bounds a single ffmpeg or yt-dlp invocation
	DefaultMediaTimeoutSec = 600

	// DefaultDocumentTimeoutSec bounds a LibreOffice conversion
	DefaultDocumentTimeoutSec = 30

	// ExtendedDocumentTimeout applies to the higher-risk docx to pptx pair
	ExtendedDocumentTimeout = 45 * time.Second

	// PlaylistInfoTimeout bounds a yt-dlp metadata lookup
	PlaylistInfoTimeout = 60 * time.Second
)

// File System Configuration
const (
	// DirectoryPermissions is the default permission mode for created directories
	DirectoryPermissions os.FileMode = 0755

	// MaxFilenameLength is the maximum length for sanitized filenames
	MaxFilenameLength = 100
)

// Default Configuration Values
const (
	// DefaultMaxFileSizeMB is the default maximum file size in megabytes
	DefaultMaxFileSizeMB = 500

	// DefaultMaxImageFiles is the default per-request image file ceiling
	DefaultMaxImageFiles = 20

	// DefaultMaxDocumentFiles is the default per-request document file ceiling
	DefaultMaxDocumentFiles = 10

	// DefaultUploadsDir is the default directory for uploaded files
	DefaultUploadsDir = "uploads"

	// DefaultDownloadsDir is the default directory for converted outputs
	DefaultDownloadsDir = "downloads"

	// DefaultTempDir is the default scratch directory for intermediates
	DefaultTempDir = "temp"

	// DefaultVideoQuality is used when a media request omits the quality field
	DefaultVideoQuality = "high"

	// DefaultImageQuality is used when an image request omits the quality field
	DefaultImageQuality = 90

	// DefaultResolution is used when an mp4 request omits the resolution field
	DefaultResolution = "720p"
)
