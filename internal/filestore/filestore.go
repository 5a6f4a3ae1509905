// Package filestore handles file storage and management operations
package filestore

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/omniconv/omniconv/internal/constants"
	"github.com/omniconv/omniconv/internal/metrics"
)

var (
	filenameSanitizeRegex   = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
	multipleUnderscoreRegex = regexp.MustCompile(`_+`)
)

// EnsureDirectoryExists ensures the specified directory exists
func EnsureDirectoryExists(dirPath string) error {
	if dirPath == "" {
		return fmt.Errorf("empty directory path")
	}
	// Use MkdirAll which is idempotent and creates parent dirs if needed
	if err := os.MkdirAll(dirPath, constants.DirectoryPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// NewWorkDir creates a unique subdirectory of baseDir for a single request.
// External tools write into it, so concurrent requests never share output
// paths and no prefix scanning of a shared directory is needed.
func NewWorkDir(baseDir string) (string, error) {
	dir := filepath.Join(baseDir, uuid.NewString())
	if err := EnsureDirectoryExists(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// UniquePath returns a destination for name inside dir that does not collide
// with an existing entry. Sanitization can collapse distinct names onto the
// same string, so callers writing several outputs into one directory must not
// assume the plain name is free. Collisions get a numeric suffix before the
// extension.
func UniquePath(dir, name string) string {
	candidate := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, ext))
	}
}

// SanitizeFilename sanitizes a filename to be safe for file system operations
func SanitizeFilename(fileName string) string {
	if fileName == "" {
		return fallbackFilename()
	}

	baseName := filepath.Base(fileName)
	sanitized := filenameSanitizeRegex.ReplaceAllString(baseName, "_")
	sanitized = multipleUnderscoreRegex.ReplaceAllString(sanitized, "_")
	sanitized = strings.Trim(sanitized, "._")

	// Limit length
	if len(sanitized) > constants.MaxFilenameLength {
		ext := filepath.Ext(sanitized)
		baseRunes := []rune(strings.TrimSuffix(sanitized, ext))
		maxBaseLen := constants.MaxFilenameLength - len(ext)

		if maxBaseLen < 0 {
			// Extension is longer than max length, truncate the whole string
			sanitizedRunes := []rune(sanitized)
			maxLen := constants.MaxFilenameLength
			if len(sanitizedRunes) < maxLen {
				maxLen = len(sanitizedRunes)
			}
			sanitized = string(sanitizedRunes[:maxLen])
		} else if len(baseRunes) > maxBaseLen {
			// Base name is too long, truncate it and append extension
			sanitized = string(baseRunes[:maxBaseLen]) + ext
		}
	}

	if sanitized == "" || sanitized == "." || sanitized == ".." {
		// Fallback for edge cases where sanitization results in an invalid name
		return fallbackFilename()
	}
	return sanitized
}

func fallbackFilename() string {
	return fmt.Sprintf("sanitized_fallback_%d", time.Now().UnixNano())
}

// CleanupFiles removes every listed path, best effort. Failures are logged
// and never returned; directories are removed recursively. Entries may be
// empty strings, which are skipped.
func CleanupFiles(paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Printf("WARN: Could not stat %s during cleanup: %v", p, err)
			}
			continue
		}
		if info.IsDir() {
			err = os.RemoveAll(p)
		} else {
			err = os.Remove(p)
		}
		if err != nil && !os.IsNotExist(err) {
			log.Printf("WARN: Could not delete %s: %v", p, err)
		} else if err == nil {
			metrics.FilesCleanedTotal.Inc()
		}
	}
}

// CleanupOldFiles removes entries older than maxAge from the specified
// directory, including per-request work directories left behind by crashed
// requests. Returns the number of entries removed.
func CleanupOldFiles(dirPath string, maxAge time.Duration) int {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		if !os.IsNotExist(err) { // Log only if it's not a "directory not found" error
			log.Printf("Error reading directory %s for cleanup: %v", dirPath, err)
		}
		return 0 // Directory doesn't exist or error reading, nothing removed
	}

	now := time.Now()
	removedCount := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			log.Printf("Error getting info for %s in %s during cleanup: %v", entry.Name(), dirPath, err)
			continue
		}

		if now.Sub(info.ModTime()) > maxAge {
			fullPath := filepath.Join(dirPath, entry.Name())
			if entry.IsDir() {
				err = os.RemoveAll(fullPath)
			} else {
				err = os.Remove(fullPath)
			}
			if err != nil && !os.IsNotExist(err) { // Avoid logging errors for files already deleted
				log.Printf("Error removing old entry %s: %v", fullPath, err)
			} else if err == nil {
				removedCount++
			}
		}
	}

	if removedCount > 0 {
		metrics.FilesCleanedTotal.Add(float64(removedCount))
		log.Printf("Removed %d old entries from %s", removedCount, dirPath)
	}
	return removedCount
}
