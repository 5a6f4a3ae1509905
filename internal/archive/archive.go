// Package archive builds ZIP files bundling multiple converted outputs into a
// single response body.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/omniconv/omniconv/internal/models"
)

// CreateZip writes the given outputs into a ZIP at destPath. Each entry is
// stored under its DisplayName (falling back to the file's base name) using
// Deflate compression. The file is flushed and closed before returning, so a
// nil error means the archive is complete on disk.
func CreateZip(outputs []models.ConvertedOutput, destPath string) error {
	if len(outputs) == 0 {
		return fmt.Errorf("no files to archive")
	}

	zipFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", destPath, err)
	}

	writer := zip.NewWriter(zipFile)
	for _, output := range outputs {
		if err := addEntry(writer, output); err != nil {
			writer.Close()
			zipFile.Close()
			os.Remove(destPath)
			return err
		}
	}

	if err := writer.Close(); err != nil {
		zipFile.Close()
		os.Remove(destPath)
		return fmt.Errorf("failed to finalize archive %s: %w", destPath, err)
	}
	if err := zipFile.Close(); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("failed to flush archive %s: %w", destPath, err)
	}
	return nil
}

func addEntry(writer *zip.Writer, output models.ConvertedOutput) error {
	name := output.DisplayName
	if name == "" {
		name = filepath.Base(output.Path)
	}

	src, err := os.Open(output.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s for archiving: %w", output.Path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", output.Path, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to build archive header for %s: %w", output.Path, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	entry, err := writer.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", name, err)
	}
	if _, err := io.Copy(entry, src); err != nil {
		return fmt.Errorf("failed to write archive entry %s: %w", name, err)
	}
	return nil
}
