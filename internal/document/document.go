// Package document converts office documents through a headless LibreOffice
// process and builds DOCX artifacts for image sources.
package document

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/omniconv/omniconv/internal/constants"
	"github.com/omniconv/omniconv/internal/filestore"
	"github.com/omniconv/omniconv/internal/formats"
	"github.com/omniconv/omniconv/internal/models"
	"github.com/omniconv/omniconv/internal/runner"
)

var baseNameSanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Service converts a single uploaded file to a target document extension.
type Service struct {
	config models.Config
	runner *runner.Runner
}

// NewService creates a document conversion service.
func NewService(config models.Config, r *runner.Runner) *Service {
	return &Service{config: config, runner: r}
}

// Convert produces one output file in workDir for the given upload and target
// extension (with leading dot). Known-unreliable pairs and attempted-but-
// failed conversions yield placeholder text documents instead of errors, so a
// batch can degrade per file rather than hard-fail; see the handler for the
// batch policy.
func (s *Service) Convert(ctx context.Context, jobID string, file models.UploadedFile, targetExt, workDir string) (models.ConvertedOutput, error) {
	targetExt = strings.ToLower(targetExt)

	// An unreadable upload is a per-file failure, not a degraded artifact.
	input, err := os.ReadFile(file.Path)
	if err != nil {
		return models.ConvertedOutput{}, fmt.Errorf("failed to read uploaded file %q: %w", file.OriginalName, err)
	}

	var (
		converted []byte
		outExt    = targetExt
	)
	if formats.IsImageFile(file.OriginalName) {
		converted, outExt, err = s.convertImageSource(ctx, jobID, file, input, targetExt, workDir)
	} else {
		converted, outExt, err = s.convertDocumentSource(ctx, jobID, file, targetExt, workDir)
	}
	if err != nil {
		return models.ConvertedOutput{}, err
	}

	base := baseNameSanitizeRegex.ReplaceAllString(strings.TrimSuffix(file.OriginalName, filepath.Ext(file.OriginalName)), "_")
	if base == "" {
		base = "document"
	}
	outPath := filestore.UniquePath(workDir, fmt.Sprintf("%s_converted%s", base, outExt))
	displayName := filepath.Base(outPath)

	if err := os.WriteFile(outPath, converted, 0o644); err != nil {
		return models.ConvertedOutput{}, fmt.Errorf("failed to write converted file %s: %w", displayName, err)
	}

	log.Printf("INFO [job %s]: document conversion complete: %s", jobID, displayName)
	return models.ConvertedOutput{Path: outPath, DisplayName: displayName}, nil
}

// CheckSuite reports whether the LibreOffice binary is callable.
func (s *Service) CheckSuite(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, constants.ToolProbeTimeout)
	defer cancel()
	return s.runner.Probe(probeCtx, s.config.SofficePath, "--version")
}

// convertImageSource handles image uploads. DOCX embeds the image; PDF
// delegates to LibreOffice and fails loudly when that does not work; other
// targets get an informational text placeholder since those formats cannot
// embed images here.
func (s *Service) convertImageSource(ctx context.Context, jobID string, file models.UploadedFile, input []byte, targetExt, workDir string) ([]byte, string, error) {
	switch targetExt {
	case ".docx":
		docx, err := buildImageDocx(file.OriginalName, input)
		if err != nil {
			return nil, "", &models.ConversionError{Tool: "docx-builder", Message: fmt.Sprintf("failed to build DOCX for %q: %v", file.OriginalName, err), Err: err}
		}
		return docx, ".docx", nil

	case ".pdf":
		converted, err := s.runSuite(ctx, jobID, file, ".pdf", workDir, s.config.DocumentTimeout)
		if err != nil {
			return nil, "", &models.ConversionError{
				Tool:    "libreoffice",
				Message: fmt.Sprintf("PDF conversion of %q failed; convert the image to DOCX instead, which embeds images directly", file.OriginalName),
				Err:     err,
			}
		}
		return converted, ".pdf", nil

	default:
		// xlsx, odt, txt: informational placeholder, always plain text.
		return imageInfoPlaceholder(file), ".txt", nil
	}
}

// convertDocumentSource handles document uploads through LibreOffice with the
// pre-declared blocklist and graceful degradation to placeholders.
func (s *Service) convertDocumentSource(ctx context.Context, jobID string, file models.UploadedFile, targetExt, workDir string) ([]byte, string, error) {
	sourceExt := strings.ToLower(filepath.Ext(file.OriginalName))

	if pair := findBlockedPair(sourceExt, targetExt); pair != nil {
		log.Printf("WARN [job %s]: blocked conversion %s -> %s", jobID, sourceExt, targetExt)
		return blockedPlaceholder(file, pair), ".txt", nil
	}

	timeout := s.config.DocumentTimeout
	if sourceExt == ".docx" && targetExt == ".pptx" {
		// Known slow pair; give the suite longer before giving up.
		timeout = constants.ExtendedDocumentTimeout
	}

	converted, err := s.runSuite(ctx, jobID, file, targetExt, workDir, timeout)
	if err != nil {
		log.Printf("WARN [job %s]: conversion %s -> %s failed, substituting placeholder: %v", jobID, sourceExt, targetExt, err)
		return failurePlaceholder(file, sourceExt, targetExt, err), ".txt", nil
	}
	return converted, targetExt, nil
}

// runSuite invokes soffice --headless --convert-to into a scratch directory
// under workDir and reads back the produced file. A per-invocation
// UserInstallation directory avoids profile locking between concurrent
// conversions.
func (s *Service) runSuite(ctx context.Context, jobID string, file models.UploadedFile, targetExt, workDir string, timeout time.Duration) ([]byte, error) {
	outDir, err := filestore.NewWorkDir(workDir)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	absOutDir, err := filepath.Abs(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	absInput, err := filepath.Abs(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input path: %w", err)
	}

	userDir := filepath.Join(absOutDir, "soffice_user")
	if err := filestore.EnsureDirectoryExists(userDir); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err = s.runner.Run(runCtx, jobID, s.config.SofficePath,
		"-env:UserInstallation=file://"+userDir,
		"--headless",
		"--convert-to", strings.TrimPrefix(targetExt, "."),
		"--outdir", absOutDir,
		absInput,
	)
	if err != nil {
		return nil, err
	}

	// soffice names the output after the input; locate it by extension since
	// the scratch directory holds nothing else.
	entries, err := os.ReadDir(absOutDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list suite output directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), targetExt) {
			return os.ReadFile(filepath.Join(absOutDir, entry.Name()))
		}
	}
	return nil, &models.NoOutputError{Tool: "libreoffice", Dir: absOutDir}
}
