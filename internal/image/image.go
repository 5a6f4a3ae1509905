// Package image converts raster images between formats using libvips, with
// ffmpeg assisting for GIF output and a pure-Go encoder for BMP.
package image

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"

	"github.com/omniconv/omniconv/internal/constants"
	"github.com/omniconv/omniconv/internal/filestore"
	"github.com/omniconv/omniconv/internal/models"
	"github.com/omniconv/omniconv/internal/runner"
)

var baseNameSanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Service converts uploaded images.
type Service struct {
	config models.Config
	runner *runner.Runner
}

// NewService creates an image conversion service.
func NewService(config models.Config, r *runner.Runner) *Service {
	return &Service{config: config, runner: r}
}

// Convert transcodes one uploaded image into workDir according to opts and
// returns the produced file. The source format is detected by libvips, not
// trusted from the filename.
func (s *Service) Convert(ctx context.Context, jobID string, file models.UploadedFile, opts models.ImageOptions, workDir string) (models.ConvertedOutput, error) {
	targetFormat := strings.ToLower(opts.Format)

	ref, err := vips.LoadImageFromFile(file.Path, vips.NewImportParams())
	if err != nil {
		return models.ConvertedOutput{}, &models.ConversionError{
			Tool:    "vips",
			Message: fmt.Sprintf("failed to decode %q: %v", file.OriginalName, err),
			Err:     err,
		}
	}
	defer ref.Close()

	sourceFormat := vips.ImageTypes[ref.Format()]
	log.Printf("INFO [job %s]: image %s: %dx%d %s -> %s (quality %d)",
		jobID, file.OriginalName, ref.Width(), ref.Height(), sourceFormat, targetFormat, opts.Quality)

	if opts.Resize && (opts.Width > 0 || opts.Height > 0) {
		w, h := targetDimensions(ref.Width(), ref.Height(), opts.Width, opts.Height, opts.MaintainAspect)
		if w != ref.Width() || h != ref.Height() {
			if err := ref.ThumbnailWithSize(w, h, vips.InterestingNone, vips.SizeForce); err != nil {
				return models.ConvertedOutput{}, &models.ConversionError{
					Tool:    "vips",
					Message: fmt.Sprintf("failed to resize %q to %dx%d: %v", file.OriginalName, w, h, err),
					Err:     err,
				}
			}
			log.Printf("INFO [job %s]: resized to %dx%d (maintain aspect: %t)", jobID, w, h, opts.MaintainAspect)
		}
	}

	base := baseNameSanitizeRegex.ReplaceAllString(strings.TrimSuffix(file.OriginalName, filepath.Ext(file.OriginalName)), "_")
	if base == "" {
		base = "image"
	}
	outPath := filestore.UniquePath(workDir, base+"."+targetFormat)
	displayName := filepath.Base(outPath)

	if targetFormat == "gif" && sourceFormat != "gif" {
		if err := s.exportGIFViaTranscoder(ctx, jobID, ref, outPath); err != nil {
			return models.ConvertedOutput{}, err
		}
	} else {
		encoded, err := export(ref, targetFormat, opts.Quality)
		if err != nil {
			return models.ConvertedOutput{}, &models.ConversionError{
				Tool:    "vips",
				Message: fmt.Sprintf("failed to encode %q as %s: %v", file.OriginalName, targetFormat, err),
				Err:     err,
			}
		}
		if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
			return models.ConvertedOutput{}, fmt.Errorf("failed to write converted image %s: %w", displayName, err)
		}
	}

	log.Printf("INFO [job %s]: image conversion complete: %s", jobID, displayName)
	return models.ConvertedOutput{Path: outPath, DisplayName: displayName}, nil
}

// targetDimensions applies the resize request to the source dimensions.
// Neither axis is ever enlarged past the source. With maintainAspect the
// image is scaled to fit inside the requested box; without it each requested
// axis is taken literally (missing axes keep the source value).
func targetDimensions(srcW, srcH, reqW, reqH int, maintainAspect bool) (int, int) {
	if maintainAspect {
		scale := 1.0
		if reqW > 0 {
			if s := float64(reqW) / float64(srcW); s < scale {
				scale = s
			}
		}
		if reqH > 0 {
			if s := float64(reqH) / float64(srcH); s < scale {
				scale = s
			}
		}
		w := int(float64(srcW)*scale + 0.5)
		h := int(float64(srcH)*scale + 0.5)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		return w, h
	}

	w, h := srcW, srcH
	if reqW > 0 && reqW < srcW {
		w = reqW
	}
	if reqH > 0 && reqH < srcH {
		h = reqH
	}
	return w, h
}

// export encodes the image with format-specific parameters.
func export(ref *vips.ImageRef, format string, quality int) ([]byte, error) {
	switch format {
	case "jpg", "jpeg":
		params := vips.NewJpegExportParams()
		params.Quality = quality
		params.OptimizeCoding = true
		data, _, err := ref.ExportJpeg(params)
		return data, err

	case "png":
		params := vips.NewPngExportParams()
		params.Palette = quality < 80
		if quality == 100 {
			params.Compression = 0
		} else {
			params.Compression = 6
		}
		data, _, err := ref.ExportPng(params)
		return data, err

	case "webp":
		params := vips.NewWebpExportParams()
		params.Quality = quality
		params.ReductionEffort = 4
		data, _, err := ref.ExportWebp(params)
		return data, err

	case "avif":
		params := vips.NewAvifExportParams()
		params.Quality = quality
		data, _, err := ref.ExportAvif(params)
		return data, err

	case "tiff", "tif":
		params := vips.NewTiffExportParams()
		params.Quality = quality
		data, _, err := ref.ExportTiff(params)
		return data, err

	case "bmp":
		return exportBMP(ref)

	case "gif":
		// GIF source passing through unchanged apart from resize.
		data, _, err := ref.ExportGIF(vips.NewGifExportParams())
		return data, err

	default:
		params := vips.NewJpegExportParams()
		params.Quality = quality
		data, _, err := ref.ExportJpeg(params)
		return data, err
	}
}

// exportBMP bridges through PNG since libvips has no BMP writer.
func exportBMP(ref *vips.ImageRef) ([]byte, error) {
	pngData, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode intermediate PNG: %w", err)
	}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode BMP: %w", err)
	}
	return buf.Bytes(), nil
}

// exportGIFViaTranscoder writes the (possibly resized) image to an
// intermediate PNG and lets ffmpeg produce the GIF, which handles palette
// generation better than a direct encode. The intermediate is removed after
// a successful conversion.
func (s *Service) exportGIFViaTranscoder(ctx context.Context, jobID string, ref *vips.ImageRef, outPath string) error {
	pngData, _, err := ref.ExportPng(vips.NewPngExportParams())
	if err != nil {
		return &models.ConversionError{Tool: "vips", Message: fmt.Sprintf("failed to encode intermediate PNG: %v", err), Err: err}
	}

	pngPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".png"
	if err := os.WriteFile(pngPath, pngData, 0o644); err != nil {
		return fmt.Errorf("failed to write intermediate PNG: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.config.MediaTimeout)
	defer cancel()
	if _, err := s.runner.Run(runCtx, jobID, s.config.FFmpegPath, "-i", pngPath, "-f", "gif", "-y", outPath); err != nil {
		return err
	}

	if err := os.Remove(pngPath); err != nil {
		log.Printf("WARN [job %s]: failed to remove intermediate PNG %s: %v", jobID, pngPath, err)
	}
	return nil
}

// CheckVips reports whether libvips is usable in this process.
func CheckVips() bool {
	return vips.Version != ""
}

// CheckTranscoder reports whether the ffmpeg binary is callable, which GIF
// output depends on.
func (s *Service) CheckTranscoder(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, constants.ToolProbeTimeout)
	defer cancel()
	return s.runner.Probe(probeCtx, s.config.FFmpegPath, "-version")
}
