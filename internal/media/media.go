// Package media converts uploaded audio/video files with ffmpeg and downloads
// remote videos with yt-dlp.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/omniconv/omniconv/internal/constants"
	"github.com/omniconv/omniconv/internal/filestore"
	"github.com/omniconv/omniconv/internal/models"
	"github.com/omniconv/omniconv/internal/runner"
)

// Extensions the downloader is expected to leave behind for a video/audio job.
var downloadExtensions = map[string]bool{
	".mp3": true, ".mp4": true, ".mkv": true, ".webm": true,
}

// Service wraps ffmpeg for uploaded files and yt-dlp for URL downloads.
type Service struct {
	config models.Config
	runner *runner.Runner
}

// NewService creates a media conversion service.
func NewService(config models.Config, r *runner.Runner) *Service {
	return &Service{config: config, runner: r}
}

// ConvertUpload transcodes an uploaded file to mp3 or mp4 with the requested
// quality tier, writing the output into the request's work directory.
func (s *Service) ConvertUpload(ctx context.Context, jobID string, file models.UploadedFile, opts models.MediaOptions, workDir string) (models.ConvertedOutput, error) {
	quality := ResolveQualitySetting(opts.Quality)
	sanitized := filestore.SanitizeFilename(file.OriginalName)
	baseName := strings.TrimSuffix(sanitized, filepath.Ext(sanitized))
	outputPath := filestore.UniquePath(workDir, fmt.Sprintf("%s-converted.%s", baseName, opts.Format))

	var args []string
	switch opts.Format {
	case "mp3":
		args = []string{
			"-i", file.Path,
			"-vn",
			"-af", "volume=1.0",
			"-ar", "44100",
			"-b:a", quality.AudioBitrate,
			"-codec:a", "libmp3lame",
			"-f", "mp3",
			"-y", outputPath,
		}
	case "mp4":
		height := strings.TrimSuffix(opts.Resolution, "p")
		if height == "" {
			height = strings.TrimSuffix(constants.DefaultResolution, "p")
		}
		args = []string{
			"-i", file.Path,
			"-c:v", "libx264",
			"-c:a", "aac",
			"-b:a", "192k",
			// -2 keeps the width divisible by two while preserving aspect
			"-vf", "scale=-2:" + height,
			"-preset", quality.Preset,
			"-crf", quality.CRF,
			"-profile:v", "high",
			"-level", "4.1",
			"-pix_fmt", "yuv420p",
			"-f", "mp4",
			"-y", outputPath,
		}
	default:
		return models.ConvertedOutput{}, models.NewValidationError("unsupported media format %q, expected mp3 or mp4", opts.Format)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.config.MediaTimeout)
	defer cancel()

	if _, err := s.runner.Run(runCtx, jobID, s.config.FFmpegPath, args...); err != nil {
		return models.ConvertedOutput{}, err
	}

	if err := verifyOutput(outputPath); err != nil {
		return models.ConvertedOutput{}, err
	}

	log.Printf("INFO [job %s]: media conversion complete: %s", jobID, outputPath)
	return models.ConvertedOutput{Path: outputPath, DisplayName: filepath.Base(outputPath)}, nil
}

// DownloadURL fetches a video (or playlist, when confirmed) with yt-dlp into
// the request's work directory and returns every produced file. The work
// directory is unique to the request, so output discovery is a plain listing
// rather than a prefix scan of a shared directory.
func (s *Service) DownloadURL(ctx context.Context, jobID, url string, opts models.MediaOptions, workDir string) ([]models.ConvertedOutput, error) {
	if IsPlaylistURL(url) && !opts.DownloadPlaylist {
		return nil, &models.PlaylistConfirmationError{URL: url}
	}

	probeCtx, cancel := context.WithTimeout(ctx, constants.ToolProbeTimeout)
	defer cancel()
	if !s.runner.Probe(probeCtx, s.config.YtDlpPath, "--version") {
		return nil, &models.DependencyUnavailableError{Tool: s.config.YtDlpPath, Err: fmt.Errorf("version probe failed")}
	}

	quality := ResolveQualitySetting(opts.Quality)

	var args []string
	switch opts.Format {
	case "mp3":
		bitrate := strings.TrimSuffix(quality.AudioBitrate, "k")
		args = []string{
			"-x",
			"--audio-format", "mp3",
			"--audio-quality", "0",
			"--postprocessor-args", "ffmpeg:-b:a " + bitrate + "k",
		}
	case "mp4":
		height := strings.TrimSuffix(opts.Resolution, "p")
		if height == "" {
			height = strings.TrimSuffix(constants.DefaultResolution, "p")
		}
		args = []string{
			"-f", formatSelector(height, quality),
			"--merge-output-format", "mp4",
		}
	default:
		return nil, models.NewValidationError("unsupported media format %q, expected mp3 or mp4", opts.Format)
	}

	if opts.DownloadPlaylist {
		args = append(args, "--yes-playlist")
	} else {
		args = append(args, "--no-playlist")
	}
	args = append(args,
		"--restrict-filenames",
		"--no-warnings",
		"--ffmpeg-location", s.config.FFmpegPath,
		"-o", filepath.Join(workDir, "%(title)s.%(ext)s"),
		url,
	)

	runCtx, cancelRun := context.WithTimeout(ctx, s.config.MediaTimeout)
	defer cancelRun()

	if _, err := s.runner.Run(runCtx, jobID, s.config.YtDlpPath, args...); err != nil {
		return nil, translateDownloaderError(err)
	}

	outputs, err := collectDownloads(workDir)
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		return nil, &models.NoOutputError{Tool: s.config.YtDlpPath, Dir: workDir}
	}

	log.Printf("INFO [job %s]: downloaded %d file(s)", jobID, len(outputs))
	return outputs, nil
}

// PlaylistInfo looks up metadata for a URL. Playlists return the entry count
// and the first few video titles; single videos return their own metadata.
func (s *Service) PlaylistInfo(ctx context.Context, url string) (*models.PlaylistInfo, error) {
	runCtx, cancel := context.WithTimeout(ctx, constants.PlaylistInfoTimeout)
	defer cancel()

	result, err := s.runner.Run(runCtx, "playlist-info", s.config.YtDlpPath,
		"-J", "--flat-playlist", "--no-warnings", url)
	if err != nil {
		return nil, &models.ConversionError{Tool: s.config.YtDlpPath, Message: "failed to get playlist information", Err: err}
	}

	var payload struct {
		Type      string  `json:"_type"`
		Title     string  `json:"title"`
		Duration  float64 `json:"duration"`
		Uploader  string  `json:"uploader"`
		Thumbnail string  `json:"thumbnail"`
		Entries   []struct {
			Title    string  `json:"title"`
			Duration float64 `json:"duration"`
			Uploader string  `json:"uploader"`
		} `json:"entries"`
	}
	if err := json.Unmarshal([]byte(result.Stdout), &payload); err != nil {
		return nil, &models.ConversionError{Tool: s.config.YtDlpPath, Message: "failed to parse playlist information", Err: err}
	}

	if payload.Type != "playlist" {
		title := payload.Title
		if title == "" {
			title = "Video"
		}
		return &models.PlaylistInfo{
			IsPlaylist: false,
			VideoCount: 1,
			Title:      title,
			Duration:   payload.Duration,
			Uploader:   payload.Uploader,
			Thumbnail:  payload.Thumbnail,
		}, nil
	}

	info := &models.PlaylistInfo{
		IsPlaylist: true,
		VideoCount: len(payload.Entries),
		Title:      payload.Title,
	}
	if info.Title == "" {
		info.Title = "Unknown Playlist"
	}
	// First five entries give clients enough for a confirmation prompt.
	for i, entry := range payload.Entries {
		if i >= 5 {
			break
		}
		info.Videos = append(info.Videos, models.PlaylistVideo{
			Title:    entry.Title,
			Duration: entry.Duration,
			Uploader: entry.Uploader,
		})
	}
	return info, nil
}

// CheckDownloader reports whether yt-dlp is callable.
func (s *Service) CheckDownloader(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, constants.ToolProbeTimeout)
	defer cancel()
	return s.runner.Probe(probeCtx, s.config.YtDlpPath, "--version")
}

// CheckTranscoder reports whether ffmpeg is callable.
func (s *Service) CheckTranscoder(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, constants.ToolProbeTimeout)
	defer cancel()
	return s.runner.Probe(probeCtx, s.config.FFmpegPath, "-version")
}

// IsPlaylistURL reports whether a URL points at a playlist rather than a
// single video, by the presence of a list query parameter.
func IsPlaylistURL(url string) bool {
	return strings.Contains(url, "playlist?list=") || strings.Contains(url, "&list=")
}

func collectDownloads(workDir string) ([]models.ConvertedOutput, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list download directory %s: %w", workDir, err)
	}

	var outputs []models.ConvertedOutput
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !downloadExtensions[ext] {
			continue
		}
		outputs = append(outputs, models.ConvertedOutput{
			Path:        filepath.Join(workDir, entry.Name()),
			DisplayName: entry.Name(),
		})
	}
	return outputs, nil
}

func verifyOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &models.NoOutputError{Tool: "ffmpeg", Dir: filepath.Dir(path)}
	}
	if info.Size() == 0 {
		return &models.ConversionError{Tool: "ffmpeg", Message: "output file is empty (0 bytes)"}
	}
	return nil
}

// translateDownloaderError maps known yt-dlp error substrings to specific
// user-facing messages; everything else passes through unchanged.
func translateDownloaderError(err error) error {
	convErr, ok := err.(*models.ConversionError)
	if !ok {
		return err
	}
	msg := convErr.Message

	switch {
	case strings.Contains(msg, "Sign in") || strings.Contains(msg, "age"):
		convErr.Message = "This video requires sign-in or is age-restricted."
	case strings.Contains(msg, "private") || strings.Contains(msg, "Private"):
		convErr.Message = "This is a private video and cannot be downloaded."
	case strings.Contains(msg, "not available") || strings.Contains(msg, "Video unavailable"):
		convErr.Message = "This video is not available. It may be deleted, geo-restricted, or require a subscription."
	case strings.Contains(msg, "Requested format is not available"):
		convErr.Message = "Unable to download this video in the requested quality. The site may have changed its formats."
	default:
		convErr.Message = "Download failed: " + msg
	}
	return convErr
}
