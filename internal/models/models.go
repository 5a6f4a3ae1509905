// Package models contains data structures used across the application
package models

import "time"

// Config holds application configuration settings.
type Config struct {
	Port             string
	Env              string
	CORSOrigin       string
	MaxFileSize      int64
	MaxImageFiles    int
	MaxDocumentFiles int
	UploadsDir       string
	DownloadsDir     string
	TempDir          string
	DefaultQuality   string
	DefaultImgQual   int
	MediaTimeout     time.Duration
	DocumentTimeout  time.Duration
	FFmpegPath       string
	YtDlpPath        string
	SofficePath      string
}

// IsDevelopment reports whether the server runs in development mode.
// Development responses include error details; production responses do not.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ErrorResponse is the standard JSON error body.
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	IsPlaylist bool   `json:"isPlaylist,omitempty"`
}

// UploadedFile describes a single multipart upload saved to scratch space.
// It is owned exclusively by the request that created it.
type UploadedFile struct {
	OriginalName string
	MimeType     string
	Size         int64
	Path         string
}

// ConvertedOutput is one artifact produced by a conversion service: the
// on-disk path plus the display name used for downloads and archive entries.
type ConvertedOutput struct {
	Path        string
	DisplayName string
}

// FailedFile records a per-file failure inside a document batch.
type FailedFile struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// BatchSummary is serialized into the X-Conversion-Info response header so
// binary bodies can carry per-file success/failure counts.
type BatchSummary struct {
	Success   bool         `json:"success"`
	Converted int          `json:"converted"`
	Failed    int          `json:"failed"`
	Failures  []FailedFile `json:"failures,omitempty"`
}

// MediaOptions carries the parameters of a media conversion request.
type MediaOptions struct {
	Format           string // "mp3" or "mp4"
	Resolution       string // "720p" etc., mp4 only
	Quality          string // "high", "medium", "low"
	DownloadPlaylist bool
}

// ImageOptions carries the parameters of an image conversion request.
type ImageOptions struct {
	Format         string
	Quality        int // 0-100
	Resize         bool
	Width          int
	Height         int
	MaintainAspect bool
}

// PlaylistVideo is one entry of a playlist-info response.
type PlaylistVideo struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration,omitempty"`
	Uploader string  `json:"uploader,omitempty"`
}

// PlaylistInfo is the response of the playlist-info endpoint.
type PlaylistInfo struct {
	IsPlaylist bool            `json:"isPlaylist"`
	VideoCount int             `json:"videoCount"`
	Title      string          `json:"title"`
	Duration   float64         `json:"duration,omitempty"`
	Uploader   string          `json:"uploader,omitempty"`
	Thumbnail  string          `json:"thumbnail,omitempty"`
	Videos     []PlaylistVideo `json:"videos,omitempty"`
}
