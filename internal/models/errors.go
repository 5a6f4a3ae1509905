package models

import "fmt"

// ValidationError reports a malformed or incomplete request. Maps to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// DependencyUnavailableError reports that a required external tool could not
// be reached. Maps to 500.
type DependencyUnavailableError struct {
	Tool string
	Err  error
}

func (e *DependencyUnavailableError) Error() string {
	return fmt.Sprintf("required tool %q is not available: %v", e.Tool, e.Err)
}

func (e *DependencyUnavailableError) Unwrap() error { return e.Err }

// PlaylistConfirmationError signals that the requested URL is a playlist and
// the caller has not opted in to a multi-video download. Maps to 400 with
// isPlaylist set so clients can resubmit with the confirmation flag.
type PlaylistConfirmationError struct {
	URL string
}

func (e *PlaylistConfirmationError) Error() string {
	return "URL is a playlist; resubmit with downloadPlaylist=true to download all videos"
}

// ConversionError reports a failed external conversion. The message carries
// the tool's own error text where available. Maps to 500 except for document
// batches, where per-file failures are tolerated.
type ConversionError struct {
	Tool    string
	Message string
	Err     error
}

func (e *ConversionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s conversion failed: %v", e.Tool, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// TimeoutError reports that an external process exceeded its deadline and was
// terminated. Maps to 500.
type TimeoutError struct {
	Tool string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s exceeded its time limit and was terminated", e.Tool)
}

// NoOutputError reports that an external tool exited successfully but no
// matching output file was found on disk. Maps to 500.
type NoOutputError struct {
	Tool string
	Dir  string
}

func (e *NoOutputError) Error() string {
	return fmt.Sprintf("%s reported success but produced no output in %s", e.Tool, e.Dir)
}
