package media

import "strings"

// QualitySetting holds the encoder parameters for one quality tier.
type QualitySetting struct {
	Name         string
	AudioBitrate string // mp3 output bitrate
	Preset       string // x264 preset for mp4
	CRF          string // x264 constant rate factor for mp4
}

var qualitySettings = map[string]QualitySetting{
	"high": {
		Name:         "high",
		AudioBitrate: "320k",
		Preset:       "slow",
		CRF:          "18",
	},
	"medium": {
		Name:         "medium",
		AudioBitrate: "192k",
		Preset:       "medium",
		CRF:          "23",
	},
	"low": {
		Name:         "low",
		AudioBitrate: "128k",
		Preset:       "fast",
		CRF:          "28",
	},
}

// ResolveQualitySetting normalizes the provided name and returns the matching
// encoder parameters. Unknown values fall back to high quality.
func ResolveQualitySetting(name string) QualitySetting {
	key := strings.ToLower(strings.TrimSpace(name))
	if setting, ok := qualitySettings[key]; ok {
		return setting
	}
	return qualitySettings["high"]
}

// isValidQualityName reports whether the provided name matches a configured quality tier.
func isValidQualityName(name string) bool {
	key := strings.ToLower(strings.TrimSpace(name))
	_, ok := qualitySettings[key]
	return ok
}

// formatSelector builds the yt-dlp format-selection expression for a video
// download, favoring exact-height matches and falling back progressively.
func formatSelector(height string, quality QualitySetting) string {
	switch quality.Name {
	case "high":
		return "bv*[height<=" + height + "]+ba/b[height<=" + height + "]/bv*+ba/b"
	case "medium":
		return "bv*[height<=" + height + "]+ba/b[height<=" + height + "]/b"
	default:
		return "b[height<=" + height + "]/w[height<=" + height + "]/w"
	}
}
