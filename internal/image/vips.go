package image

import (
	"log"

	"github.com/davidbyttow/govips/v2/vips"
)

// Startup initializes the libvips runtime. Call once before any conversion
// and pair with Shutdown on process exit.
func Startup() {
	vips.LoggingSettings(func(messageDomain string, messageLevel vips.LogLevel, message string) {
		if messageLevel <= vips.LogLevelWarning {
			log.Printf("WARN: vips %s: %s", messageDomain, message)
		}
	}, vips.LogLevelWarning)
	vips.Startup(&vips.Config{})
}

// Shutdown releases libvips resources.
func Shutdown() {
	vips.Shutdown()
}
