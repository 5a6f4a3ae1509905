// Package middleware contains HTTP middleware functions
package middleware

import (
	"log"
	"net/http"
	"strings"
)

// AllowedOriginsMap stores allowed origins for quick lookups.
var AllowedOriginsMap map[string]bool

// InitCORS initializes the CORS configuration. Origins is a comma-separated
// list; "*" allows everything.
func InitCORS(origins string) {
	AllowedOriginsMap = make(map[string]bool)
	hasWildcard := false
	for _, origin := range strings.Split(origins, ",") {
		trimmedOrigin := strings.TrimSpace(origin)
		if trimmedOrigin == "*" {
			hasWildcard = true
			break // Wildcard overrides specific origins
		}
		if trimmedOrigin != "" {
			AllowedOriginsMap[trimmedOrigin] = true
		}
	}
	if hasWildcard {
		AllowedOriginsMap = map[string]bool{"*": true}
		log.Println("CORS initialized: Allowing all origins (*)")
	} else {
		log.Printf("CORS initialized: Allowing specific origins: %s", origins)
	}
}

// CORS middleware handles Cross-Origin Resource Sharing headers. Download
// responses carry Content-Disposition and X-Conversion-Info, so both are
// exposed to browser clients.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		originAllowed := false
		allowOriginValue := ""

		if AllowedOriginsMap["*"] {
			originAllowed = true
			allowOriginValue = "*"
		} else if origin != "" {
			if AllowedOriginsMap[origin] {
				originAllowed = true
				allowOriginValue = origin // Reflect the specific origin
				// Vary header is important when reflecting specific origins
				w.Header().Add("Vary", "Origin")
			}
		}

		if origin != "" && originAllowed {
			w.Header().Set("Access-Control-Allow-Origin", allowOriginValue)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Conversion-Info")
		}

		// Handle preflight (OPTIONS) requests
		if r.Method == http.MethodOptions {
			if origin != "" && originAllowed {
				w.WriteHeader(http.StatusOK)
			} else {
				http.Error(w, "CORS preflight check failed", http.StatusForbidden)
			}
			return
		}

		// For actual requests: if an origin was provided but not allowed, block it.
		if origin != "" && !originAllowed {
			http.Error(w, "CORS origin not allowed", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
