package middleware

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// AnyOrigin in an origin list admits every origin.
const AnyOrigin = "*"

// shellHeaders are the request headers front-ends send with shell commands.
var shellHeaders = []string{
	"Accept",
	"Accept-Encoding",
	"Content-Type",
	"Origin",
	"X-Request-ID",
}

// CORS admits browser front-ends served from origins. With AnyOrigin
// credentials are never allowed; with an explicit list they are, so a
// same-site front-end can send cookies.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  shellHeaders,
		ExposeHeaders: []string{"X-Request-ID", "Content-Encoding"},
		MaxAge:        12 * time.Hour,
	}
	if allowed := normalizeOrigins(origins); allowsAny(allowed) {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowed
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// OriginChecker returns a WebSocket origin check matching the CORS policy.
// Requests without an Origin header are not from a browser and pass.
func OriginChecker(origins []string) func(*http.Request) bool {
	allowed := normalizeOrigins(origins)
	if allowsAny(allowed) {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return slices.Contains(allowed, strings.ToLower(strings.TrimSuffix(origin, "/")))
	}
}

func allowsAny(origins []string) bool {
	return len(origins) == 0 || slices.Contains(origins, AnyOrigin)
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(o), "/"))
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
