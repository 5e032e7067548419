package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/herald/internal/pkg/config"
)

// maintenanceRetryAfter is sent with 503 responses, in seconds.
const maintenanceRetryAfter = "120"

// middlewareMaintenance blocks the routes listed in app.maintenance.endpoints.
// An entry ending in "/*" blocks every route under that prefix.
func middlewareMaintenance(cfg config.Config) Middleware {
	exact := make(map[string]struct{})
	var prefixes []string
	if cfg != nil {
		for _, endpoint := range cfg.GetArray("app.maintenance.endpoints") {
			endpoint = strings.TrimSpace(endpoint)
			switch {
			case endpoint == "":
			case strings.HasSuffix(endpoint, "/*"):
				prefixes = append(prefixes, strings.TrimSuffix(endpoint, "*"))
			default:
				exact[endpoint] = struct{}{}
			}
		}
	}

	blocked := func(route string) bool {
		if _, ok := exact[route]; ok {
			return true
		}
		for _, p := range prefixes {
			if strings.HasPrefix(route, p) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if blocked(matchedRoutePath(r)) {
				w.Header().Set("Retry-After", maintenanceRetryAfter)
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
