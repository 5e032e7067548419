package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/uid"
)

const (
	// HeaderCorrelationID is the canonical header used to track requests end-to-end.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is an accepted alternative header name used by some proxies.
	HeaderRequestID = "X-Request-ID"
	// QueryCorrelationID carries the id on handshakes where browsers cannot set headers.
	QueryCorrelationID = "cid"

	maxCIDLen = 128
)

// correlationID picks the first usable id from the request headers, then the
// query string.
func correlationID(r *http.Request) string {
	candidates := []string{
		r.Header.Get(HeaderCorrelationID),
		r.Header.Get(HeaderRequestID),
		r.URL.Query().Get(QueryCorrelationID),
	}
	for _, c := range candidates {
		if strings.ContainsAny(c, "\r\n") {
			continue
		}
		if c = strings.TrimSpace(c); c != "" {
			return c[:min(len(c), maxCIDLen)]
		}
	}
	return ""
}

func middlewareCorrelationID(ids uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := correlationID(r)
			if cid == "" && ids != nil {
				cid = ids.Generate()
			}

			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(instrument.SetCorrelationID(r.Context(), cid))
			}

			next.ServeHTTP(w, r)
		})
	}
}
