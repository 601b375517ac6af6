// Package router wires up every HTTP route of SPEC_FULL.md §6 and
// applies the middleware chain (RequestID → Timeout → Metrics),
// adapted from the teacher's internal/gateway/router/router.go.
package router

import (
	"net/http"
	"time"

	"github.com/marmitar/MC426-backend/internal/gateway/handler"
	"github.com/marmitar/MC426-backend/pkg/metrics"
	"github.com/marmitar/MC426-backend/pkg/middleware"
)

// New builds the full gateway HTTP handler with all routes and
// middleware.
//
// Route table:
//
//	GET  /api/busca                    → fuzzy search
//	GET  /api/busca/ws                  → fuzzy search, WebSocket streaming
//	GET  /api/disciplina/{code}         → discipline lookup
//	GET  /api/curso/{code}              → course preview
//	GET  /api/curso/{code}/{variant}    → course semester tree
//	GET  /api/{$}                       → 204 (exact /api/)
//	GET  /api/                          → 400 (unmatched /api/**)
//	GET  /{$}, GET /                    → static single-page app
//
// The Prometheus scrape endpoint runs on its own port via
// pkg/metrics.StartServer, not on this mux, matching the teacher's
// separate metrics-server convention.
//
// Middleware chain (outermost first): RequestID → Timeout → Metrics → mux.
func New(h *handler.Handler, m *metrics.Metrics, requestTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/busca", h.Search)
	mux.HandleFunc("GET /api/busca/ws", h.SearchWS)
	mux.HandleFunc("GET /api/disciplina/{code}", h.Discipline)
	mux.HandleFunc("GET /api/curso/{code}", h.CoursePreview)
	mux.HandleFunc("GET /api/curso/{code}/{variant}", h.CourseTree)
	mux.HandleFunc("GET /api/{$}", h.APIRootEmpty)
	mux.HandleFunc("GET /api/", h.APICatchAll)

	mux.HandleFunc("GET /{$}", h.Static)
	mux.HandleFunc("GET /", h.Static)

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(requestTimeout)(chain)
	chain = middleware.RequestID(chain)

	return chain
}
