// Package handler implements the HTTP API handlers of SPEC_FULL.md §6,
// adapted from the teacher's internal/gateway/handler/handler.go:
// thin methods that decode a request, call into the search/init
// orchestrators, and write a JSON (or static HTML) response.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/websocket"

	"github.com/marmitar/MC426-backend/internal/corpus/course"
	"github.com/marmitar/MC426-backend/internal/corpus/discipline"
	"github.com/marmitar/MC426-backend/internal/corpusindex"
	"github.com/marmitar/MC426-backend/internal/initctl"
	"github.com/marmitar/MC426-backend/internal/search"
	"github.com/marmitar/MC426-backend/pkg/apperr"
	"github.com/marmitar/MC426-backend/pkg/config"
	"github.com/marmitar/MC426-backend/pkg/metrics"
)

// Record-type keys shared with cmd/server's registration calls.
const (
	DisciplineKey = "discipline"
	CourseKey     = "course"
)

// Handler implements every route of SPEC_FULL.md §6.
type Handler struct {
	init     *initctl.Orchestrator
	search   *search.Orchestrator
	cfg      *config.Config
	metrics  *metrics.Metrics
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New builds a Handler over the process-wide orchestrators and config.
func New(init *initctl.Orchestrator, searchOrch *search.Orchestrator, cfg *config.Config, m *metrics.Metrics) *Handler {
	return &Handler{
		init:    init,
		search:  searchOrch,
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "gateway-handler"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ---------- Search ----------

// Search handles GET /api/busca.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit, err := search.ParseLimit(r.URL.Query().Get("limit"), h.cfg.Search.DefaultSearchLimit, h.cfg.Search.MaxSearchLimit)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	results := h.search.Search(r.Context(), query, limit)
	h.metrics.SearchQueriesTotal.Inc()
	h.metrics.SearchResultsCount.Observe(float64(len(results)))
	h.writeJSON(w, http.StatusOK, h.resultPayload(results))
}

// SearchWS handles GET /api/busca/ws: each inbound text frame is a new
// query, fanned out the same way as Search; a JSON-encode failure on
// the reply degrades to the literal text "[]" rather than closing the
// connection, per SPEC_FULL.md §4.9.
func (h *Handler) SearchWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		results := h.search.Search(r.Context(), string(msg), h.cfg.Search.DefaultSearchLimit)
		h.metrics.SearchQueriesTotal.Inc()
		h.metrics.SearchResultsCount.Observe(float64(len(results)))

		payload, err := json.Marshal(h.resultPayload(results))
		if err != nil {
			payload = []byte("[]")
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// resultPayload projects Results into the SearchResult wire shape:
// the schema's stored fields, spread inline, plus "content" and an
// optional "score".
func (h *Handler) resultPayload(results []corpusindex.Result) []map[string]any {
	out := make([]map[string]any, len(results))
	for i, res := range results {
		obj := make(map[string]any, len(res.Fields)+2)
		for k, v := range res.Fields {
			obj[k] = v
		}
		obj["content"] = res.ContentLabel
		if h.cfg.Search.SendScore {
			obj["score"] = res.Score
		}
		out[i] = obj
	}
	return out
}

// ---------- Disciplines ----------

// Discipline handles GET /api/disciplina/{code}.
func (h *Handler) Discipline(w http.ResponseWriter, r *http.Request) {
	ctrl, err := initctl.Instance[initctl.Controller[discipline.Discipline]](r.Context(), h.init, DisciplineKey)
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	d, ok := ctrl.Get(r.PathValue("code"))
	if !ok {
		h.writeAppError(w, apperr.NotFound("discipline not found"))
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

// ---------- Courses ----------

// CoursePreview handles GET /api/curso/{code}.
func (h *Handler) CoursePreview(w http.ResponseWriter, r *http.Request) {
	c, err := h.course(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c.ToPreview())
}

// CourseTree handles GET /api/curso/{code}/{variant}.
func (h *Handler) CourseTree(w http.ResponseWriter, r *http.Request) {
	c, err := h.course(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	variant, ok := c.ResolveVariant(r.PathValue("variant"))
	if !ok {
		h.writeAppError(w, apperr.NotFound("unknown course variant"))
		return
	}
	h.writeJSON(w, http.StatusOK, variant.BuildTree(h.disciplineCredits))
}

func (h *Handler) course(ctx context.Context, code string) (course.Course, error) {
	ctrl, err := initctl.Instance[initctl.Controller[course.Course]](ctx, h.init, CourseKey)
	if err != nil {
		return course.Course{}, err
	}
	c, ok := ctrl.Get(code)
	if !ok {
		return course.Course{}, apperr.NotFound("course not found")
	}
	return c, nil
}

// disciplineCredits resolves a discipline code's credit count for
// course.Variant.BuildTree; an unresolved code or unready controller
// yields ok=false rather than failing the whole course-tree response.
func (h *Handler) disciplineCredits(code string) (int, bool) {
	ctrl, err := initctl.Instance[initctl.Controller[discipline.Discipline]](context.Background(), h.init, DisciplineKey)
	if err != nil {
		return 0, false
	}
	d, ok := ctrl.Get(code)
	if !ok {
		return 0, false
	}
	return d.Credits, true
}

// ---------- Static & catch-all ----------

// Static serves the static single-page app's index.html for every
// non-/api GET request.
func (h *Handler) Static(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, h.cfg.Server.StaticDir+string(os.PathSeparator)+"index.html")
}

// APIRootEmpty handles the exact path GET /api/: 204 with no body.
func (h *Handler) APIRootEmpty(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// APICatchAll handles every unmatched path under /api/: 400.
func (h *Handler) APICatchAll(w http.ResponseWriter, _ *http.Request) {
	h.writeAppError(w, apperr.BadRequest("unknown route"))
}

// ---------- Helpers ----------

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if h.cfg.Search.PrettyPrintSortedKeys {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
