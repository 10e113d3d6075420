package web

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hpungsan/algenova/internal/config"
	"github.com/hpungsan/algenova/internal/errors"
	"github.com/hpungsan/algenova/internal/ops"
	"github.com/hpungsan/algenova/internal/solver"
)

// maxBodyBytes bounds a solve request body.
const maxBodyBytes = 1 << 20

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	solver   *solver.Solver
	renderer *Renderer
	logger   *zap.Logger
	version  string
}

// solveRequest keeps formula raw so a non-string value can be told apart
// from a missing one.
type solveRequest struct {
	Formula json.RawMessage `json:"formula"`
}

// HandleSolve handles POST /api/math/solve.
func (h *Handlers) HandleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		renderError(w, errors.NewMissingFormula())
		return
	}
	var formula string
	if len(req.Formula) == 0 || json.Unmarshal(req.Formula, &formula) != nil {
		renderError(w, errors.NewMissingFormula())
		return
	}

	out, err := ops.Solve(r.Context(), h.db, h.solver, h.cfg, ops.SolveInput{Formula: formula})
	if err != nil {
		h.logger.Debug("solve failed", zap.String("formula", formula), zap.Error(err))
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleHelp handles GET /api/math/help.
func (h *Handlers) HandleHelp(w http.ResponseWriter, _ *http.Request) {
	renderJSON(w, http.StatusOK, ops.Catalog())
}

// HandleList handles GET /api/math/solutions.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(q.Get("limit"), "limit")
	if err != nil {
		renderError(w, err)
		return
	}
	offset, err := queryInt(q.Get("offset"), "offset")
	if err != nil {
		renderError(w, err)
		return
	}

	out, err := ops.List(h.db, ops.ListInput{Type: q.Get("type"), Limit: limit, Offset: offset})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleDetail handles GET /api/math/solutions/{id}. Browsers (or
// ?format=html) get a rendered transcript; everything else gets JSON.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	html := wantsHTML(r)

	out, err := ops.Fetch(h.db, ops.FetchInput{ID: r.PathValue("id")})
	if err != nil {
		if html {
			h.renderer.renderErrorPage(w, err)
		} else {
			renderError(w, err)
		}
		return
	}

	if !html {
		renderJSON(w, http.StatusOK, out)
		return
	}
	h.renderer.renderPage(w, http.StatusOK, "detail", DetailPageData{
		PageData: PageData{
			Title:   out.OriginalFormula,
			Version: h.version,
		},
		Solution: out,
		Body:     h.renderer.renderMarkdown(ops.Markdown(out)),
	})
}

// HandleBanner handles GET /.
func (h *Handlers) HandleBanner(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, `AlgeNova math API %s

  POST /api/math/solve            {"formula": "2x + 5 = 13"}
  GET  /api/math/help             supported operations and examples
  GET  /api/math/solutions        solution history
  GET  /api/math/solutions/{id}   one stored solution
  GET  /ping                      health check
  GET  /metrics                   Prometheus metrics
`, h.version)
}

func queryInt(s, name string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.NewInvalidRequest(name + " must be an integer")
	}
	return n, nil
}
