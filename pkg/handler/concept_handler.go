package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	ggdb "github.com/yumyai/cytoterm/pkg/db"
	"github.com/yumyai/cytoterm/pkg/middle"
	"github.com/yumyai/cytoterm/pkg/model"
	"github.com/yumyai/cytoterm/pkg/render"
)

var errNoStore = errors.New("no concept store is configured")

// lookupStatus maps store errors to an HTTP status.
func lookupStatus(err error) int {
	var notFound *ggdb.ConceptNotFoundError
	switch {
	case errors.As(err, &notFound), errors.Is(err, ggdb.ErrNoRelease):
		return http.StatusNotFound
	case errors.Is(err, errNoStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (dbctx *DBContext) lookupFailed(w http.ResponseWriter, r *http.Request, err error) {
	status := lookupStatus(err)
	if status == http.StatusInternalServerError {
		middle.LoggerFrom(r.Context(), dbctx.logger()).Error("Concept lookup failed", zap.Error(err))
	}
	writeError(w, status, err, 0)
}

func (dbctx *DBContext) getConcept(r *http.Request) (*model.Concept, error) {
	if dbctx.Store == nil {
		return nil, errNoStore
	}
	return model.GetConcept(r.Context(), dbctx.Store.DB(), r.PathValue("code"))
}

// ConceptAPI returns a stored concept as JSON.
func (dbctx *DBContext) ConceptAPI(w http.ResponseWriter, r *http.Request) {
	concept, err := dbctx.getConcept(r)
	if err != nil {
		dbctx.lookupFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, concept)
}

// ConceptChildrenAPI returns the part-of children of a stored concept.
func (dbctx *DBContext) ConceptChildrenAPI(w http.ResponseWriter, r *http.Request) {
	if dbctx.Store == nil {
		dbctx.lookupFailed(w, r, errNoStore)
		return
	}
	children, err := model.GetChildren(r.Context(), dbctx.Store.DB(), r.PathValue("code"))
	if err != nil {
		dbctx.lookupFailed(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, children)
}

// ConceptPage renders a stored concept as HTML.
func (dbctx *DBContext) ConceptPage(w http.ResponseWriter, r *http.Request) {
	concept, err := dbctx.getConcept(r)
	if err != nil {
		http.Error(w, err.Error(), lookupStatus(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderConceptPage(w, concept); err != nil {
		middle.LoggerFrom(r.Context(), dbctx.logger()).Error("Render concept page", zap.Error(err))
	}
}
