package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/yumyai/cytoterm/internal/util"
	"github.com/yumyai/cytoterm/pkg/cytoband"
	"github.com/yumyai/cytoterm/pkg/handler/request"
	"github.com/yumyai/cytoterm/pkg/middle"
	"github.com/yumyai/cytoterm/pkg/render"
)

// ConvertHandler runs the pipeline over the posted cytoband table.
func (dbctx *DBContext) ConvertHandler(w http.ResponseWriter, r *http.Request) {
	log := middle.LoggerFrom(r.Context(), dbctx.logger())

	req, err := request.ParseConvertRequest(r.URL.Query(), dbctx.Defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, err, 0)
		return
	}
	if req.Persist && dbctx.Store == nil {
		writeError(w, http.StatusBadRequest, errors.New("persist requested but no store is configured"), 0)
		return
	}

	var body io.Reader = http.MaxBytesReader(w, r.Body, dbctx.maxBody())
	if r.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("gzip body: %w", err), 0)
			return
		}
		defer gz.Close()
		// The cap applies to the inflated table as well as the wire bytes.
		body = http.MaxBytesReader(w, io.NopCloser(gz), dbctx.maxBody())
	}

	result, err := cytoband.RunReader(body, req.Options(dbctx.Defaults))
	if err != nil {
		status, line := convertErrorStatus(err)
		log.Info("Convert rejected", zap.Error(err), zap.Int("line", line))
		writeError(w, status, err, line)
		return
	}

	encoded, err := result.Document.Encode()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, 0)
		return
	}
	digest := util.Digest(encoded)

	for _, warn := range result.Warnings {
		log.Warn("Link coverage", zap.String("warning", warn.String()))
	}

	var releaseID string
	if req.Persist {
		rel, err := dbctx.Store.SaveDocument(r.Context(), result.Document, digest)
		if err != nil {
			log.Error("Persist failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, errors.New("could not store the converted document"), 0)
			return
		}
		releaseID = rel.ID
		w.Header().Set("X-Cytoterm-Release", releaseID)
	}

	log.Info("Converted cytobands",
		zap.Int("kept_rows", result.Summary.KeptRows),
		zap.Int("concepts", result.Summary.Concepts),
		zap.Int("links", result.Summary.Links),
		zap.String("digest", digest),
	)

	w.Header().Set("X-Cytoterm-Warnings", strconv.Itoa(len(result.Warnings)))
	w.Header().Set("X-Cytoterm-Digest", digest)

	if req.Format == request.FormatSummary {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := render.RenderSummary(w, render.SummaryData{
			Summary:  result.Summary,
			Warnings: result.Warnings,
			Digest:   digest,
			Release:  releaseID,
		}); err != nil {
			log.Error("Render summary", zap.Error(err))
		}
		return
	}

	w.Header().Set("Content-Type", "application/fhir+json")
	w.Write(encoded)
}

// convertErrorStatus maps pipeline errors to a status and the offending line.
func convertErrorStatus(err error) (int, int) {
	var (
		malformed *cytoband.MalformedRecordError
		invalid   *cytoband.InvalidNomenclatureError
		conflict  *cytoband.DuplicateCodeConflictError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &malformed):
		return http.StatusBadRequest, malformed.Line
	case errors.As(err, &invalid):
		return http.StatusBadRequest, invalid.Line
	case errors.As(err, &conflict):
		return http.StatusBadRequest, conflict.Second.Line
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, 0
	default:
		return http.StatusBadRequest, 0
	}
}
