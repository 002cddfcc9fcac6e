package main

import (
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/yumyai/cytoterm/internal/util"
	"github.com/yumyai/cytoterm/pkg/handler"
	"github.com/yumyai/cytoterm/pkg/middle"
)

const staticDir = "./static/"

func NewRouter(dbctx *handler.DBContext) http.Handler {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	// API routes
	mux.HandleFunc("GET /api/v1/health", dbctx.HealthCheck)
	mux.HandleFunc("POST /api/v1/convert", dbctx.ConvertHandler)
	mux.HandleFunc("GET /api/v1/concept/{code}", dbctx.ConceptAPI)
	mux.HandleFunc("GET /api/v1/concept/{code}/children", dbctx.ConceptChildrenAPI)

	// Pages
	mux.HandleFunc("GET /concept/{code}", dbctx.ConceptPage)

	setupStaticFiles(mux, staticDir)

	l := dbctx.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return middle.Chain(mux, middle.RequestIDMiddleware(l), middle.LoggingMiddleware(l))
}

// Concept pages link /static/style.css; served only when the folder exists.
func setupStaticFiles(mux *http.ServeMux, dir string) {
	if !util.DirExists(dir) {
		return
	}
	_ = mime.AddExtensionType(".js", "text/javascript")
	_ = mime.AddExtensionType(".css", "text/css")
	fs := http.FileServer(http.Dir(dir))
	mux.Handle("GET /static/", http.StripPrefix("/static/", fs))
}
