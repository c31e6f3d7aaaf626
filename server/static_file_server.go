package server

import (
	"embed"
	"net/http"
	"strings"
)

//go:embed static/index.html
var staticFiles embed.FS

// ConsoleHandler serves the embedded test console. Any path outside /api/
// gets the console page so bookmarked or refreshed console URLs still work;
// unknown /api/ paths are a JSON 404 instead of a silent HTML page.
func (s *Server) ConsoleHandler() http.HandlerFunc {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		panic("Failed to read embedded console page: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeError(w, http.StatusNotFound, "not_found", "no such API route")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}
}
