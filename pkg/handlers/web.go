package handlers

import (
	"html/template"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"
)

// WebHandlers contains handlers for web interface
type WebHandlers struct {
	staticDir string
	logger    *zap.Logger
}

// NewWebHandlers creates a new web handlers instance
func NewWebHandlers(staticDir string, logger *zap.Logger) *WebHandlers {
	return &WebHandlers{
		staticDir: staticDir,
		logger:    logger,
	}
}

// IndexHandler serves the main page
func (h *WebHandlers) IndexHandler(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.ParseFiles(filepath.Join(h.staticDir, "index.html"))
	if err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
		h.logger.Error("template parsing error", zap.Error(err))
		return
	}

	data := struct {
		Title string
	}{
		Title: "Photofeed",
	}

	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, "Template execution error", http.StatusInternalServerError)
		h.logger.Error("template execution error", zap.Error(err))
	}
}
