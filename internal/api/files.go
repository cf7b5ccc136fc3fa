package api

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Topsis/internal/results"
	"github.com/MikeSquared-Agency/Topsis/internal/upload"
)

const (
	exampleWeights = "1,1,1,1"
	exampleImpacts = "+,+,-,+"
	exampleData    = "Fund Name,P1,P2,P3,P4\nM1,0.67,0.45,6.5,42.6\nM2,0.6,0.36,3.6,53.3\nM3,0.82,0.67,3.8,63.1\nM4,0.6,0.36,3.5,69.2"
)

type FilesHandler struct {
	results *results.Store
	logger  *slog.Logger
}

func NewFilesHandler(r *results.Store, logger *slog.Logger) *FilesHandler {
	return &FilesHandler{results: r, logger: logger}
}

func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	f, err := h.results.Open(name)
	if errors.Is(err, results.ErrNotFound) || errors.Is(err, results.ErrInvalidName) {
		writeJSON(w, http.StatusNotFound, failure("File not found"))
		return
	}
	if err != nil {
		h.logger.Error("download failed", "file", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, failure("Download error: "+err.Error()))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, failure("Download error: "+err.Error()))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (h *FilesHandler) Example(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, upload.Example{
		Weights:    exampleWeights,
		Impacts:    exampleImpacts,
		SampleData: exampleData,
	})
}
