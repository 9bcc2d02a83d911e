package capture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"tabletcanvas/views/components"
	"tabletcanvas/views/models"
	"tabletcanvas/views/pages"
)

// maxUploadBytes bounds screenshot uploads (32 MiB).
const maxUploadBytes = 32 << 20

type Handler struct {
	svc *Service
	log *slog.Logger
}

func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// --- REST API Handlers ---

// Capture handles POST /api/capture
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Source string `json:"source"`
	}
	// Body is optional; an empty or absent body means the configured source.
	_ = json.NewDecoder(r.Body).Decode(&input)

	c, err := h.svc.CaptureFrom(r.Context(), Source(input.Source))
	if errors.Is(err, ErrNoScreenshot) {
		h.jsonError(w, "no screenshot found in "+h.svc.Config().ScreenshotDir, http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("capture failed", "error", err)
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, c, http.StatusCreated)
}

// CaptureUpload handles POST /api/capture/upload (multipart)
func (h *Handler) CaptureUpload(w http.ResponseWriter, r *http.Request) {
	c, err := h.readUpload(r)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.jsonResponse(w, c, http.StatusCreated)
}

// ListDiagrams handles GET /api/diagrams
func (h *Handler) ListDiagrams(w http.ResponseWriter, r *http.Request) {
	limit := h.parseInt(r.URL.Query().Get("limit"), 50)

	diagrams, err := h.svc.ListDiagrams(limit)
	if err != nil {
		h.log.Error("failed to list diagrams", "error", err)
		h.jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if diagrams == nil {
		diagrams = []Diagram{}
	}

	h.jsonResponse(w, diagrams, http.StatusOK)
}

// GetConfig handles GET /api/config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, h.svc.Config(), http.StatusOK)
}

// ServeDiagram handles GET /diagrams/{file}
func (h *Handler) ServeDiagram(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.Error(w, "bad diagram name", http.StatusBadRequest)
		return
	}
	if !isImageFile(name) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.svc.Config().DiagramDir, name))
}

// --- HTMX Web Handlers ---

// HomePage handles GET /
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	pages.CanvasPage(h.canvasView(r)).Render(r.Context(), w)
}

// CaptureFragment handles POST /fragments/capture (HTMX partial)
func (h *Handler) CaptureFragment(w http.ResponseWriter, r *http.Request) {
	src := Source(r.FormValue("source"))

	c, err := h.svc.CaptureFrom(r.Context(), src)
	if errors.Is(err, ErrNoScreenshot) {
		components.CaptureError(
			"No screenshot found in "+h.svc.Config().ScreenshotDir+".",
			"Take an OS screenshot as .png, .jpg or .jpeg, then try again.",
		).Render(r.Context(), w)
		return
	}
	if err != nil {
		h.log.Error("capture failed", "error", err)
		components.CaptureError("Capture failed: "+err.Error(), "").Render(r.Context(), w)
		return
	}

	h.log.Info("captured diagram", "dest", c.DestPath, "source", c.Source)
	components.CaptureResult(h.captureToView(c), h.svc.RenderMarkdown(c.Markdown)).Render(r.Context(), w)
}

// UploadFragment handles POST /fragments/upload (HTMX partial)
func (h *Handler) UploadFragment(w http.ResponseWriter, r *http.Request) {
	c, err := h.readUpload(r)
	if err != nil {
		components.CaptureError("Upload failed: "+err.Error(), "").Render(r.Context(), w)
		return
	}

	h.log.Info("captured diagram", "dest", c.DestPath, "source", c.Source)
	components.CaptureResult(h.captureToView(c), h.svc.RenderMarkdown(c.Markdown)).Render(r.Context(), w)
}

// DiagramsFragment handles GET /fragments/diagrams (HTMX partial)
func (h *Handler) DiagramsFragment(w http.ResponseWriter, r *http.Request) {
	limit := h.parseInt(r.URL.Query().Get("limit"), 8)

	diagrams, err := h.svc.ListDiagrams(limit)
	if err != nil {
		h.log.Error("failed to list diagrams", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	components.DiagramList(h.diagramsToViews(diagrams)).Render(r.Context(), w)
}

// --- Helper methods ---

func (h *Handler) readUpload(r *http.Request) (*Capture, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("parse upload: %w", err)
	}
	file, header, err := r.FormFile("screenshot")
	if err != nil {
		return nil, errors.New("screenshot file required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return h.svc.CaptureUpload(header.Filename, data)
}

func (h *Handler) canvasView(r *http.Request) models.CanvasView {
	cfg := h.svc.Config()
	adbReady := h.svc.ADBReady(r.Context())

	recent, err := h.svc.ListDiagrams(8)
	if err != nil {
		h.log.Warn("failed to list diagrams", "error", err)
	}

	return models.CanvasView{
		URL:           cfg.URL,
		Instructions:  h.instructions(adbReady),
		ADBReady:      adbReady,
		ScreenshotDir: cfg.ScreenshotDir,
		Recent:        h.diagramsToViews(recent),
	}
}

func (h *Handler) instructions(adbReady bool) string {
	if adbReady {
		return "Draw on your tablet, then click Capture to pull a screenshot over USB."
	}
	return "Draw on your tablet, take an OS screenshot (Cmd/Ctrl+Shift+4), then click Capture."
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (h *Handler) parseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// --- View model converters ---

func (h *Handler) captureToView(c *Capture) models.CaptureView {
	return models.CaptureView{
		FileName: filepath.Base(c.DestPath),
		Markdown: c.Markdown,
		Source:   string(c.Source),
	}
}

func (h *Handler) diagramsToViews(diagrams []Diagram) []models.DiagramView {
	views := make([]models.DiagramView, len(diagrams))
	for i, d := range diagrams {
		views[i] = models.DiagramView{
			Name:    d.Name,
			Path:    d.Path,
			Size:    d.Size,
			ModTime: d.ModTime,
		}
	}
	return views
}
