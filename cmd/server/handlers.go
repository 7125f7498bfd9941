package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"chatgraph"
	"chatgraph/graph"
	"chatgraph/msg"
	"chatgraph/topic"
)

type handler struct {
	analyzer chatgraph.Analyzer
}

func newHandler(a chatgraph.Analyzer) *handler {
	return &handler{analyzer: a}
}

func newMux(h *handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /graph", h.handleGraph)
	mux.HandleFunc("POST /synonyms", h.handleSynonyms)
	mux.HandleFunc("GET /formats", h.handleFormats)
	mux.HandleFunc("GET /health", h.handleHealth)
	return mux
}

// POST /graph
// Accepts multipart export-file uploads or JSON with inline messages and
// responds with the assembled graph document.
func (h *handler) handleGraph(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Minute)
	defer cancel()

	// Try multipart upload first
	if err := r.ParseMultipartForm(100 << 20); err == nil { // 100MB max
		files := r.MultipartForm.File["files"]
		if len(files) == 0 {
			files = r.MultipartForm.File["file"]
		}
		if len(files) == 0 {
			writeError(w, http.StatusBadRequest, "multipart request has no 'files' field")
			return
		}
		h.graphFromUploads(ctx, w, r, files)
		return
	}

	// Fall back to JSON body with inline messages.
	var req struct {
		Messages         []msg.Message `json:"messages"`
		SkipTopics       bool          `json:"skip_topics,omitempty"`
		GlobalTopics     bool          `json:"global_topics,omitempty"`
		TopicsRequested  int           `json:"topics_requested,omitempty"`
		MinTopicMessages int           `json:"min_topic_messages,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: expected multipart 'files' or JSON with 'messages'")
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages is required")
		return
	}

	// Bound parameters.
	if req.TopicsRequested < 0 || req.TopicsRequested > 50 {
		req.TopicsRequested = 0 // use default
	}
	if req.MinTopicMessages < 0 || req.MinTopicMessages > 1000 {
		req.MinTopicMessages = 0 // use default
	}

	opts := buildOptions(req.SkipTopics, req.GlobalTopics, req.TopicsRequested, req.MinTopicMessages)
	h.respondGraph(ctx, w, req.Messages, opts)
}

// graphFromUploads saves uploaded export files to a temp directory and
// runs them through the import pipeline.
func (h *handler) graphFromUploads(ctx context.Context, w http.ResponseWriter, r *http.Request, files []*multipart.FileHeader) {
	tmpDir, err := os.MkdirTemp("", "chatgraph-upload-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process upload")
		slog.Error("creating temp dir", "error", err)
		return
	}
	defer os.RemoveAll(tmpDir)

	var paths []string
	for i, fh := range files {
		src, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable upload")
			return
		}

		// Sanitise filename to prevent path traversal. The index keeps
		// same-named uploads from clobbering each other.
		safeName := fmt.Sprintf("%02d-%s", i, filepath.Base(fh.Filename))
		tmpPath := filepath.Join(tmpDir, safeName)
		dst, err := os.Create(tmpPath)
		if err != nil {
			src.Close()
			writeError(w, http.StatusInternalServerError, "failed to save upload")
			slog.Error("creating temp file", "error", err)
			return
		}
		if _, err := io.Copy(dst, src); err != nil {
			dst.Close()
			src.Close()
			writeError(w, http.StatusInternalServerError, "failed to save upload")
			slog.Error("saving uploaded file", "error", err)
			return
		}
		dst.Close()
		src.Close()
		paths = append(paths, tmpPath)
	}

	messages, err := h.analyzer.LoadMessages(ctx, paths...)
	if err != nil {
		writeError(w, http.StatusBadRequest, "import failed")
		slog.Error("import error", "error", err)
		return
	}

	opts := buildOptions(
		r.FormValue("skip_topics") == "true",
		r.FormValue("global_topics") == "true",
		formInt(r, "topics_requested"),
		formInt(r, "min_topic_messages"),
	)
	h.respondGraph(ctx, w, messages, opts)
}

func (h *handler) respondGraph(ctx context.Context, w http.ResponseWriter, messages []msg.Message, opts []chatgraph.BuildOption) {
	g, err := h.analyzer.BuildGraph(ctx, messages, opts...)
	if err != nil {
		if errors.Is(err, chatgraph.ErrNoMessages) {
			writeError(w, http.StatusBadRequest, "no messages in input")
			return
		}
		writeError(w, http.StatusInternalServerError, "graph build failed")
		slog.Error("graph build error", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// POST /synonyms
func (h *handler) handleSynonyms(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	var req struct {
		Graph *graph.Graph `json:"graph"`
		Limit int          `json:"limit,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Graph == nil || len(req.Graph.Nodes) == 0 {
		writeError(w, http.StatusBadRequest, "graph is required")
		return
	}

	// Bound parameters.
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 10
	}

	suggestions, err := h.analyzer.SuggestSynonyms(ctx, req.Graph, req.Limit)
	if err != nil {
		if errors.Is(err, chatgraph.ErrNoEmbedder) {
			writeError(w, http.StatusServiceUnavailable, "no embedding provider configured")
			return
		}
		writeError(w, http.StatusInternalServerError, "synonym suggestion failed")
		slog.Error("synonyms error", "error", err)
		return
	}
	if suggestions == nil {
		suggestions = []topic.Suggestion{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

// GET /formats
func (h *handler) handleFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"import": h.analyzer.ImportFormats(),
		"export": h.analyzer.ExportFormats(),
	})
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func buildOptions(skip, global bool, topicsRequested, minTopicMessages int) []chatgraph.BuildOption {
	var opts []chatgraph.BuildOption
	if skip {
		opts = append(opts, chatgraph.WithSkipTopics())
	}
	if global {
		opts = append(opts, chatgraph.WithGlobalTopics())
	}
	if topicsRequested > 0 {
		opts = append(opts, chatgraph.WithTopicsRequested(topicsRequested))
	}
	if minTopicMessages > 0 {
		opts = append(opts, chatgraph.WithMinTopicMessages(minTopicMessages))
	}
	return opts
}

func formInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.FormValue(key))
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
