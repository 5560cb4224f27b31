package exchange

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"land_proforma/pkg/core/importer"
)

// ProgressEvent represents a single SSE progress update
type ProgressEvent struct {
	Step     string `json:"step"`   // "read", "parse", "persist", "complete", "error"
	Status   string `json:"status"` // "started", "done", "error"
	Detail   string `json:"detail"` // e.g., "Read 84KB"
	TimingMs int64  `json:"timing_ms"`
	Data     any    `json:"data,omitempty"` // Final data on "complete"
}

// HandleImportStream serves GET /api/import/stream?path=: the same pipeline
// as HandleImport but over SSE, so the frontend can show progress while a
// large legacy export loads.
func (h *Handler) HandleImportStream(w http.ResponseWriter, r *http.Request) {
	// SSE headers - must be set before any write
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sendEvent := func(event ProgressEvent) {
		data, _ := json.Marshal(event)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	// Send immediate heartbeat to establish connection
	sendEvent(ProgressEvent{Step: "init", Status: "started", Detail: "Connection established"})

	path := r.URL.Query().Get("path")
	if path == "" {
		sendEvent(ProgressEvent{Step: "error", Status: "error", Detail: "Missing path parameter"})
		return
	}
	fmt.Printf("[DEBUG] Import stream request: path=%s\n", path)

	startTime := time.Now()

	// ========== STEP 1: READ ==========
	sendEvent(ProgressEvent{Step: "read", Status: "started", Detail: "Reading export file..."})
	stepStart := time.Now()

	raw, err := ioutil.ReadFile(path)
	if err != nil {
		sendEvent(ProgressEvent{Step: "read", Status: "error", Detail: fmt.Sprintf("Failed to read file: %v", err)})
		return
	}
	sendEvent(ProgressEvent{
		Step:     "read",
		Status:   "done",
		Detail:   fmt.Sprintf("Read %.1fKB", float64(len(raw))/1024),
		TimingMs: time.Since(stepStart).Milliseconds(),
	})

	// ========== STEP 2: PARSE ==========
	sendEvent(ProgressEvent{Step: "parse", Status: "started", Detail: "Parsing export document..."})
	stepStart = time.Now()

	bundle, err := importer.Load(string(raw))
	if err != nil {
		sendEvent(ProgressEvent{Step: "parse", Status: "error", Detail: fmt.Sprintf("Failed to parse export: %v", err)})
		return
	}
	sendEvent(ProgressEvent{
		Step:   "parse",
		Status: "done",
		Detail: fmt.Sprintf("Parsed '%s': %d containers, %d assumptions, %d price lines",
			bundle.Project.Name, len(bundle.Containers), len(bundle.Assumptions), len(bundle.PriceLines)),
		TimingMs: time.Since(stepStart).Milliseconds(),
	})

	// ========== STEP 3: PERSIST ==========
	sendEvent(ProgressEvent{Step: "persist", Status: "started", Detail: "Saving to stores..."})
	stepStart = time.Now()

	result := h.persistBundle(r.Context(), bundle)
	detail := fmt.Sprintf("Saved project %s", result.ProjectID)
	if len(result.Errors) > 0 {
		detail = fmt.Sprintf("Saved with %d section errors", len(result.Errors))
	}
	sendEvent(ProgressEvent{
		Step:     "persist",
		Status:   "done",
		Detail:   detail,
		TimingMs: time.Since(stepStart).Milliseconds(),
	})

	// ========== COMPLETE ==========
	sendEvent(ProgressEvent{
		Step:     "complete",
		Status:   "done",
		Detail:   fmt.Sprintf("Import finished in %.1fs", time.Since(startTime).Seconds()),
		TimingMs: time.Since(startTime).Milliseconds(),
		Data:     result,
	})
}
