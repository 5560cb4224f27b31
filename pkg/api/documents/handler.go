// Package documents exposes the project document shelf: metadata CRUD plus
// presigned S3 links for the actual upload and download traffic, so file
// bytes never pass through this server.
package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"land_proforma/pkg/core/document"
	"land_proforma/pkg/core/importer"
	"land_proforma/pkg/core/store"
	"land_proforma/pkg/models"
)

// Handler holds the metadata store and the presigner for /api/documents.
// objects is nil when no bucket is configured; metadata still works then,
// link requests fail cleanly.
type Handler struct {
	repo    *store.DocumentRepo
	vault   *store.ProjectVault
	objects document.Presigner
}

// NewHandler creates the documents handler.
func NewHandler(repo *store.DocumentRepo, vault *store.ProjectVault, objects document.Presigner) *Handler {
	return &Handler{repo: repo, vault: vault, objects: objects}
}

// RegisterRequest is the POST body: metadata for a file the browser is about
// to upload.
type RegisterRequest struct {
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
}

// RegisterResponse returns the stored record plus a presigned PUT URL the
// browser uploads straight to.
type RegisterResponse struct {
	Document  *document.Document `json:"document"`
	UploadURL string             `json:"upload_url,omitempty"`
}

// LinkResponse carries a presigned GET URL.
type LinkResponse struct {
	DocumentID  string `json:"document_id"`
	DownloadURL string `json:"download_url"`
	ExpiresInS  int    `json:"expires_in_seconds"`
}

// HandleDocuments dispatches the /api/documents surface.
func (h *Handler) HandleDocuments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case "OPTIONS":
		w.WriteHeader(http.StatusOK)
	case "GET":
		h.handleList(w, r)
	case "POST":
		h.handleRegister(w, r)
	case "DELETE":
		h.handleDelete(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleLink serves GET /api/documents/link: a presigned download URL for
// one document. Accepts an optional ttl override in seconds.
func (h *Handler) HandleLink(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}
	if h.objects == nil {
		http.Error(w, "Object store not configured", http.StatusServiceUnavailable)
		return
	}

	doc, err := h.get(r.Context(), id, r.URL.Query().Get("project_id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	ttl := document.DefaultLinkTTL
	if raw := r.URL.Query().Get("ttl"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
	}

	url, err := h.objects.DownloadURL(r.Context(), doc, ttl)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to presign download: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LinkResponse{
		DocumentID:  doc.ID,
		DownloadURL: url,
		ExpiresInS:  int(ttl.Seconds()),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		http.Error(w, "Missing project_id parameter", http.StatusBadRequest)
		return
	}

	docs, err := h.list(r.Context(), projectID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []*document.Document{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(docs)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	doc, err := document.New(req.ProjectID, req.Name, req.ContentType, req.SizeBytes)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.save(r.Context(), doc); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := RegisterResponse{Document: doc}
	if h.objects != nil {
		url, err := h.objects.UploadURL(r.Context(), doc, document.DefaultLinkTTL)
		if err != nil {
			fmt.Printf("[WARNING] Failed to presign upload for %s: %v\n", doc.ID, err)
		} else {
			resp.UploadURL = url
		}
	}

	fmt.Printf("[DOCUMENTS] Registered '%s' for project %s\n", doc.Name, doc.ProjectID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	if err := h.delete(r.Context(), id, r.URL.Query().Get("project_id")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}

// ===== STORAGE DISPATCH =====

func (h *Handler) list(ctx context.Context, projectID string) ([]*document.Document, error) {
	if store.GetPool() != nil {
		return h.repo.ByProject(ctx, projectID)
	}
	bundle, err := h.snapshotBundle(ctx, projectID)
	if err != nil || bundle == nil {
		return nil, err
	}
	return bundle.Documents, nil
}

func (h *Handler) get(ctx context.Context, id, projectID string) (*document.Document, error) {
	if store.GetPool() != nil {
		return h.repo.Get(ctx, id)
	}
	if projectID == "" {
		return nil, fmt.Errorf("project_id is required when running without a database")
	}
	bundle, err := h.snapshotBundle(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if bundle != nil {
		for _, d := range bundle.Documents {
			if d.ID == id {
				return d, nil
			}
		}
	}
	return nil, fmt.Errorf("document '%s' not found", id)
}

func (h *Handler) save(ctx context.Context, doc *document.Document) error {
	if store.GetPool() != nil {
		return h.repo.Save(ctx, doc)
	}
	exp, err := h.vault.Get(ctx, doc.ProjectID)
	if err != nil {
		return err
	}
	if exp == nil {
		return fmt.Errorf("no snapshot for project '%s', save or import the project first", doc.ProjectID)
	}

	record := models.DocumentExport{
		ID:          doc.ID,
		ProjectID:   doc.ProjectID,
		Name:        doc.Name,
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
		ObjectKey:   doc.ObjectKey,
	}
	replaced := false
	for i := range exp.Documents {
		if exp.Documents[i].ID == doc.ID {
			exp.Documents[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		exp.Documents = append(exp.Documents, record)
	}
	return h.vault.Save(ctx, exp)
}

func (h *Handler) delete(ctx context.Context, id, projectID string) error {
	if store.GetPool() != nil {
		return h.repo.Delete(ctx, id)
	}
	if projectID == "" {
		return nil
	}
	exp, err := h.vault.Get(ctx, projectID)
	if err != nil || exp == nil {
		return err
	}
	kept := exp.Documents[:0]
	for _, rec := range exp.Documents {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(exp.Documents) {
		return nil
	}
	exp.Documents = kept
	return h.vault.Save(ctx, exp)
}

func (h *Handler) snapshotBundle(ctx context.Context, projectID string) (*importer.Bundle, error) {
	exp, err := h.vault.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, nil
	}
	data, err := json.Marshal(exp)
	if err != nil {
		return nil, err
	}
	return importer.Load(string(data))
}
