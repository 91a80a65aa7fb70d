package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"depositdesk/internal/auth"
	"depositdesk/internal/model"
	"depositdesk/internal/service"

	"github.com/go-chi/chi/v5"
)

const maxEvidenceUploadBytes = 32 << 20

func (d Dependencies) uploadEvidence(w http.ResponseWriter, r *http.Request) {
	if auth.GetRole(r.Context()) != auth.RoleTenant {
		WriteError(w, http.StatusForbidden, "forbidden", "only the tenant can upload evidence", d.Log)
		return
	}

	itemID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxEvidenceUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "invalid multipart body", d.Log)
		return
	}

	kind := model.EvidenceType(r.FormValue("evidence_type"))
	if !kind.Valid() {
		WriteError(w, http.StatusBadRequest, "invalid_evidence_type", "evidence_type must be evidence_photos or evidence_documents", d.Log)
		return
	}

	file, header, err := r.FormFile("files")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing_file", "files field is required", d.Log)
		return
	}
	defer file.Close()

	name, err := d.Claims.SaveEvidence(r.Context(), itemID, kind, service.EvidenceUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, "upload_rejected", err.Error(), d.Log)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.EvidenceUploadResult{Files: []string{name}})
}

func (d Dependencies) viewEvidence(w http.ResponseWriter, r *http.Request) {
	d.serveEvidence(w, r, false)
}

func (d Dependencies) downloadEvidence(w http.ResponseWriter, r *http.Request) {
	d.serveEvidence(w, r, true)
}

func (d Dependencies) serveEvidence(w http.ResponseWriter, r *http.Request, attachment bool) {
	role := auth.GetRole(r.Context())
	if role != auth.RoleTenant && role != auth.RoleLandlord {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required", d.Log)
		return
	}

	name := chi.URLParam(r, "filename")
	meta, rc, err := d.Claims.OpenEvidence(r.Context(), name)
	if err != nil {
		WriteError(w, http.StatusNotFound, "not_found", "evidence file not found", d.Log)
		return
	}
	defer rc.Close()

	if meta.ContentType != "" {
		w.Header().Set("Content-Type", meta.ContentType)
	}
	if meta.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(meta.SizeBytes, 10))
	}
	if attachment {
		w.Header().Set("Content-Disposition", `attachment; filename="`+meta.OriginalName+`"`)
	}
	io.Copy(w, rc)
}
