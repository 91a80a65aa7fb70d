package api

import (
	"encoding/json"
	"net/http"

	"depositdesk/internal/auth"
	"depositdesk/internal/model"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// writeBundleError keeps the bundle/respond endpoints' success-flag contract
func writeBundleError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(model.RespondResult{Success: false, Error: message})
}

func (d Dependencies) getClaimBundle(w http.ResponseWriter, r *http.Request) {
	role := auth.GetRole(r.Context())
	if role != auth.RoleTenant && role != auth.RoleLandlord {
		writeBundleError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	caseID := chi.URLParam(r, "id")
	bundle, err := d.Claims.LoadBundle(r.Context(), caseID)
	if err != nil {
		d.Log.Warn("claim bundle load failed", zap.String("case_id", caseID), zap.Error(err))
		writeBundleError(w, http.StatusNotFound, "claim not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bundle)
}

func (d Dependencies) respond(w http.ResponseWriter, r *http.Request) {
	if auth.GetRole(r.Context()) != auth.RoleTenant {
		writeBundleError(w, http.StatusForbidden, "only the tenant can respond to claims")
		return
	}

	caseID := chi.URLParam(r, "id")

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeBundleError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := d.Claims.ApplyResponses(r.Context(), caseID, payload); err != nil {
		writeBundleError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model.RespondResult{Success: true})
}
