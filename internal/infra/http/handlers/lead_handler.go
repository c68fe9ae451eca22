package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wwwizards/leadflow/internal/entity"
)

// LeadHandler is the operator-facing admin surface over the lead
// repository: list, inspect, move a lead through its statuses, delete.
type LeadHandler struct {
	Leads entity.LeadRepository
}

func NewLeadHandler(leads entity.LeadRepository) *LeadHandler {
	return &LeadHandler{Leads: leads}
}

func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	leads, err := h.Leads.List(r.Context(), limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list leads"})
		return
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lead, err := h.Leads.Get(r.Context(), id)
	if err != nil {
		var notFound entity.NotFoundError
		if errors.As(err, &notFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get lead"})
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *LeadHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if !entity.IsValidStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	if !h.Leads.UpdateStatus(r.Context(), id, req.Status) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update status"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleDelete removes the lead. On the spreadsheet backend this is a
// soft delete: the row keeps existing with status "deleted".
func (h *LeadHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if !h.Leads.Delete(r.Context(), id) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete lead"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
