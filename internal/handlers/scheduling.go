package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/md-rashed-zaman/clinicore/internal/model"
	"github.com/md-rashed-zaman/clinicore/internal/scheduling"
)

type SchedulingHandler struct {
	engine *scheduling.Engine
	logger *slog.Logger
}

func NewSchedulingHandler(engine *scheduling.Engine, logger *slog.Logger) *SchedulingHandler {
	return &SchedulingHandler{engine: engine, logger: logger}
}

func (h *SchedulingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/appointments", h.appointments)
	mux.HandleFunc("/v1/appointments/status", h.changeStatus)
	mux.HandleFunc("/v1/appointments/delete", h.delete)
}

func (h *SchedulingHandler) appointments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var a model.Appointment
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		created, err := h.engine.Create(r.Context(), a)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodPut:
		var a model.Appointment
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		updated, err := h.engine.Update(r.Context(), a)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodGet:
		h.list(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *SchedulingHandler) list(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(r); ok {
		a, err := h.engine.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
		return
	}

	if date := strings.TrimSpace(r.URL.Query().Get("date")); date != "" {
		out, err := h.engine.ListByDate(r.Context(), date)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	out, err := h.engine.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type changeStatusRequest struct {
	ID     int64                   `json:"id"`
	Status model.AppointmentStatus `json:"status"`
}

func (h *SchedulingHandler) changeStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID <= 0 {
		http.Error(w, "id and status are required", http.StatusBadRequest)
		return
	}
	if err := h.engine.ChangeStatus(r.Context(), req.ID, req.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "status": req.Status})
}

func (h *SchedulingHandler) delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req idRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID <= 0 {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	if err := h.engine.Delete(r.Context(), req.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "deleted": true})
}
