package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/clinicore/internal/directory"
	"github.com/md-rashed-zaman/clinicore/internal/model"
)

type DirectoryHandler struct {
	svc    *directory.Service
	logger *slog.Logger
}

func NewDirectoryHandler(svc *directory.Service, logger *slog.Logger) *DirectoryHandler {
	return &DirectoryHandler{svc: svc, logger: logger}
}

func (h *DirectoryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/users", h.users)
	mux.HandleFunc("/v1/users/deactivate", h.deactivateUser)
	mux.HandleFunc("/v1/specializations", h.specializations)
	mux.HandleFunc("/v1/specializations/deactivate", h.deactivateSpecialization)
	mux.HandleFunc("/v1/departments", h.departments)
	mux.HandleFunc("/v1/departments/deactivate", h.deactivateDepartment)
	mux.HandleFunc("/v1/doctors", h.doctors)
	mux.HandleFunc("/v1/doctors/search", h.searchDoctors)
	mux.HandleFunc("/v1/doctors/deactivate", h.deactivateDoctor)
	mux.HandleFunc("/v1/patients", h.patients)
	mux.HandleFunc("/v1/patients/search", h.searchPatients)
	mux.HandleFunc("/v1/patients/deactivate", h.deactivatePatient)
}

type createUserRequest struct {
	model.User
	Password string `json:"password"`
}

func (h *DirectoryHandler) users(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		created, err := h.svc.CreateUser(r.Context(), req.User, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		if id, ok := idParam(r); ok {
			u, err := h.svc.GetUser(r.Context(), id)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, u)
			return
		}
		users, err := h.svc.ListUsers(r.Context(), boolParam(r, "active"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	default:
		methodNotAllowed(w)
	}
}

type idRequest struct {
	ID int64 `json:"id"`
}

func (h *DirectoryHandler) deactivateUser(w http.ResponseWriter, r *http.Request) {
	h.deactivate(w, r, h.svc.DeactivateUser)
}

func (h *DirectoryHandler) deactivateSpecialization(w http.ResponseWriter, r *http.Request) {
	h.deactivate(w, r, h.svc.DeactivateSpecialization)
}

func (h *DirectoryHandler) deactivateDepartment(w http.ResponseWriter, r *http.Request) {
	h.deactivate(w, r, h.svc.DeactivateDepartment)
}

func (h *DirectoryHandler) deactivateDoctor(w http.ResponseWriter, r *http.Request) {
	h.deactivate(w, r, h.svc.DeactivateDoctor)
}

func (h *DirectoryHandler) deactivatePatient(w http.ResponseWriter, r *http.Request) {
	h.deactivate(w, r, h.svc.DeactivatePatient)
}

func (h *DirectoryHandler) deactivate(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) error) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req idRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID <= 0 {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	if err := fn(r.Context(), req.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "is_active": false})
}

func (h *DirectoryHandler) specializations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var sp model.Specialization
		if err := json.NewDecoder(r.Body).Decode(&sp); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		created, err := h.svc.CreateSpecialization(r.Context(), sp)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		out, err := h.svc.ListSpecializations(r.Context(), boolParam(r, "active"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	default:
		methodNotAllowed(w)
	}
}

func (h *DirectoryHandler) departments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var d model.Department
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		created, err := h.svc.CreateDepartment(r.Context(), d)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodGet:
		out, err := h.svc.ListDepartments(r.Context(), boolParam(r, "active"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	default:
		methodNotAllowed(w)
	}
}

func (h *DirectoryHandler) doctors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var d model.Doctor
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		created, err := h.svc.RegisterDoctor(r.Context(), d)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodPut:
		var d model.Doctor
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		if err := h.svc.UpdateDoctor(r.Context(), d); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	case http.MethodGet:
		id, ok := idParam(r)
		if !ok {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		d, err := h.svc.GetDoctor(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	default:
		methodNotAllowed(w)
	}
}

func (h *DirectoryHandler) searchDoctors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	out, err := h.svc.SearchDoctors(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *DirectoryHandler) patients(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var p model.Patient
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		created, err := h.svc.RegisterPatient(r.Context(), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	case http.MethodPut:
		var p model.Patient
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
		if err := h.svc.UpdatePatient(r.Context(), p); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodGet:
		id, ok := idParam(r)
		if !ok {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		p, err := h.svc.GetPatient(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	default:
		methodNotAllowed(w)
	}
}

func (h *DirectoryHandler) searchPatients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	out, err := h.svc.SearchPatients(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
