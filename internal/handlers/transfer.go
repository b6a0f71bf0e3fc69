package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/clinicore/internal/transfer"
)

type TransferHandler struct {
	svc    *transfer.Service
	logger *slog.Logger
}

func NewTransferHandler(svc *transfer.Service, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{svc: svc, logger: logger}
}

func (h *TransferHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/export", h.export)
	mux.HandleFunc("/v1/import", h.importSnapshot)
}

func (h *TransferHandler) export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	snap, err := h.svc.Export(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// importSnapshot replaces the whole database with the posted snapshot. The
// operator-facing docs call this out as destructive; there is no dry run.
func (h *TransferHandler) importSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var snap transfer.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if err := h.svc.Import(r.Context(), snap); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "imported",
		"users":        len(snap.Users),
		"patients":     len(snap.Patients),
		"appointments": len(snap.Appointments),
		"bills":        len(snap.Bills),
	})
}
