// Package handlers exposes the clinic engines over HTTP. Handlers decode and
// sanity check the wire shapes; domain rules live in the engines.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/md-rashed-zaman/clinicore/internal/clinicerr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeError maps the engine error taxonomy onto HTTP statuses. Storage
// errors deliberately surface a generic message.
func writeError(w http.ResponseWriter, err error) {
	kind := clinicerr.KindOf(err)
	switch kind {
	case clinicerr.KindValidation:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: kind.String()})
	case clinicerr.KindConflict:
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Kind: kind.String()})
	case clinicerr.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: kind.String()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: clinicerr.KindStorage.String()})
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

// idParam reads a positive integer id from the query string.
func idParam(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func boolParam(r *http.Request, name string) bool {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	return v == "true" || v == "1"
}
