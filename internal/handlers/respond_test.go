package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/md-rashed-zaman/clinicore/internal/clinicerr"
)

func TestWriteErrorMapsTaxonomy(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{clinicerr.Validation("bad input"), http.StatusBadRequest},
		{clinicerr.Conflict("slot taken"), http.StatusConflict},
		{clinicerr.NotFound("no such bill"), http.StatusNotFound},
		{clinicerr.Storage(errors.New("pg down"), "query failed"), http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, tc.err)
		if rec.Code != tc.want {
			t.Fatalf("%v: got status %d, want %d", tc.err, rec.Code, tc.want)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("content type %q, want application/json", ct)
		}
	}
}

func TestStorageErrorDoesNotLeakDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, clinicerr.Storage(errors.New("dial tcp 10.0.0.5:5432"), "query failed"))
	body := rec.Body.String()
	if strings.Contains(body, "10.0.0.5") || strings.Contains(body, "dial tcp") {
		t.Fatalf("internal detail leaked: %q", body)
	}
	if !strings.Contains(body, "internal error") {
		t.Fatalf("want generic message, got %q", body)
	}
}
