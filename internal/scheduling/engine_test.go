package scheduling

import (
	"testing"

	"github.com/md-rashed-zaman/clinicore/internal/clinicerr"
)

func TestNormalizeDate(t *testing.T) {
	got, err := NormalizeDate(" 2026-03-07 ")
	if err != nil {
		t.Fatalf("valid date rejected: %v", err)
	}
	if got != "2026-03-07" {
		t.Fatalf("got %q, want 2026-03-07", got)
	}

	for _, bad := range []string{"07/03/2026", "2026-3-7", "2026-13-01", "tomorrow", ""} {
		if _, err := NormalizeDate(bad); !clinicerr.IsValidation(err) {
			t.Fatalf("%q: want validation error, got %v", bad, err)
		}
	}
}

func TestNormalizeTime(t *testing.T) {
	got, err := NormalizeTime("09:30")
	if err != nil {
		t.Fatalf("valid time rejected: %v", err)
	}
	if got != "09:30" {
		t.Fatalf("got %q, want 09:30", got)
	}

	for _, bad := range []string{"9:3", "25:00", "09:60", "half past nine", ""} {
		if _, err := NormalizeTime(bad); !clinicerr.IsValidation(err) {
			t.Fatalf("%q: want validation error, got %v", bad, err)
		}
	}
}
