package scheduling

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/md-rashed-zaman/clinicore/internal/clinicerr"
	"github.com/md-rashed-zaman/clinicore/internal/db"
	"github.com/md-rashed-zaman/clinicore/internal/model"
	"github.com/md-rashed-zaman/clinicore/internal/outbox"
	"github.com/md-rashed-zaman/clinicore/internal/storage"
)

// Engine tests run against a throwaway PostgreSQL pointed to by
// CLINICORE_TEST_DATABASE_URL and are skipped otherwise.

func testEngine(t *testing.T) (*Engine, *db.Pool) {
	t.Helper()
	url := os.Getenv("CLINICORE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CLINICORE_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, url)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, table := range []string{
		"outbox_events", "provider_events",
		"bill_items", "bills", "appointments", "doctors",
		"medical_tests", "medicines", "patients", "departments",
		"specializations", "users",
	} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("wipe %s: %v", table, err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewEngine(storage.NewSchedulingRepository(pool), outbox.NewRepository(pool), logger), pool
}

func seedDoctor(t *testing.T, pool *db.Pool) int64 {
	t.Helper()
	ctx := context.Background()
	repo := storage.NewDirectoryRepository(pool)

	u, err := repo.CreateUser(ctx, model.User{
		Username:  "drkhan",
		FirstName: "Imran",
		LastName:  "Khan",
		Email:     "imran.khan@clinic.example",
		Role:      model.RoleDoctor,
	}, "$2a$10$testhashtesthashtesthash")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	sp, err := repo.CreateSpecialization(ctx, model.Specialization{Name: "Cardiology"})
	if err != nil {
		t.Fatalf("seed specialization: %v", err)
	}
	d, err := repo.CreateDoctor(ctx, model.Doctor{
		UserID:           u.ID,
		SpecializationID: sp.ID,
		LicenseNumber:    "BMDC-0001",
	})
	if err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	return d.ID
}

func seedPatient(t *testing.T, pool *db.Pool, first, last string) int64 {
	t.Helper()
	repo := storage.NewDirectoryRepository(pool)
	p, err := repo.CreatePatient(context.Background(), model.Patient{
		FirstName:   first,
		LastName:    last,
		DateOfBirth: "1985-06-20",
		Gender:      model.GenderMale,
	})
	if err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return p.ID
}

func TestCreateMissingReferencesAreNotFound(t *testing.T) {
	engine, pool := testEngine(t)
	ctx := context.Background()
	doctorID := seedDoctor(t, pool)
	patientID := seedPatient(t, pool, "Rafi", "Ahmed")

	_, err := engine.Create(ctx, model.Appointment{
		PatientID: 9999, DoctorID: doctorID, Date: "2026-09-01", Time: "09:00",
	})
	if !clinicerr.IsNotFound(err) {
		t.Fatalf("missing patient: want not_found, got %v (kind %s)", err, clinicerr.KindOf(err))
	}

	_, err = engine.Create(ctx, model.Appointment{
		PatientID: patientID, DoctorID: 9999, Date: "2026-09-01", Time: "09:00",
	})
	if !clinicerr.IsNotFound(err) {
		t.Fatalf("missing doctor: want not_found, got %v (kind %s)", err, clinicerr.KindOf(err))
	}
}

func TestRescheduleFreesSlot(t *testing.T) {
	engine, pool := testEngine(t)
	ctx := context.Background()
	doctorID := seedDoctor(t, pool)
	p1 := seedPatient(t, pool, "Rafi", "Ahmed")
	p2 := seedPatient(t, pool, "Nusrat", "Jahan")

	first, err := engine.Create(ctx, model.Appointment{
		PatientID: p1, DoctorID: doctorID, Date: "2026-09-01", Time: "09:00",
	})
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err = engine.Create(ctx, model.Appointment{
		PatientID: p2, DoctorID: doctorID, Date: "2026-09-01", Time: "09:00",
	})
	if !clinicerr.IsConflict(err) {
		t.Fatalf("double booking: want conflict, got %v", err)
	}

	// Rescheduling within the same slot must not conflict with itself.
	first.Notes = "bring previous ECG"
	if _, err := engine.Update(ctx, first); err != nil {
		t.Fatalf("same-slot update: %v", err)
	}

	first.Time = "09:15"
	if _, err := engine.Update(ctx, first); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	// The 09:00 slot is free again.
	if _, err := engine.Create(ctx, model.Appointment{
		PatientID: p2, DoctorID: doctorID, Date: "2026-09-01", Time: "09:00",
	}); err != nil {
		t.Fatalf("booking the freed slot: %v", err)
	}
}
