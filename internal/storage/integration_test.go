package storage

import (
	"context"
	"os"
	"testing"

	"github.com/md-rashed-zaman/clinicore/internal/db"
	"github.com/md-rashed-zaman/clinicore/internal/model"
	"github.com/md-rashed-zaman/clinicore/internal/sequence"
)

// Integration tests run against a throwaway PostgreSQL pointed to by
// CLINICORE_TEST_DATABASE_URL and are skipped otherwise.

func testPool(t *testing.T) *db.Pool {
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
	wipe(t, pool)
	return pool
}

func wipe(t *testing.T, pool *db.Pool) {
	t.Helper()
	ctx := context.Background()
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
}

func seedDoctor(t *testing.T, pool *db.Pool) int64 {
	t.Helper()
	ctx := context.Background()
	repo := NewDirectoryRepository(pool)

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

func seedPatient(t *testing.T, pool *db.Pool, first, last string) model.Patient {
	t.Helper()
	repo := NewDirectoryRepository(pool)
	p, err := repo.CreatePatient(context.Background(), model.Patient{
		FirstName:   first,
		LastName:    last,
		DateOfBirth: "1985-06-20",
		Gender:      model.GenderMale,
	})
	if err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return p
}

func TestPatientCodeAssignedAtomically(t *testing.T) {
	pool := testPool(t)
	repo := NewDirectoryRepository(pool)

	p := seedPatient(t, pool, "Rafi", "Ahmed")
	want := sequence.PatientCode(p.ID)
	if p.Code != want {
		t.Fatalf("returned code %q, want %q", p.Code, want)
	}

	got, err := repo.GetPatient(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get patient: %v", err)
	}
	if got.Code != want {
		t.Fatalf("stored code %q, want %q", got.Code, want)
	}
}

func TestSlotConflictEnforcedByIndex(t *testing.T) {
	pool := testPool(t)
	repo := NewSchedulingRepository(pool)
	ctx := context.Background()

	doctorID := seedDoctor(t, pool)
	p1 := seedPatient(t, pool, "Rafi", "Ahmed")
	p2 := seedPatient(t, pool, "Nusrat", "Jahan")

	insert := func(patientID int64) error {
		tx, err := repo.Begin(ctx)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()
		_, err = repo.Insert(ctx, tx, model.Appointment{
			PatientID: patientID,
			DoctorID:  doctorID,
			Date:      "2026-09-01",
			Time:      "10:30",
			Status:    model.StatusScheduled,
		})
		if err != nil {
			return err
		}
		return tx.Commit(ctx)
	}

	if err := insert(p1.ID); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	err := insert(p2.ID)
	if err == nil {
		t.Fatal("second booking for the same slot must fail")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("want unique violation, got %v", err)
	}
}

func TestDeactivatedPatientHiddenFromSearch(t *testing.T) {
	pool := testPool(t)
	repo := NewDirectoryRepository(pool)
	ctx := context.Background()

	p := seedPatient(t, pool, "Hidden", "Person")
	if err := repo.DeactivatePatient(ctx, p.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	results, err := repo.SearchPatients(ctx, "Hidden")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	for _, got := range results {
		if got.ID == p.ID {
			t.Fatal("deactivated patient must not appear in search results")
		}
	}

	// Direct fetch still works; deactivation hides, it does not erase.
	got, err := repo.GetPatient(ctx, p.ID)
	if err != nil {
		t.Fatalf("get after deactivate: %v", err)
	}
	if got.IsActive {
		t.Fatal("patient should be inactive")
	}
}

func TestBillItemsSurviveBillDelete(t *testing.T) {
	pool := testPool(t)
	sched := NewSchedulingRepository(pool)
	led := NewLedgerRepository(pool)
	ctx := context.Background()

	doctorID := seedDoctor(t, pool)
	p := seedPatient(t, pool, "Rafi", "Ahmed")

	tx, err := sched.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	appt, err := sched.Insert(ctx, tx, model.Appointment{
		PatientID: p.ID,
		DoctorID:  doctorID,
		Date:      "2026-09-02",
		Time:      "11:00",
		Status:    model.StatusScheduled,
	})
	if err != nil {
		t.Fatalf("insert appointment: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	tx, err = led.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	bill, err := led.InsertBill(ctx, tx, model.Bill{
		AppointmentID: appt.ID,
		Total:         15000,
		Status:        model.PaymentUnpaid,
	})
	if err != nil {
		t.Fatalf("insert bill: %v", err)
	}
	if _, err := led.InsertItem(ctx, tx, model.BillItem{
		BillID:      bill.ID,
		ServiceType: "Consultation",
		Description: "Follow-up visit",
		Quantity:    1,
		UnitPrice:   15000,
	}); err != nil {
		t.Fatalf("insert item: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	tx, err = led.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := led.DeleteBill(ctx, tx, bill.ID); err != nil {
		t.Fatalf("delete bill: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	items, err := led.ListItems(ctx, bill.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("orphaned item must survive bill delete, got %d items", len(items))
	}
}
