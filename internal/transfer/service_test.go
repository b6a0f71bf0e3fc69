package transfer

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/md-rashed-zaman/clinicore/internal/db"
)

func testService(t *testing.T) (*Service, *db.Pool) {
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
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewService(pool, logger)

	// Start from a known empty state.
	if err := svc.Import(ctx, Snapshot{}); err != nil {
		t.Fatalf("wipe via empty import: %v", err)
	}
	return svc, pool
}

func seed(t *testing.T, pool *db.Pool) {
	t.Helper()
	ctx := context.Background()
	stmts := []string{
		`INSERT INTO users (id, username, password_hash, first_name, last_name, email, role)
		 VALUES (1, 'admin', 'x', 'Ada', 'Min', 'admin@clinic.example', 'Admin')`,
		`INSERT INTO specializations (id, name) VALUES (1, 'Cardiology')`,
		`INSERT INTO doctors (id, user_id, specialization_id, license_number) VALUES (1, 1, 1, 'BMDC-0001')`,
		`INSERT INTO patients (id, patient_code, first_name, last_name, date_of_birth, gender)
		 VALUES (1, 'PAT-0001', 'Rafi', 'Ahmed', '1985-06-20', 'Male')`,
		`INSERT INTO appointments (id, patient_id, doctor_id, appointment_date, appointment_time, status)
		 VALUES (1, 1, 1, '2026-09-01', '10:30', 'Scheduled')`,
		`INSERT INTO bills (id, appointment_id, total_amount, payment_status, paid_amount)
		 VALUES (1, 1, 150.00, 'PartiallyPaid', 50.00)`,
		`INSERT INTO bill_items (id, bill_id, service_type, description, quantity, unit_price)
		 VALUES (1, 1, 'Consultation', 'Visit', 1, 150.00)`,
		// Orphan from a deleted bill; the snapshot must carry it.
		`INSERT INTO bill_items (id, bill_id, service_type, description, quantity, unit_price)
		 VALUES (2, 999, 'Other', 'Orphaned', 1, 10.00)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("seed: %v\n%s", err, stmt)
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, pool := testService(t)
	ctx := context.Background()
	seed(t, pool)

	snap, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(snap.Users) != 1 || len(snap.Patients) != 1 || len(snap.Bills) != 1 {
		t.Fatalf("unexpected snapshot sizes: users=%d patients=%d bills=%d",
			len(snap.Users), len(snap.Patients), len(snap.Bills))
	}
	if len(snap.BillItems) != 2 {
		t.Fatalf("snapshot must include the orphaned item, got %d items", len(snap.BillItems))
	}
	if snap.Bills[0].TotalAmount != "150.00" {
		t.Fatalf("total exported as %q, want 150.00", snap.Bills[0].TotalAmount)
	}

	// Wipe, restore, export again: the second snapshot must match the first.
	if err := svc.Import(ctx, Snapshot{}); err != nil {
		t.Fatalf("wipe: %v", err)
	}
	if err := svc.Import(ctx, snap); err != nil {
		t.Fatalf("import: %v", err)
	}

	restored, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if len(restored.BillItems) != 2 || len(restored.Appointments) != 1 {
		t.Fatalf("restore dropped rows: items=%d appointments=%d",
			len(restored.BillItems), len(restored.Appointments))
	}
	if restored.Patients[0].PatientCode == nil || *restored.Patients[0].PatientCode != "PAT-0001" {
		t.Fatal("patient code must survive the round trip")
	}
	if restored.Bills[0].PaidAmount != "50.00" {
		t.Fatalf("paid amount restored as %q, want 50.00", restored.Bills[0].PaidAmount)
	}

	// Sequences were advanced past the imported ids.
	var newID int64
	err = pool.QueryRow(ctx, `
		INSERT INTO patients (first_name, last_name, date_of_birth, gender)
		VALUES ('New', 'Patient', '1990-01-01', 'Female')
		RETURNING id
	`).Scan(&newID)
	if err != nil {
		t.Fatalf("insert after import: %v", err)
	}
	if newID <= 1 {
		t.Fatalf("sequence not advanced, got id %d", newID)
	}
}
