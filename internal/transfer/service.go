// Package transfer implements the wholesale JSON export and import of the
// clinic database. Import is destructive: it replaces every domain table with
// the snapshot's rows in a single transaction.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/clinicore/internal/clinicerr"
	"github.com/md-rashed-zaman/clinicore/internal/db"
)

type Service struct {
	pool   *db.Pool
	logger *slog.Logger
}

func NewService(pool *db.Pool, logger *slog.Logger) *Service {
	return &Service{pool: pool, logger: logger}
}

// Export reads every domain table ordered by id. It runs in one transaction
// so the snapshot is internally consistent.
func (s *Service) Export(ctx context.Context) (Snapshot, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Snapshot{}, clinicerr.Storage(err, "begin failed")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	snap := Snapshot{ExportedAt: time.Now().UTC()}
	if snap.Users, err = exportUsers(ctx, tx); err != nil {
		return Snapshot{}, clinicerr.Storage(err, "export users failed")
	}
	if snap.Specializations, err = exportSpecializations(ctx, tx); err != nil {
		return Snapshot{}, clinicerr.Storage(err, "export specializations failed")
	}
	if snap.Departments, err = exportDepartments(ctx, tx); err != nil {
		return Snapshot{}, clinicerr.Storage(err, "export departments failed")
	}
	if snap.Doctors, err = exportDoctors(ctx, tx); err != nil {
		return Snapshot{}, clinicerr.Storage(err, "export doctors failed")
	}
	if snap.Patients, err = exportPatients(ctx, tx); err != nil {
		return Snapshot{}, clinicerr.Storage(err, "export patients failed")
	}
	if snap.Appointments, err = exportAppointments(ctx, tx); err != nil {
		return Snapshot{}, clinicerr.Storage(err, "export appointments failed")
	}
	if snap.Bills, err = exportBills(ctx, tx); err != nil {
		return Snapshot{}, clinicerr.Storage(err, "export bills failed")
	}
	if snap.BillItems, err = exportBillItems(ctx, tx); err != nil {
		return Snapshot{}, clinicerr.Storage(err, "export bill items failed")
	}
	if snap.MedicalTests, err = exportMedicalTests(ctx, tx); err != nil {
		return Snapshot{}, clinicerr.Storage(err, "export medical tests failed")
	}
	if snap.Medicines, err = exportMedicines(ctx, tx); err != nil {
		return Snapshot{}, clinicerr.Storage(err, "export medicines failed")
	}

	if err := tx.Commit(ctx); err != nil {
		return Snapshot{}, clinicerr.Storage(err, "commit failed")
	}
	s.logger.Info("database exported",
		"users", len(snap.Users),
		"patients", len(snap.Patients),
		"appointments", len(snap.Appointments),
		"bills", len(snap.Bills),
	)
	return snap, nil
}

// importDeleteOrder lists tables children first so the wipe never strands a
// row the snapshot would collide with.
var importDeleteOrder = []string{
	"bill_items",
	"bills",
	"appointments",
	"doctors",
	"medical_tests",
	"medicines",
	"patients",
	"departments",
	"specializations",
	"users",
}

// Import replaces the database content with the snapshot. Everything happens
// in one transaction; a failed import leaves the previous state untouched.
// Identity sequences are advanced past the imported ids afterwards so new
// inserts do not collide.
func (s *Service) Import(ctx context.Context, snap Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return clinicerr.Storage(err, "begin failed")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, table := range importDeleteOrder {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table); err != nil {
			return clinicerr.Storage(err, "wipe %s failed", table)
		}
	}

	if err := importUsers(ctx, tx, snap.Users); err != nil {
		return clinicerr.Storage(err, "import users failed")
	}
	if err := importSpecializations(ctx, tx, snap.Specializations); err != nil {
		return clinicerr.Storage(err, "import specializations failed")
	}
	if err := importDepartments(ctx, tx, snap.Departments); err != nil {
		return clinicerr.Storage(err, "import departments failed")
	}
	if err := importDoctors(ctx, tx, snap.Doctors); err != nil {
		return clinicerr.Storage(err, "import doctors failed")
	}
	if err := importPatients(ctx, tx, snap.Patients); err != nil {
		return clinicerr.Storage(err, "import patients failed")
	}
	if err := importAppointments(ctx, tx, snap.Appointments); err != nil {
		return clinicerr.Storage(err, "import appointments failed")
	}
	if err := importBills(ctx, tx, snap.Bills); err != nil {
		return clinicerr.Storage(err, "import bills failed")
	}
	if err := importBillItems(ctx, tx, snap.BillItems); err != nil {
		return clinicerr.Storage(err, "import bill items failed")
	}
	if err := importMedicalTests(ctx, tx, snap.MedicalTests); err != nil {
		return clinicerr.Storage(err, "import medical tests failed")
	}
	if err := importMedicines(ctx, tx, snap.Medicines); err != nil {
		return clinicerr.Storage(err, "import medicines failed")
	}

	for _, table := range importDeleteOrder {
		if err := resetSequence(ctx, tx, table); err != nil {
			return clinicerr.Storage(err, "reset %s sequence failed", table)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return clinicerr.Storage(err, "commit failed")
	}
	s.logger.Info("database imported",
		"users", len(snap.Users),
		"patients", len(snap.Patients),
		"appointments", len(snap.Appointments),
		"bills", len(snap.Bills),
	)
	return nil
}

func resetSequence(ctx context.Context, tx pgx.Tx, table string) error {
	_, err := tx.Exec(ctx, fmt.Sprintf(`
		SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s
	`, table, table))
	return err
}
