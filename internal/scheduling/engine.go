// Package scheduling books clinic appointments. A doctor holds at most one
// appointment per date and time slot; the engine checks the slot inside the
// booking transaction and the unique index backstops concurrent writers.
package scheduling

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/clinicore/internal/clinicerr"
	"github.com/md-rashed-zaman/clinicore/internal/model"
	"github.com/md-rashed-zaman/clinicore/internal/outbox"
	"github.com/md-rashed-zaman/clinicore/internal/storage"
)

type Engine struct {
	repo       *storage.SchedulingRepository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
}

func NewEngine(repo *storage.SchedulingRepository, outboxRepo *outbox.Repository, logger *slog.Logger) *Engine {
	return &Engine{repo: repo, outboxRepo: outboxRepo, logger: logger}
}

// NormalizeDate parses d as an ISO calendar date and returns it in canonical
// form.
func NormalizeDate(d string) (string, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(d))
	if err != nil {
		return "", clinicerr.Validation("date must be YYYY-MM-DD")
	}
	return t.Format("2006-01-02"), nil
}

// NormalizeTime parses tm as a 24h clock time and returns it in canonical
// HH:MM form.
func NormalizeTime(tm string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(tm))
	if err != nil {
		return "", clinicerr.Validation("time must be HH:MM (24h)")
	}
	return t.Format("15:04"), nil
}

func (e *Engine) Create(ctx context.Context, a model.Appointment) (model.Appointment, error) {
	var err error
	if a.PatientID <= 0 || a.DoctorID <= 0 {
		return model.Appointment{}, clinicerr.Validation("patient_id and doctor_id are required")
	}
	if a.Date, err = NormalizeDate(a.Date); err != nil {
		return model.Appointment{}, err
	}
	if a.Time, err = NormalizeTime(a.Time); err != nil {
		return model.Appointment{}, err
	}
	if a.Status == "" {
		a.Status = model.StatusScheduled
	}
	if !a.Status.Valid() {
		return model.Appointment{}, clinicerr.Validation("invalid status %q", a.Status)
	}

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return model.Appointment{}, clinicerr.Storage(err, "begin failed")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if active, err := e.repo.PatientActive(ctx, tx, a.PatientID); err != nil {
		return model.Appointment{}, clinicerr.Storage(err, "patient lookup failed")
	} else if !active {
		return model.Appointment{}, clinicerr.NotFound("patient %d does not exist or is inactive", a.PatientID)
	}
	if active, err := e.repo.DoctorActive(ctx, tx, a.DoctorID); err != nil {
		return model.Appointment{}, clinicerr.Storage(err, "doctor lookup failed")
	} else if !active {
		return model.Appointment{}, clinicerr.NotFound("doctor %d does not exist or is inactive", a.DoctorID)
	}
	if taken, err := e.repo.SlotTaken(ctx, tx, a.DoctorID, a.Date, a.Time, 0); err != nil {
		return model.Appointment{}, clinicerr.Storage(err, "slot lookup failed")
	} else if taken {
		return model.Appointment{}, clinicerr.Conflict("doctor %d already has an appointment at %s %s", a.DoctorID, a.Date, a.Time)
	}

	created, err := e.repo.Insert(ctx, tx, a)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return model.Appointment{}, clinicerr.Conflict("doctor %d already has an appointment at %s %s", a.DoctorID, a.Date, a.Time)
		}
		return model.Appointment{}, clinicerr.Storage(err, "create appointment failed")
	}

	if err := e.emit(ctx, tx, created, "clinic.appointment.scheduled.v1"); err != nil {
		return model.Appointment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, clinicerr.Storage(err, "commit failed")
	}

	e.logger.Info("appointment scheduled",
		"appointment_id", created.ID,
		"doctor_id", created.DoctorID,
		"date", created.Date,
		"time", created.Time,
	)
	return created, nil
}

// Update replaces the appointment's slot and details. The slot check excludes
// the appointment itself so rescheduling within the same slot is a no-op.
func (e *Engine) Update(ctx context.Context, a model.Appointment) (model.Appointment, error) {
	var err error
	if a.ID <= 0 {
		return model.Appointment{}, clinicerr.Validation("appointment id is required")
	}
	if a.PatientID <= 0 || a.DoctorID <= 0 {
		return model.Appointment{}, clinicerr.Validation("patient_id and doctor_id are required")
	}
	if a.Date, err = NormalizeDate(a.Date); err != nil {
		return model.Appointment{}, err
	}
	if a.Time, err = NormalizeTime(a.Time); err != nil {
		return model.Appointment{}, err
	}
	if !a.Status.Valid() {
		return model.Appointment{}, clinicerr.Validation("invalid status %q", a.Status)
	}

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return model.Appointment{}, clinicerr.Storage(err, "begin failed")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := e.repo.GetForUpdate(ctx, tx, a.ID)
	if err != nil {
		if storage.IsNotFound(err) {
			return model.Appointment{}, clinicerr.NotFound("appointment %d not found", a.ID)
		}
		return model.Appointment{}, clinicerr.Storage(err, "load appointment failed")
	}

	if active, err := e.repo.PatientActive(ctx, tx, a.PatientID); err != nil {
		return model.Appointment{}, clinicerr.Storage(err, "patient lookup failed")
	} else if !active {
		return model.Appointment{}, clinicerr.NotFound("patient %d does not exist or is inactive", a.PatientID)
	}
	if active, err := e.repo.DoctorActive(ctx, tx, a.DoctorID); err != nil {
		return model.Appointment{}, clinicerr.Storage(err, "doctor lookup failed")
	} else if !active {
		return model.Appointment{}, clinicerr.NotFound("doctor %d does not exist or is inactive", a.DoctorID)
	}
	if taken, err := e.repo.SlotTaken(ctx, tx, a.DoctorID, a.Date, a.Time, a.ID); err != nil {
		return model.Appointment{}, clinicerr.Storage(err, "slot lookup failed")
	} else if taken {
		return model.Appointment{}, clinicerr.Conflict("doctor %d already has an appointment at %s %s", a.DoctorID, a.Date, a.Time)
	}

	a.CreatedAt = current.CreatedAt
	if err := e.repo.Update(ctx, tx, a); err != nil {
		if storage.IsUniqueViolation(err) {
			return model.Appointment{}, clinicerr.Conflict("doctor %d already has an appointment at %s %s", a.DoctorID, a.Date, a.Time)
		}
		return model.Appointment{}, clinicerr.Storage(err, "update appointment failed")
	}

	if err := e.emit(ctx, tx, a, "clinic.appointment.rescheduled.v1"); err != nil {
		return model.Appointment{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, clinicerr.Storage(err, "commit failed")
	}
	return a, nil
}

func (e *Engine) ChangeStatus(ctx context.Context, id int64, status model.AppointmentStatus) error {
	if !status.Valid() {
		return clinicerr.Validation("invalid status %q", status)
	}

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return clinicerr.Storage(err, "begin failed")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := e.repo.GetForUpdate(ctx, tx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return clinicerr.NotFound("appointment %d not found", id)
		}
		return clinicerr.Storage(err, "load appointment failed")
	}
	if a.Status == status {
		return tx.Commit(ctx)
	}

	if err := e.repo.UpdateStatus(ctx, tx, id, status); err != nil {
		return clinicerr.Storage(err, "update status failed")
	}

	a.Status = status
	if err := e.emit(ctx, tx, a, "clinic.appointment.status_changed.v1"); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return clinicerr.Storage(err, "commit failed")
	}

	e.logger.Info("appointment status changed", "appointment_id", id, "status", status)
	return nil
}

// Delete removes the appointment row outright. Bills that reference it keep
// their appointment_id; the ledger tolerates the dangling reference.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return clinicerr.Storage(err, "begin failed")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := e.repo.GetForUpdate(ctx, tx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return clinicerr.NotFound("appointment %d not found", id)
		}
		return clinicerr.Storage(err, "load appointment failed")
	}

	if err := e.repo.Delete(ctx, tx, id); err != nil {
		return clinicerr.Storage(err, "delete appointment failed")
	}
	if err := e.emit(ctx, tx, a, "clinic.appointment.deleted.v1"); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return clinicerr.Storage(err, "commit failed")
	}

	e.logger.Info("appointment deleted", "appointment_id", id)
	return nil
}

func (e *Engine) Get(ctx context.Context, id int64) (model.Appointment, error) {
	a, err := e.repo.Get(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return model.Appointment{}, clinicerr.NotFound("appointment %d not found", id)
		}
		return model.Appointment{}, clinicerr.Storage(err, "get appointment failed")
	}
	return a, nil
}

func (e *Engine) ListByDate(ctx context.Context, date string) ([]model.AppointmentView, error) {
	normalized, err := NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	out, err := e.repo.ListByDate(ctx, normalized)
	if err != nil {
		return nil, clinicerr.Storage(err, "list appointments failed")
	}
	return out, nil
}

func (e *Engine) ListRecent(ctx context.Context, limit int) ([]model.AppointmentView, error) {
	out, err := e.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, clinicerr.Storage(err, "list appointments failed")
	}
	return out, nil
}

func (e *Engine) emit(ctx context.Context, tx pgx.Tx, a model.Appointment, eventType string) error {
	payload, err := json.Marshal(map[string]any{
		"appointment_id": a.ID,
		"patient_id":     a.PatientID,
		"doctor_id":      a.DoctorID,
		"date":           a.Date,
		"time":           a.Time,
		"status":         a.Status,
	})
	if err != nil {
		return clinicerr.Storage(err, "build event payload failed")
	}
	if err := e.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   strconv.FormatInt(a.ID, 10),
		EventType:     eventType,
		Payload:       payload,
	}); err != nil {
		return clinicerr.Storage(err, "write outbox event failed")
	}
	return nil
}
