package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/clinicore/internal/db"
	"github.com/md-rashed-zaman/clinicore/internal/model"
)

// SchedulingRepository persists appointments. The unique index on
// (doctor_id, appointment_date, appointment_time) is the authority on slot
// conflicts; callers run their checks and the insert in one transaction and
// let the index backstop races.
type SchedulingRepository struct {
	pool *db.Pool
}

func NewSchedulingRepository(pool *db.Pool) *SchedulingRepository {
	return &SchedulingRepository{pool: pool}
}

func (r *SchedulingRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *SchedulingRepository) PatientActive(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	var ok bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1 AND is_active)
	`, id).Scan(&ok)
	return ok, err
}

func (r *SchedulingRepository) DoctorActive(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	var ok bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM doctors WHERE id = $1 AND is_active)
	`, id).Scan(&ok)
	return ok, err
}

// SlotTaken reports whether another appointment already holds the slot.
// excludeID skips the row being updated.
func (r *SchedulingRepository) SlotTaken(ctx context.Context, tx pgx.Tx, doctorID int64, date, timeOfDay string, excludeID int64) (bool, error) {
	var taken bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND appointment_date = $2 AND appointment_time = $3 AND id <> $4
		)
	`, doctorID, date, timeOfDay, excludeID).Scan(&taken)
	return taken, err
}

func (r *SchedulingRepository) Insert(ctx context.Context, tx pgx.Tx, a model.Appointment) (model.Appointment, error) {
	err := tx.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, appointment_date, appointment_time, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, a.PatientID, a.DoctorID, a.Date, a.Time, a.Status, a.Notes).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return model.Appointment{}, err
	}
	return a, nil
}

func (r *SchedulingRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (model.Appointment, error) {
	var a model.Appointment
	err := tx.QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, appointment_date::text, appointment_time, status, notes, created_at
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time, &a.Status, &a.Notes, &a.CreatedAt)
	if err != nil {
		return model.Appointment{}, err
	}
	return a, nil
}

func (r *SchedulingRepository) Get(ctx context.Context, id int64) (model.Appointment, error) {
	var a model.Appointment
	err := r.pool.QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, appointment_date::text, appointment_time, status, notes, created_at
		FROM appointments
		WHERE id = $1
	`, id).Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Time, &a.Status, &a.Notes, &a.CreatedAt)
	if err != nil {
		return model.Appointment{}, err
	}
	return a, nil
}

func (r *SchedulingRepository) Update(ctx context.Context, tx pgx.Tx, a model.Appointment) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET patient_id = $2,
			doctor_id = $3,
			appointment_date = $4,
			appointment_time = $5,
			status = $6,
			notes = $7
		WHERE id = $1
	`, a.ID, a.PatientID, a.DoctorID, a.Date, a.Time, a.Status, a.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *SchedulingRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status model.AppointmentStatus) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *SchedulingRepository) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	tag, err := tx.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const appointmentViewSelect = `
	SELECT a.id, a.patient_id, a.doctor_id, a.appointment_date::text, a.appointment_time,
		a.status, a.notes, a.created_at,
		p.first_name || ' ' || p.last_name,
		u.first_name || ' ' || u.last_name
	FROM appointments a
	JOIN patients p ON a.patient_id = p.id
	JOIN doctors d ON a.doctor_id = d.id
	JOIN users u ON d.user_id = u.id
`

func (r *SchedulingRepository) ListByDate(ctx context.Context, date string) ([]model.AppointmentView, error) {
	rows, err := r.pool.Query(ctx, appointmentViewSelect+`
		WHERE a.appointment_date = $1
		ORDER BY a.appointment_date DESC, a.appointment_time DESC
	`, date)
	if err != nil {
		return nil, err
	}
	return scanAppointmentViews(rows)
}

func (r *SchedulingRepository) ListRecent(ctx context.Context, limit int) ([]model.AppointmentView, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, appointmentViewSelect+`
		ORDER BY a.appointment_date DESC, a.appointment_time DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return scanAppointmentViews(rows)
}

func scanAppointmentViews(rows pgx.Rows) ([]model.AppointmentView, error) {
	defer rows.Close()

	var out []model.AppointmentView
	for rows.Next() {
		var v model.AppointmentView
		if err := rows.Scan(&v.ID, &v.PatientID, &v.DoctorID, &v.Date, &v.Time,
			&v.Status, &v.Notes, &v.CreatedAt, &v.PatientName, &v.DoctorName); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
