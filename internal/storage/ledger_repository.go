package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/clinicore/internal/db"
	"github.com/md-rashed-zaman/clinicore/internal/model"
	"github.com/md-rashed-zaman/clinicore/internal/money"
)

// LedgerRepository persists bills, bill items and the billing catalogs.
// Amounts cross the wire as NUMERIC text and live in Go as cents.
type LedgerRepository struct {
	pool *db.Pool
}

func NewLedgerRepository(pool *db.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *LedgerRepository) AppointmentExists(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	var ok bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)
	`, id).Scan(&ok)
	return ok, err
}

func (r *LedgerRepository) InsertBill(ctx context.Context, tx pgx.Tx, b model.Bill) (model.Bill, error) {
	err := tx.QueryRow(ctx, `
		INSERT INTO bills (appointment_id, total_amount, payment_status, payment_method, paid_amount, created_by)
		VALUES ($1, $2::numeric, $3, $4, $5::numeric, $6)
		RETURNING id, bill_date
	`, b.AppointmentID, b.Total.String(), b.Status, b.Method, b.Paid.String(), b.CreatedBy).
		Scan(&b.ID, &b.BillDate)
	if err != nil {
		return model.Bill{}, err
	}
	return b, nil
}

const billSelect = `
	SELECT id, appointment_id, bill_date, total_amount::text, payment_status,
		payment_method, paid_amount::text, created_by
	FROM bills
`

func scanBill(row pgx.Row) (model.Bill, error) {
	var b model.Bill
	var total, paid string
	if err := row.Scan(&b.ID, &b.AppointmentID, &b.BillDate, &total, &b.Status,
		&b.Method, &paid, &b.CreatedBy); err != nil {
		return model.Bill{}, err
	}
	var err error
	if b.Total, err = money.Parse(total); err != nil {
		return model.Bill{}, err
	}
	if b.Paid, err = money.Parse(paid); err != nil {
		return model.Bill{}, err
	}
	return b, nil
}

func (r *LedgerRepository) GetBill(ctx context.Context, id int64) (model.Bill, error) {
	return scanBill(r.pool.QueryRow(ctx, billSelect+`WHERE id = $1`, id))
}

func (r *LedgerRepository) GetBillForUpdate(ctx context.Context, tx pgx.Tx, id int64) (model.Bill, error) {
	return scanBill(tx.QueryRow(ctx, billSelect+`WHERE id = $1 FOR UPDATE`, id))
}

func (r *LedgerRepository) UpdateBill(ctx context.Context, tx pgx.Tx, b model.Bill) error {
	tag, err := tx.Exec(ctx, `
		UPDATE bills
		SET total_amount = $2::numeric,
			payment_status = $3,
			payment_method = $4,
			paid_amount = $5::numeric
		WHERE id = $1
	`, b.ID, b.Total.String(), b.Status, b.Method, b.Paid.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteBill removes the bill row only. Its items are left behind on
// purpose: the reference system never cascaded, and the backup tool depends
// on orphans surviving.
func (r *LedgerRepository) DeleteBill(ctx context.Context, tx pgx.Tx, id int64) error {
	tag, err := tx.Exec(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *LedgerRepository) ListBills(ctx context.Context, limit int) ([]model.Bill, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, billSelect+`
		ORDER BY bill_date DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *LedgerRepository) ListBillsByAppointment(ctx context.Context, appointmentID int64) ([]model.Bill, error) {
	rows, err := r.pool.Query(ctx, billSelect+`
		WHERE appointment_id = $1
		ORDER BY id
	`, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// --- bill items ---

func (r *LedgerRepository) BillExists(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	var ok bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM bills WHERE id = $1)
	`, id).Scan(&ok)
	return ok, err
}

func (r *LedgerRepository) MedicineActive(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	var ok bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM medicines WHERE id = $1 AND is_active)
	`, id).Scan(&ok)
	return ok, err
}

func (r *LedgerRepository) TestActive(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	var ok bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM medical_tests WHERE id = $1 AND is_active)
	`, id).Scan(&ok)
	return ok, err
}

func (r *LedgerRepository) InsertItem(ctx context.Context, tx pgx.Tx, it model.BillItem) (model.BillItem, error) {
	err := tx.QueryRow(ctx, `
		INSERT INTO bill_items (bill_id, service_type, description, quantity, unit_price, medicine_id, test_id)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)
		RETURNING id
	`, it.BillID, it.ServiceType, it.Description, it.Quantity, it.UnitPrice.String(), it.MedicineID, it.TestID).
		Scan(&it.ID)
	if err != nil {
		return model.BillItem{}, err
	}
	return it, nil
}

func (r *LedgerRepository) ListItems(ctx context.Context, billID int64) ([]model.BillItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, bill_id, service_type, description, quantity, unit_price::text, medicine_id, test_id
		FROM bill_items
		WHERE bill_id = $1
		ORDER BY id
	`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BillItem
	for rows.Next() {
		var it model.BillItem
		var price string
		if err := rows.Scan(&it.ID, &it.BillID, &it.ServiceType, &it.Description, &it.Quantity, &price, &it.MedicineID, &it.TestID); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = money.Parse(price); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// --- catalogs ---

func (r *LedgerRepository) CreateMedicalTest(ctx context.Context, t model.MedicalTest) (model.MedicalTest, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO medical_tests
			(test_code, test_name, department_id, cost, normal_range_min, normal_range_max,
			unit, preparation_instructions, estimated_duration_minutes)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9)
		RETURNING id, is_active
	`, t.Code, t.Name, t.DepartmentID, t.Cost.String(), t.NormalRangeMin, t.NormalRangeMax,
		t.Unit, t.PreparationInstructions, t.EstimatedDurationMinutes).
		Scan(&t.ID, &t.IsActive)
	if err != nil {
		return model.MedicalTest{}, err
	}
	return t, nil
}

func (r *LedgerRepository) ListMedicalTests(ctx context.Context) ([]model.MedicalTest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, test_code, test_name, department_id, cost::text, normal_range_min, normal_range_max,
			unit, preparation_instructions, estimated_duration_minutes, is_active
		FROM medical_tests
		WHERE is_active
		ORDER BY test_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MedicalTest
	for rows.Next() {
		var t model.MedicalTest
		var cost string
		if err := rows.Scan(&t.ID, &t.Code, &t.Name, &t.DepartmentID, &cost, &t.NormalRangeMin, &t.NormalRangeMax,
			&t.Unit, &t.PreparationInstructions, &t.EstimatedDurationMinutes, &t.IsActive); err != nil {
			return nil, err
		}
		if t.Cost, err = money.Parse(cost); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *LedgerRepository) CreateMedicine(ctx context.Context, m model.Medicine) (model.Medicine, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO medicines (medicine_code, medicine_name, category, unit_price)
		VALUES ($1, $2, $3, $4::numeric)
		RETURNING id, is_active
	`, m.Code, m.Name, m.Category, m.UnitPrice.String()).Scan(&m.ID, &m.IsActive)
	if err != nil {
		return model.Medicine{}, err
	}
	return m, nil
}

func (r *LedgerRepository) ListMedicines(ctx context.Context) ([]model.Medicine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, medicine_code, medicine_name, category, unit_price::text, is_active
		FROM medicines
		WHERE is_active
		ORDER BY medicine_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Medicine
	for rows.Next() {
		var m model.Medicine
		var price string
		if err := rows.Scan(&m.ID, &m.Code, &m.Name, &m.Category, &price, &m.IsActive); err != nil {
			return nil, err
		}
		if m.UnitPrice, err = money.Parse(price); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// --- provider events (payment webhooks) ---

var ErrDuplicateProviderEvent = errors.New("duplicate provider event")

type ProviderEvent struct {
	Provider        string
	ProviderEventID string
	EventType       string
	Payload         []byte
}

func (r *LedgerRepository) InsertProviderEvent(ctx context.Context, tx pgx.Tx, evt ProviderEvent) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO provider_events (provider, provider_event_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
	`, evt.Provider, evt.ProviderEventID, evt.EventType, evt.Payload)
	if IsUniqueViolation(err) {
		return ErrDuplicateProviderEvent
	}
	return err
}
