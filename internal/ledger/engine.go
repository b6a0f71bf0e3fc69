// Package ledger keeps the billing books: bills against appointments, their
// line items, and the medicine and test catalogs the items draw prices from.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/clinicore/internal/clinicerr"
	"github.com/md-rashed-zaman/clinicore/internal/model"
	"github.com/md-rashed-zaman/clinicore/internal/money"
	"github.com/md-rashed-zaman/clinicore/internal/outbox"
	"github.com/md-rashed-zaman/clinicore/internal/storage"
)

var serviceTypes = map[string]bool{
	"Consultation": true,
	"Medicine":     true,
	"Test":         true,
	"Procedure":    true,
	"Other":        true,
}

type Engine struct {
	repo       *storage.LedgerRepository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
}

func NewEngine(repo *storage.LedgerRepository, outboxRepo *outbox.Repository, logger *slog.Logger) *Engine {
	return &Engine{repo: repo, outboxRepo: outboxRepo, logger: logger}
}

// BillView is a bill with its derived balance and line items attached. The
// derived status is reported next to the stored one so a discrepancy between
// the two is visible to callers without ever rewriting the stored value.
type BillView struct {
	model.Bill
	Balance       money.Amount        `json:"balance"`
	DerivedStatus model.PaymentStatus `json:"derived_status"`
	Items         []model.BillItem    `json:"items"`
}

func newBillView(b model.Bill, items []model.BillItem) BillView {
	return BillView{
		Bill:          b,
		Balance:       Balance(b.Total, b.Paid),
		DerivedStatus: DerivedStatus(b.Total, b.Paid),
		Items:         items,
	}
}

// CreateBill records a bill against an existing appointment. The caller
// supplies the payment status; it is validated but not derived, so front
// desks can mark a bill Paid at creation time regardless of amounts.
func (e *Engine) CreateBill(ctx context.Context, b model.Bill) (model.Bill, error) {
	if b.AppointmentID <= 0 {
		return model.Bill{}, clinicerr.Validation("appointment_id is required")
	}
	if b.Total.IsNegative() || b.Paid.IsNegative() {
		return model.Bill{}, clinicerr.Validation("amounts cannot be negative")
	}
	if b.Status == "" {
		b.Status = model.PaymentUnpaid
	}
	if !b.Status.Valid() {
		return model.Bill{}, clinicerr.Validation("invalid payment status %q", b.Status)
	}

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return model.Bill{}, clinicerr.Storage(err, "begin failed")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if ok, err := e.repo.AppointmentExists(ctx, tx, b.AppointmentID); err != nil {
		return model.Bill{}, clinicerr.Storage(err, "appointment lookup failed")
	} else if !ok {
		return model.Bill{}, clinicerr.NotFound("appointment %d does not exist", b.AppointmentID)
	}

	created, err := e.repo.InsertBill(ctx, tx, b)
	if err != nil {
		if storage.IsCheckViolation(err) {
			return model.Bill{}, clinicerr.Validation("bill violates a data constraint")
		}
		return model.Bill{}, clinicerr.Storage(err, "create bill failed")
	}

	if err := e.emit(ctx, tx, created, "clinic.bill.created.v1"); err != nil {
		return model.Bill{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return model.Bill{}, clinicerr.Storage(err, "commit failed")
	}

	e.logger.Info("bill created",
		"bill_id", created.ID,
		"appointment_id", created.AppointmentID,
		"total", created.Total.String(),
	)
	return created, nil
}

func (e *Engine) GetBill(ctx context.Context, id int64) (BillView, error) {
	b, err := e.repo.GetBill(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return BillView{}, clinicerr.NotFound("bill %d not found", id)
		}
		return BillView{}, clinicerr.Storage(err, "get bill failed")
	}
	items, err := e.repo.ListItems(ctx, id)
	if err != nil {
		return BillView{}, clinicerr.Storage(err, "list bill items failed")
	}
	return newBillView(b, items), nil
}

func (e *Engine) UpdateBill(ctx context.Context, b model.Bill) error {
	if b.ID <= 0 {
		return clinicerr.Validation("bill id is required")
	}
	if b.Total.IsNegative() || b.Paid.IsNegative() {
		return clinicerr.Validation("amounts cannot be negative")
	}
	if !b.Status.Valid() {
		return clinicerr.Validation("invalid payment status %q", b.Status)
	}

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return clinicerr.Storage(err, "begin failed")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := e.repo.GetBillForUpdate(ctx, tx, b.ID)
	if err != nil {
		if storage.IsNotFound(err) {
			return clinicerr.NotFound("bill %d not found", b.ID)
		}
		return clinicerr.Storage(err, "load bill failed")
	}

	b.AppointmentID = current.AppointmentID
	b.BillDate = current.BillDate
	b.CreatedBy = current.CreatedBy
	if err := e.repo.UpdateBill(ctx, tx, b); err != nil {
		if storage.IsCheckViolation(err) {
			return clinicerr.Validation("bill violates a data constraint")
		}
		return clinicerr.Storage(err, "update bill failed")
	}

	if err := e.emit(ctx, tx, b, "clinic.bill.updated.v1"); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return clinicerr.Storage(err, "commit failed")
	}
	return nil
}

// DeleteBill removes the bill but not its items; orphaned items stay queryable
// by id and are swept out on the next wholesale import.
func (e *Engine) DeleteBill(ctx context.Context, id int64) error {
	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return clinicerr.Storage(err, "begin failed")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b, err := e.repo.GetBillForUpdate(ctx, tx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return clinicerr.NotFound("bill %d not found", id)
		}
		return clinicerr.Storage(err, "load bill failed")
	}

	if err := e.repo.DeleteBill(ctx, tx, id); err != nil {
		return clinicerr.Storage(err, "delete bill failed")
	}
	if err := e.emit(ctx, tx, b, "clinic.bill.deleted.v1"); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return clinicerr.Storage(err, "commit failed")
	}

	e.logger.Info("bill deleted", "bill_id", id)
	return nil
}

func (e *Engine) ListBills(ctx context.Context, limit int) ([]BillView, error) {
	bills, err := e.repo.ListBills(ctx, limit)
	if err != nil {
		return nil, clinicerr.Storage(err, "list bills failed")
	}
	out := make([]BillView, 0, len(bills))
	for _, b := range bills {
		out = append(out, newBillView(b, nil))
	}
	return out, nil
}

func (e *Engine) ListBillsByAppointment(ctx context.Context, appointmentID int64) ([]BillView, error) {
	bills, err := e.repo.ListBillsByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, clinicerr.Storage(err, "list bills failed")
	}
	out := make([]BillView, 0, len(bills))
	for _, b := range bills {
		out = append(out, newBillView(b, nil))
	}
	return out, nil
}

// AddItem appends a line item to an existing bill. The stored bill total is
// left untouched; callers who want the total to track items call
// RecomputeTotalFromItems and issue an explicit UpdateBill.
func (e *Engine) AddItem(ctx context.Context, it model.BillItem) (model.BillItem, error) {
	it.ServiceType = strings.TrimSpace(it.ServiceType)
	it.Description = strings.TrimSpace(it.Description)
	if it.BillID <= 0 {
		return model.BillItem{}, clinicerr.Validation("bill_id is required")
	}
	if !serviceTypes[it.ServiceType] {
		return model.BillItem{}, clinicerr.Validation("invalid service type %q", it.ServiceType)
	}
	if it.Quantity <= 0 {
		return model.BillItem{}, clinicerr.Validation("quantity must be positive")
	}
	if it.UnitPrice.IsNegative() {
		return model.BillItem{}, clinicerr.Validation("unit price cannot be negative")
	}
	if it.MedicineID != nil && it.TestID != nil {
		return model.BillItem{}, clinicerr.Validation("an item references a medicine or a test, not both")
	}

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return model.BillItem{}, clinicerr.Storage(err, "begin failed")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if ok, err := e.repo.BillExists(ctx, tx, it.BillID); err != nil {
		return model.BillItem{}, clinicerr.Storage(err, "bill lookup failed")
	} else if !ok {
		return model.BillItem{}, clinicerr.NotFound("bill %d not found", it.BillID)
	}
	if it.MedicineID != nil {
		if ok, err := e.repo.MedicineActive(ctx, tx, *it.MedicineID); err != nil {
			return model.BillItem{}, clinicerr.Storage(err, "medicine lookup failed")
		} else if !ok {
			return model.BillItem{}, clinicerr.Validation("medicine %d does not exist or is inactive", *it.MedicineID)
		}
	}
	if it.TestID != nil {
		if ok, err := e.repo.TestActive(ctx, tx, *it.TestID); err != nil {
			return model.BillItem{}, clinicerr.Storage(err, "test lookup failed")
		} else if !ok {
			return model.BillItem{}, clinicerr.Validation("medical test %d does not exist or is inactive", *it.TestID)
		}
	}

	created, err := e.repo.InsertItem(ctx, tx, it)
	if err != nil {
		if storage.IsCheckViolation(err) {
			return model.BillItem{}, clinicerr.Validation("bill item violates a data constraint")
		}
		return model.BillItem{}, clinicerr.Storage(err, "create bill item failed")
	}
	if err := tx.Commit(ctx); err != nil {
		return model.BillItem{}, clinicerr.Storage(err, "commit failed")
	}
	return created, nil
}

func (e *Engine) ListItems(ctx context.Context, billID int64) ([]model.BillItem, error) {
	items, err := e.repo.ListItems(ctx, billID)
	if err != nil {
		return nil, clinicerr.Storage(err, "list bill items failed")
	}
	return items, nil
}

// --- catalogs ---

func (e *Engine) CreateMedicine(ctx context.Context, m model.Medicine) (model.Medicine, error) {
	m.Code = strings.TrimSpace(m.Code)
	m.Name = strings.TrimSpace(m.Name)
	if m.Code == "" || m.Name == "" {
		return model.Medicine{}, clinicerr.Validation("medicine code and name are required")
	}
	if m.UnitPrice.IsNegative() {
		return model.Medicine{}, clinicerr.Validation("unit price cannot be negative")
	}
	created, err := e.repo.CreateMedicine(ctx, m)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return model.Medicine{}, clinicerr.Conflict("medicine code %q already exists", m.Code)
		}
		return model.Medicine{}, clinicerr.Storage(err, "create medicine failed")
	}
	return created, nil
}

func (e *Engine) ListMedicines(ctx context.Context) ([]model.Medicine, error) {
	out, err := e.repo.ListMedicines(ctx)
	if err != nil {
		return nil, clinicerr.Storage(err, "list medicines failed")
	}
	return out, nil
}

func (e *Engine) CreateMedicalTest(ctx context.Context, t model.MedicalTest) (model.MedicalTest, error) {
	t.Code = strings.TrimSpace(t.Code)
	t.Name = strings.TrimSpace(t.Name)
	if t.Code == "" || t.Name == "" {
		return model.MedicalTest{}, clinicerr.Validation("test code and name are required")
	}
	if t.Cost.IsNegative() {
		return model.MedicalTest{}, clinicerr.Validation("cost cannot be negative")
	}
	if t.NormalRangeMin != nil && t.NormalRangeMax != nil && *t.NormalRangeMin > *t.NormalRangeMax {
		return model.MedicalTest{}, clinicerr.Validation("normal range min exceeds max")
	}
	created, err := e.repo.CreateMedicalTest(ctx, t)
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return model.MedicalTest{}, clinicerr.Conflict("test code %q already exists", t.Code)
		}
		return model.MedicalTest{}, clinicerr.Storage(err, "create medical test failed")
	}
	return created, nil
}

func (e *Engine) ListMedicalTests(ctx context.Context) ([]model.MedicalTest, error) {
	out, err := e.repo.ListMedicalTests(ctx)
	if err != nil {
		return nil, clinicerr.Storage(err, "list medical tests failed")
	}
	return out, nil
}

// RecordCardPayment applies a payment captured by the card provider to a
// bill. The provider event is recorded inside the same transaction for
// idempotency; a replayed event is a no-op. The resulting status is derived
// here, not caller supplied: this is the one path where the books must agree
// with money that actually moved.
func (e *Engine) RecordCardPayment(ctx context.Context, billID int64, amount money.Amount, evt storage.ProviderEvent) error {
	if amount <= 0 {
		return clinicerr.Validation("payment amount must be positive")
	}

	tx, err := e.repo.Begin(ctx)
	if err != nil {
		return clinicerr.Storage(err, "begin failed")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := e.repo.InsertProviderEvent(ctx, tx, evt); err != nil {
		if errors.Is(err, storage.ErrDuplicateProviderEvent) {
			e.logger.Info("duplicate provider event ignored",
				"provider", evt.Provider, "provider_event_id", evt.ProviderEventID)
			return tx.Commit(ctx)
		}
		return clinicerr.Storage(err, "record provider event failed")
	}

	b, err := e.repo.GetBillForUpdate(ctx, tx, billID)
	if err != nil {
		if storage.IsNotFound(err) {
			return clinicerr.NotFound("bill %d not found", billID)
		}
		return clinicerr.Storage(err, "load bill failed")
	}

	b.Paid += amount
	b.Status = DerivedStatus(b.Total, b.Paid)
	if b.Method == "" {
		b.Method = "Card"
	}
	if err := e.repo.UpdateBill(ctx, tx, b); err != nil {
		return clinicerr.Storage(err, "update bill failed")
	}

	if err := e.emit(ctx, tx, b, "clinic.bill.payment_recorded.v1"); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return clinicerr.Storage(err, "commit failed")
	}

	e.logger.Info("card payment recorded",
		"bill_id", billID,
		"amount", amount.String(),
		"status", b.Status,
	)
	return nil
}

func (e *Engine) emit(ctx context.Context, tx pgx.Tx, b model.Bill, eventType string) error {
	payload, err := json.Marshal(map[string]any{
		"bill_id":        b.ID,
		"appointment_id": b.AppointmentID,
		"total_amount":   b.Total.String(),
		"paid_amount":    b.Paid.String(),
		"payment_status": b.Status,
	})
	if err != nil {
		return clinicerr.Storage(err, "build event payload failed")
	}
	if err := e.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "bill",
		AggregateID:   strconv.FormatInt(b.ID, 10),
		EventType:     eventType,
		Payload:       payload,
	}); err != nil {
		return clinicerr.Storage(err, "write outbox event failed")
	}
	return nil
}
