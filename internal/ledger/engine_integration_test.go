package ledger

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

func testLedgerEngine(t *testing.T) *Engine {
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
	for _, table := range []string{"outbox_events", "provider_events", "bill_items", "bills", "appointments"} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("wipe %s: %v", table, err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewEngine(storage.NewLedgerRepository(pool), outbox.NewRepository(pool), logger)
}

func TestCreateBillMissingAppointmentIsNotFound(t *testing.T) {
	engine := testLedgerEngine(t)

	_, err := engine.CreateBill(context.Background(), model.Bill{
		AppointmentID: 9999,
		Total:         15000,
		Status:        model.PaymentUnpaid,
	})
	if !clinicerr.IsNotFound(err) {
		t.Fatalf("want not_found, got %v (kind %s)", err, clinicerr.KindOf(err))
	}
}
