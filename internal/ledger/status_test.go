package ledger

import (
	"testing"

	"github.com/md-rashed-zaman/clinicore/internal/model"
	"github.com/md-rashed-zaman/clinicore/internal/money"
)

func TestDerivedStatus(t *testing.T) {
	cases := []struct {
		total, paid money.Amount
		want        model.PaymentStatus
	}{
		{10000, 0, model.PaymentUnpaid},
		{10000, 4000, model.PaymentPartiallyPaid},
		{10000, 10000, model.PaymentPaid},
		{10000, 15000, model.PaymentPaid},
		{0, 0, model.PaymentPaid},
		{10000, 1, model.PaymentPartiallyPaid},
		{10000, 9999, model.PaymentPartiallyPaid},
	}
	for _, tc := range cases {
		if got := DerivedStatus(tc.total, tc.paid); got != tc.want {
			t.Fatalf("DerivedStatus(%d, %d) = %s, want %s", tc.total, tc.paid, got, tc.want)
		}
	}
}

func TestBalance(t *testing.T) {
	if got := Balance(10000, 4000); got != 6000 {
		t.Fatalf("Balance(10000, 4000) = %d, want 6000", got)
	}
	if got := Balance(10000, 15000); got != -5000 {
		t.Fatalf("overpaid bill must report a negative balance, got %d", got)
	}
	if got := Balance(0, 0); got != 0 {
		t.Fatalf("empty bill must have zero balance, got %d", got)
	}
}

func TestBillViewReportsDerivedStatusAlongsideStored(t *testing.T) {
	b := model.Bill{Total: 10000, Paid: 4000, Status: model.PaymentPaid}
	v := newBillView(b, nil)
	if v.Status != model.PaymentPaid {
		t.Fatalf("stored status rewritten to %s", v.Status)
	}
	if v.DerivedStatus != model.PaymentPartiallyPaid {
		t.Fatalf("derived status %s, want PartiallyPaid", v.DerivedStatus)
	}
	if v.Balance != 6000 {
		t.Fatalf("balance %d, want 6000", v.Balance)
	}
}

func TestRecomputeTotalFromItems(t *testing.T) {
	items := []model.BillItem{
		{Quantity: 2, UnitPrice: 2500},
		{Quantity: 1, UnitPrice: 10000},
		{Quantity: 3, UnitPrice: 150},
	}
	if got := RecomputeTotalFromItems(items); got != 15450 {
		t.Fatalf("got %d, want 15450", got)
	}
	if got := RecomputeTotalFromItems(nil); got != 0 {
		t.Fatalf("empty item list must sum to zero, got %d", got)
	}
}
