package ledger

import (
	"github.com/md-rashed-zaman/clinicore/internal/model"
	"github.com/md-rashed-zaman/clinicore/internal/money"
)

// DerivedStatus classifies a bill by how much of its total has been paid.
// Overpayment still counts as Paid.
func DerivedStatus(total, paid money.Amount) model.PaymentStatus {
	switch {
	case paid >= total:
		return model.PaymentPaid
	case paid > 0:
		return model.PaymentPartiallyPaid
	default:
		return model.PaymentUnpaid
	}
}

// Balance is the amount still owed. Overpaid bills report a negative
// balance rather than clamping to zero.
func Balance(total, paid money.Amount) money.Amount {
	return total - paid
}

// RecomputeTotalFromItems sums quantity times unit price over the bill's
// items. It is advisory: the stored total is authoritative and is never
// silently rewritten when items change.
func RecomputeTotalFromItems(items []model.BillItem) money.Amount {
	var total money.Amount
	for _, it := range items {
		total += it.UnitPrice * money.Amount(it.Quantity)
	}
	return total
}
