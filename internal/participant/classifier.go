package participant

import (
	"github.com/shopspring/decimal"

	dErrors "inscripciones/pkg/domain-errors"
)

// Status is the payment state derived from a participant's monetary fields.
type Status string

const (
	StatusExempt         Status = "exempt"
	StatusPendingFull    Status = "pending"
	StatusPendingPartial Status = "partial"
	StatusPaid           Status = "paid"
	StatusOverpaid       Status = "overpaid"
)

// Classification is the full result of classifying a participant: the status
// plus the owed or surplus delta that goes with it. LegacyPaid marks satisfied
// records that predate per-amount tracking, so callers can tell them apart
// from an exact payment without re-deriving the rule.
type Classification struct {
	Status     Status
	Owed       decimal.Decimal
	Surplus    decimal.Decimal
	LegacyPaid bool
}

// Classify maps raw ledger fields to a payment status. Rules apply in strict
// precedence: exemption wins over everything, then the legacy satisfied flag
// (only when no amount was recorded), then the amount against the fee.
// Negative amounts are a validation error, never clamped.
//
// This is pure domain logic - no I/O, no side effects.
func Classify(montoPagado decimal.Decimal, exento bool, legacyPago bool, fee decimal.Decimal) (Classification, error) {
	if montoPagado.IsNegative() {
		return Classification{}, dErrors.New(dErrors.CodeBadRequest, "montoPagado must not be negative")
	}

	switch {
	case exento:
		return Classification{Status: StatusExempt}, nil
	case legacyPago && montoPagado.IsZero():
		return Classification{Status: StatusPaid, LegacyPaid: true}, nil
	case montoPagado.IsZero():
		return Classification{Status: StatusPendingFull, Owed: fee}, nil
	case montoPagado.LessThan(fee):
		return Classification{Status: StatusPendingPartial, Owed: fee.Sub(montoPagado)}, nil
	case montoPagado.Equal(fee):
		return Classification{Status: StatusPaid}, nil
	default:
		return Classification{Status: StatusOverpaid, Surplus: montoPagado.Sub(fee)}, nil
	}
}

// Classify applies the classification rules to this participant's fields.
func (p Participant) Classify(fee decimal.Decimal) (Classification, error) {
	return Classify(p.MontoPagado, p.Exento, p.Pago, fee)
}

// Pending reports whether the status still owes money.
func (s Status) Pending() bool {
	return s == StatusPendingFull || s == StatusPendingPartial
}

// Satisfied reports whether the fee is fully covered.
func (s Status) Satisfied() bool {
	return s == StatusPaid || s == StatusOverpaid
}
