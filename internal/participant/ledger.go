package participant

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"inscripciones/internal/exchange"
	dErrors "inscripciones/pkg/domain-errors"
)

// PaymentInput carries the payment fields a registration or edit submits.
// Amount is the absolute cumulative total, not a delta: edit forms always
// submit the full new value, registration submits the initial total split
// across the first and an optional simultaneous second payment.
type PaymentInput struct {
	Amount       decimal.Decimal
	SecondAmount decimal.Decimal
	Method       PaymentMethod
	SecondMethod PaymentMethod
	Referencia   string
	ZelleInfo    string
	Referencia2  string
	ZelleInfo2   string
	Exento       bool
}

// RateFetcher is the slice of the exchange provider the ledger needs. The
// service binds the session before handing it in.
type RateFetcher interface {
	GetRate(ctx context.Context) (exchange.Rate, error)
}

// ApplyPayment computes the full updated field set for a payment-affecting
// write. It does not persist; the caller owns the store write.
//
// Invariants enforced here:
//   - exemption forces montoPagado=0, excedente=0, formaPago="Exento" and
//     clears every reference field, regardless of submitted amounts;
//   - excedente = max(0, total-fee) and pago = total >= fee otherwise;
//   - method-specific reference fields are empty unless their method is the
//     active selection;
//   - a history entry is appended iff the cumulative amount changed and is
//     positive. A failed rate fetch records tasaBCV=0; it never blocks the
//     write.
func ApplyPayment(ctx context.Context, existing Participant, in PaymentInput, rates RateFetcher, fee decimal.Decimal, now time.Time) (Participant, error) {
	if in.Amount.IsNegative() || in.SecondAmount.IsNegative() {
		return Participant{}, dErrors.New(dErrors.CodeBadRequest, "payment amounts must not be negative")
	}
	if !in.Method.Selectable() || !in.SecondMethod.Selectable() {
		return Participant{}, dErrors.New(dErrors.CodeBadRequest, "unknown payment method")
	}

	updated := existing
	updated.Exento = in.Exento

	total := in.Amount.Add(in.SecondAmount)
	if in.Exento {
		total = decimal.Zero
		updated.Pago = false
		updated.MontoPagado = decimal.Zero
		updated.MontoPagado2 = decimal.Zero
		updated.Excedente = decimal.Zero
		updated.FormaPago = MethodExento
		updated.SegundaFormaPago = MethodNone
		updated.Referencia = ""
		updated.ZelleInfo = ""
		updated.Referencia2 = ""
		updated.ZelleInfo2 = ""
	} else {
		updated.MontoPagado = total
		updated.MontoPagado2 = in.SecondAmount
		updated.Excedente = decimal.Zero
		if total.GreaterThan(fee) {
			updated.Excedente = total.Sub(fee)
		}
		updated.Pago = total.GreaterThanOrEqual(fee)

		updated.FormaPago = MethodNone
		if in.Amount.IsPositive() {
			updated.FormaPago = in.Method
		}
		updated.Referencia = ""
		if updated.FormaPago == MethodPagoMovil {
			updated.Referencia = in.Referencia
		}
		updated.ZelleInfo = ""
		if updated.FormaPago == MethodZelle {
			updated.ZelleInfo = in.ZelleInfo
		}

		updated.SegundaFormaPago = in.SecondMethod
		updated.Referencia2 = ""
		if in.SecondMethod == MethodPagoMovil {
			updated.Referencia2 = in.Referencia2
		}
		updated.ZelleInfo2 = ""
		if in.SecondMethod == MethodZelle {
			updated.ZelleInfo2 = in.ZelleInfo2
		}
	}

	// History append policy: only when the cumulative amount actually moved
	// and is positive. The rate is captured as of this moment; display-time
	// rates may differ and that is intentional.
	if total.IsPositive() && !total.Equal(existing.MontoPagado) {
		rateValue := decimal.Zero
		if rates != nil {
			if rate, err := rates.GetRate(ctx); err == nil {
				rateValue = rate.Value
			}
		}
		entry := PaymentRecord{Fecha: now, Monto: total, TasaBCV: rateValue}
		updated.HistorialPagos = append(slices.Clone(existing.HistorialPagos), entry)
		updated.FechaPago = now
		updated.TasaBCVPago = rateValue
	} else {
		updated.HistorialPagos = existing.HistorialPagos
	}

	return updated, nil
}
