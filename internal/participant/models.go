package participant

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates how a participant paid. MethodExento is only ever
// set by the system when the exemption flag is on.
type PaymentMethod string

const (
	MethodNone      PaymentMethod = ""
	MethodPagoMovil PaymentMethod = "Pago movil"
	MethodEfectivo  PaymentMethod = "Efectivo"
	MethodZelle     PaymentMethod = "Zelle"
	MethodExento    PaymentMethod = "Exento"
)

// Selectable reports whether staff may pick this method on a form.
func (m PaymentMethod) Selectable() bool {
	switch m {
	case MethodNone, MethodPagoMovil, MethodEfectivo, MethodZelle:
		return true
	}
	return false
}

// PaymentRecord is one entry of the append-only payment history. Monto is the
// cumulative amount at the time of the write, TasaBCV the rate at that moment
// (zero when no source was reachable). Entries are never mutated or removed.
type PaymentRecord struct {
	Fecha   time.Time       `json:"fecha"`
	Monto   decimal.Decimal `json:"monto"`
	TasaBCV decimal.Decimal `json:"tasaBCV"`
}

// Participant is one registered person. Monetary fields are USD; edad is
// derived from fechaNacimiento at write time and not re-derived on reads.
type Participant struct {
	ID              string `json:"id"`
	Cedula          string `json:"cedula"`
	Nombre          string `json:"nombre"`
	Apellido        string `json:"apellido"`
	Telefono        string `json:"telefono"`
	FechaNacimiento string `json:"fechaNacimiento"`
	Edad            int    `json:"edad"`

	Miembro   bool `json:"miembro"`
	Bautizado bool `json:"bautizado"`
	Exento    bool `json:"exento"`

	// Pago is the legacy satisfied flag. It is kept in sync with the amount
	// on every write; records created before per-amount tracking may carry
	// pago=true with a zero amount, which classification honors.
	Pago         bool            `json:"pago"`
	MontoPagado  decimal.Decimal `json:"montoPagado"`
	MontoPagado2 decimal.Decimal `json:"montoPagado2"`
	Excedente    decimal.Decimal `json:"excedente"`

	FormaPago        PaymentMethod `json:"formaPago"`
	Referencia       string        `json:"referencia"`
	ZelleInfo        string        `json:"zelleInfo"`
	SegundaFormaPago PaymentMethod `json:"segundaFormaPago"`
	Referencia2      string        `json:"referencia2"`
	ZelleInfo2       string        `json:"zelleInfo2"`

	// FechaPago and TasaBCVPago mirror the newest history entry.
	FechaPago      time.Time       `json:"fechaPago,omitzero"`
	TasaBCVPago    decimal.Decimal `json:"tasaBCVPago"`
	HistorialPagos []PaymentRecord `json:"historialPagos"`

	RegistradoPor string    `json:"registradoPor"`
	CreatedAt     time.Time `json:"timestamp"`
}

// birthDateLayout is the wire format for fechaNacimiento.
const birthDateLayout = "2006-01-02"

// CalculateAge derives whole years between the birth date and now. Returns
// false when the date does not parse.
func CalculateAge(fechaNacimiento string, now time.Time) (int, bool) {
	born, err := time.Parse(birthDateLayout, fechaNacimiento)
	if err != nil {
		return 0, false
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() ||
		(now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}

// CapitalizeWords uppercases the first letter of every word and lowercases the
// rest, matching how names are normalized at entry.
func CapitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
