package participant

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inscripciones/internal/exchange"
)

func Test_Summarize_MixedPopulation(t *testing.T) {
	participants := []Participant{
		{MontoPagado: decimal.Zero},             // pending full
		{MontoPagado: dec("5")},                 // partial, owes 3
		{MontoPagado: dec("8")},                 // paid exact
		{MontoPagado: dec("10")},                // overpaid, surplus 2
		{Exento: true},                          // exempt
		{Pago: true, MontoPagado: decimal.Zero}, // legacy paid
	}

	report, err := Summarize(participants, fee, nil)
	require.NoError(t, err)

	assert.Equal(t, 6, report.TotalParticipants)
	assert.Equal(t, 1, report.Exempt)
	assert.Equal(t, 1, report.PendingFull)
	assert.Equal(t, 1, report.PendingPartial)
	assert.Equal(t, 2, report.Paid, "legacy satisfied counts as paid")
	assert.Equal(t, 1, report.Overpaid)

	// 5 non-exempt heads at 8 each.
	assert.True(t, report.USD.TotalPotential.Equal(dec("40")))
	// 0 + 5 + 8 + 8(capped) + 8(legacy) = 29.
	assert.True(t, report.USD.AmountCollected.Equal(dec("29")))
	// 8 + 3 still owed.
	assert.True(t, report.USD.AmountPending.Equal(dec("11")))
	assert.True(t, report.USD.SurplusTotal.Equal(dec("2")))
	assert.True(t, report.USD.DeficitFromExemptions.Equal(dec("8")))

	assert.Nil(t, report.Local, "no rate means no local-currency figures")
	assert.Nil(t, report.Rate)
}

// Collected plus pending must always reconcile with the potential for
// non-exempt participants.
func Test_Summarize_Reconciliation(t *testing.T) {
	participants := []Participant{
		{MontoPagado: dec("2")},
		{MontoPagado: dec("7.50")},
		{MontoPagado: dec("8")},
		{MontoPagado: dec("20")},
		{MontoPagado: decimal.Zero},
	}

	report, err := Summarize(participants, fee, nil)
	require.NoError(t, err)

	sum := report.USD.AmountCollected.Add(report.USD.AmountPending)
	assert.True(t, sum.Equal(report.USD.TotalPotential),
		"collected %s + pending %s != potential %s",
		report.USD.AmountCollected, report.USD.AmountPending, report.USD.TotalPotential)
}

func Test_Summarize_AllPaidExact(t *testing.T) {
	participants := []Participant{
		{MontoPagado: dec("8")},
		{MontoPagado: dec("8")},
		{MontoPagado: dec("8")},
	}

	report, err := Summarize(participants, fee, nil)
	require.NoError(t, err)

	assert.True(t, report.USD.AmountCollected.Equal(report.USD.TotalPotential))
	assert.True(t, report.USD.AmountPending.IsZero())
	assert.True(t, report.USD.SurplusTotal.IsZero())
}

func Test_Summarize_LocalCurrency(t *testing.T) {
	rate := &exchange.Rate{Value: dec("36.5"), Source: exchange.SourceAutomaticPrimary}
	participants := []Participant{
		{MontoPagado: dec("8")},
		{MontoPagado: decimal.Zero},
	}

	report, err := Summarize(participants, fee, rate)
	require.NoError(t, err)

	require.NotNil(t, report.Local)
	require.NotNil(t, report.Rate)
	assert.True(t, report.Local.TotalPotential.Equal(dec("16").Mul(dec("36.5"))))
	assert.True(t, report.Local.AmountCollected.Equal(dec("8").Mul(dec("36.5"))))
	assert.True(t, report.Local.AmountPending.Equal(dec("8").Mul(dec("36.5"))))
}

func Test_Summarize_Empty(t *testing.T) {
	report, err := Summarize(nil, fee, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, report.TotalParticipants)
	assert.True(t, report.USD.TotalPotential.IsZero())
	assert.True(t, report.USD.AmountCollected.IsZero())
}
