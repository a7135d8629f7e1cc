package participant

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "inscripciones/pkg/domain-errors"
)

var fee = decimal.NewFromInt(8)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func Test_Classify(t *testing.T) {
	tests := []struct {
		name       string
		monto      decimal.Decimal
		exento     bool
		legacyPago bool
		want       Status
		wantOwed   decimal.Decimal
		wantExtra  decimal.Decimal
	}{
		{
			name:     "zero amount is fully pending",
			monto:    decimal.Zero,
			want:     StatusPendingFull,
			wantOwed: fee,
		},
		{
			name:     "partial payment owes the difference",
			monto:    dec("5"),
			want:     StatusPendingPartial,
			wantOwed: dec("3"),
		},
		{
			name:  "exact fee is paid",
			monto: dec("8"),
			want:  StatusPaid,
		},
		{
			name:      "above fee is overpaid with surplus",
			monto:     dec("10"),
			want:      StatusOverpaid,
			wantExtra: dec("2"),
		},
		{
			name:   "exemption wins over any amount",
			monto:  dec("10"),
			exento: true,
			want:   StatusExempt,
		},
		{
			name:       "exemption wins over legacy flag",
			exento:     true,
			legacyPago: true,
			monto:      decimal.Zero,
			want:       StatusExempt,
		},
		{
			name:       "legacy flag with zero amount is paid",
			monto:      decimal.Zero,
			legacyPago: true,
			want:       StatusPaid,
		},
		{
			name:       "recorded amount overrides legacy flag",
			monto:      dec("5"),
			legacyPago: true,
			want:       StatusPendingPartial,
			wantOwed:   dec("3"),
		},
		{
			name:  "fractional partial",
			monto: dec("7.99"),
			want:  StatusPendingPartial,

			wantOwed: dec("0.01"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Classify(tt.monto, tt.exento, tt.legacyPago, fee)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Status)

			wantOwed := tt.wantOwed
			if wantOwed.IsZero() {
				wantOwed = decimal.Zero
			}
			assert.True(t, c.Owed.Equal(wantOwed), "owed = %s, want %s", c.Owed, wantOwed)

			wantExtra := tt.wantExtra
			if wantExtra.IsZero() {
				wantExtra = decimal.Zero
			}
			assert.True(t, c.Surplus.Equal(wantExtra), "surplus = %s, want %s", c.Surplus, wantExtra)
		})
	}
}

func Test_Classify_LegacyPaidMarked(t *testing.T) {
	c, err := Classify(decimal.Zero, false, true, fee)
	require.NoError(t, err)
	assert.True(t, c.LegacyPaid)

	c, err = Classify(fee, false, false, fee)
	require.NoError(t, err)
	assert.False(t, c.LegacyPaid)
}

func Test_Classify_NegativeAmountRejected(t *testing.T) {
	_, err := Classify(dec("-1"), false, false, fee)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func Test_Status_Helpers(t *testing.T) {
	assert.True(t, StatusPendingFull.Pending())
	assert.True(t, StatusPendingPartial.Pending())
	assert.False(t, StatusPaid.Pending())

	assert.True(t, StatusPaid.Satisfied())
	assert.True(t, StatusOverpaid.Satisfied())
	assert.False(t, StatusExempt.Satisfied())
	assert.False(t, StatusPendingPartial.Satisfied())
}
