package participant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_CapitalizeWords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"maria", "Maria"},
		{"MARIA JOSE", "Maria Jose"},
		{"  maría   del carmen  ", "María Del Carmen"},
		{"o", "O"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CapitalizeWords(tt.in), "input %q", tt.in)
	}
}

func Test_CalculateAge(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	age, ok := CalculateAge("1990-06-15", now)
	assert.True(t, ok)
	assert.Equal(t, 35, age, "birthday today counts the full year")

	age, ok = CalculateAge("1990-06-16", now)
	assert.True(t, ok)
	assert.Equal(t, 34, age, "birthday tomorrow has not happened yet")

	age, ok = CalculateAge("1990-12-01", now)
	assert.True(t, ok)
	assert.Equal(t, 34, age)

	_, ok = CalculateAge("not-a-date", now)
	assert.False(t, ok)

	_, ok = CalculateAge("15/06/1990", now)
	assert.False(t, ok)

	_, ok = CalculateAge("2030-01-01", now)
	assert.False(t, ok, "future dates do not produce a negative age")
}

func Test_PaymentMethod_Selectable(t *testing.T) {
	assert.True(t, MethodNone.Selectable())
	assert.True(t, MethodPagoMovil.Selectable())
	assert.True(t, MethodEfectivo.Selectable())
	assert.True(t, MethodZelle.Selectable())

	assert.False(t, MethodExento.Selectable(), "exempt is system-set, never staff-picked")
	assert.False(t, PaymentMethod("Cheque").Selectable())
}
