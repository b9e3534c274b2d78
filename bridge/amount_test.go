package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/settlement-ramp/internal/model"
)

func TestQuote_Breakdown(t *testing.T) {
	b := newTestBridge()

	q := b.Quote("250")
	assert.True(t, q.Valid)
	assert.Empty(t, q.Message)
	assert.Equal(t, "$250.00", q.Amount)
	assert.Equal(t, "$2.50", q.Fee)
	assert.Equal(t, "$247.50", q.Receive)
	assert.Equal(t, "1", q.FeePercent)
	assert.Equal(t, uint64(250), q.FeeCents)
	assert.Equal(t, "Min: $10.00 - Max: $10,000.00", q.LimitsLabel)
}

func TestQuote_FeeRoundsHalfUp(t *testing.T) {
	b := newTestBridge()

	tests := []struct {
		input   string
		fee     string
		receive string
	}{
		{"10.50", "$0.11", "$10.39"},
		{"10.49", "$0.10", "$10.39"},
		{"1234.56", "$12.35", "$1,222.21"},
		{"10000", "$100.00", "$9,900.00"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q := b.Quote(tt.input)
			assert.Equal(t, tt.fee, q.Fee)
			assert.Equal(t, tt.receive, q.Receive)
			// fee + receive always adds back up to the amount
			assert.Equal(t, q.AmountCents, q.FeeCents+q.ReceiveCents)
		})
	}
}

func TestQuote_Limits(t *testing.T) {
	b := newTestBridge()
	msg := "Please enter an amount between $10.00 and $10,000.00"

	tests := []struct {
		input   string
		valid   bool
		message string
	}{
		{"10", true, ""},
		{"10000", true, ""},
		{"9.99", false, msg},
		{"10000.01", false, msg},
		{"5", false, msg},
		{"", false, ""},
		{"0", false, ""},
		{"abc", false, ""},
		{"1.2.3", false, ""},
		{"18446744073710", false, msg},
		{"99999999999999999999", false, msg},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q := b.Quote(tt.input)
			assert.Equal(t, tt.valid, q.Valid)
			assert.Equal(t, tt.message, q.Message)
		})
	}
}

func TestQuote_HugeAmountIsOutOfRange(t *testing.T) {
	q := newTestBridge().Quote("18446744073710")
	assert.False(t, q.Valid)
	assert.NotEqual(t, "$0.00", q.Amount)
	assert.NotEqual(t, "$0.00", q.Fee)
	assert.Equal(t, "18,446,744,073,710", q.Formatted)
}

func TestQuote_SanitizesAndFormats(t *testing.T) {
	q := newTestBridge().Quote("$1,250.555")
	assert.Equal(t, "1250.555", q.Input)
	assert.Equal(t, "1,250.55", q.Formatted)
	assert.Equal(t, "$1,250.56", q.Amount)
}

func TestContinueFromAmount(t *testing.T) {
	b := newTestBridge()
	s := newTestSession(time.Hour, 0.5)

	require.NoError(t, b.SetField(s, model.FieldAmount, "5"))
	err := b.ContinueFromAmount(s)
	ve := requireValidation(t, err, model.CodeInvalidAmount)
	assert.Equal(t, "Please enter an amount between $10.00 and $10,000.00", ve.Message)
	assert.Equal(t, model.StepAmount, s.Snapshot().Step)

	// an empty amount is blocked as well, only the hint is hidden
	require.NoError(t, b.SetField(s, model.FieldAmount, ""))
	requireValidation(t, b.ContinueFromAmount(s), model.CodeInvalidAmount)

	require.NoError(t, b.SetField(s, model.FieldAmount, "18446744073710"))
	requireValidation(t, b.ContinueFromAmount(s), model.CodeInvalidAmount)

	require.NoError(t, b.SetField(s, model.FieldAmount, "250"))
	require.NoError(t, b.ContinueFromAmount(s))
	assert.Equal(t, model.StepPayPal, s.Snapshot().Step)
}

func TestQuote_CustomFee(t *testing.T) {
	settings := DefaultSettings()
	settings.FeeBasisPoints = 75
	q := New(settings, fixedEntropy{}, quietLogger()).Quote("100")

	assert.Equal(t, "0.75", q.FeePercent)
	assert.Equal(t, "$0.75", q.Fee)
	assert.Equal(t, "$99.25", q.Receive)
}
