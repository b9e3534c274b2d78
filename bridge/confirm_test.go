package bridge

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/settlement-ramp/internal/model"
	"github.com/AlexZinkM/settlement-ramp/internal/session"
)

func TestSummary(t *testing.T) {
	b := newTestBridge()
	s := newTestSession(time.Hour, 0.5)
	walk(t, b, s)

	sum := b.Summary(s)
	assert.Equal(t, "$250.00", sum.Quote.Amount)
	assert.Equal(t, "$2.50", sum.Quote.Fee)
	assert.Equal(t, "$247.50", sum.Quote.Receive)
	assert.Equal(t, checksummed, sum.Wallet)
	assert.Equal(t, "a@b.com", sum.Email)
}

func TestSubmit_MovesToProcessing(t *testing.T) {
	b := newTestBridge()
	s := newTestSession(time.Hour, 0.5)
	defer s.Close()
	walk(t, b, s)

	resp, err := b.Submit(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, "0x"+strings.Repeat("ab", 32), resp.TxHash)
	assert.Len(t, resp.TxHash, 66)
	assert.Equal(t, model.TransactionStatusProcessing, resp.Status)
	assert.Equal(t, "https://basescan.org/tx/"+resp.TxHash, resp.ExplorerURL)
	assert.Equal(t, "Transaction submitted", resp.Title)
	assert.Equal(t, "Your transaction is now being processed", resp.Description)

	st := s.Snapshot()
	assert.Equal(t, model.TransactionStatusProcessing, st.Status)
	assert.Equal(t, resp.TxHash, st.TxHash)
	assert.False(t, st.Submitting)

	// a second submit while processing is a conflict, not a new transaction
	_, err = b.Submit(context.Background(), s)
	assert.ErrorIs(t, err, session.ErrInvalidTransition)
}

func TestSubmit_OnlyFromConfirmStep(t *testing.T) {
	b := newTestBridge()
	s := newTestSession(time.Hour, 0.5)

	_, err := b.Submit(context.Background(), s)
	assert.ErrorIs(t, err, session.ErrWrongStep)
	assert.Equal(t, model.TransactionStatusIdle, s.Snapshot().Status)
}

func TestSubmit_RechecksDraft(t *testing.T) {
	b := newTestBridge()
	s := newTestSession(time.Hour, 0.5)
	// jump to step 4 without passing any gate
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Advance())
	}

	_, err := b.Submit(context.Background(), s)
	requireValidation(t, err, model.CodeInvalidAmount)

	st := s.Snapshot()
	assert.Equal(t, model.TransactionStatusIdle, st.Status)
	assert.False(t, st.Submitting)
}

func TestSubmit_CancelledDuringDelay(t *testing.T) {
	settings := DefaultSettings()
	settings.SubmitDelay = time.Hour
	b := New(settings, fixedEntropy{}, quietLogger())
	s := newTestSession(time.Hour, 0.5)
	walk(t, b, s)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := b.Submit(ctx, s)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	st := s.Snapshot()
	assert.Equal(t, model.TransactionStatusIdle, st.Status)
	assert.Empty(t, st.TxHash)
	assert.False(t, st.Submitting)
}

func TestSubmit_SettlesAndResets(t *testing.T) {
	for _, tt := range []struct {
		draw float64
		want model.TransactionStatus
	}{
		{0.5, model.TransactionStatusSuccess},
		{0.05, model.TransactionStatusError},
	} {
		t.Run(string(tt.want), func(t *testing.T) {
			b := newTestBridge()
			s := newTestSession(5*time.Millisecond, tt.draw)
			defer s.Close()
			walk(t, b, s)

			_, err := b.Submit(context.Background(), s)
			require.NoError(t, err)
			require.Eventually(t, func() bool { return s.Snapshot().Status == tt.want }, time.Second, time.Millisecond)

			require.NoError(t, b.Reset(s))
			st := s.Snapshot()
			assert.Equal(t, model.TransactionStatusIdle, st.Status)
			assert.True(t, st.PayPalConnected)
			assert.Equal(t, model.StepConfirm, st.Step)
		})
	}
}

func TestReset_RequiresSettled(t *testing.T) {
	b := newTestBridge()
	s := newTestSession(time.Hour, 0.5)
	assert.ErrorIs(t, b.Reset(s), session.ErrInvalidTransition)
}
