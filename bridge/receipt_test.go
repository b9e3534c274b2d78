package bridge

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/settlement-ramp/internal/model"
)

func TestShortHash(t *testing.T) {
	hash := "0x" + strings.Repeat("0123456789abcdef", 4)
	assert.Equal(t, "0x01234567...89abcdef", ShortHash(hash))
	assert.Equal(t, "0xabc", ShortHash("0xabc"))
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "0x5aAe...eAed", ShortAddress(checksummed))
}

func TestExplorerURL(t *testing.T) {
	settings := DefaultSettings()
	settings.ExplorerBaseURL = "https://sepolia.basescan.org/"
	b := New(settings, fixedEntropy{}, quietLogger())

	assert.Equal(t, "https://sepolia.basescan.org/tx/0xfeed", b.ExplorerURL("0xfeed"))
}

func TestSettlementID_Deterministic(t *testing.T) {
	at := time.Unix(1_700_000_000, 0)
	a := SettlementID(checksummed, "250", at)

	assert.Len(t, a, 66)
	assert.True(t, strings.HasPrefix(a, "0x"))
	assert.Equal(t, a, SettlementID(checksummed, "250", at))
	assert.NotEqual(t, a, SettlementID(checksummed, "251", at))
	assert.NotEqual(t, a, SettlementID(checksummed, "250", at.Add(time.Second)))
}

func TestStatus_Copy(t *testing.T) {
	b := newTestBridge()

	s := newTestSession(time.Hour, 0.5)
	resp := b.Status(s)
	assert.Equal(t, model.TransactionStatusIdle, resp.Status)
	assert.Empty(t, resp.Title)
	assert.Empty(t, resp.TxHash)

	s = newTestSession(50*time.Millisecond, 0.01)
	defer s.Close()
	walk(t, b, s)
	_, err := b.Submit(context.Background(), s)
	require.NoError(t, err)

	resp = b.Status(s)
	assert.Equal(t, model.TransactionStatusProcessing, resp.Status)
	assert.Equal(t, "Transaction In Progress", resp.Title)
	assert.Equal(t, "0xabababab...abababab", resp.ShortHash)

	require.Eventually(t, func() bool { return s.Snapshot().Status == model.TransactionStatusError }, time.Second, time.Millisecond)
	resp = b.Status(s)
	assert.Equal(t, "Transaction Failed", resp.Title)
	assert.Equal(t, "The transaction failed due to network congestion. Please try again in a few minutes.", resp.Detail)
}

func TestReceipt(t *testing.T) {
	b := newTestBridge()
	s := newTestSession(50*time.Millisecond, 0.5)
	defer s.Close()
	walk(t, b, s)

	_, err := b.Receipt(s)
	assert.ErrorIs(t, err, ErrReceiptUnavailable)

	_, err = b.Submit(context.Background(), s)
	require.NoError(t, err)

	_, err = b.Receipt(s)
	assert.ErrorIs(t, err, ErrReceiptUnavailable)

	require.Eventually(t, func() bool { return s.Snapshot().Status == model.TransactionStatusSuccess }, time.Second, time.Millisecond)

	r, err := b.Receipt(s)
	require.NoError(t, err)

	st := s.Snapshot()
	assert.Equal(t, "TX-"+st.SubmittedAt.Format("20060102")+"-42", r.ID)
	assert.Equal(t, SettlementID(checksummed, "250", st.SubmittedAt), r.SettlementID)
	assert.Equal(t, "$250.00", r.Amount)
	assert.Equal(t, "$2.50", r.Fee)
	assert.Equal(t, "$247.50", r.Received)
	assert.Equal(t, "0x5aAe...eAed", r.Wallet)
	assert.Equal(t, "a@b.com", r.Email)
	assert.Equal(t, "Completed", r.Status)
	assert.Equal(t, model.TransactionStatusSuccess, r.TxStatus)
	assert.Equal(t, st.TxHash, r.TxHash)

	png, err := base64.StdEncoding.DecodeString(r.QR)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(png[:4]))
}
