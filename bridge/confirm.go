package bridge

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/settlement-ramp/internal/common"
	"github.com/AlexZinkM/settlement-ramp/internal/model"
	"github.com/AlexZinkM/settlement-ramp/internal/session"
)

const txHashBytes = 32

// Summary is the confirmation screen: what is paid, what is charged and where it goes
type Summary struct {
	Quote  model.Quote `json:"quote"`
	Wallet string      `json:"wallet"`
	Email  string      `json:"email"`
}

// Summary builds the review shown on step 4.
func (b *Bridge) Summary(s *session.Session) Summary {
	st := s.Snapshot()
	return Summary{
		Quote:  b.Quote(st.Details.Amount),
		Wallet: st.Details.WalletAddress,
		Email:  st.Details.Email,
	}
}

// Submit simulates sending the transaction: it waits the submit delay, draws a random hash
// and moves the session to processing, which arms the settle task.
// The draft is checked again because steps can be revisited after they were passed.
func (b *Bridge) Submit(ctx context.Context, s *session.Session) (*model.SubmitResponse, error) {
	st, err := s.BeginSubmit()
	if err != nil {
		return nil, err
	}

	if err := b.checkDraft(st); err != nil {
		s.AbortSubmit()
		return nil, err
	}

	if err := wait(ctx, s.Context(), b.settings.SubmitDelay); err != nil {
		s.AbortSubmit()
		b.log.Warn("submit aborted", "session_id", s.ID, "err", err)
		return nil, err
	}

	txHash := b.entropy.Hex(txHashBytes)
	if err := s.CompleteSubmit(txHash); err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	q := b.Quote(st.Details.Amount)
	b.log.Info("transaction submitted",
		"session_id", s.ID,
		"tx_hash", txHash,
		"amount_cents", q.AmountCents,
		"fee_cents", q.FeeCents,
	)

	return &model.SubmitResponse{
		TxHash:      txHash,
		Status:      model.TransactionStatusProcessing,
		ExplorerURL: b.ExplorerURL(txHash),
		Title:       "Transaction submitted",
		Description: "Your transaction is now being processed",
	}, nil
}

func (b *Bridge) checkDraft(st session.State) error {
	if !b.amountInRange(common.NumericMicro(st.Details.Amount)) {
		return invalid(model.CodeInvalidAmount, b.amountRangeMessage())
	}
	if !st.PayPalConnected {
		return invalid(model.CodePayPalNotConnected, MsgPayPalNotConnected)
	}
	return ValidateAddress(st.Details.WalletAddress)
}

// Reset returns a settled transaction to idle so the user can start over or try again.
func (b *Bridge) Reset(s *session.Session) error {
	return s.Reset()
}
