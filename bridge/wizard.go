package bridge

import (
	"fmt"

	"github.com/AlexZinkM/settlement-ramp/internal/common"
	"github.com/AlexZinkM/settlement-ramp/internal/model"
	"github.com/AlexZinkM/settlement-ramp/internal/session"
)

// fieldSteps maps each draft field to the screen that edits it
var fieldSteps = map[string]model.Step{
	model.FieldAmount:        model.StepAmount,
	model.FieldEmail:         model.StepPayPal,
	model.FieldWalletAddress: model.StepWallet,
}

// SetField writes a draft field from its own screen. The amount is sanitized to digits and
// dots first; email and wallet address are stored as typed.
func (b *Bridge) SetField(s *session.Session, name, value string) error {
	step, ok := fieldSteps[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, session.ErrUnknownField)
	}
	if name == model.FieldAmount {
		value = common.SanitizeAmountInput(value)
	}
	return s.SetFieldOn(step, name, value)
}

// Steps builds the progress indicator for the current step
func Steps(current model.Step) []model.StepView {
	views := make([]model.StepView, 0, int(model.StepConfirm))
	for step := model.StepAmount; step <= model.StepConfirm; step++ {
		views = append(views, model.StepView{
			Number:    int(step),
			Label:     step.Label(),
			Completed: step < current,
			Current:   step == current,
		})
	}
	return views
}

// View renders the full session snapshot for the client.
func (b *Bridge) View(s *session.Session) model.SessionResponse {
	st := s.Snapshot()
	q := b.Quote(st.Details.Amount)

	resp := model.SessionResponse{
		ID:               st.ID,
		Step:             st.Step,
		Steps:            Steps(st.Step),
		Details:          st.Details,
		Quote:            &q,
		PayPalConnected:  st.PayPalConnected,
		PayPalConnecting: st.PayPalConnecting,
		ResolvingENS:     st.ResolvingENS,
		Submitting:       st.Submitting,
		Wallet:           st.Wallet,
		Status:           st.Status,
		TxHash:           st.TxHash,
		CreatedAt:        st.CreatedAt,
		UpdatedAt:        st.UpdatedAt,
	}
	if st.Wallet.Connected {
		ns := b.NetworkStatus(st.Wallet.ChainID)
		resp.Network = &ns
	}
	if st.TxHash != "" {
		resp.ExplorerURL = b.ExplorerURL(st.TxHash)
	}
	return resp
}
