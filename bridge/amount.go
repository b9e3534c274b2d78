package bridge

import (
	"fmt"

	"github.com/AlexZinkM/settlement-ramp/internal/common"
	"github.com/AlexZinkM/settlement-ramp/internal/model"
	"github.com/AlexZinkM/settlement-ramp/internal/session"
)

// Quote computes the fee breakdown for a raw amount input.
// fee = round(amount * fee%, 2) half up, receive = amount - fee. Malformed input counts as zero.
func (b *Bridge) Quote(input string) model.Quote {
	sanitized := common.SanitizeAmountInput(input)
	micro := common.NumericMicro(sanitized)

	feeCents := common.PercentOfMicroInCents(micro, b.settings.FeeBasisPoints)
	feeMicro := common.CentsToMicro(feeCents)
	var receiveMicro uint64
	if micro > feeMicro {
		receiveMicro = micro - feeMicro
	}

	amountCents := common.RoundMicroToCents(micro)
	receiveCents := common.RoundMicroToCents(receiveMicro)
	valid := b.amountInRange(micro)

	q := model.Quote{
		Input:        sanitized,
		Formatted:    common.FormatUSDInput(sanitized),
		Amount:       common.FormatUSDDisplay(amountCents),
		FeePercent:   common.BasisPointsToPercent(b.settings.FeeBasisPoints),
		Fee:          common.FormatUSDDisplay(feeCents),
		Receive:      common.FormatUSDDisplay(receiveCents),
		Valid:        valid,
		LimitsLabel:  fmt.Sprintf("Min: %s - Max: %s", b.minLabel(), b.maxLabel()),
		AmountCents:  amountCents,
		FeeCents:     feeCents,
		ReceiveCents: receiveCents,
	}
	// the hint stays hidden until something positive has been typed
	if micro > 0 && !valid {
		q.Message = b.amountRangeMessage()
	}
	return q
}

// ContinueFromAmount advances past step 1 when the drafted amount is within the limits.
func (b *Bridge) ContinueFromAmount(s *session.Session) error {
	return s.AdvanceFrom(model.StepAmount, func(st session.State) error {
		if !b.amountInRange(common.NumericMicro(st.Details.Amount)) {
			return invalid(model.CodeInvalidAmount, b.amountRangeMessage())
		}
		return nil
	})
}

func (b *Bridge) amountInRange(micro uint64) bool {
	return micro >= b.settings.MinMicro && micro <= b.settings.MaxMicro
}

func (b *Bridge) amountRangeMessage() string {
	return fmt.Sprintf("Please enter an amount between %s and %s", b.minLabel(), b.maxLabel())
}

func (b *Bridge) minLabel() string {
	return common.FormatUSDDisplay(common.RoundMicroToCents(b.settings.MinMicro))
}

func (b *Bridge) maxLabel() string {
	return common.FormatUSDDisplay(common.RoundMicroToCents(b.settings.MaxMicro))
}
