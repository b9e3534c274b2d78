package bridge

import (
	"context"
	"regexp"
	"strings"

	"github.com/AlexZinkM/settlement-ramp/internal/model"
	"github.com/AlexZinkM/settlement-ramp/internal/session"
)

// emailPattern is the common browser-side email shape. RE2 has no lookahead, so the
// leading dot and double dot rules are checked separately in ValidateEmail.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9_'+\-.]*[A-Za-z0-9_+\-]@([A-Za-z0-9][A-Za-z0-9\-]*\.)+[A-Za-z]{2,}$`)

// ValidateEmail checks the address syntactically. Nothing is sent anywhere.
func ValidateEmail(email string) error {
	if strings.HasPrefix(email, ".") || strings.Contains(email, "..") || !emailPattern.MatchString(email) {
		return invalid(model.CodeInvalidEmail, MsgInvalidEmail)
	}
	return nil
}

// ConnectPayPal validates the drafted email, waits the connect delay and marks the session
// connected. A cancelled ctx or a closed session aborts the connect without setting the flag.
func (b *Bridge) ConnectPayPal(ctx context.Context, s *session.Session) error {
	email, err := s.BeginPayPalConnect()
	if err != nil {
		return err
	}

	if err := ValidateEmail(email); err != nil {
		_ = s.EndPayPalConnect(false)
		return err
	}

	if err := wait(ctx, s.Context(), b.settings.PayPalConnectDelay); err != nil {
		_ = s.EndPayPalConnect(false)
		b.log.Warn("paypal connect aborted", "session_id", s.ID, "err", err)
		return err
	}

	return s.EndPayPalConnect(true)
}

// DisconnectPayPal clears the connected flag. The email stays in the draft.
func (b *Bridge) DisconnectPayPal(s *session.Session) error {
	return s.DisconnectPayPal()
}

// ContinueFromPayPal advances past step 2 once PayPal is connected.
func (b *Bridge) ContinueFromPayPal(s *session.Session) error {
	return s.AdvanceFrom(model.StepPayPal, func(st session.State) error {
		if !st.PayPalConnected {
			return invalid(model.CodePayPalNotConnected, MsgPayPalNotConnected)
		}
		return nil
	})
}
