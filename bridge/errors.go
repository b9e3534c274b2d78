package bridge

import "errors"

// Inline messages shown next to the offending field
const (
	MsgInvalidEmail       = "Please enter a valid email address"
	MsgNotENSName         = "This doesn't appear to be an ENS name (.eth)"
	MsgMissingAddress     = "Please enter a wallet address"
	MsgInvalidAddress     = "Please enter a valid Ethereum address"
	MsgPayPalNotConnected = "Please connect your PayPal account to continue"
	MsgWalletNotConnected = "Please connect a wallet first"
)

// ValidationError is a user input problem. It is reported inline and never ends the session.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// AsValidationError unwraps err to a ValidationError if it is one
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// ErrReceiptUnavailable is returned when a receipt is requested before the transaction settled.
var ErrReceiptUnavailable = errors.New("receipt is available once the transaction has settled")
