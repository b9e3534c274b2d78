package model

// ErrorResponse is the single JSON shape returned for every failed request.
// Code is machine readable; Error carries the inline message shown next to the field.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes
const (
	CodeInvalidAmount      = "invalid_amount"
	CodeInvalidEmail       = "invalid_email"
	CodeInvalidAddress     = "invalid_address"
	CodeMissingAddress     = "missing_address"
	CodeNotENSName         = "not_ens_name"
	CodeWalletNotConnected = "wallet_not_connected"
	CodePayPalNotConnected = "paypal_not_connected"
	CodeUnknownField       = "unknown_field"
	CodeInvalidStep        = "invalid_step"
	CodeInvalidTransition  = "invalid_transition"
	CodeBusy               = "busy"
	CodeLocked             = "session_locked"
	CodeDuplicate          = "duplicate_request"
	CodeNotFound           = "not_found"
	CodeBadRequest         = "bad_request"
	CodeInternal           = "internal"
)
