package model

import "time"

// TransactionStatus is the lifecycle of a simulated settlement
type TransactionStatus string

const (
	TransactionStatusIdle       TransactionStatus = "idle"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusSuccess    TransactionStatus = "success"
	TransactionStatusError      TransactionStatus = "error"
)

// Settled reports whether the status is a terminal outcome of a submission.
func (s TransactionStatus) Settled() bool {
	return s == TransactionStatusSuccess || s == TransactionStatusError
}

// StatusResponse represents response for GET /sessions/{id}/status
type StatusResponse struct {
	Status      TransactionStatus `json:"status"`
	TxHash      string            `json:"txHash,omitempty"`
	ShortHash   string            `json:"shortHash,omitempty"`
	ExplorerURL string            `json:"explorerUrl,omitempty"`
	Title       string            `json:"title,omitempty"`
	Message     string            `json:"message,omitempty"`
	Detail      string            `json:"detail,omitempty"`
}

// SubmitResponse represents response for POST /sessions/{id}/confirm
type SubmitResponse struct {
	TxHash      string            `json:"txHash"`
	Status      TransactionStatus `json:"status"`
	ExplorerURL string            `json:"explorerUrl"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
}

// Receipt represents response for GET /sessions/{id}/receipt
type Receipt struct {
	ID           string            `json:"id"`
	SettlementID string            `json:"settlementId"`
	Date         time.Time         `json:"date"`
	Amount       string            `json:"amount"`
	Fee          string            `json:"fee"`
	Received     string            `json:"received"`
	Wallet       string            `json:"wallet"`
	Email        string            `json:"email"`
	Status       string            `json:"status"`
	TxStatus     TransactionStatus `json:"txStatus"`
	TxHash       string            `json:"txHash"`
	ExplorerURL  string            `json:"explorerUrl"`
	QR           string            `json:"QR"` // base64 PNG of the explorer URL
}

// StatusEvent is published on every status transition
type StatusEvent struct {
	SessionID string            `json:"sessionId"`
	From      TransactionStatus `json:"from"`
	To        TransactionStatus `json:"to"`
	TxHash    string            `json:"txHash,omitempty"`
	At        time.Time         `json:"at"`
}
