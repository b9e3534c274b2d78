package model

import "time"

// Quote is the fee breakdown for an amount
type Quote struct {
	Input        string `json:"input"`
	Formatted    string `json:"formatted"`
	Amount       string `json:"amount"`
	FeePercent   string `json:"feePercent"`
	Fee          string `json:"fee"`
	Receive      string `json:"receive"`
	Valid        bool   `json:"valid"`
	Message      string `json:"message,omitempty"`
	LimitsLabel  string `json:"limitsLabel"`
	AmountCents  uint64 `json:"amountCents"`
	FeeCents     uint64 `json:"feeCents"`
	ReceiveCents uint64 `json:"receiveCents"`
}

// SessionResponse is a point-in-time view of a session
type SessionResponse struct {
	ID               string            `json:"id"`
	Step             Step              `json:"step"`
	Steps            []StepView        `json:"steps"`
	Details          PaymentDetails    `json:"details"`
	Quote            *Quote            `json:"quote,omitempty"`
	PayPalConnected  bool              `json:"paypalConnected"`
	PayPalConnecting bool              `json:"paypalConnecting"`
	ResolvingENS     bool              `json:"resolvingEns"`
	Submitting       bool              `json:"submitting"`
	Wallet           WalletConnection  `json:"wallet"`
	Network          *NetworkStatus    `json:"network,omitempty"`
	Status           TransactionStatus `json:"status"`
	TxHash           string            `json:"txHash,omitempty"`
	ExplorerURL      string            `json:"explorerUrl,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// HealthResponse represents response for GET /healthz
type HealthResponse struct {
	Status        string `json:"status"`
	Sessions      int    `json:"sessions"`
	UptimeSeconds int    `json:"uptime_seconds"`
}
