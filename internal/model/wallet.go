package model

import (
	"fmt"
	"strings"
)

// PaymentDetails is the wizard draft accumulated across steps
type PaymentDetails struct {
	Amount        string `json:"amount"`
	WalletAddress string `json:"walletAddress"`
	Email         string `json:"email"`
}

// Field names accepted by SetField
const (
	FieldAmount        = "amount"
	FieldEmail         = "email"
	FieldWalletAddress = "walletAddress"
)

// Step is a wizard screen, 1 through 4
type Step int

const (
	StepAmount  Step = 1
	StepPayPal  Step = 2
	StepWallet  Step = 3
	StepConfirm Step = 4
)

// Label returns the step caption
func (s Step) Label() string {
	switch s {
	case StepAmount:
		return "Amount"
	case StepPayPal:
		return "PayPal"
	case StepWallet:
		return "Wallet"
	case StepConfirm:
		return "Confirm"
	}
	return fmt.Sprintf("Step %d", int(s))
}

// StepView is one entry of the progress indicator
type StepView struct {
	Number    int    `json:"number"`
	Label     string `json:"label"`
	Completed bool   `json:"completed"`
	Current   bool   `json:"current"`
}

// WalletConnection is the account reported by the browser wallet extension
type WalletConnection struct {
	Connected bool   `json:"connected"`
	Address   string `json:"address,omitempty"`
	ChainID   int64  `json:"chainId,omitempty"`
}

// DisplayAddress shortens the address the way the header button shows it: 0x1234...abcd
func (w WalletConnection) DisplayAddress() string {
	if len(w.Address) < 10 {
		return w.Address
	}
	return w.Address[:6] + "..." + w.Address[len(w.Address)-4:]
}

// WalletConnectionRequest represents request for PUT /sessions/{id}/wallet-connection
type WalletConnectionRequest struct {
	Address string `json:"address"`
	ChainID int64  `json:"chainId"`
}

// Validate validates the reported wallet connection
func (r *WalletConnectionRequest) Validate() error {
	if strings.TrimSpace(r.Address) == "" {
		return fmt.Errorf("address is required")
	}
	if r.ChainID <= 0 {
		return fmt.Errorf("chainId must be positive")
	}
	return nil
}

// NetworkStatus shows whether the connected wallet is on the expected chain
type NetworkStatus struct {
	ChainID       int64  `json:"chainId"`
	IsBaseNetwork bool   `json:"isBaseNetwork"`
	Label         string `json:"label"`
}

// FieldRequest represents request for PUT /sessions/{id}/fields/{name}
type FieldRequest struct {
	Value string `json:"value"`
}
