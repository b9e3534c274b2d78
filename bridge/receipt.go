package bridge

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"
	"golang.org/x/crypto/sha3"

	"github.com/AlexZinkM/settlement-ramp/internal/model"
	"github.com/AlexZinkM/settlement-ramp/internal/session"
)

const (
	receiptIDSpace = 1_000_000
	qrSize         = 256
)

// Status screen copy per outcome
var statusCopy = map[model.TransactionStatus]struct{ title, message, detail string }{
	model.TransactionStatusProcessing: {
		title:   "Transaction In Progress",
		message: "Please wait while we process your payment. This may take a few moments.",
	},
	model.TransactionStatusSuccess: {
		title:   "Transaction Complete!",
		message: "Your payment has been processed successfully. USDC has been sent to your wallet.",
	},
	model.TransactionStatusError: {
		title:   "Transaction Failed",
		message: "We encountered an error while processing your transaction. Don't worry, no funds have been transferred.",
		detail:  "The transaction failed due to network congestion. Please try again in a few minutes.",
	},
}

// ExplorerURL links a transaction hash on the block explorer.
func (b *Bridge) ExplorerURL(txHash string) string {
	return strings.TrimRight(b.settings.ExplorerBaseURL, "/") + "/tx/" + txHash
}

// ShortHash keeps the first 10 and last 8 characters: 0x12345678...9abcdef0
func ShortHash(txHash string) string {
	if len(txHash) <= 18 {
		return txHash
	}
	return txHash[:10] + "..." + txHash[len(txHash)-8:]
}

// ShortAddress keeps the first 6 and last 4 characters: 0x1234...5678
func ShortAddress(address string) string {
	return model.WalletConnection{Address: address}.DisplayAddress()
}

// Status reports the transaction state and the copy the status screen shows for it.
func (b *Bridge) Status(s *session.Session) model.StatusResponse {
	st := s.Snapshot()
	resp := model.StatusResponse{Status: st.Status}
	if st.TxHash != "" {
		resp.TxHash = st.TxHash
		resp.ShortHash = ShortHash(st.TxHash)
		resp.ExplorerURL = b.ExplorerURL(st.TxHash)
	}
	if c, ok := statusCopy[st.Status]; ok {
		resp.Title = c.title
		resp.Message = c.message
		resp.Detail = c.detail
	}
	return resp
}

// Receipt summarizes a settled transaction. It is only available on success or error.
func (b *Bridge) Receipt(s *session.Session) (*model.Receipt, error) {
	st := s.Snapshot()
	if !st.Status.Settled() || st.TxHash == "" {
		return nil, ErrReceiptUnavailable
	}

	q := b.Quote(st.Details.Amount)
	explorerURL := b.ExplorerURL(st.TxHash)

	qr, err := generateQRCode(explorerURL)
	if err != nil {
		return nil, err
	}

	label := "Completed"
	if st.Status == model.TransactionStatusError {
		label = "Failed"
	}

	return &model.Receipt{
		ID:           b.receiptID(st.SubmittedAt),
		SettlementID: SettlementID(st.Details.WalletAddress, q.Input, st.SubmittedAt),
		Date:         st.SubmittedAt,
		Amount:       q.Amount,
		Fee:          q.Fee,
		Received:     q.Receive,
		Wallet:       ShortAddress(st.Details.WalletAddress),
		Email:        st.Details.Email,
		Status:       label,
		TxStatus:     st.Status,
		TxHash:       st.TxHash,
		ExplorerURL:  explorerURL,
		QR:           qr,
	}, nil
}

// receiptID formats TX-YYYYMMDD-n with a random n below one million
func (b *Bridge) receiptID(at time.Time) string {
	if at.IsZero() {
		at = b.now()
	}
	return fmt.Sprintf("TX-%s-%d", at.UTC().Format("20060102"), b.entropy.IntN(receiptIDSpace))
}

// SettlementID derives a stable identifier for one submission: Keccak-256 over
// wallet, amount and unix seconds.
func SettlementID(wallet, amount string, at time.Time) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(wallet))
	h.Write([]byte(amount))
	h.Write([]byte(strconv.FormatInt(at.Unix(), 10)))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// generateQRCode generates QR code of the explorer link in base64
func generateQRCode(content string) (string, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(qrSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
