package bridge

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AlexZinkM/settlement-ramp/internal/model"
	"github.com/AlexZinkM/settlement-ramp/internal/session"
)

const (
	addressLength = common.AddressLength // bytes
	ensSuffix     = ".eth"
)

// IsENSName reports whether the input is meant to be resolved instead of used as is.
func IsENSName(value string) bool {
	return strings.HasSuffix(value, ensSuffix)
}

// ValidateAddress accepts a 0x-prefixed 20-byte hex address. An all-lowercase address is
// accepted as is; any uppercase letter makes the EIP-55 checksum mandatory.
func ValidateAddress(address string) error {
	if address == "" {
		return invalid(model.CodeMissingAddress, MsgMissingAddress)
	}
	if !strings.HasPrefix(address, "0x") || len(address) != 2+2*addressLength || !common.IsHexAddress(address) {
		return invalid(model.CodeInvalidAddress, MsgInvalidAddress)
	}
	if strings.ToLower(address) != address && common.HexToAddress(address).Hex() != address {
		return invalid(model.CodeInvalidAddress, MsgInvalidAddress)
	}
	return nil
}

// ResolveENS replaces a drafted .eth name with an address after the resolve delay.
// The address is random; no resolver is queried.
func (b *Bridge) ResolveENS(ctx context.Context, s *session.Session) (string, error) {
	name, err := s.BeginResolve()
	if err != nil {
		return "", err
	}

	if !IsENSName(name) {
		_ = s.EndResolve("")
		return "", invalid(model.CodeNotENSName, MsgNotENSName)
	}

	if err := wait(ctx, s.Context(), b.settings.ENSResolveDelay); err != nil {
		_ = s.EndResolve("")
		b.log.Warn("ens resolve aborted", "session_id", s.ID, "err", err)
		return "", err
	}

	address := b.entropy.Hex(addressLength)
	if err := s.EndResolve(address); err != nil {
		return "", err
	}
	b.log.Info("ens name resolved", "session_id", s.ID, "name", name)
	return address, nil
}

// UseConnectedWallet copies the wallet extension's account into the draft.
func (b *Bridge) UseConnectedWallet(s *session.Session) (string, error) {
	address, err := s.UseConnectedWallet()
	if errors.Is(err, session.ErrWalletNotConnected) {
		return "", invalid(model.CodeWalletNotConnected, MsgWalletNotConnected)
	}
	return address, err
}

// ContinueFromWallet advances past step 3 when the drafted address is valid.
func (b *Bridge) ContinueFromWallet(s *session.Session) error {
	return s.AdvanceFrom(model.StepWallet, func(st session.State) error {
		return ValidateAddress(st.Details.WalletAddress)
	})
}

// ReportWalletConnection records the account and chain the wallet extension reports.
func (b *Bridge) ReportWalletConnection(s *session.Session, req model.WalletConnectionRequest) error {
	if err := req.Validate(); err != nil {
		return invalid(model.CodeBadRequest, err.Error())
	}
	if err := ValidateAddress(req.Address); err != nil {
		return err
	}
	return s.SetWalletConnection(req.Address, req.ChainID)
}

// ClearWalletConnection records that the wallet extension disconnected.
func (b *Bridge) ClearWalletConnection(s *session.Session) error {
	return s.ClearWalletConnection()
}

// NetworkStatus labels the chain the wallet is on.
func (b *Bridge) NetworkStatus(chainID int64) model.NetworkStatus {
	ns := model.NetworkStatus{ChainID: chainID, Label: "Wrong Network"}
	if chainID == b.settings.BaseChainID {
		ns.IsBaseNetwork = true
		ns.Label = "Base Network"
	}
	return ns
}
