package session

import (
	"fmt"

	"github.com/AlexZinkM/settlement-ramp/internal/model"
)

// editableLocked reports why the draft cannot change right now, if it cannot.
func (s *Session) editableLocked() error {
	if s.closed {
		return ErrClosed
	}
	if s.status != model.TransactionStatusIdle {
		return ErrLocked
	}
	if s.submitting {
		return ErrBusy
	}
	return nil
}

func (s *Session) requireStepLocked(step model.Step) error {
	if s.step != step {
		return fmt.Errorf("on step %d, not %d: %w", s.step, step, ErrWrongStep)
	}
	return nil
}

// Advance moves to the next step. No validation happens here; step gates call AdvanceFrom.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	return s.advanceLocked()
}

func (s *Session) advanceLocked() error {
	if s.step >= model.StepConfirm {
		return fmt.Errorf("cannot advance past step %d: %w", s.step, ErrStepBounds)
	}
	s.step++
	s.touchLocked()
	s.log.Debug("wizard advanced", "step", int(s.step))
	return nil
}

// AdvanceFrom runs gate against the current state and advances only when the session is on
// step from and gate returns nil. The check and the move happen under one lock.
func (s *Session) AdvanceFrom(from model.Step, gate func(State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	if err := s.requireStepLocked(from); err != nil {
		return err
	}
	if gate != nil {
		if err := gate(s.stateLocked()); err != nil {
			return err
		}
	}
	return s.advanceLocked()
}

// Retreat moves to the previous step. Later-step data is kept.
func (s *Session) Retreat() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	if s.step <= model.StepAmount {
		return fmt.Errorf("cannot go back from step %d: %w", s.step, ErrStepBounds)
	}
	s.step--
	s.touchLocked()
	s.log.Debug("wizard retreated", "step", int(s.step))
	return nil
}

// SetField stores a raw value in the draft. Callers sanitize before calling.
func (s *Session) SetField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	return s.setFieldLocked(name, value)
}

// SetFieldOn is SetField restricted to the screen that owns the field.
func (s *Session) SetFieldOn(step model.Step, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	if err := s.requireStepLocked(step); err != nil {
		return err
	}
	return s.setFieldLocked(name, value)
}

func (s *Session) setFieldLocked(name, value string) error {
	switch name {
	case model.FieldAmount:
		s.details.Amount = value
	case model.FieldEmail:
		s.details.Email = value
	case model.FieldWalletAddress:
		s.details.WalletAddress = value
	default:
		return fmt.Errorf("%q: %w", name, ErrUnknownField)
	}
	s.touchLocked()
	return nil
}

// BeginPayPalConnect marks a connect as in flight and returns the email to connect with.
func (s *Session) BeginPayPalConnect() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return "", err
	}
	if err := s.requireStepLocked(model.StepPayPal); err != nil {
		return "", err
	}
	if s.paypalConnecting {
		return "", fmt.Errorf("paypal connect: %w", ErrBusy)
	}
	s.paypalConnecting = true
	s.touchLocked()
	return s.details.Email, nil
}

// EndPayPalConnect clears the in-flight flag and sets connected when ok is true.
func (s *Session) EndPayPalConnect(ok bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paypalConnecting = false
	if s.closed {
		return ErrClosed
	}
	if ok {
		s.paypalConnected = true
		s.log.Info("paypal connected")
	}
	s.touchLocked()
	return nil
}

// DisconnectPayPal clears the connected flag and nothing else.
func (s *Session) DisconnectPayPal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return err
	}
	if err := s.requireStepLocked(model.StepPayPal); err != nil {
		return err
	}
	s.paypalConnected = false
	s.touchLocked()
	s.log.Info("paypal disconnected")
	return nil
}

// BeginResolve marks an ENS resolution as in flight and returns the name being resolved.
func (s *Session) BeginResolve() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return "", err
	}
	if err := s.requireStepLocked(model.StepWallet); err != nil {
		return "", err
	}
	if s.resolvingENS {
		return "", fmt.Errorf("ens resolve: %w", ErrBusy)
	}
	s.resolvingENS = true
	s.touchLocked()
	return s.details.WalletAddress, nil
}

// EndResolve clears the in-flight flag and, when address is not empty, replaces the
// wallet field with it.
func (s *Session) EndResolve(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolvingENS = false
	if s.closed {
		return ErrClosed
	}
	if address != "" {
		s.details.WalletAddress = address
	}
	s.touchLocked()
	return nil
}

// SetWalletConnection records the account reported by the wallet extension.
// It is read-only input and allowed in any status.
func (s *Session) SetWalletConnection(address string, chainID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.wallet = model.WalletConnection{Connected: true, Address: address, ChainID: chainID}
	s.touchLocked()
	s.log.Info("wallet connection reported", "chain_id", chainID)
	return nil
}

// ClearWalletConnection records that the wallet extension disconnected.
func (s *Session) ClearWalletConnection() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.wallet = model.WalletConnection{}
	s.touchLocked()
	return nil
}

// UseConnectedWallet copies the reported wallet address into the draft.
func (s *Session) UseConnectedWallet() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editableLocked(); err != nil {
		return "", err
	}
	if err := s.requireStepLocked(model.StepWallet); err != nil {
		return "", err
	}
	if !s.wallet.Connected || s.wallet.Address == "" {
		return "", ErrWalletNotConnected
	}
	s.details.WalletAddress = s.wallet.Address
	s.touchLocked()
	return s.wallet.Address, nil
}
