package session

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexZinkM/settlement-ramp/internal/model"
)

// transitions lists every reachable edge of the transaction lifecycle:
// idle -> processing -> {success, error} -> idle
var transitions = map[model.TransactionStatus][]model.TransactionStatus{
	model.TransactionStatusIdle:       {model.TransactionStatusProcessing},
	model.TransactionStatusProcessing: {model.TransactionStatusSuccess, model.TransactionStatusError},
	model.TransactionStatusSuccess:    {model.TransactionStatusIdle},
	model.TransactionStatusError:      {model.TransactionStatusIdle},
}

// CanTransition reports whether from -> to is an edge of the lifecycle.
func CanTransition(from, to model.TransactionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *Session) transitionLocked(to model.TransactionStatus) (model.StatusEvent, error) {
	from := s.status
	if !CanTransition(from, to) {
		return model.StatusEvent{}, fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
	}
	s.status = to
	s.touchLocked()
	s.log.Info("transaction status changed", "from", string(from), "to", string(to), "tx_hash", s.txHash)
	return model.StatusEvent{
		SessionID: s.ID,
		From:      from,
		To:        to,
		TxHash:    s.txHash,
		At:        s.updatedAt,
	}, nil
}

// unlockAndPublish releases mu and publishes ev ahead of any later transition.
func (s *Session) unlockAndPublish(ev model.StatusEvent) {
	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()
	s.publish(ev)
}

func (s *Session) publish(ev model.StatusEvent) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Error("status event publish failed", "to", string(ev.To), "err", err)
	}
}

// BeginSubmit marks a submission as in flight. It is allowed only on the confirmation step
// while the transaction is idle.
func (s *Session) BeginSubmit() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return State{}, ErrClosed
	}
	if s.submitting {
		return State{}, fmt.Errorf("submit: %w", ErrBusy)
	}
	if s.status != model.TransactionStatusIdle {
		return State{}, fmt.Errorf("submit from %s: %w", s.status, ErrInvalidTransition)
	}
	if s.step != model.StepConfirm {
		return State{}, fmt.Errorf("submit on step %d: %w", s.step, ErrWrongStep)
	}
	s.submitting = true
	s.touchLocked()
	return s.stateLocked(), nil
}

// AbortSubmit clears the in-flight flag without any status change.
func (s *Session) AbortSubmit() {
	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()
}

// CompleteSubmit records the transaction hash, moves idle -> processing and schedules the
// settle task.
func (s *Session) CompleteSubmit(txHash string) error {
	s.mu.Lock()
	s.submitting = false
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	prev := s.txHash
	s.txHash = txHash
	ev, err := s.transitionLocked(model.TransactionStatusProcessing)
	if err != nil {
		s.txHash = prev
		s.mu.Unlock()
		return err
	}
	s.submittedAt = s.updatedAt
	s.generation++
	s.scheduleSettleLocked(s.generation)
	s.unlockAndPublish(ev)
	return nil
}

// scheduleSettleLocked arms the single settle timer for submission gen.
// The timer is stopped by Close; nothing else cancels it.
func (s *Session) scheduleSettleLocked(gen uint64) {
	if s.closed || gen != s.generation || s.status != model.TransactionStatusProcessing {
		return
	}
	if s.settleTimer != nil {
		s.settleTimer.Stop()
	}
	s.settleTimer = time.AfterFunc(s.settleDelay, func() { s.settle(gen) })
}

func (s *Session) settle(gen uint64) {
	s.mu.Lock()
	if s.closed || s.ctx.Err() != nil || gen != s.generation || s.status != model.TransactionStatusProcessing {
		s.mu.Unlock()
		return
	}
	s.settleTimer = nil

	to := model.TransactionStatusError
	if s.entropy.Float64() >= 1-s.successRate {
		to = model.TransactionStatusSuccess
	}
	ev, err := s.transitionLocked(to)
	if err != nil {
		s.mu.Unlock()
		s.log.Error("settle failed", "err", err)
		return
	}
	s.unlockAndPublish(ev)
}

// Reset returns a settled transaction to idle. Connection flags, step, draft and the last
// hash are kept.
func (s *Session) Reset() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	ev, err := s.transitionLocked(model.TransactionStatusIdle)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.unlockAndPublish(ev)
	return nil
}
