// Package session holds the per-user bridge state: the wizard draft, the PayPal and wallet
// connection flags, and the transaction lifecycle with its settle task.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AlexZinkM/settlement-ramp/internal/common"
	"github.com/AlexZinkM/settlement-ramp/internal/model"
)

// EventSink receives every status transition.
type EventSink interface {
	Publish(ctx context.Context, ev model.StatusEvent) error
}

// Options configures a new Session
type Options struct {
	SettleDelay time.Duration
	SuccessRate float64
	Entropy     common.Entropy
	Events      EventSink
	Logger      *slog.Logger
}

// Session is one wizard run. All methods are safe for concurrent use; simulated delays
// happen outside the lock so reads never wait on a timer.
type Session struct {
	ID string

	mu sync.Mutex
	// pubMu is taken before mu is released after a transition, so events leave in transition order
	pubMu sync.Mutex

	step             model.Step
	details          model.PaymentDetails
	paypalConnected  bool
	paypalConnecting bool
	resolvingENS     bool
	submitting       bool
	wallet           model.WalletConnection

	status      model.TransactionStatus
	txHash      string
	submittedAt time.Time
	generation  uint64
	settleTimer *time.Timer

	createdAt  time.Time
	updatedAt  time.Time
	lastAccess time.Time

	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	settleDelay time.Duration
	successRate float64
	entropy     common.Entropy
	events      EventSink
	log         *slog.Logger
}

// State is a copy of the session fields taken under the lock
type State struct {
	ID               string
	Step             model.Step
	Details          model.PaymentDetails
	PayPalConnected  bool
	PayPalConnecting bool
	ResolvingENS     bool
	Submitting       bool
	Wallet           model.WalletConnection
	Status           model.TransactionStatus
	TxHash           string
	SubmittedAt      time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// New creates a session at step 1 with an empty draft and idle status.
func New(id string, opts Options) *Session {
	if opts.Entropy == nil {
		opts.Entropy = common.SystemEntropy()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now().UTC()
	return &Session{
		ID:          id,
		step:        model.StepAmount,
		status:      model.TransactionStatusIdle,
		createdAt:   now,
		updatedAt:   now,
		lastAccess:  now,
		ctx:         ctx,
		cancel:      cancel,
		settleDelay: opts.SettleDelay,
		successRate: opts.SuccessRate,
		entropy:     opts.Entropy,
		events:      opts.Events,
		log:         opts.Logger.With("session_id", id),
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{
		ID:               s.ID,
		Step:             s.step,
		Details:          s.details,
		PayPalConnected:  s.paypalConnected,
		PayPalConnecting: s.paypalConnecting,
		ResolvingENS:     s.resolvingENS,
		Submitting:       s.submitting,
		Wallet:           s.wallet,
		Status:           s.status,
		TxHash:           s.txHash,
		SubmittedAt:      s.submittedAt,
		CreatedAt:        s.createdAt,
		UpdatedAt:        s.updatedAt,
	}
}

// Context is cancelled when the session is closed.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Close stops the settle task and makes every further mutation fail with ErrClosed.
// Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
	s.cancel()
	s.log.Debug("session closed")
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) touchLocked() {
	now := time.Now().UTC()
	s.updatedAt = now
	s.lastAccess = now
}

func (s *Session) markAccess() {
	s.mu.Lock()
	s.lastAccess = time.Now().UTC()
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}
