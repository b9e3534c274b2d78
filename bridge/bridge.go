// Package bridge implements the PayPal to USDC wizard steps on top of a session.
// Every PayPal, ENS and chain interaction is simulated with a delay and a random outcome.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AlexZinkM/settlement-ramp/internal/common"
	"github.com/AlexZinkM/settlement-ramp/internal/config"
)

// Settings holds the parsed amounts and delays the bridge runs with
type Settings struct {
	FeeBasisPoints uint64
	MinMicro       uint64
	MaxMicro       uint64

	PayPalConnectDelay time.Duration
	ENSResolveDelay    time.Duration
	SubmitDelay        time.Duration

	ExplorerBaseURL string
	BaseChainID     int64
}

// DefaultSettings mirrors the defaults of internal/config with every delay set to zero.
func DefaultSettings() Settings {
	return Settings{
		FeeBasisPoints:  100,
		MinMicro:        10_000_000,
		MaxMicro:        10_000_000_000,
		ExplorerBaseURL: "https://basescan.org",
		BaseChainID:     8453,
	}
}

// SettingsFromConfig converts the string amounts of the env config to exact units.
func SettingsFromConfig(c *config.Config) (Settings, error) {
	bps, err := common.PercentToBasisPoints(c.FeePercent)
	if err != nil {
		return Settings{}, fmt.Errorf("invalid FEE_PERCENT %q: %w", c.FeePercent, err)
	}
	minMicro, err := common.USDToMicro(c.MinAmount)
	if err != nil {
		return Settings{}, fmt.Errorf("invalid MIN_AMOUNT %q: %w", c.MinAmount, err)
	}
	maxMicro, err := common.USDToMicro(c.MaxAmount)
	if err != nil {
		return Settings{}, fmt.Errorf("invalid MAX_AMOUNT %q: %w", c.MaxAmount, err)
	}
	if minMicro > maxMicro {
		return Settings{}, fmt.Errorf("MIN_AMOUNT %s is above MAX_AMOUNT %s", c.MinAmount, c.MaxAmount)
	}

	return Settings{
		FeeBasisPoints:     bps,
		MinMicro:           minMicro,
		MaxMicro:           maxMicro,
		PayPalConnectDelay: c.PayPalConnectDelay,
		ENSResolveDelay:    c.ENSResolveDelay,
		SubmitDelay:        c.SubmitDelay,
		ExplorerBaseURL:    c.ExplorerBaseURL,
		BaseChainID:        c.BaseChainID,
	}, nil
}

// Bridge runs the wizard operations. It holds no per-user state; everything lives in the
// session passed to each call, so one Bridge serves all sessions.
type Bridge struct {
	settings Settings
	entropy  common.Entropy
	log      *slog.Logger
	now      func() time.Time
}

// New creates a Bridge. A nil entropy falls back to the system source.
func New(settings Settings, entropy common.Entropy, logger *slog.Logger) *Bridge {
	if entropy == nil {
		entropy = common.SystemEntropy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		settings: settings,
		entropy:  entropy,
		log:      logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Settings returns the settings the bridge was created with
func (b *Bridge) Settings() Settings {
	return b.settings
}

// wait blocks for d or until either context is done.
func wait(ctx, sessionCtx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return sessionCtx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-sessionCtx.Done():
		return sessionCtx.Err()
	}
}
