package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AlexZinkM/settlement-ramp/bridge"
	_ "github.com/AlexZinkM/settlement-ramp/docs"
	"github.com/AlexZinkM/settlement-ramp/internal/api"
	"github.com/AlexZinkM/settlement-ramp/internal/common"
	"github.com/AlexZinkM/settlement-ramp/internal/config"
	"github.com/AlexZinkM/settlement-ramp/internal/events"
	"github.com/AlexZinkM/settlement-ramp/internal/handler"
	"github.com/AlexZinkM/settlement-ramp/internal/idempotency"
	"github.com/AlexZinkM/settlement-ramp/internal/logging"
	"github.com/AlexZinkM/settlement-ramp/internal/session"
	"github.com/AlexZinkM/settlement-ramp/internal/shutdown"
)

// @title        Settlement Ramp API
// @version      1.0
// @description  PayPal to USDC on Base bridge wizard with simulated settlement
// @BasePath     /
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.Get()

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	settings, err := bridge.SettingsFromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	// Status events
	var publisher events.Publisher = events.NewLogPublisher(log)
	if cfg.KafkaAddr != "" {
		writer := events.NewWriter(strings.Split(cfg.KafkaAddr, ","))
		defer writer.Close()
		publisher = events.NewKafkaPublisher(log, writer, cfg.KafkaTopic)
		log.Info("status events go to kafka", "topic", cfg.KafkaTopic)
	}
	stream := events.NewStreamPublisher()
	defer stream.Close()
	publisher = events.Fanout{publisher, stream}

	// Idempotency keys
	var idem idempotency.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		idem = idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL)
	} else {
		mem := idempotency.NewMemoryStore(cfg.IdempotencyTTL, log)
		mem.StartSweeper(ctx, cfg.SweepInterval)
		idem = mem
	}

	entropy := common.SystemEntropy()
	store := session.NewStore(cfg.SessionTTL, session.Options{
		SettleDelay: cfg.SettleDelay,
		SuccessRate: cfg.SuccessRate,
		Entropy:     entropy,
		Events:      publisher,
		Logger:      log,
	})
	store.StartSweeper(ctx, cfg.SweepInterval)
	defer store.CloseAll()

	h := handler.NewBridgeHandler(store, bridge.New(settings, entropy, log), idem, log).WithStream(stream)

	srv := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           api.SetupRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http listening", "addr", srv.Addr, "explorer", config.GetExplorerBaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	log.Info("settlement-ramp shutdown complete")
	return nil
}
