package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Well-known system accounts. Their identifiers are fixed small constants,
// far below anything NextID can generate.
var (
	// ClearingAccountID holds funds in transit from the mobile-money
	// provider before they reach a wallet.
	ClearingAccountID = U128(1)
	// FeesAccountID collects transfer fees as revenue.
	FeesAccountID = U128(2)
)

const (
	// DefaultBootstrapAttempts bounds how long startup waits for the engine.
	DefaultBootstrapAttempts = 10
	// DefaultBootstrapDelay is the fixed pause between attempts.
	DefaultBootstrapDelay = time.Second
)

// EnsureSystemAccounts idempotently creates the clearing and fees accounts.
// Safe to run on every startup.
func EnsureSystemAccounts(ctx context.Context, c *Client) error {
	if err := c.CreateAccount(ctx, ClearingAccountID, false); err != nil {
		return fmt.Errorf("clearing account: %w", err)
	}
	if err := c.CreateAccount(ctx, FeesAccountID, false); err != nil {
		return fmt.Errorf("fees account: %w", err)
	}
	return nil
}

// EnsureSystemAccountsWithRetry runs EnsureSystemAccounts, retrying
// transport failures a bounded number of times with a fixed delay so the
// process can outwait an engine that is still starting. Taxonomy errors are
// programming errors, not transient conditions, and abort immediately. The
// last failure is returned once attempts are exhausted.
func EnsureSystemAccountsWithRetry(ctx context.Context, c *Client, attempts int, delay time.Duration, logger *slog.Logger) error {
	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := EnsureSystemAccounts(ctx, c)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrInsufficientFunds) {
			return err
		}

		last = err
		if attempt == attempts {
			break
		}
		logger.Warn("ledger engine not ready", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return last
}
