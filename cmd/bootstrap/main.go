// Command bootstrap creates the system ledger accounts and exits. It is
// meant to run once after a ledger cluster comes up, retrying while the
// replicas finish their startup handshake.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pesaflow/pesaflow/internal/config"
	"github.com/pesaflow/pesaflow/internal/infra"
	"github.com/pesaflow/pesaflow/internal/ledger"
	"github.com/pesaflow/pesaflow/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	engine, engineClose, err := infra.NewLedgerEngine(cfg)
	if err != nil {
		logger.Error("connect ledger engine", "error", err)
		os.Exit(1)
	}
	defer engineClose()

	client := ledger.NewClient(engine)
	err = ledger.EnsureSystemAccountsWithRetry(context.Background(), client,
		cfg.BootstrapAttempts, cfg.BootstrapDelay, logger)
	if err != nil {
		logger.Error("bootstrap system accounts", "error", err)
		os.Exit(1)
	}

	logger.Info("system accounts ready",
		"clearing_account", ledger.ClearingAccountID.String(),
		"fees_account", ledger.FeesAccountID.String(),
	)
}
