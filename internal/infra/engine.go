package infra

import (
	"fmt"

	"github.com/pesaflow/pesaflow/internal/config"
	"github.com/pesaflow/pesaflow/internal/ledger"
)

// NewLedgerEngine connects to the configured TigerBeetle cluster. The
// returned closer must be called on shutdown.
func NewLedgerEngine(cfg config.Config) (ledger.Engine, func(), error) {
	if len(cfg.EngineAddresses) == 0 {
		return nil, nil, fmt.Errorf("at least one engine replica address is required")
	}
	return ledger.NewTigerBeetleEngine(cfg.ClusterID, cfg.EngineAddresses)
}
