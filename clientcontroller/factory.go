package clientcontroller

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/babylonlabs-io/oracle-feeder/clientcontroller/api"
	"github.com/babylonlabs-io/oracle-feeder/clientcontroller/lcd"
	"github.com/babylonlabs-io/oracle-feeder/feeder/config"
)

// NewOracleController returns the controller used to read from and
// broadcast to the oracle chain.
func NewOracleController(cfg *config.ChainConfig, logger *zap.Logger) (api.OracleController, error) {
	cc, err := lcd.NewLCDController(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create LCD client: %w", err)
	}

	return cc, nil
}
