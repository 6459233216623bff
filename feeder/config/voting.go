package config

import (
	"fmt"
	"time"

	"github.com/babylonlabs-io/oracle-feeder/types"
)

const (
	defaultLoopInterval    = 15 * time.Second
	defaultMinLoopInterval = 10 * time.Second
	defaultVotePeriod      = uint64(10)
	defaultRegressionLimit = uint32(5)
)

type VotingConfig struct {
	Denoms                string        `long:"denoms" description:"Currencies to vote for, either \"all\" or a comma separated list such as krw,usd,sdr"`
	VotePeriod            uint64        `long:"voteperiod" description:"The length of a vote period in blocks, as set by the oracle module"`
	LoopInterval          time.Duration `long:"loopinterval" description:"The targeted time between the start of two voting iterations"`
	MinLoopInterval       time.Duration `long:"minloopinterval" description:"The minimum pause between two voting iterations"`
	HeightRegressionLimit uint32        `long:"heightregressionlimit" description:"The number of consecutive iterations reading a lower block height after which the lower height is accepted"`
}

func DefaultVotingConfig() VotingConfig {
	return VotingConfig{
		Denoms:          types.AllDenoms,
		VotePeriod:      defaultVotePeriod,
		LoopInterval:    defaultLoopInterval,
		MinLoopInterval: defaultMinLoopInterval,

		HeightRegressionLimit: defaultRegressionLimit,
	}
}

func (cfg *VotingConfig) Validate() error {
	if _, err := types.ParseDenomFilter(cfg.Denoms); err != nil {
		return err
	}
	if cfg.VotePeriod < 2 {
		return fmt.Errorf("vote period must be at least 2 blocks, got %d", cfg.VotePeriod)
	}
	if cfg.HeightRegressionLimit == 0 {
		return fmt.Errorf("height regression limit must be positive")
	}
	if cfg.MinLoopInterval <= 0 {
		return fmt.Errorf("min loop interval must be positive, got %v", cfg.MinLoopInterval)
	}
	if cfg.LoopInterval < cfg.MinLoopInterval {
		return fmt.Errorf("loop interval %v must not be shorter than the min loop interval %v",
			cfg.LoopInterval, cfg.MinLoopInterval)
	}

	return nil
}
