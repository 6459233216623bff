package config

import (
	"fmt"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap/zapcore"

	"github.com/babylonlabs-io/oracle-feeder/metrics"
	"github.com/babylonlabs-io/oracle-feeder/priceprovider"
	"github.com/babylonlabs-io/oracle-feeder/util"
)

const (
	defaultLogLevel       = zapcore.InfoLevel
	defaultLogFormat      = "console"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "feederd.log"
	defaultConfigFileName = "feederd.conf"
	defaultDataDirname    = "data"
	defaultLockFileName   = "feederd.lock"
	defaultPriceSource    = "http://127.0.0.1:8532/latest"
)

var (
	//   C:\Users\<username>\AppData\Local\ on Windows
	//   ~/.feederd on Linux
	//   ~/Users/<username>/Library/Application Support/Feederd on MacOS
	DefaultFeederdDir = btcutil.AppDataDir("feederd", false)

	DefaultDataDir = DataDir(DefaultFeederdDir)
)

// Config is the main config for the feederd cli command
type Config struct {
	LogLevel  string `long:"loglevel" description:"Logging level for all subsystems" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal"`
	LogFormat string `long:"logformat" description:"Format of the log output" choice:"console" choice:"json" choice:"logfmt"`

	ChainConfig *ChainConfig `group:"chain" namespace:"chain"`

	PriceSourceConfig *priceprovider.Config `group:"pricesource" namespace:"pricesource"`

	VotingConfig *VotingConfig `group:"voting" namespace:"voting"`

	DatabaseConfig *DBConfig `group:"dbconfig" namespace:"dbconfig"`

	Metrics *metrics.Config `group:"metrics" namespace:"metrics"`
}

func DefaultConfigWithHome(homePath string) Config {
	chainCfg := DefaultChainConfig()
	chainCfg.KeyDirectory = homePath
	priceCfg := priceprovider.DefaultConfig()
	priceCfg.Sources = []string{defaultPriceSource}
	votingCfg := DefaultVotingConfig()

	return Config{
		LogLevel:          defaultLogLevel.String(),
		LogFormat:         defaultLogFormat,
		ChainConfig:       &chainCfg,
		PriceSourceConfig: &priceCfg,
		VotingConfig:      &votingCfg,
		DatabaseConfig:    DefaultDBConfigWithHomePath(homePath),
		Metrics:           metrics.DefaultFeederConfig(),
	}
}

func DefaultConfig() Config {
	return DefaultConfigWithHome(DefaultFeederdDir)
}

func CfgFile(homePath string) string {
	return filepath.Join(homePath, defaultConfigFileName)
}

func LogDir(homePath string) string {
	return filepath.Join(homePath, defaultLogDirname)
}

func LogFile(homePath string) string {
	return filepath.Join(LogDir(homePath), defaultLogFilename)
}

func DataDir(homePath string) string {
	return filepath.Join(homePath, defaultDataDirname)
}

// LockFile is held by the running daemon so that two feeders never vote
// from the same home directory.
func LockFile(homePath string) string {
	return filepath.Join(homePath, defaultLockFileName)
}

// LoadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Load configuration file overwriting defaults with any specified options
//  3. Validate the result
func LoadConfig(homePath string) (*Config, error) {
	cfg, err := ReadConfig(homePath)
	if err != nil {
		return nil, err
	}

	// Make sure everything we just loaded makes sense.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ReadConfig parses the config file without validating it. Key management
// commands use it before the validator address is configured.
func ReadConfig(homePath string) (*Config, error) {
	// The home directory is required to have a configuration file with a specific name
	// under it.
	cfgFile := CfgFile(homePath)
	if !util.FileExists(cfgFile) {
		return nil, fmt.Errorf("specified config file does "+
			"not exist in %s", cfgFile)
	}

	// Next, load any additional configuration options from the file.
	cfg := DefaultConfigWithHome(homePath)
	// repeated options are appended by go-flags, drop the default source first
	cfg.PriceSourceConfig.Sources = nil
	fileParser := flags.NewParser(&cfg, flags.Default)
	if err := flags.NewIniParser(fileParser).ParseFile(cfgFile); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the given configuration to be sane. This makes sure no
// illegal values or a combination of values are set.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	if cfg.ChainConfig == nil {
		return fmt.Errorf("chain config cannot be empty")
	}
	if err := cfg.ChainConfig.Validate(); err != nil {
		return fmt.Errorf("chain configuration validation failed: %w", err)
	}

	if cfg.PriceSourceConfig == nil {
		return fmt.Errorf("price source config cannot be empty")
	}
	if err := cfg.PriceSourceConfig.Validate(); err != nil {
		return fmt.Errorf("price source configuration validation failed: %w", err)
	}

	if cfg.VotingConfig == nil {
		return fmt.Errorf("voting config cannot be empty")
	}
	if err := cfg.VotingConfig.Validate(); err != nil {
		return fmt.Errorf("voting configuration validation failed: %w", err)
	}

	if cfg.DatabaseConfig == nil {
		return fmt.Errorf("database config cannot be empty")
	}
	if err := cfg.DatabaseConfig.Validate(); err != nil {
		return fmt.Errorf("database configuration validation failed: %w", err)
	}

	// Validate metrics configuration
	if cfg.Metrics == nil {
		return fmt.Errorf("metrics configuration cannot be empty")
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics configuration validation failed: %w", err)
	}

	return nil
}
