package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	DefaultPollInterval          = time.Second
	DefaultRequiredConfirmations = 12
	DefaultMaxBlockRangeSize     = 1000
	DefaultMaxSubmissionAttempts = 5
	DefaultSubmissionWatchBlocks = 100
)

type RPCConfig struct {
	Host    string        `yaml:"host"`
	Timeout time.Duration `yaml:"timeout"`
}

type ChainConfig struct {
	RPC             *RPCConfig    `yaml:"rpc"`
	ChainID         string        `yaml:"chain_id"`
	BlockTime       time.Duration `yaml:"block_time"`
	SafeLogsRequest bool          `yaml:"safe_logs_request"`
}

// DepositTxConfig carries the fixed transaction parameters used for
// mirrored deposit submissions. Fee bidding is intentionally static.
type DepositTxConfig struct {
	GasLimit uint64 `yaml:"gas_limit"`
	GasPrice uint64 `yaml:"gas_price"`
	Value    uint64 `yaml:"value"`
}

type BridgeSideConfig struct {
	ChainName             string           `yaml:"chain"`
	Chain                 *ChainConfig     `yaml:"-"`
	Address               string           `yaml:"address"`
	Account               string           `yaml:"account"`
	StartBlock            uint             `yaml:"start_block"`
	RequiredConfirmations uint             `yaml:"required_confirmations"`
	MaxBlockRangeSize     uint             `yaml:"max_block_range_size"`
	PollInterval          time.Duration    `yaml:"poll_interval"`
	DepositTx             *DepositTxConfig `yaml:"deposit_tx"`
}

func (c *BridgeSideConfig) ContractAddress() common.Address {
	return common.HexToAddress(c.Address)
}

func (c *BridgeSideConfig) AccountAddress() common.Address {
	return common.HexToAddress(c.Account)
}

type BridgeConfig struct {
	ID                    string            `yaml:"-"`
	Home                  *BridgeSideConfig `yaml:"home"`
	Foreign               *BridgeSideConfig `yaml:"foreign"`
	MaxSubmissionAttempts uint              `yaml:"max_submission_attempts"`
	SubmissionWatchBlocks uint              `yaml:"submission_watch_blocks"`
}

type DBConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       string `yaml:"database"`
}

type PresenterConfig struct {
	Host string `yaml:"host"`
}

type Config struct {
	Chains    map[string]*ChainConfig  `yaml:"chains"`
	Bridges   map[string]*BridgeConfig `yaml:"bridges"`
	DBConfig  *DBConfig                `yaml:"postgres"`
	LogLevel  string                   `yaml:"log_level"`
	Presenter *PresenterConfig         `yaml:"presenter"`
}

func (c *Config) init() error {
	for id, bridge := range c.Bridges {
		bridge.ID = id
		if bridge.MaxSubmissionAttempts == 0 {
			bridge.MaxSubmissionAttempts = DefaultMaxSubmissionAttempts
		}
		if bridge.SubmissionWatchBlocks == 0 {
			bridge.SubmissionWatchBlocks = DefaultSubmissionWatchBlocks
		}
		for _, side := range [2]*BridgeSideConfig{bridge.Home, bridge.Foreign} {
			if side == nil {
				return fmt.Errorf("bridge %s must configure both home and foreign sides", id)
			}
			chain, ok := c.Chains[side.ChainName]
			if !ok {
				return fmt.Errorf("bridge %s references unknown chain %s", id, side.ChainName)
			}
			side.Chain = chain
			if !common.IsHexAddress(side.Address) {
				return fmt.Errorf("bridge %s on chain %s has invalid contract address %q", id, side.ChainName, side.Address)
			}
			if !common.IsHexAddress(side.Account) {
				return fmt.Errorf("bridge %s on chain %s has invalid signing account %q", id, side.ChainName, side.Account)
			}
			if side.PollInterval == 0 {
				side.PollInterval = DefaultPollInterval
			}
			if side.RequiredConfirmations == 0 {
				side.RequiredConfirmations = DefaultRequiredConfirmations
			}
			if side.MaxBlockRangeSize == 0 {
				side.MaxBlockRangeSize = DefaultMaxBlockRangeSize
			}
			if side.DepositTx == nil {
				side.DepositTx = &DepositTxConfig{}
			}
		}
	}
	return nil
}

// ReadConfigWithEnv parses the given yaml blob, expanding ${VAR} placeholders
// from the process environment before decoding.
func ReadConfigWithEnv(blob []byte) (*Config, error) {
	blob = []byte(os.ExpandEnv(string(blob)))
	cfg := new(Config)
	if err := parseYaml(cfg, blob); err != nil {
		return nil, err
	}
	if err := cfg.init(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func ReadConfigFromFile(path string) (*Config, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file: %w", err)
	}
	return ReadConfigWithEnv(blob)
}
