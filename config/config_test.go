package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blue32captain/parity-bridge/config"
)

const testCfg = `
chains:
  mainnet:
    rpc:
      host: https://mainnet.infura.io/v3/${INFURA_PROJECT_KEY}
      timeout: 30s
    chain_id: 1
    block_time: 15s
  kovan:
    rpc:
      host: https://kovan.infura.io/v3/${INFURA_PROJECT_KEY}
      timeout: 20s
    chain_id: 42
    block_time: 4s
    safe_logs_request: true
bridges:
  kovan:
    home:
      chain: mainnet
      address: 0x7301CFA0e1756B71869E93d4e4Dca5c7d0eb0AA6
      account: 0x73cA9C4e72fF109259cf7374F038faf950949C51
      start_block: 6478411
      required_confirmations: 12
      max_block_range_size: 2000
      deposit_tx:
        gas_limit: 100000
        gas_price: 1000000000
    foreign:
      chain: kovan
      address: 0x4aa42145Aa6Ebf72e164C9bBC74fbD3788045016
      account: 0x73cA9C4e72fF109259cf7374F038faf950949C51
      start_block: 756
      poll_interval: 2s
    max_submission_attempts: 4
postgres:
  user: test_user
  password: test_password
  host: test_host
  port: 5432
  database: test_db
log_level: info
presenter:
  host: 0.0.0.0:3333
`

//nolint:paralleltest
func TestReadConfigWithEnv(t *testing.T) {
	t.Setenv("INFURA_PROJECT_KEY", "12345678")
	cfg, err := config.ReadConfigWithEnv([]byte(testCfg))
	require.NoError(t, err)

	mainnetChainCfg := &config.ChainConfig{
		RPC: &config.RPCConfig{
			Host:    "https://mainnet.infura.io/v3/12345678",
			Timeout: 30 * time.Second,
		},
		ChainID:   "1",
		BlockTime: 15 * time.Second,
	}
	kovanChainCfg := &config.ChainConfig{
		RPC: &config.RPCConfig{
			Host:    "https://kovan.infura.io/v3/12345678",
			Timeout: 20 * time.Second,
		},
		ChainID:         "42",
		BlockTime:       4 * time.Second,
		SafeLogsRequest: true,
	}
	require.Equal(t, &config.Config{
		Chains: map[string]*config.ChainConfig{
			"mainnet": mainnetChainCfg,
			"kovan":   kovanChainCfg,
		},
		Bridges: map[string]*config.BridgeConfig{
			"kovan": {
				ID: "kovan",
				Home: &config.BridgeSideConfig{
					ChainName:             "mainnet",
					Chain:                 mainnetChainCfg,
					Address:               "0x7301CFA0e1756B71869E93d4e4Dca5c7d0eb0AA6",
					Account:               "0x73cA9C4e72fF109259cf7374F038faf950949C51",
					StartBlock:            6478411,
					RequiredConfirmations: 12,
					MaxBlockRangeSize:     2000,
					PollInterval:          time.Second,
					DepositTx: &config.DepositTxConfig{
						GasLimit: 100000,
						GasPrice: 1000000000,
					},
				},
				Foreign: &config.BridgeSideConfig{
					ChainName:             "kovan",
					Chain:                 kovanChainCfg,
					Address:               "0x4aa42145Aa6Ebf72e164C9bBC74fbD3788045016",
					Account:               "0x73cA9C4e72fF109259cf7374F038faf950949C51",
					StartBlock:            756,
					RequiredConfirmations: 12,
					MaxBlockRangeSize:     1000,
					PollInterval:          2 * time.Second,
					DepositTx:             &config.DepositTxConfig{},
				},
				MaxSubmissionAttempts: 4,
				SubmissionWatchBlocks: 100,
			},
		},
		DBConfig: &config.DBConfig{
			User:     "test_user",
			Password: "test_password",
			Host:     "test_host",
			Port:     5432,
			DB:       "test_db",
		},
		LogLevel: "info",
		Presenter: &config.PresenterConfig{
			Host: "0.0.0.0:3333",
		},
	}, cfg)
}

func TestReadConfigRejectsUnknownChain(t *testing.T) {
	t.Parallel()

	cfg, err := config.ReadConfigWithEnv([]byte(`
chains:
  mainnet:
    rpc:
      host: http://localhost:8545
      timeout: 10s
    chain_id: 1
    block_time: 15s
bridges:
  kovan:
    home:
      chain: mainnet
      address: 0x7301CFA0e1756B71869E93d4e4Dca5c7d0eb0AA6
      account: 0x73cA9C4e72fF109259cf7374F038faf950949C51
    foreign:
      chain: kovan
      address: 0x4aa42145Aa6Ebf72e164C9bBC74fbD3788045016
      account: 0x73cA9C4e72fF109259cf7374F038faf950949C51
`))
	require.Error(t, err)
	require.Nil(t, cfg)
}

func TestReadConfigRejectsInvalidAddress(t *testing.T) {
	t.Parallel()

	cfg, err := config.ReadConfigWithEnv([]byte(`
chains:
  mainnet:
    rpc:
      host: http://localhost:8545
      timeout: 10s
    chain_id: 1
    block_time: 15s
bridges:
  kovan:
    home:
      chain: mainnet
      address: not-an-address
      account: 0x73cA9C4e72fF109259cf7374F038faf950949C51
    foreign:
      chain: mainnet
      address: 0x4aa42145Aa6Ebf72e164C9bBC74fbD3788045016
      account: 0x73cA9C4e72fF109259cf7374F038faf950949C51
`))
	require.Error(t, err)
	require.Nil(t, cfg)
}

