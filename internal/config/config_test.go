package config

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	datadir := t.TempDir()
	t.Setenv("RAFFLE_DATADIR", datadir)
	t.Setenv("RAFFLE_DB_TYPE", "badger")
	t.Setenv("RAFFLE_FULFILLMENT_DELAY", "-1")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, datadir, cfg.Datadir)
	require.Equal(t, "1000000000000000", cfg.EntranceFee)
	require.Equal(t, int64(30), cfg.Interval)
	require.Equal(t, uint16(3), cfg.RequestConfirmations)
	require.Equal(t, uint32(500000), cfg.CallbackGasLimit)
	require.Equal(t, uint32(1), cfg.NumWords)
	require.Negative(t, int64(cfg.FulfillmentDelay))
	require.NotContains(t, cfg.String(), "OracleKey")

	require.NoError(t, cfg.Validate())
	svc := cfg.AppService()
	require.NotNil(t, svc)
	require.NoError(t, svc.Start())
	svc.Stop()
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			EventDbType:     "badger",
			DbType:          "sqlite",
			SchedulerType:   "gocron",
			CoordinatorType: "local",
			EntranceFee:     "1000",
			Interval:        30,
			KeyHash:         defaultKeyHash,
			NumWords:        1,
		}
	}

	fixtures := []struct {
		name        string
		modify      func(c *Config)
		expectedErr string
	}{
		{
			name:        "event db",
			modify:      func(c *Config) { c.EventDbType = "postgres" },
			expectedErr: "event db type not supported",
		},
		{
			name:        "db",
			modify:      func(c *Config) { c.DbType = "postgres" },
			expectedErr: "db type not supported",
		},
		{
			name:        "scheduler",
			modify:      func(c *Config) { c.SchedulerType = "block" },
			expectedErr: "scheduler type not supported",
		},
		{
			name:        "coordinator",
			modify:      func(c *Config) { c.CoordinatorType = "chainlink" },
			expectedErr: "coordinator type not supported",
		},
		{
			name:        "entrance fee",
			modify:      func(c *Config) { c.EntranceFee = "0.001" },
			expectedErr: "invalid entrance fee",
		},
		{
			name:        "interval",
			modify:      func(c *Config) { c.Interval = 0 },
			expectedErr: "invalid interval",
		},
		{
			name:        "keeper interval",
			modify:      func(c *Config) { c.KeeperInterval = -1 },
			expectedErr: "invalid keeper interval",
		},
		{
			name:        "num words",
			modify:      func(c *Config) { c.NumWords = 0 },
			expectedErr: "invalid number of words",
		},
		{
			name:        "operator",
			modify:      func(c *Config) { c.OperatorAddress = "operator" },
			expectedErr: "invalid operator address",
		},
	}

	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			cfg := valid()
			f.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), f.expectedErr)
		})
	}
}

func TestOracleKey(t *testing.T) {
	cfg := &Config{}
	key, err := cfg.oracleKey()
	require.NoError(t, err)
	require.NotNil(t, key)

	cfg.OracleKey = "0x0101010101010101010101010101010101010101010101010101010101010101"
	key, err = cfg.oracleKey()
	require.NoError(t, err)
	require.Equal(t, cfg.OracleKey[2:], hex.EncodeToString(key.Serialize()))

	cfg.OracleKey = "0101"
	_, err = cfg.oracleKey()
	require.Error(t, err)
}
