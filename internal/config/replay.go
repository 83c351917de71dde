package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ReplayConfig holds configuration for the replay command.
type ReplayConfig struct {
	RPCURL          string
	Factory         string
	PositionManager string
	In              string
	Out             string
	Errors          string
	PGDSN           string
	LogLevel        string
	Pricing         PricingConfig
}

// LoadReplay merges config file, environment variables, and flags into
// ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("out", "./data/typed_events.jsonl")
	v.SetDefault("errors", "./data/decode_errors.jsonl")
	v.SetDefault("minimum-base-locked", "0")
	v.SetDefault("log-level", "info")

	if err := readSources(v, cfgFile, flags); err != nil {
		return ReplayConfig{}, err
	}

	cfg := ReplayConfig{
		RPCURL:          v.GetString("rpc"),
		Factory:         v.GetString("factory"),
		PositionManager: v.GetString("position-manager"),
		In:              v.GetString("in"),
		Out:             v.GetString("out"),
		Errors:          v.GetString("errors"),
		PGDSN:           v.GetString("pg-dsn"),
		LogLevel:        v.GetString("log-level"),
		Pricing:         pricingFromViper(v),
	}

	return cfg, nil
}
