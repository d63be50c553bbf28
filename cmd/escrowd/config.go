package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/tokenswap/errors"
)

const (
	envPrefix      = "ESCROWD"
	configFileName = "escrowd.toml"
)

type config struct {
	// Home is the directory holding the configuration file and, unless
	// configured otherwise, the ledger database and the private key.
	Home     string `mapstructure:"home"`
	DB       string `mapstructure:"db"`
	Key      string `mapstructure:"key"`
	LogLevel string `mapstructure:"log-level"`
}

func defaultHome() string {
	return filepath.Join(os.ExpandEnv("$HOME"), ".escrowd")
}

func registerConfigFlags(fl *pflag.FlagSet) {
	fl.String("home", defaultHome(), "directory to store files under")
	fl.String("db", "", "path of the ledger database (default <home>/data/ledger)")
	fl.String("key", "", "path of the private key file that transactions are signed with (default <home>/priv.key)")
	fl.String("log-level", "error", "minimal level of log messages: debug, info, error or none")
}

// loadConfig resolves the configuration. Flags take precedence over the
// environment, which takes precedence over the configuration file.
func loadConfig(fl *pflag.FlagSet) (*config, error) {
	v := viper.New()
	v.SetDefault("log-level", "error")
	if err := v.BindPFlags(fl); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	path := filepath.Join(v.GetString("home"), configFileName)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "config file %s: %s", path, err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "config: %s", err)
	}
	if cfg.Home == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "home directory")
	}
	if cfg.DB == "" {
		cfg.DB = filepath.Join(cfg.Home, "data", "ledger")
	}
	if cfg.Key == "" {
		cfg.Key = filepath.Join(cfg.Home, "priv.key")
	}
	return &cfg, nil
}

func newLogger(level string, w io.Writer) (log.Logger, error) {
	allow, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	logger := log.NewTMLogger(log.NewSyncWriter(w))
	return log.NewFilter(logger, allow).With("module", "escrowd"), nil
}
