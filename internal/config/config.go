/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

// Package config is the daemon's configuration layer: a live-reloaded
// YAML file read through viper, grounded on the teacher's
// cmd/cherry/main.go initConfig/validateConfig pattern.
package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/superkkt/viper"

	"github.com/superkkt/ofswitch/internal/ofswitchlog"
)

var logger = ofswitchlog.Get("config")

// Config is the validated daemon configuration.
type Config struct {
	// ListenAddr is the controller-facing listen address. The daemon
	// only reports it at startup; it binds no listener.
	ListenAddr string
	// MaxTables sizes the table-id space (§6); 0 selects the default.
	MaxTables int
	// DefaultMiss is the miss policy newly created tables start with.
	DefaultMiss string
	// LogLevel is the initial logger level (debug, info, notice,
	// warning, error).
	LogLevel string
}

// Load reads path into a Config and validates it, then arranges for
// OnChange to be invoked whenever the file is rewritten, following the
// teacher's viper.WatchConfig + OnConfigChange pattern
// (cmd/cherry/main.go initConfig).
func Load(path string, onChange func(Config)) (Config, error) {
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read config file")
	}

	cfg, err := fromViper()
	if err != nil {
		return Config{}, err
	}

	if onChange != nil {
		viper.OnConfigChange(func(e fsnotify.Event) {
			if e.Op != fsnotify.Write {
				return
			}
			cfg, err := fromViper()
			if err != nil {
				logger.Errorf("failed to reload config: %v", err)
				return
			}
			onChange(cfg)
		})
		viper.WatchConfig()
	}

	return cfg, nil
}

func fromViper() (Config, error) {
	cfg := Config{
		ListenAddr:  viper.GetString("default.listen_addr"),
		MaxTables:   viper.GetInt("default.max_tables"),
		DefaultMiss: viper.GetString("default.miss_policy"),
		LogLevel:    viper.GetString("default.log_level"),
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if len(cfg.ListenAddr) == 0 {
		return errors.New("invalid default.listen_addr")
	}
	if cfg.MaxTables < 0 || cfg.MaxTables > 256 {
		return errors.New("invalid default.max_tables")
	}
	switch cfg.DefaultMiss {
	case "", "drop", "controller", "continue":
	default:
		return errors.Errorf("invalid default.miss_policy: %v", cfg.DefaultMiss)
	}
	if len(cfg.LogLevel) == 0 {
		return errors.New("invalid default.log_level")
	}
	return nil
}
