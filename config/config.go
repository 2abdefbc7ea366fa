package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Bulk.BatchSize == 0 {
		cfg.Bulk.BatchSize = DefaultBatchSize
	}
	if cfg.Bulk.InterBatchDelayMS == 0 {
		cfg.Bulk.InterBatchDelayMS = int(DefaultInterBatchWait.Milliseconds())
	}
	if cfg.Cache.SweepIntervalSec == 0 {
		cfg.Cache.SweepIntervalSec = int(DefaultSweepInterval.Seconds())
	}

	for i := range cfg.Devices {
		d := &cfg.Devices[i]
		if d.Port == 0 {
			d.Port = DefaultPort
		}
		if d.Protocol == "" {
			d.Protocol = DefaultProtocol
		}
		if d.TimeoutSec == 0 {
			d.TimeoutSec = int(DefaultTimeout.Seconds())
		}
		if d.SNMPCommunity != "" {
			if d.SNMPVersion == "" {
				d.SNMPVersion = DefaultSNMPVersion
			}
			if d.SNMPPort == 0 {
				d.SNMPPort = DefaultSNMPPort
			}
		}
	}
}

// validate checks the configuration for errors
func validate(cfg *Config) error {
	if len(cfg.Devices) == 0 {
		return errors.New("at least one device is required")
	}

	deviceNames := make(map[string]bool)
	for i, d := range cfg.Devices {
		if d.Name == "" {
			return fmt.Errorf("device[%d]: name is required", i)
		}
		if deviceNames[d.Name] {
			return fmt.Errorf("device[%d]: duplicate device name '%s'", i, d.Name)
		}
		deviceNames[d.Name] = true

		if d.Host == "" {
			return fmt.Errorf("device '%s': host is required", d.Name)
		}
		if d.Port < 1 || d.Port > 65535 {
			return fmt.Errorf("device '%s': port must be between 1 and 65535", d.Name)
		}
		if d.Protocol != "cli" && d.Protocol != "mock" {
			return fmt.Errorf("device '%s': protocol must be 'cli' or 'mock'", d.Name)
		}
		if d.Protocol == "cli" && d.Username == "" {
			return fmt.Errorf("device '%s': username is required", d.Name)
		}
		if d.TimeoutSec < 0 {
			return fmt.Errorf("device '%s': timeoutSec must be non-negative", d.Name)
		}
		if d.SNMPCommunity != "" {
			switch d.SNMPVersion {
			case "1", "2c", "3":
			default:
				return fmt.Errorf("device '%s': snmpVersion must be one of: 1, 2c, 3", d.Name)
			}
			if d.SNMPPort < 1 || d.SNMPPort > 65535 {
				return fmt.Errorf("device '%s': snmpPort must be between 1 and 65535", d.Name)
			}
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("logLevel must be one of: debug, info, warn, error")
	}

	if cfg.Bulk.BatchSize < 1 {
		return fmt.Errorf("bulk.batchSize must be positive")
	}
	if cfg.Bulk.InterBatchDelayMS < 0 {
		return fmt.Errorf("bulk.interBatchDelayMs must be non-negative")
	}
	if cfg.Cache.SweepIntervalSec < 0 {
		return fmt.Errorf("cache.sweepIntervalSec must be non-negative")
	}

	return nil
}
