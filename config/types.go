package config

import (
	"time"

	"github.com/lanops/switchmgr/types"
)

// Defaults applied to unset fields
const (
	DefaultPort           = 22
	DefaultTimeout        = 30 * time.Second
	DefaultProtocol       = "cli"
	DefaultLogLevel       = "info"
	DefaultBatchSize      = 12
	DefaultSNMPPort       = 161
	DefaultSNMPVersion    = "2c"
	DefaultSweepInterval  = time.Minute
	DefaultInterBatchWait = 500 * time.Millisecond
)

// Config is the top-level configuration file layout.
type Config struct {
	LogLevel string   `json:"logLevel"`
	Devices  []Device `json:"devices"`
	Bulk     Bulk     `json:"bulk"`
	Cache    Cache    `json:"cache"`
}

// Device describes one switch.
type Device struct {
	Name          string `json:"name"`
	Host          string `json:"host"`
	Port          int    `json:"port"`
	Protocol      string `json:"protocol"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	Secret        string `json:"secret"`
	TimeoutSec    int    `json:"timeoutSec"`
	SNMPCommunity string `json:"snmpCommunity"`
	SNMPVersion   string `json:"snmpVersion"`
	SNMPPort      int    `json:"snmpPort"`
}

// Bulk tunes the range-based bulk executor.
type Bulk struct {
	BatchSize         int `json:"batchSize"`
	InterBatchDelayMS int `json:"interBatchDelayMs"`
}

// Cache tunes the background expiry sweep.
type Cache struct {
	SweepIntervalSec int `json:"sweepIntervalSec"`
}

// DeviceConfig converts one configured device to the runtime form.
func (d *Device) DeviceConfig() *types.DeviceConfig {
	return &types.DeviceConfig{
		Name:          d.Name,
		Host:          d.Host,
		Port:          d.Port,
		Protocol:      types.Protocol(d.Protocol),
		Username:      d.Username,
		Password:      d.Password,
		Secret:        d.Secret,
		Timeout:       time.Duration(d.TimeoutSec) * time.Second,
		SNMPCommunity: d.SNMPCommunity,
		SNMPVersion:   d.SNMPVersion,
		SNMPPort:      d.SNMPPort,
	}
}

// Find returns the device with the given name.
func (c *Config) Find(name string) (*Device, bool) {
	for i := range c.Devices {
		if c.Devices[i].Name == name {
			return &c.Devices[i], true
		}
	}
	return nil, false
}
