package switchmgr

import (
	"fmt"

	"github.com/lanops/switchmgr/drivers/cli"
	"github.com/lanops/switchmgr/drivers/mock"
	"github.com/lanops/switchmgr/types"
)

// NewChannel creates a device channel for the configured protocol.
// An empty protocol defaults to CLI.
func NewChannel(cfg *types.DeviceConfig) (types.Channel, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	protocol := cfg.Protocol
	if protocol == "" {
		protocol = types.ProtocolCLI
	}

	switch protocol {
	case types.ProtocolCLI:
		return cli.NewChannel(cfg)
	case types.ProtocolMock:
		return mock.NewChannel(), nil
	default:
		return nil, fmt.Errorf("unsupported channel protocol: %s", protocol)
	}
}
