package types

import (
	"context"
	"strings"
	"time"
)

// Protocol represents the transport used to reach a device
type Protocol string

const (
	ProtocolCLI  Protocol = "cli"
	ProtocolSNMP Protocol = "snmp"
	ProtocolMock Protocol = "mock" // For testing/simulation
)

// DeviceConfig contains connection settings for a managed switch
type DeviceConfig struct {
	// Name is a unique identifier for this device
	Name string

	// Host is the management IP/hostname
	Host string

	// Port is the management port (if not default)
	Port int

	// Protocol is the primary management transport
	Protocol Protocol

	// Username for authentication
	Username string

	// Password for authentication
	Password string

	// Secret is the enable password for privileged exec mode, if required
	Secret string

	// Timeout is the base read timeout for a single command
	Timeout time.Duration

	// SNMPCommunity enables the read-only SNMP monitor when set
	SNMPCommunity string

	// SNMPVersion selects the SNMP version (1, 2c, 3; default 2c)
	SNMPVersion string

	// SNMPPort is the SNMP agent port (default 161)
	SNMPPort int
}

// Channel is the interactive terminal session used to reach a device.
// The protocol has no request framing, so callers must serialize access:
// only one command may be in flight per channel.
type Channel interface {
	// Connect establishes the session
	Connect(ctx context.Context, cfg *DeviceConfig) error

	// Disconnect closes the session
	Disconnect(ctx context.Context) error

	// IsConnected returns true if the session is usable
	IsConnected() bool

	// Send writes a command and blocks until the device prompt returns
	// or the timeout elapses. The returned text is raw device output.
	Send(ctx context.Context, command string, timeout time.Duration) (string, error)

	// ClearBuffer drains any pending output left over from a previous
	// exchange. Stale echoed fragments otherwise corrupt the next read.
	ClearBuffer() error
}

// PortStatus is the normalized operational state of a switch port
type PortStatus string

const (
	StatusUp        PortStatus = "up"
	StatusDown      PortStatus = "down"
	StatusAdminDown PortStatus = "admin-down"
	StatusUnknown   PortStatus = "unknown"
)

// NormalizeStatus maps the status words different IOS releases print
// to a PortStatus. Unrecognized words map to StatusUnknown.
func NormalizeStatus(raw string) PortStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "connected", "up", "monitoring":
		return StatusUp
	case "notconnect", "notconnected", "down", "faulty":
		return StatusDown
	case "disabled", "err-disabled", "administratively down", "admin-down", "shutdown":
		return StatusAdminDown
	default:
		return StatusUnknown
	}
}

// InterfaceRecord is one parsed row of interface state.
// Fields beyond Name and Status are best effort: not every output
// format carries every column.
type InterfaceRecord struct {
	Name        string     `json:"name"`
	Status      PortStatus `json:"status"`
	VLAN        string     `json:"vlan,omitempty"`
	Duplex      string     `json:"duplex,omitempty"`
	Speed       string     `json:"speed,omitempty"`
	PortType    string     `json:"type,omitempty"`
	Description string     `json:"description,omitempty"`
	IPAddress   string     `json:"ip_address,omitempty"`
	Protocol    string     `json:"protocol,omitempty"`
	RawLine     string     `json:"raw_line,omitempty"`
}

// DeviceInfo holds identity fields parsed from "show version"
type DeviceInfo struct {
	Hostname string `json:"hostname,omitempty"`
	Model    string `json:"model,omitempty"`
	Serial   string `json:"serial,omitempty"`
	Version  string `json:"version,omitempty"`
	Uptime   string `json:"uptime,omitempty"`
}

// MACEntry is one row of the MAC address table
type MACEntry struct {
	VLAN       string `json:"vlan"`
	MACAddress string `json:"mac_address"`
	Type       string `json:"type"`
	Ports      string `json:"ports"`
}

// ARPEntry is one row of the ARP table
type ARPEntry struct {
	IPAddress  string `json:"ip_address"`
	Age        string `json:"age"`
	MACAddress string `json:"mac_address"`
	Type       string `json:"type"`
	Interface  string `json:"interface"`
}

// PortCounters holds per-port IF-MIB readings from the SNMP monitor
type PortCounters struct {
	Name      string `json:"name"`
	AdminUp   bool   `json:"admin_up"`
	OperUp    bool   `json:"oper_up"`
	SpeedBps  uint64 `json:"speed_bps"`
	InOctets  uint64 `json:"in_octets"`
	OutOctets uint64 `json:"out_octets"`
}
