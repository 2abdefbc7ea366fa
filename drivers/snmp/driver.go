// Package snmp implements a read-only port monitor over SNMP.
// The CLI is authoritative for configuration; SNMP is the cheaper
// side-channel for counters and oper status.
package snmp

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/lanops/switchmgr/types"
)

// IF-MIB columns, indexed by ifIndex
const (
	oidIfDescr       = ".1.3.6.1.2.1.2.2.1.2"
	oidIfSpeed       = ".1.3.6.1.2.1.2.2.1.5"
	oidIfAdminStatus = ".1.3.6.1.2.1.2.2.1.7"
	oidIfOperStatus  = ".1.3.6.1.2.1.2.2.1.8"
	oidIfInOctets    = ".1.3.6.1.2.1.2.2.1.10"
	oidIfOutOctets   = ".1.3.6.1.2.1.2.2.1.16"
)

// ifStatusUp is the IF-MIB truth value for an up interface
const ifStatusUp = 1

// Monitor reads per-port counters from a device's SNMP agent
type Monitor struct {
	cfg    *types.DeviceConfig
	client *gosnmp.GoSNMP
}

// NewMonitor creates an unconnected monitor
func NewMonitor(cfg *types.DeviceConfig) (*Monitor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.SNMPCommunity == "" {
		return nil, fmt.Errorf("snmp community is required")
	}
	return &Monitor{cfg: cfg}, nil
}

// Connect opens the SNMP session
func (m *Monitor) Connect(ctx context.Context) error {
	version := gosnmp.Version2c
	switch m.cfg.SNMPVersion {
	case "1":
		version = gosnmp.Version1
	case "", "2c":
		version = gosnmp.Version2c
	case "3":
		version = gosnmp.Version3
	default:
		return fmt.Errorf("unsupported snmp version: %s", m.cfg.SNMPVersion)
	}

	port := m.cfg.SNMPPort
	if port <= 0 || port > 65535 {
		port = 161
	}

	timeout := m.cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	client := &gosnmp.GoSNMP{
		Target:    m.cfg.Host,
		Port:      uint16(port), //nolint:gosec // validated above
		Community: m.cfg.SNMPCommunity,
		Version:   version,
		Timeout:   timeout,
		Retries:   3,
	}

	if version == gosnmp.Version3 {
		client.SecurityModel = gosnmp.UserSecurityModel
		client.SecurityParameters = &gosnmp.UsmSecurityParameters{
			UserName:                 m.cfg.Username,
			AuthenticationProtocol:   gosnmp.SHA,
			AuthenticationPassphrase: m.cfg.Password,
			PrivacyProtocol:          gosnmp.AES,
			PrivacyPassphrase:        m.cfg.Password,
		}
		client.MsgFlags = gosnmp.AuthPriv
	}

	if err := client.Connect(); err != nil {
		return &types.ConnectionError{Host: m.cfg.Host, Err: err}
	}
	m.client = client
	return nil
}

// Close shuts the SNMP session
func (m *Monitor) Close() error {
	if m.client != nil {
		err := m.client.Conn.Close()
		m.client = nil
		return err
	}
	return nil
}

// IsConnected reports whether the session is open
func (m *Monitor) IsConnected() bool {
	return m.client != nil
}

// PortCounters walks the IF-MIB interface table and returns one
// counter record per port, sorted by name. Missing columns leave
// zero values rather than failing the whole walk.
func (m *Monitor) PortCounters(ctx context.Context) ([]types.PortCounters, error) {
	if m.client == nil {
		return nil, types.ErrNotConnected
	}

	names, err := m.walkStrings(oidIfDescr)
	if err != nil {
		return nil, fmt.Errorf("walking ifDescr: %w", err)
	}

	admin, _ := m.walkUints(oidIfAdminStatus)
	oper, _ := m.walkUints(oidIfOperStatus)
	speed, _ := m.walkUints(oidIfSpeed)
	in, _ := m.walkUints(oidIfInOctets)
	out, _ := m.walkUints(oidIfOutOctets)

	counters := make([]types.PortCounters, 0, len(names))
	for index, name := range names {
		counters = append(counters, types.PortCounters{
			Name:      name,
			AdminUp:   admin[index] == ifStatusUp,
			OperUp:    oper[index] == ifStatusUp,
			SpeedBps:  speed[index],
			InOctets:  in[index],
			OutOctets: out[index],
		})
	}
	sort.Slice(counters, func(i, j int) bool { return counters[i].Name < counters[j].Name })
	return counters, nil
}

// walkStrings walks one column and maps ifIndex to string values
func (m *Monitor) walkStrings(oid string) (map[int]string, error) {
	pdus, err := m.walk(oid)
	if err != nil {
		return nil, err
	}
	out := make(map[int]string, len(pdus))
	for _, pdu := range pdus {
		index, ok := indexOf(pdu.Name, oid)
		if !ok {
			continue
		}
		switch v := pdu.Value.(type) {
		case string:
			out[index] = v
		case []byte:
			out[index] = string(v)
		}
	}
	return out, nil
}

// walkUints walks one column and maps ifIndex to numeric values
func (m *Monitor) walkUints(oid string) (map[int]uint64, error) {
	pdus, err := m.walk(oid)
	if err != nil {
		return nil, err
	}
	out := make(map[int]uint64, len(pdus))
	for _, pdu := range pdus {
		index, ok := indexOf(pdu.Name, oid)
		if !ok {
			continue
		}
		out[index] = gosnmp.ToBigInt(pdu.Value).Uint64()
	}
	return out, nil
}

func (m *Monitor) walk(oid string) ([]gosnmp.SnmpPDU, error) {
	if m.client.Version == gosnmp.Version1 {
		return m.client.WalkAll(oid)
	}
	return m.client.BulkWalkAll(oid)
}

// indexOf extracts the ifIndex suffix from a walked OID. Agents
// differ on whether responses carry the leading dot.
func indexOf(name, root string) (int, bool) {
	name = strings.TrimPrefix(name, ".")
	root = strings.TrimPrefix(root, ".")
	if !strings.HasPrefix(name, root) {
		return 0, false
	}
	suffix := strings.TrimPrefix(name[len(root):], ".")
	index, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return index, true
}
