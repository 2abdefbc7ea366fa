package switchmgr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lanops/switchmgr/bulk"
	"github.com/lanops/switchmgr/cache"
	"github.com/lanops/switchmgr/drivers/snmp"
	"github.com/lanops/switchmgr/executor"
	"github.com/lanops/switchmgr/parse"
	"github.com/lanops/switchmgr/types"
)

// interfaceCacheTTL bounds how stale a cached interface table may be
const interfaceCacheTTL = 30 * time.Second

// statusQuery is one rung of the interface-status command ladder.
// Different firmware answers different queries usefully, so the
// manager walks the ladder until the parser chain produces records.
type statusQuery struct {
	command     string
	delayFactor int
	useCache    bool
}

var statusQueries = []statusQuery{
	{command: "show interfaces status", delayFactor: 2, useCache: true},
	{command: "show ip interface brief", delayFactor: 2, useCache: true},
	{command: "show interfaces", delayFactor: 5, useCache: false},
}

// Manager is the device-facing facade: one channel, one executor, one
// parser chain, one bulk executor and the per-category caches, wired
// together for a single switch.
type Manager struct {
	cfg     *types.DeviceConfig
	ch      types.Channel
	exec    *executor.Executor
	bulk    *bulk.Executor
	chain   *parse.Chain
	caches  *cache.Manager
	monitor *snmp.Monitor
	log     zerolog.Logger
}

// Option customizes a Manager
type Option func(*managerOptions)

type managerOptions struct {
	logger    *zerolog.Logger
	channel   types.Channel
	sweep     time.Duration
	bulkDelay *time.Duration
}

// WithLogger sets the logger; the default discards everything
func WithLogger(log zerolog.Logger) Option {
	return func(o *managerOptions) { o.logger = &log }
}

// WithChannel injects a channel, bypassing protocol selection.
// Intended for tests and simulation.
func WithChannel(ch types.Channel) Option {
	return func(o *managerOptions) { o.channel = ch }
}

// WithCacheSweepInterval overrides the background sweep interval
func WithCacheSweepInterval(d time.Duration) Option {
	return func(o *managerOptions) { o.sweep = d }
}

// WithBulkInterBatchDelay overrides the pause between bulk batches.
// Zero disables pacing.
func WithBulkInterBatchDelay(d time.Duration) Option {
	return func(o *managerOptions) { o.bulkDelay = &d }
}

// New creates a Manager for one device.
func New(cfg *types.DeviceConfig, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	options := managerOptions{sweep: cache.DefaultSweepInterval}
	for _, opt := range opts {
		opt(&options)
	}

	log := zerolog.Nop()
	if options.logger != nil {
		log = *options.logger
	}

	ch := options.channel
	if ch == nil {
		var err error
		ch, err = NewChannel(cfg)
		if err != nil {
			return nil, err
		}
	}

	device := cfg.Name
	if device == "" {
		device = cfg.Host
	}

	caches := cache.NewManager(options.sweep, log)
	exec := executor.New(ch, device, caches.Command, log)
	if cfg.Timeout > 0 {
		exec.BaseTimeout = cfg.Timeout
	}

	m := &Manager{
		cfg:    cfg,
		ch:     ch,
		exec:   exec,
		bulk:   bulk.NewExecutor(exec, log),
		chain:  parse.DefaultChain(log),
		caches: caches,
		log:    log,
	}
	if options.bulkDelay != nil {
		m.bulk.InterBatchDelay = *options.bulkDelay
	}

	if cfg.SNMPCommunity != "" {
		monitor, err := snmp.NewMonitor(cfg)
		if err != nil {
			caches.Close()
			return nil, fmt.Errorf("creating snmp monitor: %w", err)
		}
		m.monitor = monitor
	}

	return m, nil
}

// Connect establishes the device session. The SNMP monitor, when
// configured, is connected best effort: CLI operation does not depend
// on it.
func (m *Manager) Connect(ctx context.Context) error {
	m.log.Info().Str("host", m.cfg.Host).Msg("connecting")

	if err := m.ch.Connect(ctx, m.cfg); err != nil {
		return err
	}

	if m.monitor != nil {
		if err := m.monitor.Connect(ctx); err != nil {
			m.log.Warn().Err(err).Msg("snmp monitor unavailable, continuing with CLI only")
		}
	}

	m.log.Info().Str("host", m.cfg.Host).Msg("connected")
	return nil
}

// Disconnect closes the session and stops the cache sweep.
func (m *Manager) Disconnect(ctx context.Context) error {
	if m.monitor != nil && m.monitor.IsConnected() {
		_ = m.monitor.Close()
	}
	err := m.ch.Disconnect(ctx)
	m.caches.Close()
	return err
}

// IsConnected reports whether the channel session is usable.
func (m *Manager) IsConnected() bool {
	return m.ch.IsConnected()
}

// SendCommand executes one raw command through the executor.
func (m *Manager) SendCommand(ctx context.Context, command string, opts executor.Options) (string, error) {
	return m.exec.Execute(ctx, command, opts)
}

// GetInterfacesStatus returns the current interface table. Output of
// each ladder command runs through the parser chain; the first rung
// producing real records wins. The result is cached; ladder failure
// returns the chain's diagnostic record so callers can distinguish an
// empty device from a parse failure.
func (m *Manager) GetInterfacesStatus(ctx context.Context, useCache bool) (map[string]types.InterfaceRecord, error) {
	device := m.device()
	if useCache {
		if records, ok := m.caches.Interface.Get(device, "interfaces"); ok {
			return records, nil
		}
	}

	var lastErr error
	for _, q := range statusQueries {
		out, err := m.exec.Execute(ctx, q.command, executor.Options{
			DelayFactor: q.delayFactor,
			UseCache:    q.useCache,
		})
		if err != nil {
			if types.IsConnectionError(err) {
				return nil, err
			}
			m.log.Warn().Err(err).Str("command", q.command).Msg("status query failed, trying next")
			lastErr = err
			continue
		}

		records := m.chain.Parse(out)
		if parse.IsDiagnostic(records) {
			m.log.Warn().Str("command", q.command).Msg("status query produced unparseable output, trying next")
			continue
		}

		m.caches.Interface.Set(records, interfaceCacheTTL, device, "interfaces")
		return records, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return parse.Diagnostic("every status query produced unparseable output"), nil
}

// EnableInterface brings one port administratively up.
func (m *Manager) EnableInterface(ctx context.Context, name string) error {
	err := m.exec.RunConfig(ctx, []string{
		"interface " + name,
		"no shutdown",
	})
	if err != nil {
		return fmt.Errorf("enabling %s: %w", name, err)
	}
	m.invalidateInterfaces()
	return nil
}

// DisableInterface shuts one port down.
func (m *Manager) DisableInterface(ctx context.Context, name string) error {
	err := m.exec.RunConfig(ctx, []string{
		"interface " + name,
		"shutdown",
	})
	if err != nil {
		return fmt.Errorf("disabling %s: %w", name, err)
	}
	m.invalidateInterfaces()
	return nil
}

// SetInterfaceDescription writes a port description.
func (m *Manager) SetInterfaceDescription(ctx context.Context, name, description string) error {
	return m.exec.RunConfig(ctx, []string{
		"interface " + name,
		"description " + description,
	})
}

// SetInterfaceVLAN moves a port to an access VLAN.
func (m *Manager) SetInterfaceVLAN(ctx context.Context, name string, vlan int) error {
	if vlan < 1 || vlan > 4094 {
		return fmt.Errorf("vlan %d out of range", vlan)
	}
	err := m.exec.RunConfig(ctx, []string{
		"interface " + name,
		"switchport mode access",
		fmt.Sprintf("switchport access vlan %d", vlan),
	})
	if err != nil {
		return err
	}
	m.invalidateInterfaces()
	return nil
}

// BulkEnable brings many ports up using range commands. The result
// map has one entry per requested port.
func (m *Manager) BulkEnable(ctx context.Context, ports []string, batchSize int) map[string]bool {
	results := m.bulk.Apply(ctx, ports, bulk.ActionEnable, batchSize)
	m.invalidateInterfaces()
	return results
}

// BulkDisable shuts many ports down using range commands.
func (m *Manager) BulkDisable(ctx context.Context, ports []string, batchSize int) map[string]bool {
	results := m.bulk.Apply(ctx, ports, bulk.ActionDisable, batchSize)
	m.invalidateInterfaces()
	return results
}

// GetDeviceInfo returns identity fields from "show version", cached.
func (m *Manager) GetDeviceInfo(ctx context.Context) (types.DeviceInfo, error) {
	device := m.device()
	if info, ok := m.caches.Device.Get(device, "version"); ok {
		return info, nil
	}

	out, err := m.exec.Execute(ctx, "show version", executor.Options{DelayFactor: 2})
	if err != nil {
		return types.DeviceInfo{}, err
	}

	info := parse.ParseDeviceInfo(out)
	m.caches.Device.Set(info, 0, device, "version")
	return info, nil
}

// GetMACTable returns the MAC address table, cached.
func (m *Manager) GetMACTable(ctx context.Context) ([]types.MACEntry, error) {
	device := m.device()
	if entries, ok := m.caches.MAC.Get(device, "mac-table"); ok {
		return entries, nil
	}

	out, err := m.exec.Execute(ctx, "show mac address-table", executor.Options{DelayFactor: 2})
	if err != nil {
		return nil, err
	}

	entries := parse.ParseMACTable(out)
	m.caches.MAC.Set(entries, 0, device, "mac-table")
	return entries, nil
}

// GetARPTable returns the ARP table. ARP churns too fast to cache.
func (m *Manager) GetARPTable(ctx context.Context) ([]types.ARPEntry, error) {
	out, err := m.exec.Execute(ctx, "show ip arp", executor.Options{DelayFactor: 2})
	if err != nil {
		return nil, err
	}
	return parse.ParseARPTable(out), nil
}

// GetPortCounters reads per-port counters from the SNMP monitor.
func (m *Manager) GetPortCounters(ctx context.Context) ([]types.PortCounters, error) {
	if m.monitor == nil {
		return nil, fmt.Errorf("snmp monitor not configured")
	}
	if !m.monitor.IsConnected() {
		return nil, types.ErrNotConnected
	}
	return m.monitor.PortCounters(ctx)
}

// SaveConfig persists the running configuration.
func (m *Manager) SaveConfig(ctx context.Context) error {
	out, err := m.exec.Execute(ctx, "write memory", executor.Options{DelayFactor: 3})
	if err != nil {
		return err
	}
	if !strings.Contains(out, "OK") && !strings.Contains(strings.ToLower(out), "success") {
		return fmt.Errorf("device did not confirm save: %s", firstNonEmptyLine(out))
	}
	return nil
}

// HealthCheck probes the session with a cheap command.
func (m *Manager) HealthCheck(ctx context.Context) error {
	if !m.IsConnected() {
		return types.ErrNotConnected
	}
	_, err := m.exec.Execute(ctx, "show clock", executor.Options{})
	return err
}

// Stats combines executor counters with per-category cache stats.
type Stats struct {
	Executor executor.Stats         `json:"executor"`
	Caches   map[string]cache.Stats `json:"caches"`
}

// Stats returns a health snapshot.
func (m *Manager) Stats() Stats {
	return Stats{
		Executor: m.exec.Stats(),
		Caches:   m.caches.AllStats(),
	}
}

// ClearCaches empties every cache category.
func (m *Manager) ClearCaches() {
	m.caches.ClearAll()
}

func (m *Manager) device() string {
	if m.cfg.Name != "" {
		return m.cfg.Name
	}
	return m.cfg.Host
}

func (m *Manager) invalidateInterfaces() {
	m.caches.Interface.Invalidate(m.device(), "interfaces")
	for _, q := range statusQueries {
		if q.useCache {
			m.exec.Invalidate(q.command, q.delayFactor)
		}
	}
}

func firstNonEmptyLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
