package switchmgr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lanops/switchmgr/bulk"
	"github.com/lanops/switchmgr/drivers/mock"
	"github.com/lanops/switchmgr/executor"
	"github.com/lanops/switchmgr/parse"
	"github.com/lanops/switchmgr/types"
)

const statusTableOutput = `Port      Name               Status       Vlan       Duplex  Speed Type
Gi1/0/1   connected          1            a-full     a-1000  10/100/1000BaseTX
Gi1/0/2   connected          10           a-full     a-1000  10/100/1000BaseTX
Gi1/0/3   notconnect         1            auto       auto    10/100/1000BaseTX
Gi1/0/4   disabled           1            auto       auto    10/100/1000BaseTX
Gi1/0/5   connected          20           full       1000    10/100/1000BaseTX
`

func newTestManager(t *testing.T) (*Manager, *mock.Channel) {
	t.Helper()

	ch := mock.NewChannel()
	ch.SetDefaultResponse("ok")

	cfg := &types.DeviceConfig{Name: "sw-test", Host: "10.0.0.1", Protocol: types.ProtocolMock}
	m, err := New(cfg, WithChannel(ch), WithCacheSweepInterval(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// no pacing against an in-memory channel
	m.exec.SettleDelay = 0
	m.exec.CommandDelay = 0
	m.bulk.InterBatchDelay = 0

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { m.Disconnect(context.Background()) })
	return m, ch
}

func count(history []string, command string) int {
	n := 0
	for _, cmd := range history {
		if cmd == command {
			n++
		}
	}
	return n
}

func TestManagerGetInterfacesStatus(t *testing.T) {
	m, ch := newTestManager(t)
	ch.SetResponse("show interfaces status", statusTableOutput)

	records, err := m.GetInterfacesStatus(context.Background(), true)
	if err != nil {
		t.Fatalf("GetInterfacesStatus: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
	if records["Gi1/0/4"].Status != types.StatusAdminDown {
		t.Fatalf("Gi1/0/4 = %s", records["Gi1/0/4"].Status)
	}

	// second call must come from the interface cache
	if _, err := m.GetInterfacesStatus(context.Background(), true); err != nil {
		t.Fatalf("cached GetInterfacesStatus: %v", err)
	}
	if got := count(ch.History(), "show interfaces status"); got != 1 {
		t.Fatalf("device saw %d status queries, want 1", got)
	}
}

func TestManagerStatusLadderFallback(t *testing.T) {
	m, ch := newTestManager(t)

	// first rung is rejected; second rung answers usefully
	ch.SetResponse("show interfaces status", "% Invalid input detected at '^' marker.")
	ch.SetResponse("show ip interface brief",
		`Interface              IP-Address      OK? Method Status                Protocol
Vlan1                  10.0.0.2        YES NVRAM  up                    up
GigabitEthernet1/0/1   unassigned      YES unset  up                    up
GigabitEthernet1/0/2   unassigned      YES unset  down                  down
`)

	records, err := m.GetInterfacesStatus(context.Background(), false)
	if err != nil {
		t.Fatalf("GetInterfacesStatus: %v", err)
	}
	if parse.IsDiagnostic(records) {
		t.Fatal("fallback rung should have produced records")
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	// statuses must come from the brief columns, not a positional
	// misread of the address column
	if records["Vlan1"].Status != types.StatusUp {
		t.Fatalf("Vlan1 status = %s, want up", records["Vlan1"].Status)
	}
	if records["GigabitEthernet1/0/2"].Status != types.StatusDown {
		t.Fatalf("Gi1/0/2 status = %s, want down", records["GigabitEthernet1/0/2"].Status)
	}

	history := ch.History()
	if count(history, "show interfaces status") != 1 || count(history, "show ip interface brief") != 1 {
		t.Fatalf("unexpected ladder traversal: %v", history)
	}
	if count(history, "show interfaces") != 0 {
		t.Fatal("third rung must not run once the second succeeds")
	}
}

func TestManagerStatusLadderExhausted(t *testing.T) {
	m, ch := newTestManager(t)

	garbage := "nothing parseable here"
	ch.SetResponse("show interfaces status", garbage)
	ch.SetResponse("show ip interface brief", garbage)
	ch.SetResponse("show interfaces", garbage)

	records, err := m.GetInterfacesStatus(context.Background(), false)
	if err != nil {
		t.Fatalf("GetInterfacesStatus: %v", err)
	}
	if !parse.IsDiagnostic(records) {
		t.Fatalf("expected diagnostic after the ladder is exhausted, got %v", records)
	}
}

func TestManagerEnableInterfaceInvalidatesCache(t *testing.T) {
	m, ch := newTestManager(t)
	ch.SetResponse("show interfaces status", statusTableOutput)

	if _, err := m.GetInterfacesStatus(context.Background(), true); err != nil {
		t.Fatalf("GetInterfacesStatus: %v", err)
	}
	if err := m.EnableInterface(context.Background(), "Gi1/0/4"); err != nil {
		t.Fatalf("EnableInterface: %v", err)
	}
	if _, err := m.GetInterfacesStatus(context.Background(), true); err != nil {
		t.Fatalf("GetInterfacesStatus after enable: %v", err)
	}

	history := ch.History()
	if got := count(history, "show interfaces status"); got != 2 {
		t.Fatalf("device saw %d status queries, want 2 after invalidation", got)
	}
	if count(history, "no shutdown") != 1 {
		t.Fatalf("missing enable transaction in %v", history)
	}
}

func TestManagerDisableInterface(t *testing.T) {
	m, ch := newTestManager(t)

	if err := m.DisableInterface(context.Background(), "Gi1/0/7"); err != nil {
		t.Fatalf("DisableInterface: %v", err)
	}

	history := ch.History()
	want := []string{"configure terminal", "interface Gi1/0/7", "shutdown", "end"}
	if len(history) != len(want) {
		t.Fatalf("history = %v, want %v", history, want)
	}
	for i := range want {
		if history[i] != want[i] {
			t.Fatalf("history[%d] = %q, want %q", i, history[i], want[i])
		}
	}
}

func TestManagerSetInterfaceVLAN(t *testing.T) {
	m, ch := newTestManager(t)

	if err := m.SetInterfaceVLAN(context.Background(), "Gi1/0/1", 42); err != nil {
		t.Fatalf("SetInterfaceVLAN: %v", err)
	}
	if count(ch.History(), "switchport access vlan 42") != 1 {
		t.Fatalf("missing vlan command in %v", ch.History())
	}

	if err := m.SetInterfaceVLAN(context.Background(), "Gi1/0/1", 5000); err == nil {
		t.Fatal("expected error for out-of-range vlan")
	}
}

func TestManagerBulkEnable(t *testing.T) {
	m, ch := newTestManager(t)

	ports := []string{"Gi1/0/1", "Gi1/0/2", "Gi1/0/3"}
	results := m.BulkEnable(context.Background(), ports, 0)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, p := range ports {
		if !results[p] {
			t.Fatalf("port %s reported failed", p)
		}
	}
	if count(ch.History(), "interface range Gi1/0/1-3") != 1 {
		t.Fatalf("missing range command in %v", ch.History())
	}
}

func TestManagerGetDeviceInfoCached(t *testing.T) {
	m, ch := newTestManager(t)
	ch.SetResponse("show version",
		"Cisco IOS Software, Version 15.2(7)E3\nsw-test uptime is 3 weeks, 2 days")

	info, err := m.GetDeviceInfo(context.Background())
	if err != nil {
		t.Fatalf("GetDeviceInfo: %v", err)
	}
	if info.Version != "15.2(7)E3" || info.Hostname != "sw-test" {
		t.Fatalf("info = %+v", info)
	}

	if _, err := m.GetDeviceInfo(context.Background()); err != nil {
		t.Fatalf("cached GetDeviceInfo: %v", err)
	}
	if got := count(ch.History(), "show version"); got != 1 {
		t.Fatalf("device saw %d version queries, want 1", got)
	}
}

func TestManagerSaveConfig(t *testing.T) {
	m, ch := newTestManager(t)

	ch.SetResponse("write memory", "Building configuration...\n[OK]")
	if err := m.SaveConfig(context.Background()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	ch.SetResponse("write memory", "startup-config file open failed")
	if err := m.SaveConfig(context.Background()); err == nil {
		t.Fatal("unconfirmed save must error")
	}
}

func TestManagerHealthCheck(t *testing.T) {
	m, ch := newTestManager(t)
	ch.SetResponse("show clock", "*10:02:11.000 UTC Mon Mar 1 2021")

	if err := m.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}

	m.ch.Disconnect(context.Background())
	if err := m.HealthCheck(context.Background()); !errors.Is(err, types.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestManagerStats(t *testing.T) {
	m, ch := newTestManager(t)
	ch.SetResponse("show clock", "10:02:11")

	m.SendCommand(context.Background(), "show clock", executor.Options{})

	stats := m.Stats()
	if stats.Executor.CommandsExecuted != 1 {
		t.Fatalf("executed = %d, want 1", stats.Executor.CommandsExecuted)
	}
	for _, name := range []string{"interface", "device", "command", "mac"} {
		if _, ok := stats.Caches[name]; !ok {
			t.Fatalf("missing cache stats for %q", name)
		}
	}
}

func TestManagerPortCountersUnconfigured(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.GetPortCounters(context.Background()); err == nil {
		t.Fatal("expected error without an snmp monitor")
	}
}

func TestManagerWiresTimeoutAndPacing(t *testing.T) {
	ch := mock.NewChannel()
	cfg := &types.DeviceConfig{
		Name:     "sw-test",
		Host:     "10.0.0.1",
		Protocol: types.ProtocolMock,
		Timeout:  45 * time.Second,
	}

	m, err := New(cfg,
		WithChannel(ch),
		WithCacheSweepInterval(0),
		WithBulkInterBatchDelay(5*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Disconnect(context.Background())

	if m.exec.BaseTimeout != 45*time.Second {
		t.Fatalf("BaseTimeout = %s, want the configured device timeout", m.exec.BaseTimeout)
	}
	if m.bulk.InterBatchDelay != 5*time.Millisecond {
		t.Fatalf("InterBatchDelay = %s, want 5ms", m.bulk.InterBatchDelay)
	}
}

func TestManagerPacingDefaults(t *testing.T) {
	ch := mock.NewChannel()
	cfg := &types.DeviceConfig{Name: "sw-test", Host: "10.0.0.1", Protocol: types.ProtocolMock}

	m, err := New(cfg, WithChannel(ch), WithCacheSweepInterval(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Disconnect(context.Background())

	if m.exec.BaseTimeout != executor.DefaultBaseTimeout {
		t.Fatalf("BaseTimeout = %s, want the executor default", m.exec.BaseTimeout)
	}
	if m.bulk.InterBatchDelay != bulk.DefaultInterBatchDelay {
		t.Fatalf("InterBatchDelay = %s, want the bulk default", m.bulk.InterBatchDelay)
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
