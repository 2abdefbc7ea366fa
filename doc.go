// Package switchmgr drives Cisco IOS switches over an interactive CLI
// session, with optional SNMP counter polling.
//
// The entry point is Manager, which wires together a transport channel
// (SSH/expect or a mock), a buffer-disciplined command executor, a
// layered output parser chain, per-category TTL+LRU caches and a bulk
// configuration executor that compresses port lists into interface
// range commands.
//
//	cfg := &types.DeviceConfig{Host: "10.0.0.1", Username: "admin", Password: "secret"}
//	mgr, err := switchmgr.New(cfg)
//	if err != nil { ... }
//	if err := mgr.Connect(ctx); err != nil { ... }
//	defer mgr.Disconnect(ctx)
//	records, err := mgr.GetInterfacesStatus(ctx, true)
package switchmgr
