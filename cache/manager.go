package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lanops/switchmgr/types"
)

// DefaultSweepInterval is how often the background sweep removes
// expired entries that no read has touched.
const DefaultSweepInterval = time.Minute

// Manager groups one cache instance per data category. Separate
// instances keep unrelated lookups from contending on one lock, and
// give each category its own size and TTL envelope.
//
// Manager owns its sweep goroutine. Call Close to stop it.
type Manager struct {
	Interface *Cache[map[string]types.InterfaceRecord]
	Device    *Cache[types.DeviceInfo]
	Command   *Cache[string]
	MAC       *Cache[[]types.MACEntry]

	log    zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates the per-category caches and starts the sweep
// loop. sweepEvery <= 0 disables background sweeping; lazy expiration
// on Get still applies.
func NewManager(sweepEvery time.Duration, log zerolog.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		Interface: New[map[string]types.InterfaceRecord](500, 30*time.Second),
		Device:    New[types.DeviceInfo](100, 5*time.Minute),
		Command:   New[string](1000, time.Minute),
		MAC:       New[[]types.MACEntry](1000, 2*time.Minute),
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}

	if sweepEvery > 0 {
		m.wg.Add(1)
		go m.sweepLoop(sweepEvery)
	}
	return m
}

// Close stops the sweep goroutine. Safe to call multiple times.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

// AllStats returns the stats snapshot of every category.
func (m *Manager) AllStats() map[string]Stats {
	return map[string]Stats{
		"interface": m.Interface.Stats(),
		"device":    m.Device.Stats(),
		"command":   m.Command.Stats(),
		"mac":       m.MAC.Stats(),
	}
}

// ClearAll empties every category.
func (m *Manager) ClearAll() {
	m.Interface.Clear()
	m.Device.Clear()
	m.Command.Clear()
	m.MAC.Clear()
}

// sweepLoop periodically removes expired entries from all categories.
// It never touches any channel lock: a slow device cannot stall the
// sweep, and the sweep cannot stall a command.
func (m *Manager) sweepLoop(every time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			removed := m.Interface.RemoveExpired() +
				m.Device.RemoveExpired() +
				m.Command.RemoveExpired() +
				m.MAC.RemoveExpired()
			if removed > 0 {
				m.log.Debug().Int("removed", removed).Msg("cache sweep removed expired entries")
			}
		}
	}
}
