// Package executor wraps a device channel with buffer discipline,
// timeout scaling and optional cache-through, so callers get a
// request/response API over an unreliable interactive session.
package executor

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lanops/switchmgr/cache"
	"github.com/lanops/switchmgr/types"
)

const (
	// DefaultBaseTimeout is the read timeout for a delay factor of 1
	DefaultBaseTimeout = 30 * time.Second

	// DefaultSettleDelay follows a buffer drain, letting the session
	// quiesce before the next send
	DefaultSettleDelay = 200 * time.Millisecond

	// DefaultCommandDelay paces consecutive config-mode commands
	DefaultCommandDelay = 100 * time.Millisecond
)

// Options tunes a single Execute call.
type Options struct {
	// DelayFactor scales the read timeout for commands known to
	// produce large or slow output. It is a caller-supplied hint,
	// never auto-detected. Values below 1 are treated as 1.
	DelayFactor int

	// UseCache consults and fills the command cache
	UseCache bool

	// TTL overrides the cache default when storing output
	TTL time.Duration
}

// Stats are shared executor counters for health reporting.
type Stats struct {
	CommandsExecuted uint64 `json:"commands_executed"`
	Errors           uint64 `json:"errors"`
	CacheHits        uint64 `json:"cache_hits"`
	CacheMisses      uint64 `json:"cache_misses"`
}

// Executor serializes all access to one channel. The session has no
// request framing, so response matching depends entirely on ordering:
// exactly one command may be in flight. Cache hits are served without
// the channel lock and may proceed concurrently with an in-flight
// command.
type Executor struct {
	mu     sync.Mutex // serializes channel access
	ch     types.Channel
	device string
	cmds   *cache.Cache[string] // optional cache-through
	log    zerolog.Logger

	BaseTimeout  time.Duration
	SettleDelay  time.Duration
	CommandDelay time.Duration

	statsMu sync.Mutex
	stats   Stats

	state sessionState // guarded by mu
}

// New creates an executor for the channel. device identifies the
// target in cache keys; cmds may be nil to disable caching entirely.
func New(ch types.Channel, device string, cmds *cache.Cache[string], log zerolog.Logger) *Executor {
	return &Executor{
		ch:           ch,
		device:       device,
		cmds:         cmds,
		log:          log,
		BaseTimeout:  DefaultBaseTimeout,
		SettleDelay:  DefaultSettleDelay,
		CommandDelay: DefaultCommandDelay,
	}
}

// Execute sends one command and returns its cleaned output. With
// Options.UseCache, a fresh cached result short-circuits the channel
// entirely; a miss executes and stores non-empty output.
func (e *Executor) Execute(ctx context.Context, command string, opts Options) (string, error) {
	df := opts.DelayFactor
	if df < 1 {
		df = 1
	}

	if opts.UseCache && e.cmds != nil {
		if out, ok := e.cmds.Get(e.device, command, strconv.Itoa(df)); ok {
			e.countCacheHit()
			return out, nil
		}
		e.countCacheMiss()
	}

	e.mu.Lock()
	out, err := e.sendLocked(ctx, command, df)
	e.mu.Unlock()
	if err != nil {
		return "", err
	}

	if opts.UseCache && e.cmds != nil && out != "" {
		e.cmds.Set(out, opts.TTL, e.device, command, strconv.Itoa(df))
	}
	return out, nil
}

// Invalidate drops any cached output for the command at the given
// delay factor.
func (e *Executor) Invalidate(command string, delayFactor int) bool {
	if e.cmds == nil {
		return false
	}
	if delayFactor < 1 {
		delayFactor = 1
	}
	return e.cmds.Invalidate(e.device, command, strconv.Itoa(delayFactor))
}

// Stats returns a snapshot of the executor counters.
func (e *Executor) Stats() Stats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.stats
}

// sendLocked performs one raw exchange. Callers hold e.mu.
//
// Interactive sessions leave stale echoed fragments from the previous
// exchange, so the inbound buffer is drained and a settle delay
// observed before every send.
func (e *Executor) sendLocked(ctx context.Context, command string, delayFactor int) (string, error) {
	if !e.ch.IsConnected() {
		e.countError()
		return "", &types.CommandError{Command: command, Err: types.ErrNotConnected}
	}

	_ = e.ch.ClearBuffer()
	if e.SettleDelay > 0 {
		time.Sleep(e.SettleDelay)
	}

	timeout := e.BaseTimeout * time.Duration(delayFactor)
	raw, err := e.ch.Send(ctx, command, timeout)

	e.countExecuted()
	if err != nil {
		e.countError()
		return "", &types.CommandError{Command: command, Err: err}
	}

	out := CleanOutput(raw)
	if derr := classifyOutput(out); derr != nil {
		e.countError()
		return "", &types.CommandError{Command: command, Err: derr}
	}

	_ = e.ch.ClearBuffer()
	return out, nil
}

func (e *Executor) countExecuted() {
	e.statsMu.Lock()
	e.stats.CommandsExecuted++
	e.statsMu.Unlock()
}

func (e *Executor) countError() {
	e.statsMu.Lock()
	e.stats.Errors++
	e.statsMu.Unlock()
}

func (e *Executor) countCacheHit() {
	e.statsMu.Lock()
	e.stats.CacheHits++
	e.statsMu.Unlock()
}

func (e *Executor) countCacheMiss() {
	e.statsMu.Lock()
	e.stats.CacheMisses++
	e.statsMu.Unlock()
}
