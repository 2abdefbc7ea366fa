// Package mock implements an in-memory channel for tests and
// simulation. It records every command and replays canned output
// without touching the network.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lanops/switchmgr/types"
)

// Channel implements types.Channel against canned responses
type Channel struct {
	mu        sync.Mutex
	connected bool

	responses       map[string]string
	errors          map[string]error
	defaultResponse string
	connectErr      error

	history     []string
	clearCalls  int
	sendLatency time.Duration
}

// NewChannel creates a mock channel with no canned responses
func NewChannel() *Channel {
	return &Channel{
		responses: make(map[string]string),
		errors:    make(map[string]error),
	}
}

// SetResponse cans the output returned for an exact command
func (c *Channel) SetResponse(command, output string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses[command] = output
}

// SetDefaultResponse cans the output for commands with no entry
func (c *Channel) SetDefaultResponse(output string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultResponse = output
}

// FailCommand makes an exact command return err
func (c *Channel) FailCommand(command string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors[command] = err
}

// FailConnect makes Connect return err
func (c *Channel) FailConnect(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectErr = err
}

// SetSendLatency simulates a slow device
func (c *Channel) SetSendLatency(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendLatency = d
}

// History returns every command sent, in order
func (c *Channel) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.history))
	copy(out, c.history)
	return out
}

// ClearBufferCalls returns how many times ClearBuffer ran
func (c *Channel) ClearBufferCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clearCalls
}

// Connect marks the channel connected
func (c *Channel) Connect(ctx context.Context, cfg *types.DeviceConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connectErr != nil {
		return c.connectErr
	}
	c.connected = true
	return nil
}

// Disconnect marks the channel disconnected
func (c *Channel) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return nil
}

// IsConnected reports the connected flag
func (c *Channel) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Send records the command and replays its canned output
func (c *Channel) Send(ctx context.Context, command string, timeout time.Duration) (string, error) {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return "", types.ErrNotConnected
	}
	c.history = append(c.history, command)
	latency := c.sendLatency
	err := c.errors[command]
	out, ok := c.responses[command]
	if !ok {
		out = c.defaultResponse
	}
	c.mu.Unlock()

	if latency > 0 {
		time.Sleep(latency)
	}
	if err != nil {
		return "", err
	}
	if !ok && out == "" {
		return fmt.Sprintf("%% Unknown command %q", command), nil
	}
	return out, nil
}

// ClearBuffer counts drain requests
func (c *Channel) ClearBuffer() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return types.ErrNotConnected
	}
	c.clearCalls++
	return nil
}

// Ensure Channel implements the channel interface
var _ types.Channel = (*Channel)(nil)
