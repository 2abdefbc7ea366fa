// Package cli implements the device channel over SSH with an
// expect-driven PTY session.
package cli

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/lanops/switchmgr/types"
)

// Channel implements types.Channel over SSH
type Channel struct {
	cfg       *types.DeviceConfig
	sshClient *ssh.Client
	session   *expectSession
}

// NewChannel creates an unconnected CLI channel
func NewChannel(cfg *types.DeviceConfig) (*Channel, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}

	// Default SSH port
	if cfg.Port == 0 {
		cfg.Port = 22
	}

	// Default timeout
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Channel{cfg: cfg}, nil
}

// Connect establishes the SSH connection and interactive session
func (c *Channel) Connect(ctx context.Context, cfg *types.DeviceConfig) error {
	if cfg != nil {
		c.cfg = cfg
	}

	// Some terminal servers require keyboard-interactive instead of
	// plain password auth
	keyboardInteractive := ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range questions {
			answers[i] = c.cfg.Password
		}
		return answers, nil
	})

	sshConfig := &ssh.ClientConfig{
		User: c.cfg.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(c.cfg.Password),
			keyboardInteractive,
		},
		Timeout:         c.cfg.Timeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // switch management networks rarely have stable host keys
	}

	target := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)

	client, err := ssh.Dial("tcp", target, sshConfig)
	if err != nil {
		return &types.ConnectionError{Host: c.cfg.Host, Err: err}
	}
	c.sshClient = client

	session, err := newExpectSession(client, c.cfg.Timeout, c.cfg.Secret)
	if err != nil {
		client.Close()
		c.sshClient = nil
		return &types.ConnectionError{Host: c.cfg.Host, Err: err}
	}
	c.session = session

	return nil
}

// Disconnect closes the session and SSH connection
func (c *Channel) Disconnect(ctx context.Context) error {
	if c.session != nil {
		_ = c.session.close()
		c.session = nil
	}
	if c.sshClient != nil {
		err := c.sshClient.Close()
		c.sshClient = nil
		return err
	}
	return nil
}

// IsConnected returns true if the session is usable
func (c *Channel) IsConnected() bool {
	return c.sshClient != nil && c.session != nil
}

// Send writes one command and blocks until the prompt returns or the
// timeout elapses
func (c *Channel) Send(ctx context.Context, command string, timeout time.Duration) (string, error) {
	if !c.IsConnected() {
		return "", types.ErrNotConnected
	}
	return c.session.execute(command, timeout)
}

// ClearBuffer drains pending PTY output left by a previous exchange
func (c *Channel) ClearBuffer() error {
	if !c.IsConnected() {
		return types.ErrNotConnected
	}
	c.session.drain()
	return nil
}

// Ensure Channel implements the channel interface
var _ types.Channel = (*Channel)(nil)
