package executor

import (
	"context"
	"fmt"
	"time"
)

// sessionState tracks which CLI context the session is in. The device
// keeps configuration context across commands, so an abandoned config
// mode corrupts every later exchange.
type sessionState int

const (
	stateIdle sessionState = iota
	stateConfig
)

const (
	enterConfigCommand = "configure terminal"
	exitConfigCommand  = "end"
)

// RunConfig executes the command list inside the device configuration
// context as one transaction: enter config mode, issue each command,
// exit. The exit command runs on every path, including errors, so the
// session never carries config mode into the next call.
func (e *Executor) RunConfig(ctx context.Context, commands []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runConfigLocked(ctx, commands)
}

func (e *Executor) runConfigLocked(ctx context.Context, commands []string) (err error) {
	if len(commands) == 0 {
		return nil
	}

	if _, err = e.sendLocked(ctx, enterConfigCommand, 1); err != nil {
		return fmt.Errorf("entering config mode: %w", err)
	}
	e.state = stateConfig

	defer func() {
		if e.state != stateConfig {
			return
		}
		// best effort: a failed transaction must still try to leave
		// config mode before the error is reported
		if _, exitErr := e.sendLocked(ctx, exitConfigCommand, 1); exitErr != nil {
			e.log.Warn().Err(exitErr).Msg("failed to exit config mode after error")
			return
		}
		e.state = stateIdle
	}()

	for _, cmd := range commands {
		if _, err = e.sendLocked(ctx, cmd, 1); err != nil {
			return fmt.Errorf("config command %q: %w", cmd, err)
		}
		if e.CommandDelay > 0 {
			time.Sleep(e.CommandDelay)
		}
	}

	if _, err = e.sendLocked(ctx, exitConfigCommand, 1); err != nil {
		e.state = stateIdle // the exit was issued; do not send a second one
		return fmt.Errorf("exiting config mode: %w", err)
	}
	e.state = stateIdle
	return nil
}
