package bulk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Action selects what a bulk operation does to each port
type Action string

const (
	ActionEnable  Action = "enable"
	ActionDisable Action = "disable"
)

// configCommand returns the interface-level command for the action
func (a Action) configCommand() (string, error) {
	switch a {
	case ActionEnable:
		return "no shutdown", nil
	case ActionDisable:
		return "shutdown", nil
	default:
		return "", fmt.Errorf("unsupported bulk action: %s", a)
	}
}

// ConfigRunner executes an ordered command list inside the device's
// configuration context as one transaction.
type ConfigRunner interface {
	RunConfig(ctx context.Context, commands []string) error
}

const (
	// DefaultBatchSize bounds generated command length against device
	// line-length limits. Tunable, not a verified constant.
	DefaultBatchSize = 12

	// DefaultInterBatchDelay paces batches so the device's
	// configuration backlog is not overwhelmed.
	DefaultInterBatchDelay = 500 * time.Millisecond
)

// Executor applies one action to many ports using range commands.
// Each batch is compressed into ranges and issued as a single
// configuration transaction; all ports in a batch share the batch's
// outcome, since range commands are all-or-nothing at the CLI level.
type Executor struct {
	runner ConfigRunner
	log    zerolog.Logger

	// BatchSize is the default maximum ports per batch
	BatchSize int

	// InterBatchDelay is slept between batches
	InterBatchDelay time.Duration
}

// NewExecutor wires a bulk executor to a config runner.
func NewExecutor(runner ConfigRunner, log zerolog.Logger) *Executor {
	return &Executor{
		runner:          runner,
		log:             log,
		BatchSize:       DefaultBatchSize,
		InterBatchDelay: DefaultInterBatchDelay,
	}
}

// Apply performs the action on every port and returns a complete
// outcome map: one entry per input port, true on success. A failed
// batch marks its own ports false and never aborts the remaining
// batches. maxBatchSize <= 0 uses the executor default. An empty port
// list returns an empty map without touching the channel.
func (e *Executor) Apply(ctx context.Context, ports []string, action Action, maxBatchSize int) map[string]bool {
	results := make(map[string]bool, len(ports))
	if len(ports) == 0 {
		return results
	}

	cmd, err := action.configCommand()
	if err != nil {
		e.log.Error().Err(err).Msg("bulk apply rejected")
		for _, p := range ports {
			results[p] = false
		}
		return results
	}

	if maxBatchSize <= 0 {
		maxBatchSize = e.BatchSize
	}

	batches := batch(ports, maxBatchSize)
	e.log.Info().
		Str("action", string(action)).
		Int("ports", len(ports)).
		Int("batches", len(batches)).
		Msg("starting bulk operation")

	for i, b := range batches {
		tokens := CompressPorts(b)
		commands := []string{
			"interface range " + strings.Join(tokens, ","),
			cmd,
		}

		err := e.runner.RunConfig(ctx, commands)
		for _, p := range b {
			results[p] = err == nil
		}
		if err != nil {
			e.log.Error().Err(err).Int("batch", i+1).Strs("ranges", tokens).Msg("bulk batch failed")
		} else {
			e.log.Debug().Int("batch", i+1).Strs("ranges", tokens).Msg("bulk batch applied")
		}

		if i < len(batches)-1 && e.InterBatchDelay > 0 {
			time.Sleep(e.InterBatchDelay)
		}
	}

	succeeded := 0
	for _, ok := range results {
		if ok {
			succeeded++
		}
	}
	e.log.Info().
		Str("action", string(action)).
		Int("succeeded", succeeded).
		Int("total", len(ports)).
		Msg("bulk operation completed")
	return results
}

func batch(ports []string, size int) [][]string {
	var out [][]string
	for i := 0; i < len(ports); i += size {
		end := i + size
		if end > len(ports) {
			end = len(ports)
		}
		out = append(out, ports[i:end])
	}
	return out
}
