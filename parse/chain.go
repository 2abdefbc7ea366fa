// Package parse converts raw switch CLI output into structured
// interface records. Different firmware releases print structurally
// different text for the same logical query, so parsing runs as an
// ordered chain of fallback strategies instead of one fixed-format
// parser.
package parse

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lanops/switchmgr/types"
)

// DefaultMinYield is the record count a strategy must reach to win
// outright. The value is a tuning knob, not a verified constant.
const DefaultMinYield = 5

// DiagnosticName keys the synthetic record returned when every
// strategy yields nothing, so callers can tell "zero interfaces"
// from "parsing failed".
const DiagnosticName = "parse-diagnostic"

// Strategy is one pure text-to-records parser. Strategies are
// independent and individually testable; the chain owns ordering.
type Strategy struct {
	Name  string
	Parse func(output string) map[string]types.InterfaceRecord
}

// Chain evaluates strategies in fixed priority order. The first
// strategy yielding at least MinYield records wins; failing that, the
// highest-yield partial result is preferred over nothing; failing
// that, a diagnostic record is returned.
type Chain struct {
	MinYield   int
	strategies []Strategy
	log        zerolog.Logger
}

// NewChain builds a chain over the given strategies.
func NewChain(strategies []Strategy, log zerolog.Logger) *Chain {
	return &Chain{
		MinYield:   DefaultMinYield,
		strategies: strategies,
		log:        log,
	}
}

// DefaultChain returns the standard strategy order: full status table,
// brief summary, raw interface dump, then the low-fidelity fast pass.
func DefaultChain(log zerolog.Logger) *Chain {
	return NewChain([]Strategy{
		{Name: "status-table", Parse: ParseStatusTable},
		{Name: "brief-table", Parse: ParseBriefTable},
		{Name: "raw-dump", Parse: ParseRawDump},
		{Name: "fast-status", Parse: ParseFastStatus},
	}, log)
}

// Parse runs the chain over one command's output. A strategy that
// panics or yields nothing simply cedes to the next; the chain always
// returns a non-nil map.
func (c *Chain) Parse(output string) map[string]types.InterfaceRecord {
	var best map[string]types.InterfaceRecord
	bestName := ""

	for _, s := range c.strategies {
		records := c.runStrategy(s, output)
		if len(records) >= c.MinYield {
			c.log.Debug().Str("strategy", s.Name).Int("records", len(records)).Msg("parser strategy selected")
			return records
		}
		if len(records) > len(best) {
			best = records
			bestName = s.Name
		}
	}

	if len(best) > 0 {
		c.log.Debug().Str("strategy", bestName).Int("records", len(best)).Msg("using best partial parse result")
		return best
	}

	c.log.Warn().Int("output_len", len(output)).Msg("all parser strategies yielded nothing")
	return Diagnostic(fmt.Sprintf("no strategy matched %d bytes of output", len(output)))
}

// runStrategy isolates one strategy; a panic inside it yields nothing
// instead of taking the whole chain down.
func (c *Chain) runStrategy(s Strategy, output string) (records map[string]types.InterfaceRecord) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn().Str("strategy", s.Name).Interface("panic", r).Msg("parser strategy panicked")
			records = nil
		}
	}()
	return s.Parse(output)
}

// IsDiagnostic reports whether records is the synthetic placeholder
// produced when parsing failed entirely.
func IsDiagnostic(records map[string]types.InterfaceRecord) bool {
	_, ok := records[DiagnosticName]
	return ok && len(records) == 1
}

// Diagnostic builds the placeholder record map.
func Diagnostic(reason string) map[string]types.InterfaceRecord {
	return map[string]types.InterfaceRecord{
		DiagnosticName: {
			Name:        DiagnosticName,
			Status:      types.StatusUnknown,
			Description: reason,
		},
	}
}
