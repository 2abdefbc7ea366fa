package cli

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	expect "github.com/google/goexpect"
	"golang.org/x/crypto/ssh"
)

// promptRE matches IOS-family prompts: "hostname>", "hostname#",
// and config-context variants like "hostname(config-if)#".
var promptRE = regexp.MustCompile(`(?m)[\w\-.]+(\([\w\-]+\))?[#>]\s*$`)

// passwordRE matches the enable-password prompt
var passwordRE = regexp.MustCompile(`(?i)password[: ]*$`)

// anyOutputRE matches any pending output at all; used for draining
var anyOutputRE = regexp.MustCompile(`(?s).+`)

// pagerDisableCommands are issued right after login so long output is
// never paginated mid-read
var pagerDisableCommands = []string{
	"terminal length 0",
	"terminal width 0",
}

// drainTimeout bounds how long a buffer drain waits for straggling
// output before declaring the session quiet
const drainTimeout = 250 * time.Millisecond

// expectSession wraps google/goexpect for the interactive switch CLI
type expectSession struct {
	exp     *expect.GExpect
	timeout time.Duration
}

// newExpectSession spawns a PTY session over the SSH client, waits for
// the initial prompt, escalates to privileged exec when a secret is
// given, and disables the pager.
func newExpectSession(client *ssh.Client, timeout time.Duration, secret string) (*expectSession, error) {
	exp, _, err := expect.SpawnSSH(client, timeout,
		expect.Verbose(false),
		expect.CheckDuration(500*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn SSH expect session: %w", err)
	}

	s := &expectSession{
		exp:     exp,
		timeout: timeout,
	}

	if _, _, err := exp.Expect(promptRE, timeout); err != nil {
		exp.Close()
		return nil, fmt.Errorf("failed to detect initial prompt: %w", err)
	}

	if secret != "" {
		if err := s.enable(secret); err != nil {
			exp.Close()
			return nil, fmt.Errorf("privileged exec escalation failed: %w", err)
		}
	}

	for _, cmd := range pagerDisableCommands {
		// non-fatal: some images reject one of the two forms
		_, _ = s.execute(cmd, timeout)
	}

	return s, nil
}

// enable escalates to privileged exec mode with the enable secret
func (s *expectSession) enable(secret string) error {
	if err := s.exp.Send("enable\n"); err != nil {
		return fmt.Errorf("failed to send enable: %w", err)
	}
	out, _, err := s.exp.Expect(regexp.MustCompile(`(?mi)(password[: ]*|[\w\-.]+[#>])\s*$`), s.timeout)
	if err != nil {
		return fmt.Errorf("no response to enable: %w", err)
	}
	if passwordRE.MatchString(strings.TrimSpace(out)) {
		if err := s.exp.Send(secret + "\n"); err != nil {
			return fmt.Errorf("failed to send enable secret: %w", err)
		}
		if _, _, err := s.exp.Expect(promptRE, s.timeout); err != nil {
			return fmt.Errorf("enable secret rejected: %w", err)
		}
	}
	return nil
}

// execute sends a command and waits for the prompt, returning the raw
// output with the command echo and trailing prompt removed
func (s *expectSession) execute(command string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = s.timeout
	}
	if err := s.exp.Send(command + "\n"); err != nil {
		return "", fmt.Errorf("failed to send command: %w", err)
	}

	output, _, err := s.exp.Expect(promptRE, timeout)
	if err != nil {
		return output, fmt.Errorf("timeout waiting for prompt after %q: %w", command, err)
	}
	return stripEcho(output, command), nil
}

// drain consumes whatever the device has already written without
// sending anything. A timeout here just means the buffer was clean.
func (s *expectSession) drain() {
	_, _, _ = s.exp.Expect(anyOutputRE, drainTimeout)
}

func (s *expectSession) close() error {
	return s.exp.Close()
}

// stripEcho removes the echoed command line and prompt-only lines
func stripEcho(output, command string) string {
	lines := strings.Split(output, "\n")
	var cleaned []string
	for i, line := range lines {
		if i == 0 && strings.Contains(line, command) {
			continue
		}
		if promptRE.MatchString(strings.TrimSpace(line)) && len(strings.TrimSpace(line)) < 64 {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
