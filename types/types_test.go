package types

import (
	"errors"
	"testing"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want PortStatus
	}{
		{"connected", StatusUp},
		{"up", StatusUp},
		{"monitoring", StatusUp},
		{"notconnect", StatusDown},
		{"down", StatusDown},
		{"faulty", StatusDown},
		{"disabled", StatusAdminDown},
		{"err-disabled", StatusAdminDown},
		{"administratively down", StatusAdminDown},
		{"  Connected  ", StatusUp},
		{"DISABLED", StatusAdminDown},
		{"flapping", StatusUnknown},
		{"", StatusUnknown},
	}
	for _, tt := range tests {
		if got := NormalizeStatus(tt.raw); got != tt.want {
			t.Errorf("NormalizeStatus(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestConnectionError(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	err := &ConnectionError{Host: "10.0.0.1", Err: inner}

	if !errors.Is(err, inner) {
		t.Fatal("ConnectionError must unwrap to its cause")
	}
	if !IsConnectionError(err) {
		t.Fatal("IsConnectionError must detect a ConnectionError")
	}
	if IsCommandError(err) {
		t.Fatal("a ConnectionError is not a CommandError")
	}
}

func TestCommandError(t *testing.T) {
	err := &CommandError{Command: "show clock", Err: ErrNotConnected}

	if !errors.Is(err, ErrNotConnected) {
		t.Fatal("CommandError must unwrap to its cause")
	}
	if !IsCommandError(err) {
		t.Fatal("IsCommandError must detect a CommandError")
	}
	if IsConnectionError(err) {
		t.Fatal("a CommandError is not a ConnectionError")
	}
}
