package bulk

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func TestSplitPort(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		port   int
		ok     bool
	}{
		{"Gi1/0/24", "Gi1/0", 24, true},
		{"GigabitEthernet1/0/1", "GigabitEthernet1/0", 1, true},
		{"Fa0/3", "Fa0", 3, true},
		{"Te1/1/4", "Te1/1", 4, true},
		{"Vlan100", "", 0, false},
		{"Gi1/0/", "", 0, false},
		{"/24", "", 0, false},
		{"Gi1/0/abc", "", 0, false},
		{"", "", 0, false},
	}

	for _, tt := range tests {
		prefix, port, ok := SplitPort(tt.name)
		if ok != tt.ok || prefix != tt.prefix || port != tt.port {
			t.Errorf("SplitPort(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tt.name, prefix, port, ok, tt.prefix, tt.port, tt.ok)
		}
	}
}

func TestRanges(t *testing.T) {
	t.Run("mixed runs", func(t *testing.T) {
		got := Ranges("Gi1/0", []int{1, 2, 3, 5, 6, 8})
		want := []PortRange{
			{SlotPrefix: "Gi1/0", Start: 1, End: 3},
			{SlotPrefix: "Gi1/0", Start: 5, End: 6},
			{SlotPrefix: "Gi1/0", Start: 8, End: 8},
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("duplicates absorbed", func(t *testing.T) {
		got := Ranges("Gi1/0", []int{1, 1, 2, 2, 3})
		want := []PortRange{{SlotPrefix: "Gi1/0", Start: 1, End: 3}}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := Ranges("Gi1/0", nil); len(got) != 0 {
			t.Fatalf("got %v, want empty", got)
		}
	})
}

func TestPortRangeToken(t *testing.T) {
	r := PortRange{SlotPrefix: "Gi1/0", Start: 5, End: 8}
	if got := r.Token(); got != "Gi1/0/5-8" {
		t.Fatalf("Token() = %q, want %q", got, "Gi1/0/5-8")
	}

	single := PortRange{SlotPrefix: "Gi1/0", Start: 5, End: 5}
	if got := single.Token(); got != "Gi1/0/5" {
		t.Fatalf("Token() = %q, want %q", got, "Gi1/0/5")
	}
}

func TestPortRangeRoundTrip(t *testing.T) {
	r := PortRange{SlotPrefix: "Gi1/0", Start: 3, End: 6}
	if got := r.Ports(); !reflect.DeepEqual(got, []int{3, 4, 5, 6}) {
		t.Fatalf("Ports() = %v", got)
	}
}

func TestCompressPorts(t *testing.T) {
	t.Run("single slot", func(t *testing.T) {
		got := CompressPorts([]string{"Gi1/0/1", "Gi1/0/2", "Gi1/0/3", "Gi1/0/5", "Gi1/0/6", "Gi1/0/8"})
		want := []string{"Gi1/0/1-3", "Gi1/0/5-6", "Gi1/0/8"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("unsorted input", func(t *testing.T) {
		got := CompressPorts([]string{"Gi1/0/8", "Gi1/0/2", "Gi1/0/1", "Gi1/0/3"})
		want := []string{"Gi1/0/1-3", "Gi1/0/8"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("multiple slots keep first-seen order", func(t *testing.T) {
		got := CompressPorts([]string{"Gi2/0/1", "Gi1/0/1", "Gi2/0/2", "Gi1/0/2"})
		want := []string{"Gi2/0/1-2", "Gi1/0/1-2"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("undecomposable names pass through", func(t *testing.T) {
		got := CompressPorts([]string{"Gi1/0/1", "Vlan100", "Gi1/0/2"})
		want := []string{"Gi1/0/1-2", "Vlan100"}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %v, want %v", got, want)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := CompressPorts(nil); len(got) != 0 {
			t.Fatalf("got %v, want empty", got)
		}
	})
}

// every input port must be covered by the produced tokens
func TestCompressPortsCoversInput(t *testing.T) {
	input := []string{"Gi1/0/1", "Gi1/0/2", "Gi1/0/4", "Gi1/0/7", "Gi1/0/8", "Gi1/0/9", "Fa0/1"}
	tokens := CompressPorts(input)

	covered := make(map[string]bool)
	for _, tok := range tokens {
		for _, name := range expandToken(tok) {
			covered[name] = true
		}
	}
	for _, name := range input {
		if !covered[name] {
			t.Fatalf("port %s not covered by tokens %v", name, tokens)
		}
	}
}

// expandToken turns "Gi1/0/7-9" back into the individual port names
func expandToken(tok string) []string {
	i := strings.LastIndex(tok, "/")
	if i < 0 {
		return []string{tok}
	}
	prefix, tail := tok[:i], tok[i+1:]
	bounds := strings.SplitN(tail, "-", 2)
	start, err := strconv.Atoi(bounds[0])
	if err != nil {
		return []string{tok}
	}
	end := start
	if len(bounds) == 2 {
		if end, err = strconv.Atoi(bounds[1]); err != nil {
			return []string{tok}
		}
	}
	r := PortRange{SlotPrefix: prefix, Start: start, End: end}
	var out []string
	for _, p := range r.Ports() {
		out = append(out, fmt.Sprintf("%s/%d", prefix, p))
	}
	return out
}
