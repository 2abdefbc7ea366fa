// Package bulk turns many per-port configuration changes into the
// fewest possible range-based commands and applies them in bounded
// batches.
package bulk

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PortRange is one contiguous run of ports on a slot, expressible in
// a single range command. Start == End is a single port.
type PortRange struct {
	SlotPrefix string
	Start      int
	End        int
}

// Token renders the range in CLI form, e.g. "Gi1/0/5-8" or "Gi1/0/5".
func (r PortRange) Token() string {
	if r.Start == r.End {
		return fmt.Sprintf("%s/%d", r.SlotPrefix, r.Start)
	}
	return fmt.Sprintf("%s/%d-%d", r.SlotPrefix, r.Start, r.End)
}

// Ports expands the range back into individual port numbers.
func (r PortRange) Ports() []int {
	out := make([]int, 0, r.End-r.Start+1)
	for p := r.Start; p <= r.End; p++ {
		out = append(out, p)
	}
	return out
}

// SplitPort decomposes an identifier like "Gi1/0/24" into its slot
// prefix ("Gi1/0") and port number (24). ok is false when the name has
// no slash-delimited numeric tail.
func SplitPort(name string) (prefix string, port int, ok bool) {
	i := strings.LastIndex(name, "/")
	if i <= 0 || i == len(name)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return "", 0, false
	}
	return name[:i], n, true
}

// Ranges collapses sorted port numbers of one slot into maximal
// contiguous runs with a single linear scan. Duplicates are absorbed.
func Ranges(prefix string, ports []int) []PortRange {
	var out []PortRange
	for _, p := range ports {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if p == last.End {
				continue
			}
			if p == last.End+1 {
				last.End = p
				continue
			}
		}
		out = append(out, PortRange{SlotPrefix: prefix, Start: p, End: p})
	}
	return out
}

// CompressPorts groups port identifiers by slot prefix and returns the
// minimal set of range tokens covering them. Identifiers that cannot
// be decomposed pass through verbatim as singleton tokens rather than
// being dropped.
func CompressPorts(ports []string) []string {
	groups := make(map[string][]int)
	var groupOrder []string
	var passthrough []string

	for _, name := range ports {
		prefix, port, ok := SplitPort(name)
		if !ok {
			passthrough = append(passthrough, name)
			continue
		}
		if _, seen := groups[prefix]; !seen {
			groupOrder = append(groupOrder, prefix)
		}
		groups[prefix] = append(groups[prefix], port)
	}

	var tokens []string
	for _, prefix := range groupOrder {
		nums := groups[prefix]
		sort.Ints(nums)
		for _, r := range Ranges(prefix, nums) {
			tokens = append(tokens, r.Token())
		}
	}
	return append(tokens, passthrough...)
}
