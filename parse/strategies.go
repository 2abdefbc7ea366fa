package parse

import (
	"regexp"
	"strings"

	"github.com/lanops/switchmgr/types"
)

// interfaceNameRE matches the shape of a device-local interface name:
// a short alphabetic prefix followed by slash-delimited numeric
// segments, e.g. Gi1/0/24, Fa0/1, Te1/1/1, Vlan10.
var interfaceNameRE = regexp.MustCompile(`^[A-Za-z]{2,}[A-Za-z-]*\d+(?:/\d+)*(?:\.\d+)?$`)

// ValidInterfaceName reports whether s looks like an interface name.
func ValidInterfaceName(s string) bool {
	return interfaceNameRE.MatchString(s)
}

// headerMarkers lists the column-marker pairs different IOS releases
// use in "show interfaces status" headers.
var headerMarkers = [][2]string{
	{"Port", "Status"},
	{"Interface", "Status"},
	{"Port", "Name"},
	{"Port", "Vlan"},
}

func isSeparator(line string) bool {
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "=")
}

// ParseStatusTable handles the full "show interfaces status" table:
// it locates a header by known column spellings, then maps the
// whitespace-split columns of each qualifying row positionally to
// name, status, vlan, duplex, speed and type. Rows qualify only when
// the first token has an interface-name shape.
func ParseStatusTable(output string) map[string]types.InterfaceRecord {
	records := make(map[string]types.InterfaceRecord)
	lines := strings.Split(output, "\n")

	headerIdx := -1
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		for _, m := range headerMarkers {
			if strings.Contains(line, m[0]) && strings.Contains(line, m[1]) {
				headerIdx = i
				break
			}
		}
		if headerIdx >= 0 {
			// a brief header also spells "Interface ... Status"; those
			// rows belong to the brief strategy, which knows the
			// address and method columns
			if strings.Contains(line, "IP-Address") || strings.Contains(line, "OK?") {
				return records
			}
			break
		}
	}
	if headerIdx < 0 {
		// headerless output belongs to the cheaper fallback strategies
		return records
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || isSeparator(line) {
			continue
		}
		if i <= headerIdx {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || !ValidInterfaceName(fields[0]) {
			continue
		}

		rec := types.InterfaceRecord{
			Name:    fields[0],
			Status:  types.NormalizeStatus(fields[1]),
			RawLine: line,
		}
		if len(fields) > 2 {
			rec.VLAN = fields[2]
		}
		if len(fields) > 3 {
			rec.Duplex = fields[3]
		}
		if len(fields) > 4 {
			rec.Speed = fields[4]
		}
		if len(fields) > 5 {
			rec.PortType = strings.Join(fields[5:], " ")
		}
		records[rec.Name] = rec
	}
	return records
}

// ParseBriefTable handles "show ip interface brief": a narrower column
// set of name, address, method, status and protocol. A missing header
// is tolerated; row detection falls back to name shape alone.
func ParseBriefTable(output string) map[string]types.InterfaceRecord {
	records := make(map[string]types.InterfaceRecord)
	headerSeen := false

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || isSeparator(line) {
			continue
		}
		if strings.Contains(line, "Interface") &&
			(strings.Contains(line, "IP-Address") || strings.Contains(line, "Status") || strings.Contains(line, "Protocol")) {
			headerSeen = true
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 4 || !ValidInterfaceName(fields[0]) {
			continue
		}
		// the address column separates brief rows from other table
		// shapes; without it this strategy would claim rows that
		// belong to the status-table parsers
		if !headerSeen && !looksLikeAddress(fields[1]) {
			continue
		}

		// status and protocol are the trailing columns; the OK? and
		// Method columns between address and status vary by release
		protocol := fields[len(fields)-1]
		status := fields[len(fields)-2]
		// "administratively down" splits into two tokens
		if len(fields) >= 5 && fields[len(fields)-3] == "administratively" && status == "down" {
			status = "administratively down"
		}

		records[fields[0]] = types.InterfaceRecord{
			Name:      fields[0],
			Status:    types.NormalizeStatus(status),
			IPAddress: fields[1],
			Protocol:  protocol,
			RawLine:   line,
		}
	}
	return records
}

// looksLikeAddress reports whether s fills the IP-Address column of a
// brief row: a dotted quad or the literal "unassigned".
func looksLikeAddress(s string) bool {
	if s == "unassigned" {
		return true
	}
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// rawDumpRE matches the declarative first line of a per-interface
// block in "show interfaces" output.
var rawDumpRE = regexp.MustCompile(`^([A-Za-z]{2,}[A-Za-z-]*\d+(?:/\d+)*(?:\.\d+)?) is (.+)$`)

// ParseRawDump scans free-form "show interfaces" output for the
// "<name> is up, line protocol is up" block headers. Status derives
// from keyword combinations: "up" with "line protocol is up" means
// operational, "up" alone means link-layer only, "administratively
// down" means operator-disabled.
func ParseRawDump(output string) map[string]types.InterfaceRecord {
	records := make(map[string]types.InterfaceRecord)

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		m := rawDumpRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		name := m[1]
		lower := strings.ToLower(line)

		rec := types.InterfaceRecord{
			Name:     name,
			PortType: "Ethernet",
			RawLine:  line,
		}
		switch {
		case strings.Contains(lower, "administratively down"):
			rec.Status = types.StatusAdminDown
			rec.Protocol = "down"
		case strings.Contains(lower, "is up") && strings.Contains(lower, "line protocol is up"):
			rec.Status = types.StatusUp
			rec.Protocol = "up"
		case strings.Contains(lower, "is up"):
			// link layer is up but the protocol is not confirmed
			rec.Status = types.StatusUp
			rec.Protocol = "down"
		case strings.Contains(lower, "notconnect"):
			rec.Status = types.StatusDown
			rec.Protocol = "down"
		case strings.Contains(lower, "is down"):
			rec.Status = types.StatusDown
			rec.Protocol = "down"
		default:
			rec.Status = types.StatusUnknown
		}
		records[name] = rec
	}
	return records
}

// ParseFastStatus is the low-fidelity variant of the status-table
// strategy: no header detection, shape heuristics only. Useful when
// only name and status matter and the output is known to be large.
func ParseFastStatus(output string) map[string]types.InterfaceRecord {
	records := make(map[string]types.InterfaceRecord)

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || isSeparator(line) || len(line) < 10 {
			continue
		}
		if strings.Contains(line, "Port") || strings.Contains(line, "Name") || strings.Contains(line, "Interface") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		name := fields[0]
		if len(name) <= 2 || !ValidInterfaceName(name) {
			continue
		}

		rec := types.InterfaceRecord{
			Name:     name,
			Status:   types.NormalizeStatus(fields[1]),
			Duplex:   "auto",
			Speed:    "auto",
			PortType: "Ethernet",
			RawLine:  line,
		}
		if len(fields) > 2 {
			rec.VLAN = fields[2]
		}
		if len(fields) > 3 {
			rec.Duplex = fields[3]
		}
		if len(fields) > 4 {
			rec.Speed = fields[4]
		}
		records[name] = rec
	}
	return records
}
