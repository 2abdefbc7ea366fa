package parse

import (
	"regexp"
	"strings"

	"github.com/lanops/switchmgr/types"
)

var (
	hostnameRE = regexp.MustCompile(`(\S+) uptime is`)
	versionRE  = regexp.MustCompile(`Version\s+([^,\s]+)`)
	uptimeRE   = regexp.MustCompile(`uptime is\s+(.+)`)

	modelREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Model number\s*:\s*(.+)`),
		regexp.MustCompile(`(?i)cisco\s+(\S+)\s+\(`),
		regexp.MustCompile(`(?i)Hardware:\s*(\S+)`),
	}
	serialREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)System serial number\s*:\s*(\S+)`),
		regexp.MustCompile(`(?i)Processor board ID\s+(\S+)`),
	}
)

// ParseDeviceInfo extracts identity fields from "show version" output.
// Every field is best effort; an unmatched field stays empty.
func ParseDeviceInfo(output string) types.DeviceInfo {
	info := types.DeviceInfo{}

	if m := hostnameRE.FindStringSubmatch(output); m != nil {
		info.Hostname = m[1]
	}
	for _, re := range modelREs {
		if m := re.FindStringSubmatch(output); m != nil {
			info.Model = strings.TrimSpace(m[1])
			break
		}
	}
	for _, re := range serialREs {
		if m := re.FindStringSubmatch(output); m != nil {
			info.Serial = m[1]
			break
		}
	}
	if m := versionRE.FindStringSubmatch(output); m != nil {
		info.Version = m[1]
	}
	if m := uptimeRE.FindStringSubmatch(output); m != nil {
		info.Uptime = strings.TrimSpace(m[1])
	}
	return info
}

// ParseMACTable parses "show mac address-table" output.
func ParseMACTable(output string) []types.MACEntry {
	var entries []types.MACEntry

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.Contains(line, "Vlan") || strings.Contains(line, "Mac Address") || strings.Contains(line, "---") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		entries = append(entries, types.MACEntry{
			VLAN:       fields[0],
			MACAddress: fields[1],
			Type:       fields[2],
			Ports:      strings.Join(fields[3:], " "),
		})
	}
	return entries
}

// ParseARPTable parses "show ip arp" / "show arp" output. Only rows
// of the Internet protocol family qualify.
func ParseARPTable(output string) []types.ARPEntry {
	var entries []types.ARPEntry

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		fields := strings.Fields(line)
		if len(fields) < 6 || fields[0] != "Internet" {
			continue
		}
		entries = append(entries, types.ARPEntry{
			IPAddress:  fields[1],
			Age:        fields[2],
			MACAddress: fields[3],
			Type:       fields[4],
			Interface:  fields[5],
		})
	}
	return entries
}
