package model

import "strings"

// NormalizeMAC canonicalizes a MAC address to lowercase colon-separated
// six-octet form. Accepts colon, dash and dot separators as well as bare
// 12-digit hex. Inputs that do not look like a MAC are returned lowercased
// unchanged so lookups stay consistent either way.
func NormalizeMAC(s string) string {
	cleaned := strings.ToLower(strings.TrimSpace(s))
	cleaned = strings.NewReplacer("-", "", ":", "", ".", "").Replace(cleaned)
	if len(cleaned) != 12 {
		return strings.ToLower(strings.TrimSpace(s))
	}
	var b strings.Builder
	b.Grow(17)
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(cleaned[i : i+2])
	}
	return b.String()
}

// PlacementIndex maps normalized node MAC to its placement. Built once
// per analysis pass; latest placement per node wins.
type PlacementIndex map[string]NodePlacement

// BuildPlacementIndex indexes placements by normalized node MAC.
func BuildPlacementIndex(placements []NodePlacement) PlacementIndex {
	idx := make(PlacementIndex, len(placements))
	for _, p := range placements {
		idx[NormalizeMAC(p.NodeMAC)] = p
	}
	return idx
}

// Lookup returns the placement for a MAC in any accepted form.
func (idx PlacementIndex) Lookup(mac string) (NodePlacement, bool) {
	p, ok := idx[NormalizeMAC(mac)]
	return p, ok
}

// NodeIndex maps node id to the node.
type NodeIndex map[string]*MeshNode

// BuildNodeIndex indexes nodes by id.
func BuildNodeIndex(nodes []MeshNode) NodeIndex {
	idx := make(NodeIndex, len(nodes))
	for i := range nodes {
		idx[nodes[i].ID] = &nodes[i]
	}
	return idx
}

// DeviceIndex maps normalized device MAC to the device.
type DeviceIndex map[string]*NetworkDevice

// BuildDeviceIndex indexes devices by normalized MAC.
func BuildDeviceIndex(devices []NetworkDevice) DeviceIndex {
	idx := make(DeviceIndex, len(devices))
	for i := range devices {
		idx[NormalizeMAC(devices[i].MAC)] = &devices[i]
	}
	return idx
}
