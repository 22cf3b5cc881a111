package model

import "time"

type NodeRole string

const (
	RoleMain      NodeRole = "main"
	RoleSecondary NodeRole = "secondary"
)

type BackhaulType string

const (
	BackhaulWired    BackhaulType = "wired"
	BackhaulWireless BackhaulType = "wireless"
)

// MeshNode is one router in the mesh. Only the acquisition side mutates
// these; analysis packages treat them as read-only snapshots.
type MeshNode struct {
	ID               string       `json:"id" yaml:"id"`
	Name             string       `json:"name" yaml:"name"`
	MAC              string       `json:"mac" yaml:"mac"`
	IP               string       `json:"ip" yaml:"ip"`
	Model            string       `json:"model" yaml:"model"`
	Firmware         string       `json:"firmware" yaml:"firmware"`
	Role             NodeRole     `json:"role" yaml:"role"`
	CPUPercent       float64      `json:"cpu_percent" yaml:"cpu_percent"`
	MemoryPercent    float64      `json:"memory_percent" yaml:"memory_percent"`
	Uptime           uint64       `json:"uptime_sec" yaml:"uptime_sec"`
	ConnectedClients int          `json:"connected_clients" yaml:"connected_clients"`
	Backhaul         BackhaulType `json:"backhaul" yaml:"backhaul"`
}

type Band string

const (
	Band24 Band = "2.4ghz"
	Band5  Band = "5ghz"
)

type ConnectionType string

const (
	Connection24    ConnectionType = "2.4ghz"
	Connection5     ConnectionType = "5ghz"
	ConnectionWired ConnectionType = "ethernet"
)

type DeviceStatus string

const (
	DeviceOnline  DeviceStatus = "online"
	DeviceOffline DeviceStatus = "offline"
)

// NetworkDevice is a client associated to the mesh. MAC is canonical
// lowercase colon-separated form (see NormalizeMAC).
type NetworkDevice struct {
	MAC             string         `json:"mac" yaml:"mac"`
	Hostname        string         `json:"hostname" yaml:"hostname"`
	Vendor          string         `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Connection      ConnectionType `json:"connection" yaml:"connection"`
	NodeID          string         `json:"node_id" yaml:"node_id"`
	SignalDBM       *float64       `json:"signal_dbm,omitempty" yaml:"signal_dbm,omitempty"`
	Status          DeviceStatus   `json:"status" yaml:"status"`
	FirstSeen       time.Time      `json:"first_seen" yaml:"first_seen"`
	LastSeen        time.Time      `json:"last_seen" yaml:"last_seen"`
	DisconnectCount int            `json:"disconnect_count" yaml:"disconnect_count"`
}

type SecurityMode string

const (
	SecurityOpen SecurityMode = "open"
	SecurityWEP  SecurityMode = "wep"
	SecurityWPA  SecurityMode = "wpa"
	SecurityWPA2 SecurityMode = "wpa2"
	SecurityWPA3 SecurityMode = "wpa3"
)

// WiFiSettings is the operator's current radio configuration.
type WiFiSettings struct {
	Channel24        int          `json:"channel_24" yaml:"channel_24"`
	Channel5         int          `json:"channel_5" yaml:"channel_5"`
	Width24MHz       int          `json:"width_24_mhz" yaml:"width_24_mhz"`
	Width5MHz        int          `json:"width_5_mhz" yaml:"width_5_mhz"`
	Security         SecurityMode `json:"security" yaml:"security"`
	Beamforming      bool         `json:"beamforming" yaml:"beamforming"`
	MUMIMO           bool         `json:"mu_mimo" yaml:"mu_mimo"`
	OFDMA            bool         `json:"ofdma" yaml:"ofdma"`
	RoamingAssistant bool         `json:"roaming_assistant" yaml:"roaming_assistant"`
}

// MeshNetworkState is the immutable input snapshot for one analysis pass.
type MeshNetworkState struct {
	Nodes       []MeshNode      `json:"nodes" yaml:"nodes"`
	Devices     []NetworkDevice `json:"devices" yaml:"devices"`
	WiFi        WiFiSettings    `json:"wifi" yaml:"wifi"`
	CollectedAt time.Time       `json:"collected_at" yaml:"collected_at"`
}

type EventType string

const (
	EventConnect    EventType = "connect"
	EventDisconnect EventType = "disconnect"
	EventRoam       EventType = "roam"
)

// ConnectionEvent is one entry of a device's connection history.
type ConnectionEvent struct {
	DeviceMAC  string    `json:"device_mac" yaml:"device_mac"`
	Type       EventType `json:"type" yaml:"type"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	FromNodeID string    `json:"from_node_id,omitempty" yaml:"from_node_id,omitempty"`
	ToNodeID   string    `json:"to_node_id,omitempty" yaml:"to_node_id,omitempty"`
	Reason     string    `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// NeighborNetwork is a foreign WiFi network seen during a scan or listed
// as an ambient interference source in the site configuration.
type NeighborNetwork struct {
	SSID     string  `json:"ssid" yaml:"ssid"`
	BSSID    string  `json:"bssid" yaml:"bssid"`
	Band     Band    `json:"band" yaml:"band"`
	Channel  int     `json:"channel" yaml:"channel"`
	WidthMHz int     `json:"width_mhz" yaml:"width_mhz"`
	RSSI     float64 `json:"rssi" yaml:"rssi"`
}

// ChannelScanResult is one channel-occupancy measurement.
type ChannelScanResult struct {
	Band           Band              `json:"band" yaml:"band"`
	Channel        int               `json:"channel" yaml:"channel"`
	UtilizationPct float64           `json:"utilization_pct" yaml:"utilization_pct"`
	NoiseFloorDBM  float64           `json:"noise_floor_dbm" yaml:"noise_floor_dbm"`
	Neighbors      []NeighborNetwork `json:"neighbors" yaml:"neighbors"`
	ScannedAt      time.Time         `json:"scanned_at" yaml:"scanned_at"`
}

// InfraHealthSample is SNMP-derived health for non-WiFi infrastructure
// (switches, gateways) feeding bottleneck detection.
type InfraHealthSample struct {
	Host              string    `json:"host" yaml:"host"`
	CPUPercent        float64   `json:"cpu_percent" yaml:"cpu_percent"`
	MemoryPercent     float64   `json:"memory_percent" yaml:"memory_percent"`
	TemperatureC      float64   `json:"temperature_c" yaml:"temperature_c"`
	StateTableUsedPct float64   `json:"state_table_used_pct" yaml:"state_table_used_pct"`
	CollectedAt       time.Time `json:"collected_at" yaml:"collected_at"`
}
