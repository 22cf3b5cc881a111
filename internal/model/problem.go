package model

import "time"

type ProblemSeverity string

const (
	SeverityInfo     ProblemSeverity = "info"
	SeverityWarning  ProblemSeverity = "warning"
	SeverityError    ProblemSeverity = "error"
	SeverityCritical ProblemSeverity = "critical"
)

type ProblemCategory string

const (
	CategorySignalWeakness   ProblemCategory = "signal_weakness"
	CategoryInterference     ProblemCategory = "interference"
	CategoryCongestion       ProblemCategory = "congestion"
	CategoryRoamingIssue     ProblemCategory = "roaming_issue"
	CategoryDeviceStability  ProblemCategory = "device_stability"
	CategoryFrequencyOverlap ProblemCategory = "frequency_overlap"
	CategoryConfiguration    ProblemCategory = "configuration_error"
	CategoryCapacityExceeded ProblemCategory = "capacity_exceeded"
	CategoryZigbeeHealth     ProblemCategory = "zigbee_health"
	CategoryInfrastructure   ProblemCategory = "infrastructure"
)

// NetworkProblem is one detected condition. ID is deterministic per
// condition instance: re-detecting the same root cause yields the same id,
// so reconciliation updates instead of duplicating.
type NetworkProblem struct {
	ID              string          `json:"id"`
	Category        ProblemCategory `json:"category"`
	Severity        ProblemSeverity `json:"severity"`
	AffectedDevices []string        `json:"affected_devices,omitempty"`
	AffectedNodes   []string        `json:"affected_nodes,omitempty"`
	Description     string          `json:"description"`
	RootCause       string          `json:"root_cause"`
	Recommendation  string          `json:"recommendation"`
	AutoFixable     bool            `json:"auto_fixable"`
	DetectedAt      time.Time       `json:"detected_at"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
}

// Active reports whether the problem has not been resolved yet.
func (p NetworkProblem) Active() bool {
	return p.ResolvedAt == nil
}

type HealthTrend string

const (
	TrendImproving HealthTrend = "improving"
	TrendStable    HealthTrend = "stable"
	TrendDegrading HealthTrend = "degrading"
	TrendUnknown   HealthTrend = "unknown"
)

// NetworkHealthScore is the six-category composite score, all in [0,100].
type NetworkHealthScore struct {
	Overall             float64     `json:"overall"`
	SignalQuality       float64     `json:"signal_quality"`
	ChannelOptimization float64     `json:"channel_optimization"`
	DeviceStability     float64     `json:"device_stability"`
	MeshBackhaul        float64     `json:"mesh_backhaul"`
	ZigbeeHealth        float64     `json:"zigbee_health"`
	InterferenceLevel   float64     `json:"interference_level"`
	Trend               HealthTrend `json:"trend"`
	GeneratedAt         time.Time   `json:"generated_at"`
}

type ConflictSeverity string

const (
	ConflictNone     ConflictSeverity = "none"
	ConflictLow      ConflictSeverity = "low"
	ConflictMedium   ConflictSeverity = "medium"
	ConflictHigh     ConflictSeverity = "high"
	ConflictCritical ConflictSeverity = "critical"
)

// FrequencyConflict reports WiFi/Zigbee spectral contention.
type FrequencyConflict struct {
	ZigbeeChannel   int              `json:"zigbee_channel"`
	WiFiChannel     int              `json:"wifi_channel"`
	Band            Band             `json:"band"`
	OverlapFraction float64          `json:"overlap_fraction"`
	Severity        ConflictSeverity `json:"severity"`
	Recommendation  string           `json:"recommendation,omitempty"`
}
