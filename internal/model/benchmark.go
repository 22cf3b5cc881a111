package model

import (
	"time"

	"github.com/google/uuid"
)

type BenchmarkTestType string

const (
	TestLatency    BenchmarkTestType = "latency"
	TestThroughput BenchmarkTestType = "throughput"
)

// BenchmarkSample is one raw throughput/latency probe.
type BenchmarkSample struct {
	Timestamp      time.Time         `json:"timestamp" yaml:"timestamp"`
	Type           BenchmarkTestType `json:"type" yaml:"type"`
	LatencyMs      float64           `json:"latency_ms,omitempty" yaml:"latency_ms,omitempty"`
	ThroughputMbps float64           `json:"throughput_mbps,omitempty" yaml:"throughput_mbps,omitempty"`
	JitterMs       float64           `json:"jitter_ms,omitempty" yaml:"jitter_ms,omitempty"`
	PacketLossPct  float64           `json:"packet_loss_pct,omitempty" yaml:"packet_loss_pct,omitempty"`
}

// BenchmarkComparison relates a suite result to the immediately
// preceding one.
type BenchmarkComparison struct {
	PreviousID   string      `json:"previous_id"`
	OverallDelta float64     `json:"overall_delta"`
	Trend        HealthTrend `json:"trend"`
}

// BenchmarkSuiteResult is the scored outcome of one benchmark run.
type BenchmarkSuiteResult struct {
	ID              string                                `json:"id"`
	Timestamp       time.Time                             `json:"timestamp"`
	Samples         map[BenchmarkTestType][]BenchmarkSample `json:"samples"`
	LatencyScore    float64                               `json:"latency_score"`
	ThroughputScore float64                               `json:"throughput_score"`
	StabilityScore  float64                               `json:"stability_score"`
	CoverageScore   float64                               `json:"coverage_score"`
	Overall         float64                               `json:"overall"`
	Comparison      *BenchmarkComparison                  `json:"comparison,omitempty"`
}

// NewSuiteID returns a fresh benchmark result id.
func NewSuiteID() string {
	return uuid.New().String()
}

// WiFiGeneration orders mesh hardware generations, oldest first.
type WiFiGeneration int

const (
	GenerationUnknown WiFiGeneration = iota
	GenerationWiFi5
	GenerationWiFi6
	GenerationWiFi6E
	GenerationWiFi7
)

func (g WiFiGeneration) String() string {
	switch g {
	case GenerationWiFi5:
		return "wifi5"
	case GenerationWiFi6:
		return "wifi6"
	case GenerationWiFi6E:
		return "wifi6e"
	case GenerationWiFi7:
		return "wifi7"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the generation as its string name.
func (g WiFiGeneration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + g.String() + `"`), nil
}

// MixedMeshRecommendation is an advisory note about heterogeneous
// hardware; it never blocks anything.
type MixedMeshRecommendation struct {
	Topic   string `json:"topic"`
	Message string `json:"message"`
}

// CompatibilityReport is the lowest-common capability analysis across
// all detected node models.
type CompatibilityReport struct {
	LowestGeneration   WiFiGeneration            `json:"lowest_generation"`
	HighestGeneration  WiFiGeneration            `json:"highest_generation"`
	SharedCapabilities []string                  `json:"shared_capabilities"`
	Score              float64                   `json:"score"`
	Recommendations    []MixedMeshRecommendation `json:"recommendations"`
}
