// Package benchmark scores raw latency/throughput samples into a 0-100
// composite result and analyzes capability compatibility across
// mixed-generation mesh hardware.
package benchmark

import (
	"time"

	"github.com/the-geek-freaks/meshscope/internal/model"
	"github.com/the-geek-freaks/meshscope/internal/signal"
)

// Score-blend weights. Uncalibrated heuristics, fixed by contract.
const (
	weightLatency    = 0.3
	weightThroughput = 0.4
	weightStability  = 0.3

	stabilityLossFactor = 10.0

	// neutralScore stands in for a sub-score whose sample type is absent.
	neutralScore = 50.0

	// trendBand is the overall delta treated as noise.
	trendBand = 5.0
)

// ScoreSuite scores one benchmark run. previous may be nil; it only
// feeds the trend comparison. With no samples at all, every sub-score is
// neutral rather than zero.
func ScoreSuite(samples map[model.BenchmarkTestType][]model.BenchmarkSample, previous *model.BenchmarkSuiteResult, now time.Time) model.BenchmarkSuiteResult {
	latency := samples[model.TestLatency]
	throughput := samples[model.TestThroughput]

	result := model.BenchmarkSuiteResult{
		ID:        model.NewSuiteID(),
		Timestamp: now,
		Samples:   samples,
	}

	result.LatencyScore = neutralScore
	if len(latency) > 0 {
		result.LatencyScore = latencyScore(avg(latency, func(s model.BenchmarkSample) float64 { return s.LatencyMs }))
	}

	result.ThroughputScore = neutralScore
	if len(throughput) > 0 {
		result.ThroughputScore = throughputScore(avg(throughput, func(s model.BenchmarkSample) float64 { return s.ThroughputMbps }))
	}

	all := make([]model.BenchmarkSample, 0, len(latency)+len(throughput))
	all = append(all, latency...)
	all = append(all, throughput...)

	result.StabilityScore = neutralScore
	if len(all) > 0 {
		loss := avg(all, func(s model.BenchmarkSample) float64 { return s.PacketLossPct })
		jitter := avg(all, func(s model.BenchmarkSample) float64 { return s.JitterMs })
		result.StabilityScore = signal.Clamp(100-stabilityLossFactor*loss-jitter, 0, 100)
	}

	result.CoverageScore = coverageScore(all, throughput)

	result.Overall = signal.Clamp(
		weightLatency*result.LatencyScore+
			weightThroughput*result.ThroughputScore+
			weightStability*result.StabilityScore,
		0, 100)

	if previous != nil {
		delta := result.Overall - previous.Overall
		trend := model.TrendStable
		switch {
		case delta > trendBand:
			trend = model.TrendImproving
		case delta < -trendBand:
			trend = model.TrendDegrading
		}
		result.Comparison = &model.BenchmarkComparison{
			PreviousID:   previous.ID,
			OverallDelta: delta,
			Trend:        trend,
		}
	}

	return result
}

func latencyScore(avgMs float64) float64 {
	switch {
	case avgMs < 10:
		return 100
	case avgMs < 30:
		return 90
	case avgMs < 50:
		return 80
	case avgMs < 100:
		return 60
	default:
		return 40
	}
}

func throughputScore(avgMbps float64) float64 {
	switch {
	case avgMbps > 500:
		return 100
	case avgMbps > 300:
		return 90
	case avgMbps > 200:
		return 80
	case avgMbps > 100:
		return 60
	case avgMbps > 50:
		return 40
	default:
		return 20
	}
}

// coverageScore estimates coverage from link quality alone: benchmarks
// carry no spatial ground truth, so loss, jitter and low throughput
// stand in for reach.
func coverageScore(all, throughput []model.BenchmarkSample) float64 {
	if len(all) == 0 {
		return neutralScore
	}

	score := 100.0
	score -= 5 * avg(all, func(s model.BenchmarkSample) float64 { return s.PacketLossPct })

	jitter := avg(all, func(s model.BenchmarkSample) float64 { return s.JitterMs })
	switch {
	case jitter > 30:
		score -= 30
	case jitter > 15:
		score -= 15
	case jitter > 5:
		score -= 5
	}

	if len(throughput) > 0 {
		mbps := avg(throughput, func(s model.BenchmarkSample) float64 { return s.ThroughputMbps })
		switch {
		case mbps < 50:
			score -= 30
		case mbps < 100:
			score -= 15
		case mbps < 200:
			score -= 5
		}
	}

	return signal.Clamp(score, 0, 100)
}

func avg(samples []model.BenchmarkSample, field func(model.BenchmarkSample) float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += field(s)
	}
	return sum / float64(len(samples))
}
