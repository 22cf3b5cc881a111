// Package analysis orchestrates one full pass over a telemetry
// snapshot: problem detection, health scoring, coverage simulation,
// device positioning, spectrum reports and benchmark scoring.
package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/the-geek-freaks/meshscope/internal/benchmark"
	"github.com/the-geek-freaks/meshscope/internal/detect"
	"github.com/the-geek-freaks/meshscope/internal/heatmap"
	"github.com/the-geek-freaks/meshscope/internal/locate"
	"github.com/the-geek-freaks/meshscope/internal/model"
	"github.com/the-geek-freaks/meshscope/internal/registry"
	"github.com/the-geek-freaks/meshscope/internal/spectrum"
)

// Snapshot is one immutable set of inputs for an analysis pass.
// Collaborators (pollers, bridges, fixtures) assemble it; the analyzer
// never mutates it.
type Snapshot struct {
	Mesh       model.MeshNetworkState                              `yaml:"mesh"`
	Zigbee     *model.ZigbeeNetworkState                           `yaml:"zigbee,omitempty"`
	Scans      []model.ChannelScanResult                           `yaml:"scans,omitempty"`
	Events     []model.ConnectionEvent                             `yaml:"events,omitempty"`
	Infra      []model.InfraHealthSample                           `yaml:"infra,omitempty"`
	Signals    map[string][]model.SignalReading                    `yaml:"signals,omitempty"`
	Benchmarks map[model.BenchmarkTestType][]model.BenchmarkSample `yaml:"benchmarks,omitempty"`
}

// Result is everything one pass produced.
type Result struct {
	Problems      []model.NetworkProblem        `json:"problems"`
	Health        model.NetworkHealthScore      `json:"health"`
	Heatmaps      []model.FloorHeatmap          `json:"heatmaps,omitempty"`
	Placements    []heatmap.PlacementSuggestion `json:"placements,omitempty"`
	Spatial       model.SpatialMap              `json:"spatial"`
	Congestion    []spectrum.CongestionReport   `json:"congestion,omitempty"`
	Conflicts     []model.FrequencyConflict     `json:"conflicts,omitempty"`
	Benchmark     *model.BenchmarkSuiteResult   `json:"benchmark,omitempty"`
	Compatibility model.CompatibilityReport     `json:"compatibility"`
	Registry      registry.Summary              `json:"registry"`
	GeneratedAt   time.Time                     `json:"generated_at"`
	Duration      time.Duration                 `json:"duration"`
}

// Analyzer runs full passes. Stateless between calls; trend inputs come
// from the caller's previous Result and problem state lives in the
// caller-owned repository. Safe for concurrent use.
type Analyzer struct {
	log        *slog.Logger
	detector   *detect.Detector
	estimator  *locate.Estimator
	generator  *heatmap.Generator
	building   *model.Building
	placements []model.NodePlacement
}

// New wires an analyzer for one site. building may be nil when no
// geometry is configured; coverage output degrades to placeholders.
func New(log *slog.Logger, building *model.Building, placements []model.NodePlacement, resolutionM float64) *Analyzer {
	opts := heatmap.DefaultOptions()
	if resolutionM > 0 {
		opts.ResolutionM = resolutionM
	}
	return &Analyzer{
		log:        log,
		detector:   detect.New(detect.DefaultThresholds()),
		estimator:  locate.New(locate.Options{}),
		generator:  heatmap.New(opts),
		building:   building,
		placements: placements,
	}
}

// Run executes one pass. repo may be nil (no problem state kept);
// previous may be nil (no trend). now stamps every result for
// deterministic output.
func (a *Analyzer) Run(ctx context.Context, repo registry.Repository, snap Snapshot, previous *Result, now time.Time) (*Result, error) {
	started := time.Now()

	result := &Result{
		GeneratedAt: now,
	}

	in := detect.Input{
		Mesh:   snap.Mesh,
		Zigbee: snap.Zigbee,
		Scans:  snap.Scans,
		Events: snap.Events,
		Infra:  snap.Infra,
		Now:    now,
	}
	result.Problems = a.detector.Detect(in)

	var prevHealth *model.NetworkHealthScore
	if previous != nil {
		prevHealth = &previous.Health
	}
	result.Health = detect.Score(result.Problems, prevHealth, now)

	if repo != nil {
		sum, err := registry.Reconcile(ctx, repo, result.Problems, now)
		if err != nil {
			return nil, err
		}
		result.Registry = sum
	}

	placementIdx := model.BuildPlacementIndex(a.placements)
	result.Spatial = a.estimator.Map(snap.Signals, placementIdx, now)

	if a.building != nil {
		for _, floor := range a.building.Floors {
			hm, err := a.generator.GenerateFloorHeatmap(a.building, a.placements, floor.Number, now)
			if err != nil {
				return nil, err
			}
			result.Heatmaps = append(result.Heatmaps, *hm)

			// The placement search is expensive; only run it where coverage
			// is actually broken.
			if len(hm.DeadZones) > 0 {
				sug, err := a.generator.FindOptimalPlacement(a.building, a.placements, floor.Number)
				if err != nil {
					return nil, err
				}
				if sug != nil {
					result.Placements = append(result.Placements, *sug)
				}
			}
		}
	}

	result.Congestion = a.congestion(snap)
	result.Conflicts = spectrum.ZigbeeConflicts(snap.Mesh.WiFi, snap.Zigbee)

	if len(snap.Benchmarks) > 0 {
		var prevBench *model.BenchmarkSuiteResult
		if previous != nil {
			prevBench = previous.Benchmark
		}
		suite := benchmark.ScoreSuite(snap.Benchmarks, prevBench, now)
		result.Benchmark = &suite
	}

	result.Compatibility = benchmark.AnalyzeCompatibility(snap.Mesh.Nodes)

	result.Duration = time.Since(started)

	a.log.Info("analysis pass complete",
		slog.Int("problems", len(result.Problems)),
		slog.Int("new", result.Registry.New),
		slog.Int("resolved", result.Registry.Resolved),
		slog.Float64("health", result.Health.Overall),
		slog.Int("heatmaps", len(result.Heatmaps)),
		slog.Int("positions", len(result.Spatial.Devices)),
		slog.Duration("duration", result.Duration),
	)

	return result, nil
}

// congestion merges scan neighbors with the configured ambient sources
// and reports both bands against the operator's channels.
func (a *Analyzer) congestion(snap Snapshot) []spectrum.CongestionReport {
	var neighbors []model.NeighborNetwork
	for _, scan := range snap.Scans {
		neighbors = append(neighbors, scan.Neighbors...)
	}
	if a.building != nil {
		neighbors = append(neighbors, a.building.Neighbors...)
	}
	if len(neighbors) == 0 {
		return nil
	}

	var reports []spectrum.CongestionReport
	if ch := snap.Mesh.WiFi.Channel24; ch != 0 {
		reports = append(reports, spectrum.AnalyzeBand(neighbors, model.Band24, ch))
	}
	if ch := snap.Mesh.WiFi.Channel5; ch != 0 {
		reports = append(reports, spectrum.AnalyzeBand(neighbors, model.Band5, ch))
	}
	return reports
}

// LogProblems emits one structured line per active problem for the
// operator's log pipeline.
func (a *Analyzer) LogProblems(problems []model.NetworkProblem) {
	for _, p := range problems {
		if !p.Active() {
			continue
		}
		a.log.Warn("network problem",
			slog.String("id", p.ID),
			slog.String("category", string(p.Category)),
			slog.String("severity", string(p.Severity)),
			slog.String("description", p.Description),
		)
	}
}
