package benchmark

import (
	"fmt"
	"sort"
	"strings"

	"github.com/the-geek-freaks/meshscope/internal/model"
	"github.com/the-geek-freaks/meshscope/internal/signal"
)

// Compatibility penalties per generation step of spread, per capability
// not shared by all nodes, and a flat deduction while the oldest
// supported generation is still present.
const (
	penaltyPerGenerationGap = 15.0
	penaltyPerMissingCapab  = 5.0
	penaltyOldestGeneration = 10.0
)

// hardwareProfile describes one router model's radio hardware.
type hardwareProfile struct {
	Generation   model.WiFiGeneration
	Bands        int
	Capabilities []string
}

// hardwareTable is keyed by normalized model strings (see
// normalizeModel). Unknown models fall back to GenerationUnknown and
// contribute no capabilities.
var hardwareTable = map[string]hardwareProfile{
	"rtac68u": {
		Generation:   model.GenerationWiFi5,
		Bands:        2,
		Capabilities: []string{"beamforming", "mu-mimo"},
	},
	"rtac86u": {
		Generation:   model.GenerationWiFi5,
		Bands:        2,
		Capabilities: []string{"beamforming", "mu-mimo"},
	},
	"rtax58u": {
		Generation:   model.GenerationWiFi6,
		Bands:        2,
		Capabilities: []string{"beamforming", "mu-mimo", "ofdma", "wpa3", "target-wake-time"},
	},
	"rtax88u": {
		Generation:   model.GenerationWiFi6,
		Bands:        2,
		Capabilities: []string{"beamforming", "mu-mimo", "ofdma", "wpa3", "target-wake-time"},
	},
	"zenwifixt8": {
		Generation:   model.GenerationWiFi6,
		Bands:        3,
		Capabilities: []string{"beamforming", "mu-mimo", "ofdma", "wpa3", "target-wake-time"},
	},
	"gtaxe11000": {
		Generation:   model.GenerationWiFi6E,
		Bands:        3,
		Capabilities: []string{"beamforming", "mu-mimo", "ofdma", "wpa3", "target-wake-time", "6ghz"},
	},
	"gtbe98": {
		Generation:   model.GenerationWiFi7,
		Bands:        4,
		Capabilities: []string{"beamforming", "mu-mimo", "ofdma", "wpa3", "target-wake-time", "6ghz", "mlo", "320mhz"},
	},
}

// normalizeModel lowercases the model string and strips spaces, dashes
// and underscores, so "RT-AX88U", "rt ax88u" and "RT_AX88U" all hit the
// same table entry.
func normalizeModel(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
	return s
}

// lookupHardware resolves a free-form model string against the table.
func lookupHardware(modelName string) (hardwareProfile, bool) {
	p, ok := hardwareTable[normalizeModel(modelName)]
	return p, ok
}

// AnalyzeCompatibility computes the lowest-common generation and shared
// capability set across all node models. Recommendations are advisory:
// mixed hardware works, it just drags the mesh down to its weakest
// member.
func AnalyzeCompatibility(nodes []model.MeshNode) model.CompatibilityReport {
	report := model.CompatibilityReport{
		Score: 100,
	}
	if len(nodes) == 0 {
		return report
	}

	var (
		profiles []hardwareProfile
		unknown  []string
	)
	for _, n := range nodes {
		p, ok := lookupHardware(n.Model)
		if !ok {
			unknown = append(unknown, n.Model)
			continue
		}
		profiles = append(profiles, p)
	}

	sort.Strings(unknown)
	for _, m := range unknown {
		report.Recommendations = append(report.Recommendations, model.MixedMeshRecommendation{
			Topic:   "unknown-model",
			Message: fmt.Sprintf("Model %q is not in the hardware table; it is excluded from compatibility analysis.", m),
		})
	}
	if len(profiles) == 0 {
		return report
	}

	lowest, highest := profiles[0].Generation, profiles[0].Generation
	minBands, maxBands := profiles[0].Bands, profiles[0].Bands
	capCount := make(map[string]int)
	capUnion := make(map[string]bool)
	for _, p := range profiles {
		if p.Generation < lowest {
			lowest = p.Generation
		}
		if p.Generation > highest {
			highest = p.Generation
		}
		if p.Bands < minBands {
			minBands = p.Bands
		}
		if p.Bands > maxBands {
			maxBands = p.Bands
		}
		for _, c := range p.Capabilities {
			capCount[c]++
			capUnion[c] = true
		}
	}

	shared := make([]string, 0, len(capCount))
	for c, n := range capCount {
		if n == len(profiles) {
			shared = append(shared, c)
		}
	}
	sort.Strings(shared)

	report.LowestGeneration = lowest
	report.HighestGeneration = highest
	report.SharedCapabilities = shared

	missing := len(capUnion) - len(shared)
	gap := int(highest - lowest)

	score := 100.0
	score -= penaltyPerGenerationGap * float64(gap)
	score -= penaltyPerMissingCapab * float64(missing)
	if lowest == model.GenerationWiFi5 {
		score -= penaltyOldestGeneration
	}
	report.Score = signal.Clamp(score, 0, 100)

	if gap > 0 {
		report.Recommendations = append(report.Recommendations, model.MixedMeshRecommendation{
			Topic: "mixed-generations",
			Message: fmt.Sprintf("The mesh mixes %s and %s hardware; throughput between nodes is limited to %s rates.",
				lowest, highest, lowest),
		})
	}
	if minBands != maxBands {
		report.Recommendations = append(report.Recommendations, model.MixedMeshRecommendation{
			Topic: "mixed-bands",
			Message: fmt.Sprintf("Node band counts differ (%d vs %d radios); dedicated-backhaul features only apply to the tri-band nodes.",
				minBands, maxBands),
		})
	}
	if lowest == model.GenerationWiFi5 {
		report.Recommendations = append(report.Recommendations, model.MixedMeshRecommendation{
			Topic:   "legacy-hardware",
			Message: "At least one node is WiFi 5; replacing it lifts the whole mesh to WiFi 6 features such as OFDMA and WPA3.",
		})
	}

	return report
}
