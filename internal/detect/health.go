package detect

import (
	"time"

	"github.com/the-geek-freaks/meshscope/internal/model"
	"github.com/the-geek-freaks/meshscope/internal/signal"
)

// Severity penalties subtracted from affected health categories.
const (
	penaltyCritical = 30.0
	penaltyError    = 20.0
	penaltyWarning  = 10.0
	penaltyInfo     = 5.0

	// configPenaltyFactor halves the penalty of configuration problems:
	// they describe potential, not active degradation.
	configPenaltyFactor = 0.5

	// healthTrendBand is the overall-score change treated as noise when
	// deriving the trend.
	healthTrendBand = 2.0
)

type healthCategory int

const (
	catSignal healthCategory = iota
	catChannel
	catStability
	catBackhaul
	catZigbee
	catInterference
	numHealthCategories
)

// categoryTargets maps a problem category to the health categories its
// penalty applies to.
var categoryTargets = map[model.ProblemCategory][]healthCategory{
	model.CategorySignalWeakness:   {catSignal},
	model.CategoryInterference:     {catInterference},
	model.CategoryCongestion:       {catChannel},
	model.CategoryRoamingIssue:     {catStability},
	model.CategoryDeviceStability:  {catStability},
	model.CategoryFrequencyOverlap: {catInterference, catZigbee},
	model.CategoryConfiguration:    {catChannel},
	model.CategoryCapacityExceeded: {catBackhaul},
	model.CategoryInfrastructure:   {catBackhaul},
	model.CategoryZigbeeHealth:     {catZigbee},
}

func severityPenalty(sev model.ProblemSeverity) float64 {
	switch sev {
	case model.SeverityCritical:
		return penaltyCritical
	case model.SeverityError:
		return penaltyError
	case model.SeverityWarning:
		return penaltyWarning
	default:
		return penaltyInfo
	}
}

// Score folds active problems into the six-category composite health
// score. previous may be nil; it only feeds the trend.
func Score(problems []model.NetworkProblem, previous *model.NetworkHealthScore, now time.Time) model.NetworkHealthScore {
	scores := [numHealthCategories]float64{}
	for i := range scores {
		scores[i] = 100
	}

	for _, p := range problems {
		if !p.Active() {
			continue
		}
		penalty := severityPenalty(p.Severity)
		if p.Category == model.CategoryConfiguration {
			penalty *= configPenaltyFactor
		}
		for _, cat := range categoryTargets[p.Category] {
			scores[cat] -= penalty
		}
	}

	for i := range scores {
		scores[i] = signal.Clamp(scores[i], 0, 100)
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}

	hs := model.NetworkHealthScore{
		Overall:             signal.Clamp(sum/float64(numHealthCategories), 0, 100),
		SignalQuality:       scores[catSignal],
		ChannelOptimization: scores[catChannel],
		DeviceStability:     scores[catStability],
		MeshBackhaul:        scores[catBackhaul],
		ZigbeeHealth:        scores[catZigbee],
		InterferenceLevel:   scores[catInterference],
		Trend:               model.TrendUnknown,
		GeneratedAt:         now,
	}

	if previous != nil {
		switch diff := hs.Overall - previous.Overall; {
		case diff > healthTrendBand:
			hs.Trend = model.TrendImproving
		case diff < -healthTrendBand:
			hs.Trend = model.TrendDegrading
		default:
			hs.Trend = model.TrendStable
		}
	}

	return hs
}
