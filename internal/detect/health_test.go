package detect

import (
	"testing"
	"time"

	"github.com/the-geek-freaks/meshscope/internal/model"
)

func TestScore_NoProblems(t *testing.T) {
	t.Parallel()

	hs := Score(nil, nil, testNow)

	if hs.Overall != 100 {
		t.Fatalf("overall=%v", hs.Overall)
	}
	if hs.SignalQuality != 100 || hs.ZigbeeHealth != 100 || hs.InterferenceLevel != 100 {
		t.Fatalf("categories not pristine: %+v", hs)
	}
	if hs.Trend != model.TrendUnknown {
		t.Fatalf("trend=%q", hs.Trend)
	}
	if !hs.GeneratedAt.Equal(testNow) {
		t.Fatalf("generated_at=%v", hs.GeneratedAt)
	}
}

func TestScore_CategoryMapping(t *testing.T) {
	t.Parallel()

	problems := []model.NetworkProblem{
		{ID: "a", Category: model.CategorySignalWeakness, Severity: model.SeverityCritical},
		{ID: "b", Category: model.CategoryZigbeeHealth, Severity: model.SeverityWarning},
	}

	hs := Score(problems, nil, testNow)

	if hs.SignalQuality != 70 {
		t.Fatalf("signal=%v", hs.SignalQuality)
	}
	if hs.ZigbeeHealth != 90 {
		t.Fatalf("zigbee=%v", hs.ZigbeeHealth)
	}
	if hs.ChannelOptimization != 100 {
		t.Fatalf("channel=%v", hs.ChannelOptimization)
	}
	// (70 + 100 + 100 + 100 + 90 + 100) / 6
	if hs.Overall != 560.0/6 {
		t.Fatalf("overall=%v", hs.Overall)
	}
}

func TestScore_FrequencyOverlapHitsTwoCategories(t *testing.T) {
	t.Parallel()

	problems := []model.NetworkProblem{
		{ID: "wifi-zigbee-overlap", Category: model.CategoryFrequencyOverlap, Severity: model.SeverityError},
	}

	hs := Score(problems, nil, testNow)

	if hs.InterferenceLevel != 80 {
		t.Fatalf("interference=%v", hs.InterferenceLevel)
	}
	if hs.ZigbeeHealth != 80 {
		t.Fatalf("zigbee=%v", hs.ZigbeeHealth)
	}
}

func TestScore_ConfigurationHalfPenalty(t *testing.T) {
	t.Parallel()

	problems := []model.NetworkProblem{
		{ID: "config-security", Category: model.CategoryConfiguration, Severity: model.SeverityError},
	}

	hs := Score(problems, nil, testNow)

	if hs.ChannelOptimization != 90 {
		t.Fatalf("channel=%v", hs.ChannelOptimization)
	}
}

func TestScore_ClampsAtZero(t *testing.T) {
	t.Parallel()

	var problems []model.NetworkProblem
	for i := 0; i < 10; i++ {
		problems = append(problems, model.NetworkProblem{
			ID:       string(rune('a' + i)),
			Category: model.CategorySignalWeakness,
			Severity: model.SeverityCritical,
		})
	}

	hs := Score(problems, nil, testNow)

	if hs.SignalQuality != 0 {
		t.Fatalf("signal=%v", hs.SignalQuality)
	}
	if hs.Overall != 500.0/6 {
		t.Fatalf("overall=%v", hs.Overall)
	}
}

func TestScore_IgnoresResolved(t *testing.T) {
	t.Parallel()

	resolved := testNow.Add(-time.Hour)
	problems := []model.NetworkProblem{
		{ID: "a", Category: model.CategorySignalWeakness, Severity: model.SeverityCritical, ResolvedAt: &resolved},
	}

	hs := Score(problems, nil, testNow)

	if hs.SignalQuality != 100 || hs.Overall != 100 {
		t.Fatalf("resolved problem scored: %+v", hs)
	}
}

func TestScore_Trend(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		previous float64
		problems []model.NetworkProblem
		want     model.HealthTrend
	}{
		{"improving", 50, nil, model.TrendImproving},
		{"stable within band", 99, nil, model.TrendStable},
		{"degrading", 100, []model.NetworkProblem{
			{ID: "a", Category: model.CategorySignalWeakness, Severity: model.SeverityCritical},
		}, model.TrendDegrading},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			prev := &model.NetworkHealthScore{Overall: tc.previous}
			hs := Score(tc.problems, prev, testNow)
			if hs.Trend != tc.want {
				t.Fatalf("trend=%q want %q", hs.Trend, tc.want)
			}
		})
	}
}
