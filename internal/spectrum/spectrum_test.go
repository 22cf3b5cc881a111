package spectrum

import (
	"testing"

	"github.com/the-geek-freaks/meshscope/internal/model"
)

func TestAnalyzeBand_RanksAwayFromCongestion(t *testing.T) {
	t.Parallel()

	neighbors := []model.NeighborNetwork{
		{SSID: "nextdoor", BSSID: "aa:aa:aa:aa:aa:01", Band: model.Band24, Channel: 6, WidthMHz: 20, RSSI: -50},
		{SSID: "cafe", BSSID: "aa:aa:aa:aa:aa:02", Band: model.Band24, Channel: 6, WidthMHz: 20, RSSI: -60},
	}
	report := AnalyzeBand(neighbors, model.Band24, 6)

	if report.BestChannel == 6 {
		t.Fatalf("best=%d, want a channel away from the congested one", report.BestChannel)
	}
	if len(report.Ranking) != 3 {
		t.Fatalf("ranking=%d", len(report.Ranking))
	}
	var ch6 ChannelScore
	for _, r := range report.Ranking {
		if r.Channel == 6 {
			ch6 = r
		}
	}
	if ch6.Congestion != 5 {
		t.Fatalf("ch6 congestion=%v, want 3+2", ch6.Congestion)
	}
	if ch6.Score != 100-5*bandFactor24 {
		t.Fatalf("ch6 score=%v", ch6.Score)
	}
}

func TestAnalyzeBand_ConflictImpact(t *testing.T) {
	t.Parallel()

	neighbors := []model.NeighborNetwork{
		// Co-channel and loud: high impact.
		{SSID: "loud", BSSID: "aa:aa:aa:aa:aa:01", Band: model.Band24, Channel: 6, WidthMHz: 20, RSSI: -55},
		// Adjacent and moderate.
		{SSID: "near", BSSID: "aa:aa:aa:aa:aa:02", Band: model.Band24, Channel: 8, WidthMHz: 20, RSSI: -70},
		// Too weak to report.
		{SSID: "faint", BSSID: "aa:aa:aa:aa:aa:03", Band: model.Band24, Channel: 6, WidthMHz: 20, RSSI: -80},
		// Too far in channel distance.
		{SSID: "distant", BSSID: "aa:aa:aa:aa:aa:04", Band: model.Band24, Channel: 11, WidthMHz: 20, RSSI: -50},
	}
	report := AnalyzeBand(neighbors, model.Band24, 6)

	if len(report.Conflicts) != 2 {
		t.Fatalf("conflicts=%d", len(report.Conflicts))
	}
	if report.Conflicts[0].SSID != "loud" || report.Conflicts[0].Impact != ImpactHigh {
		t.Fatalf("first conflict=%+v", report.Conflicts[0])
	}
	if report.Conflicts[1].SSID != "near" || report.Conflicts[1].Impact != ImpactMedium {
		t.Fatalf("second conflict=%+v", report.Conflicts[1])
	}
}

func TestAnalyzeBand_5GHz(t *testing.T) {
	t.Parallel()

	neighbors := []model.NeighborNetwork{
		{SSID: "n5", BSSID: "aa:aa:aa:aa:aa:05", Band: model.Band5, Channel: 36, WidthMHz: 80, RSSI: -55},
	}
	report := AnalyzeBand(neighbors, model.Band5, 36)
	if report.BestChannel == 36 {
		t.Fatalf("best=%d", report.BestChannel)
	}
	if len(report.Conflicts) != 1 || report.Conflicts[0].OverlapPct != 100 {
		t.Fatalf("conflicts=%+v", report.Conflicts)
	}
}

func TestZigbeeConflicts_HighOverlap(t *testing.T) {
	t.Parallel()

	wifi := model.WiFiSettings{Channel24: 6}
	zigbee := &model.ZigbeeNetworkState{Channel: 15}

	conflicts := ZigbeeConflicts(wifi, zigbee)
	if len(conflicts) != 1 {
		t.Fatalf("conflicts=%d", len(conflicts))
	}
	c := conflicts[0]
	if c.Severity != model.ConflictHigh && c.Severity != model.ConflictCritical {
		t.Fatalf("severity=%q", c.Severity)
	}
	if c.Recommendation == "" {
		t.Fatal("expected a remediation recommendation")
	}
}

func TestZigbeeConflicts_NoOverlap(t *testing.T) {
	t.Parallel()

	wifi := model.WiFiSettings{Channel24: 1}
	zigbee := &model.ZigbeeNetworkState{Channel: 26}

	conflicts := ZigbeeConflicts(wifi, zigbee)
	if len(conflicts) != 1 {
		t.Fatalf("conflicts=%d", len(conflicts))
	}
	if conflicts[0].Severity != model.ConflictNone {
		t.Fatalf("severity=%q", conflicts[0].Severity)
	}
	if conflicts[0].Recommendation != "" {
		t.Fatalf("recommendation=%q, want empty", conflicts[0].Recommendation)
	}
}

func TestZigbeeConflicts_NilState(t *testing.T) {
	t.Parallel()

	if got := ZigbeeConflicts(model.WiFiSettings{Channel24: 6}, nil); got != nil {
		t.Fatalf("conflicts=%v", got)
	}
}

func TestRecommendZigbeeChannel_AvoidsCurrentWiFi(t *testing.T) {
	t.Parallel()

	ch, ok := RecommendZigbeeChannel([]int{6})
	if !ok {
		t.Fatal("expected a recommendation")
	}
	if ch == 15 || ch == 16 || ch == 17 || ch == 18 || ch == 19 {
		t.Fatalf("channel=%d collides with WiFi 6", ch)
	}

	// All three common channels in use: the band edges must still work.
	ch, ok = RecommendZigbeeChannel([]int{1, 6, 11})
	if !ok {
		t.Fatal("expected a recommendation with 1/6/11 in use")
	}
	if ch != 25 && ch != 26 {
		t.Fatalf("channel=%d, want a band-edge channel", ch)
	}
}

func TestConflictSeverityTiers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		overlap float64
		want    model.ConflictSeverity
	}{
		{0, model.ConflictNone},
		{0.1, model.ConflictLow},
		{0.3, model.ConflictMedium},
		{0.6, model.ConflictHigh},
		{0.9, model.ConflictCritical},
	}
	for _, c := range cases {
		if got := ConflictSeverity(c.overlap); got != c.want {
			t.Fatalf("severity(%v)=%q, want %q", c.overlap, got, c.want)
		}
	}
}
