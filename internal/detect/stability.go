package detect

import (
	"sort"
	"time"

	"github.com/the-geek-freaks/meshscope/internal/model"
	"github.com/the-geek-freaks/meshscope/internal/signal"
)

const (
	stabilityDisconnectPenalty = 10.0
	stabilityAnyDisconnect     = 20.0
)

// StabilityReport summarizes one device's connection behavior over a
// period.
type StabilityReport struct {
	DeviceMAC          string         `json:"device_mac"`
	PeriodStart        time.Time      `json:"period_start"`
	PeriodEnd          time.Time      `json:"period_end"`
	TotalDisconnects   int            `json:"total_disconnects"`
	AvgConnection      time.Duration  `json:"avg_connection"`
	LongestConnection  time.Duration  `json:"longest_connection"`
	ShortestConnection time.Duration  `json:"shortest_connection"`
	DisconnectReasons  map[string]int `json:"disconnect_reasons,omitempty"`
	StabilityScore     float64        `json:"stability_score"`
}

// Stability pairs connect/disconnect events for one device within the
// period and scores the result: 100 minus 10 per disconnect, minus a flat
// 20 if any disconnect occurred, floored at 0.
func Stability(deviceMAC string, events []model.ConnectionEvent, from, to time.Time) StabilityReport {
	mac := model.NormalizeMAC(deviceMAC)
	report := StabilityReport{
		DeviceMAC:   mac,
		PeriodStart: from,
		PeriodEnd:   to,
	}

	filtered := make([]model.ConnectionEvent, 0)
	for _, ev := range events {
		if model.NormalizeMAC(ev.DeviceMAC) != mac {
			continue
		}
		if ev.Timestamp.Before(from) || ev.Timestamp.After(to) {
			continue
		}
		filtered = append(filtered, ev)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.Before(filtered[j].Timestamp)
	})

	var (
		connectedAt *time.Time
		durations   []time.Duration
		reasons     = make(map[string]int)
	)

	for _, ev := range filtered {
		switch ev.Type {
		case model.EventConnect:
			t := ev.Timestamp
			connectedAt = &t
		case model.EventDisconnect:
			report.TotalDisconnects++
			reason := ev.Reason
			if reason == "" {
				reason = "unknown"
			}
			reasons[reason]++
			if connectedAt != nil {
				durations = append(durations, ev.Timestamp.Sub(*connectedAt))
				connectedAt = nil
			}
		}
	}

	if len(reasons) > 0 {
		report.DisconnectReasons = reasons
	}

	if len(durations) > 0 {
		var sum time.Duration
		report.LongestConnection = durations[0]
		report.ShortestConnection = durations[0]
		for _, d := range durations {
			sum += d
			if d > report.LongestConnection {
				report.LongestConnection = d
			}
			if d < report.ShortestConnection {
				report.ShortestConnection = d
			}
		}
		report.AvgConnection = sum / time.Duration(len(durations))
	}

	score := 100 - stabilityDisconnectPenalty*float64(report.TotalDisconnects)
	if report.TotalDisconnects > 0 {
		score -= stabilityAnyDisconnect
	}
	report.StabilityScore = signal.Clamp(score, 0, 100)

	return report
}
