// Package spectrum scores neighbor-network channel congestion and
// classifies WiFi/Zigbee frequency conflicts.
package spectrum

import (
	"sort"

	"github.com/the-geek-freaks/meshscope/internal/model"
)

// neighborVisibilityDBM filters conflict reporting: neighbors at or below
// this level are too weak to matter.
const neighborVisibilityDBM = -75.0

// Band-specific factor applied to congestion weight when ranking
// candidate channels.
const (
	bandFactor24 = 10.0
	bandFactor5  = 15.0
)

// candidateChannels are the fixed sets ranked by the recommendation.
var (
	candidates24 = []int{1, 6, 11}
	candidates5  = []int{36, 44, 149, 157}
)

type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// NeighborConflict describes one foreign network's contention with the
// operator's own channel.
type NeighborConflict struct {
	SSID       string  `json:"ssid"`
	BSSID      string  `json:"bssid"`
	Channel    int     `json:"channel"`
	RSSI       float64 `json:"rssi"`
	OverlapPct float64 `json:"overlap_pct"`
	Impact     Impact  `json:"impact"`
}

// ChannelScore ranks one candidate channel.
type ChannelScore struct {
	Channel    int     `json:"channel"`
	Congestion float64 `json:"congestion"`
	Score      float64 `json:"score"`
}

// CongestionReport is the per-band neighbor analysis.
type CongestionReport struct {
	Band        model.Band         `json:"band"`
	OwnChannel  int                `json:"own_channel"`
	Conflicts   []NeighborConflict `json:"conflicts"`
	Ranking     []ChannelScore     `json:"ranking"`
	BestChannel int                `json:"best_channel"`
}

// AnalyzeBand scores neighbor congestion for one band against the
// operator's own channel and ranks the candidate channel set.
func AnalyzeBand(neighbors []model.NeighborNetwork, band model.Band, ownChannel int) CongestionReport {
	report := CongestionReport{Band: band, OwnChannel: ownChannel}

	load := make(map[int]float64)
	for _, n := range neighbors {
		if n.Band != band {
			continue
		}
		weight := congestionWeight(n.RSSI)
		for _, ch := range occupiedChannels(n.Channel, n.WidthMHz) {
			load[ch] += weight
		}

		if n.RSSI <= neighborVisibilityDBM {
			continue
		}
		overlap := OverlapPct(band, ownChannel, n.Channel)
		if overlap <= 0 {
			continue
		}
		report.Conflicts = append(report.Conflicts, NeighborConflict{
			SSID:       n.SSID,
			BSSID:      model.NormalizeMAC(n.BSSID),
			Channel:    n.Channel,
			RSSI:       n.RSSI,
			OverlapPct: overlap,
			Impact:     impact(overlap, n.RSSI),
		})
	}

	sort.Slice(report.Conflicts, func(i, j int) bool {
		if report.Conflicts[i].OverlapPct != report.Conflicts[j].OverlapPct {
			return report.Conflicts[i].OverlapPct > report.Conflicts[j].OverlapPct
		}
		return report.Conflicts[i].BSSID < report.Conflicts[j].BSSID
	})

	factor := bandFactor24
	candidates := candidates24
	if band == model.Band5 {
		factor = bandFactor5
		candidates = candidates5
	}

	for _, ch := range candidates {
		report.Ranking = append(report.Ranking, ChannelScore{
			Channel:    ch,
			Congestion: load[ch],
			Score:      100 - load[ch]*factor,
		})
	}
	sort.SliceStable(report.Ranking, func(i, j int) bool {
		if report.Ranking[i].Score != report.Ranking[j].Score {
			return report.Ranking[i].Score > report.Ranking[j].Score
		}
		return report.Ranking[i].Channel < report.Ranking[j].Channel
	})
	if len(report.Ranking) > 0 {
		report.BestChannel = report.Ranking[0].Channel
	}

	return report
}

// congestionWeight buckets a neighbor's contribution by signal strength.
func congestionWeight(rssi float64) float64 {
	switch {
	case rssi >= -50:
		return 3
	case rssi >= -65:
		return 2
	case rssi >= -75:
		return 1
	default:
		return 0.5
	}
}

// occupiedChannels spreads a network across every channel it occupies:
// center plus/minus half its width in 5 MHz channel steps.
func occupiedChannels(center, widthMHz int) []int {
	if widthMHz <= 0 {
		widthMHz = 20
	}
	steps := widthMHz / 2 / 5
	channels := make([]int, 0, 2*steps+1)
	for ch := center - steps; ch <= center+steps; ch++ {
		if ch >= 1 {
			channels = append(channels, ch)
		}
	}
	return channels
}

// OverlapPct maps channel distance to percent overlap, band-specific.
func OverlapPct(band model.Band, own, other int) float64 {
	if own == 0 {
		return 0
	}
	dist := own - other
	if dist < 0 {
		dist = -dist
	}
	if band == model.Band5 {
		switch {
		case dist == 0:
			return 100
		case dist <= 4:
			return 50
		default:
			return 0
		}
	}
	switch {
	case dist == 0:
		return 100
	case dist <= 2:
		return 75
	case dist <= 4:
		return 25
	default:
		return 0
	}
}

func impact(overlap, rssi float64) Impact {
	switch {
	case overlap >= 75 && rssi >= -65:
		return ImpactHigh
	case overlap >= 50 || (overlap >= 25 && rssi >= -65):
		return ImpactMedium
	default:
		return ImpactLow
	}
}
