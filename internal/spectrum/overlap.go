package spectrum

import (
	"fmt"

	"github.com/the-geek-freaks/meshscope/internal/model"
	"github.com/the-geek-freaks/meshscope/internal/signal"
)

// preferredZigbeeChannels is the remediation candidate order. 15/20/25
// dodge the common WiFi 1/6/11 layout, 11 and 26 sit at the band edges.
var preferredZigbeeChannels = []int{15, 20, 25, 11, 26}

// maxRecommendedOverlap is the overlap a remediation channel may have
// against any current WiFi channel.
const maxRecommendedOverlap = 0.1

// ConflictSeverity maps an overlap fraction to the severity tier.
func ConflictSeverity(overlap float64) model.ConflictSeverity {
	switch {
	case overlap <= 0:
		return model.ConflictNone
	case overlap < 0.2:
		return model.ConflictLow
	case overlap < 0.5:
		return model.ConflictMedium
	case overlap < 0.8:
		return model.ConflictHigh
	default:
		return model.ConflictCritical
	}
}

// ZigbeeConflicts classifies the spectral contention between the current
// WiFi 2.4 GHz channel and the Zigbee network. Nil zigbee state means no
// conflicts to report.
func ZigbeeConflicts(wifi model.WiFiSettings, zigbee *model.ZigbeeNetworkState) []model.FrequencyConflict {
	if zigbee == nil || zigbee.Channel == 0 || wifi.Channel24 == 0 {
		return nil
	}

	overlap := signal.WiFiZigbeeOverlap(wifi.Channel24, zigbee.Channel)
	conflict := model.FrequencyConflict{
		ZigbeeChannel:   zigbee.Channel,
		WiFiChannel:     wifi.Channel24,
		Band:            model.Band24,
		OverlapFraction: overlap,
		Severity:        ConflictSeverity(overlap),
	}

	if conflict.Severity != model.ConflictNone {
		if ch, ok := RecommendZigbeeChannel([]int{wifi.Channel24}); ok {
			conflict.Recommendation = fmt.Sprintf(
				"Zigbee channel %d overlaps WiFi channel %d by %.0f%%. Move Zigbee to channel %d.",
				zigbee.Channel, wifi.Channel24, overlap*100, ch)
		} else {
			conflict.Recommendation = fmt.Sprintf(
				"Zigbee channel %d overlaps WiFi channel %d by %.0f%%. No clean Zigbee channel is available; reduce WiFi channel width or move WiFi instead.",
				zigbee.Channel, wifi.Channel24, overlap*100)
		}
	}

	return []model.FrequencyConflict{conflict}
}

// RecommendZigbeeChannel picks the first preferred Zigbee channel with
// below-threshold overlap against every given WiFi 2.4 GHz channel.
func RecommendZigbeeChannel(wifiChannels []int) (int, bool) {
	for _, zb := range preferredZigbeeChannels {
		clean := true
		for _, wifi := range wifiChannels {
			if signal.WiFiZigbeeOverlap(wifi, zb) >= maxRecommendedOverlap {
				clean = false
				break
			}
		}
		if clean {
			return zb, true
		}
	}
	return 0, false
}
