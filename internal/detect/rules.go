package detect

import (
	"fmt"
	"sort"
	"time"

	"github.com/the-geek-freaks/meshscope/internal/model"
	"github.com/the-geek-freaks/meshscope/internal/signal"
	"github.com/the-geek-freaks/meshscope/internal/spectrum"
)

// collector gathers problems during one pass and stamps DetectedAt.
type collector struct {
	now      time.Time
	problems []model.NetworkProblem
}

func (c *collector) add(p model.NetworkProblem) {
	p.DetectedAt = c.now
	c.problems = append(c.problems, p)
}

func (c *collector) sorted() []model.NetworkProblem {
	sort.Slice(c.problems, func(i, j int) bool {
		return c.problems[i].ID < c.problems[j].ID
	})
	return c.problems
}

func (d *Detector) detectChannelScans(c *collector, scans []model.ChannelScanResult, wifi model.WiFiSettings) {
	for _, scan := range scans {
		switch {
		case scan.UtilizationPct > d.th.UtilizationErrorPct:
			c.add(model.NetworkProblem{
				ID:             fmt.Sprintf("congestion-%s-%d", scan.Band, scan.Channel),
				Category:       model.CategoryCongestion,
				Severity:       model.SeverityError,
				Description:    fmt.Sprintf("Channel %d (%s) is saturated at %.0f%% utilization.", scan.Channel, scan.Band, scan.UtilizationPct),
				RootCause:      "Too many networks or clients share this channel's airtime.",
				Recommendation: "Switch to a less utilized channel.",
				AutoFixable:    true,
			})
		case scan.UtilizationPct > d.th.UtilizationWarningPct:
			c.add(model.NetworkProblem{
				ID:             fmt.Sprintf("congestion-%s-%d", scan.Band, scan.Channel),
				Category:       model.CategoryCongestion,
				Severity:       model.SeverityWarning,
				Description:    fmt.Sprintf("Channel %d (%s) is busy at %.0f%% utilization.", scan.Channel, scan.Band, scan.UtilizationPct),
				RootCause:      "Shared airtime on this channel is getting scarce.",
				Recommendation: "Consider switching to a less utilized channel.",
				AutoFixable:    true,
			})
		}

		ownChannel := wifi.Channel24
		if scan.Band == model.Band5 {
			ownChannel = wifi.Channel5
		}
		for _, n := range scan.Neighbors {
			overlap := spectrum.OverlapPct(scan.Band, ownChannel, n.Channel) / 100
			if overlap > d.th.NeighborOverlapFraction && n.RSSI > d.th.NeighborRSSIDBM {
				c.add(model.NetworkProblem{
					ID:             fmt.Sprintf("neighbor-interference-%s", model.NormalizeMAC(n.BSSID)),
					Category:       model.CategoryInterference,
					Severity:       model.SeverityWarning,
					Description:    fmt.Sprintf("Neighbor network %q (%.0f dBm) overlaps the active channel %d.", n.SSID, n.RSSI, ownChannel),
					RootCause:      "A strong foreign network transmits on an overlapping channel.",
					Recommendation: "Move to a channel with more distance to this neighbor.",
					AutoFixable:    true,
				})
			}
		}
	}
}

func (d *Detector) detectZigbeeOverlap(c *collector, wifi model.WiFiSettings, zigbee *model.ZigbeeNetworkState) {
	if zigbee == nil || zigbee.Channel == 0 || wifi.Channel24 == 0 {
		return
	}
	overlap := signal.WiFiZigbeeOverlap(wifi.Channel24, zigbee.Channel)
	if overlap <= d.th.ZigbeeOverlapWarning {
		return
	}

	sev := model.SeverityWarning
	if overlap > d.th.ZigbeeOverlapError {
		sev = model.SeverityError
	}

	affected := make([]string, 0, len(zigbee.Devices))
	for _, zd := range zigbee.Devices {
		affected = append(affected, zd.IEEEAddress)
	}
	sort.Strings(affected)

	rec := "Move the Zigbee network to a non-overlapping channel."
	if ch, ok := spectrum.RecommendZigbeeChannel([]int{wifi.Channel24}); ok {
		rec = fmt.Sprintf("Move the Zigbee network to channel %d.", ch)
	}

	c.add(model.NetworkProblem{
		ID:              "wifi-zigbee-overlap",
		Category:        model.CategoryFrequencyOverlap,
		Severity:        sev,
		AffectedDevices: affected,
		Description:     fmt.Sprintf("WiFi channel %d and Zigbee channel %d overlap by %.0f%%.", wifi.Channel24, zigbee.Channel, overlap*100),
		RootCause:       "Both networks compete for the same 2.4 GHz spectrum.",
		Recommendation:  rec,
	})
}

func (d *Detector) detectZigbee(c *collector, zigbee *model.ZigbeeNetworkState, now time.Time) {
	if zigbee == nil {
		return
	}

	var (
		routers     int
		endDevices  int
		unavailable int
		lqiSum      float64
		lqiCount    int
	)

	for _, zd := range zigbee.Devices {
		switch zd.Type {
		case model.ZigbeeRouter:
			routers++
		case model.ZigbeeEndDevice:
			endDevices++
		}

		if !zd.Available {
			unavailable++
			c.add(model.NetworkProblem{
				ID:              fmt.Sprintf("zigbee-unavailable-%s", zd.IEEEAddress),
				Category:        model.CategoryZigbeeHealth,
				Severity:        model.SeverityError,
				AffectedDevices: []string{zd.IEEEAddress},
				Description:     fmt.Sprintf("Zigbee device %s is unavailable.", zigbeeLabel(zd)),
				RootCause:       "Device lost its route to the coordinator or ran out of battery.",
				Recommendation:  "Check the device's power and its distance to the nearest router.",
			})
			continue
		}

		lqiSum += float64(zd.LQI)
		lqiCount++

		switch {
		case zd.LQI < d.th.LQIError:
			c.add(model.NetworkProblem{
				ID:              fmt.Sprintf("zigbee-weak-link-%s", zd.IEEEAddress),
				Category:        model.CategoryZigbeeHealth,
				Severity:        model.SeverityError,
				AffectedDevices: []string{zd.IEEEAddress},
				Description:     fmt.Sprintf("Zigbee device %s has a very weak link (LQI %d).", zigbeeLabel(zd), zd.LQI),
				RootCause:       "Device is barely reachable over the mesh.",
				Recommendation:  "Add a Zigbee router between the device and the coordinator.",
			})
		case zd.LQI < d.th.LQIWarning:
			c.add(model.NetworkProblem{
				ID:              fmt.Sprintf("zigbee-weak-link-%s", zd.IEEEAddress),
				Category:        model.CategoryZigbeeHealth,
				Severity:        model.SeverityWarning,
				AffectedDevices: []string{zd.IEEEAddress},
				Description:     fmt.Sprintf("Zigbee device %s has a weak link (LQI %d).", zigbeeLabel(zd), zd.LQI),
				RootCause:       "Marginal link quality between device and mesh.",
				Recommendation:  "Move the device or add a router nearby.",
			})
		}

		if !zd.LastSeen.IsZero() && now.Sub(zd.LastSeen) > d.th.ZigbeeStaleAfter {
			c.add(model.NetworkProblem{
				ID:              fmt.Sprintf("zigbee-stale-%s", zd.IEEEAddress),
				Category:        model.CategoryZigbeeHealth,
				Severity:        model.SeverityWarning,
				AffectedDevices: []string{zd.IEEEAddress},
				Description:     fmt.Sprintf("Zigbee device %s reports available but was last seen %s ago.", zigbeeLabel(zd), now.Sub(zd.LastSeen).Round(time.Hour)),
				RootCause:       "Device stopped reporting without being marked unavailable.",
				Recommendation:  "Power-cycle the device or re-pair it.",
			})
		}
	}

	total := len(zigbee.Devices)
	if endDevices > 0 && routers == 0 {
		c.add(model.NetworkProblem{
			ID:             "zigbee-no-routers",
			Category:       model.CategoryZigbeeHealth,
			Severity:       model.SeverityWarning,
			Description:    "The Zigbee network has end devices but no routers.",
			RootCause:      "Every end device must reach the coordinator directly; range is limited.",
			Recommendation: "Add mains-powered Zigbee devices that act as routers.",
		})
	}
	if total > d.th.ZigbeeShareMinDevices && float64(unavailable)/float64(total) > d.th.ZigbeeUnavailableShare {
		c.add(model.NetworkProblem{
			ID:             "zigbee-availability",
			Category:       model.CategoryZigbeeHealth,
			Severity:       model.SeverityError,
			Description:    fmt.Sprintf("%d of %d Zigbee devices are unavailable.", unavailable, total),
			RootCause:      "The Zigbee mesh is partitioned or suffering heavy interference.",
			Recommendation: "Check the coordinator and the WiFi/Zigbee channel separation.",
		})
	}
	if lqiCount > d.th.ZigbeeAvgLQIMinDevices {
		avg := lqiSum / float64(lqiCount)
		if avg < d.th.ZigbeeAvgLQIWarning {
			sev := model.SeverityWarning
			if avg < d.th.ZigbeeAvgLQIError {
				sev = model.SeverityError
			}
			c.add(model.NetworkProblem{
				ID:             "zigbee-mesh-quality",
				Category:       model.CategoryZigbeeHealth,
				Severity:       sev,
				Description:    fmt.Sprintf("Average Zigbee link quality is low (LQI %.0f).", avg),
				RootCause:      "The mesh as a whole has poor link margins.",
				Recommendation: "Add routers and increase WiFi/Zigbee channel separation.",
			})
		}
	}
}

func zigbeeLabel(zd model.ZigbeeDevice) string {
	if zd.FriendlyName != "" {
		return zd.FriendlyName
	}
	return zd.IEEEAddress
}

var preferredChannels24 = map[int]bool{1: true, 6: true, 11: true}

func (d *Detector) detectConfiguration(c *collector, mesh model.MeshNetworkState) {
	wifi := mesh.WiFi

	if wifi.Channel24 != 0 && !preferredChannels24[wifi.Channel24] {
		c.add(model.NetworkProblem{
			ID:             "config-channel-24",
			Category:       model.CategoryConfiguration,
			Severity:       model.SeverityWarning,
			Description:    fmt.Sprintf("2.4 GHz channel %d is not one of the non-overlapping channels 1/6/11.", wifi.Channel24),
			RootCause:      "Intermediate channels overlap two of the standard channels at once.",
			Recommendation: "Use channel 1, 6 or 11.",
			AutoFixable:    true,
		})
	}

	feature := func(id, name string, enabled bool) {
		if enabled {
			return
		}
		c.add(model.NetworkProblem{
			ID:             id,
			Category:       model.CategoryConfiguration,
			Severity:       model.SeverityInfo,
			Description:    fmt.Sprintf("%s is disabled.", name),
			RootCause:      "Feature is off although all mesh nodes support it.",
			Recommendation: fmt.Sprintf("Enable %s for better efficiency.", name),
			AutoFixable:    true,
		})
	}
	feature("config-beamforming", "Beamforming", wifi.Beamforming)
	feature("config-mu-mimo", "MU-MIMO", wifi.MUMIMO)
	feature("config-ofdma", "OFDMA", wifi.OFDMA)

	if wifi.Width5MHz != 0 && wifi.Width5MHz < d.th.MinChannelWidth5MHz {
		c.add(model.NetworkProblem{
			ID:             "config-width-5",
			Category:       model.CategoryConfiguration,
			Severity:       model.SeverityWarning,
			Description:    fmt.Sprintf("5 GHz channel width is %d MHz.", wifi.Width5MHz),
			RootCause:      "Narrow channels cap the achievable throughput.",
			Recommendation: fmt.Sprintf("Use at least %d MHz channel width on 5 GHz.", d.th.MinChannelWidth5MHz),
			AutoFixable:    true,
		})
	}

	switch wifi.Security {
	case model.SecurityOpen:
		c.add(model.NetworkProblem{
			ID:             "config-security",
			Category:       model.CategoryConfiguration,
			Severity:       model.SeverityCritical,
			Description:    "The network is open and unencrypted.",
			RootCause:      "No wireless security is configured.",
			Recommendation: "Enable WPA2 or WPA3 immediately.",
		})
	case model.SecurityWEP, model.SecurityWPA:
		c.add(model.NetworkProblem{
			ID:             "config-security",
			Category:       model.CategoryConfiguration,
			Severity:       model.SeverityError,
			Description:    fmt.Sprintf("The network uses outdated %s security.", wifi.Security),
			RootCause:      "Legacy ciphers are practically breakable.",
			Recommendation: "Switch to WPA2 or WPA3.",
		})
	}

	if !wifi.RoamingAssistant && len(mesh.Nodes) > 1 {
		c.add(model.NetworkProblem{
			ID:             "config-roaming",
			Category:       model.CategoryConfiguration,
			Severity:       model.SeverityWarning,
			Description:    "Roaming assistant is disabled on a multi-node mesh.",
			RootCause:      "Clients cling to distant nodes instead of roaming.",
			Recommendation: "Enable the roaming assistant.",
			AutoFixable:    true,
		})
	}
}

func (d *Detector) detectCapacity(c *collector, nodes []model.MeshNode) {
	for _, n := range nodes {
		if n.ConnectedClients > d.th.ClientsWarning {
			sev := model.SeverityWarning
			if n.ConnectedClients > d.th.ClientsError {
				sev = model.SeverityError
			}
			c.add(model.NetworkProblem{
				ID:             fmt.Sprintf("capacity-clients-%s", n.ID),
				Category:       model.CategoryCapacityExceeded,
				Severity:       sev,
				AffectedNodes:  []string{n.ID},
				Description:    fmt.Sprintf("Node %s serves %d clients.", n.Name, n.ConnectedClients),
				RootCause:      "Client count exceeds what one node handles comfortably.",
				Recommendation: "Add a node or rebalance clients across the mesh.",
			})
		}

		if n.CPUPercent > d.th.NodeCPUWarningPct {
			c.add(model.NetworkProblem{
				ID:             fmt.Sprintf("capacity-cpu-%s", n.ID),
				Category:       model.CategoryCapacityExceeded,
				Severity:       model.SeverityWarning,
				AffectedNodes:  []string{n.ID},
				Description:    fmt.Sprintf("Node %s CPU is at %.0f%%.", n.Name, n.CPUPercent),
				RootCause:      "Sustained CPU saturation degrades routing and airtime scheduling.",
				Recommendation: "Check for heavy features (VPN, QoS) or reduce load on this node.",
			})
		}

		if n.MemoryPercent > d.th.NodeMemoryWarningPct {
			sev := model.SeverityWarning
			if n.MemoryPercent > d.th.NodeMemoryCriticalPct {
				sev = model.SeverityCritical
			}
			c.add(model.NetworkProblem{
				ID:             fmt.Sprintf("capacity-memory-%s", n.ID),
				Category:       model.CategoryCapacityExceeded,
				Severity:       sev,
				AffectedNodes:  []string{n.ID},
				Description:    fmt.Sprintf("Node %s memory usage is at %.0f%%.", n.Name, n.MemoryPercent),
				RootCause:      "The node is close to exhausting its RAM.",
				Recommendation: "Reboot the node; if it recurs, reduce enabled services.",
			})
		}

		if time.Duration(n.Uptime)*time.Second > d.th.NodeUptimeInfoAfter {
			c.add(model.NetworkProblem{
				ID:             fmt.Sprintf("uptime-%s", n.ID),
				Category:       model.CategoryCapacityExceeded,
				Severity:       model.SeverityInfo,
				AffectedNodes:  []string{n.ID},
				Description:    fmt.Sprintf("Node %s has been up for more than 30 days.", n.Name),
				RootCause:      "Long uptimes accumulate memory fragmentation on embedded routers.",
				Recommendation: "Schedule a maintenance reboot.",
				AutoFixable:    true,
			})
		}
	}
}

func (d *Detector) detectInfrastructure(c *collector, samples []model.InfraHealthSample) {
	for _, s := range samples {
		if s.CPUPercent > d.th.InfraCPUWarningPct {
			c.add(model.NetworkProblem{
				ID:             fmt.Sprintf("infra-cpu-%s", s.Host),
				Category:       model.CategoryInfrastructure,
				Severity:       model.SeverityWarning,
				AffectedNodes:  []string{s.Host},
				Description:    fmt.Sprintf("Infrastructure host %s CPU is at %.0f%%.", s.Host, s.CPUPercent),
				RootCause:      "An upstream device is CPU-bound and may bottleneck the mesh.",
				Recommendation: "Investigate load on this device.",
			})
		}
		if s.MemoryPercent > d.th.InfraMemoryWarningPct {
			c.add(model.NetworkProblem{
				ID:             fmt.Sprintf("infra-memory-%s", s.Host),
				Category:       model.CategoryInfrastructure,
				Severity:       model.SeverityWarning,
				AffectedNodes:  []string{s.Host},
				Description:    fmt.Sprintf("Infrastructure host %s memory usage is at %.0f%%.", s.Host, s.MemoryPercent),
				RootCause:      "An upstream device is close to memory exhaustion.",
				Recommendation: "Investigate memory use on this device.",
			})
		}
		if s.TemperatureC > d.th.InfraTemperatureWarnC {
			c.add(model.NetworkProblem{
				ID:             fmt.Sprintf("infra-temp-%s", s.Host),
				Category:       model.CategoryInfrastructure,
				Severity:       model.SeverityWarning,
				AffectedNodes:  []string{s.Host},
				Description:    fmt.Sprintf("Infrastructure host %s runs at %.0f°C.", s.Host, s.TemperatureC),
				RootCause:      "Thermal throttling reduces switching and routing capacity.",
				Recommendation: "Improve ventilation around this device.",
			})
		}
		if s.StateTableUsedPct > d.th.InfraStateTableWarnPct {
			c.add(model.NetworkProblem{
				ID:             fmt.Sprintf("infra-statetable-%s", s.Host),
				Category:       model.CategoryInfrastructure,
				Severity:       model.SeverityWarning,
				AffectedNodes:  []string{s.Host},
				Description:    fmt.Sprintf("Infrastructure host %s state table is %.0f%% full.", s.Host, s.StateTableUsedPct),
				RootCause:      "Connection tracking close to its limit drops new flows.",
				Recommendation: "Raise the state table limit or find the flow-heavy client.",
			})
		}
	}
}
