// Package detect inspects a telemetry snapshot and emits a deduplicated
// problem list plus the composite health score derived from it.
//
// The detector itself is pure: identical inputs yield identical problem
// ids, severities and ordering. Callers reconcile the output against
// their own registry to track new versus resolved problems.
package detect

import (
	"fmt"
	"time"

	"github.com/the-geek-freaks/meshscope/internal/model"
)

// Thresholds are the detection heuristics. The defaults are fixed,
// uncalibrated constants: changing any of them changes observable
// behavior and is a behavior change, not a bug fix.
type Thresholds struct {
	SignalCriticalDBM float64
	SignalWarningDBM  float64

	DisconnectWindow       time.Duration
	DisconnectWarningCount int
	DisconnectErrorCount   int
	RoamWindow             time.Duration
	RoamWarningCount       int

	UtilizationWarningPct float64
	UtilizationErrorPct   float64

	NeighborOverlapFraction float64
	NeighborRSSIDBM         float64

	ZigbeeOverlapWarning float64
	ZigbeeOverlapError   float64

	LQIWarning             int
	LQIError               int
	ZigbeeStaleAfter       time.Duration
	ZigbeeUnavailableShare float64
	ZigbeeShareMinDevices  int
	ZigbeeAvgLQIWarning    float64
	ZigbeeAvgLQIError      float64
	ZigbeeAvgLQIMinDevices int

	MinChannelWidth5MHz int

	ClientsWarning        int
	ClientsError          int
	NodeCPUWarningPct     float64
	NodeMemoryWarningPct  float64
	NodeMemoryCriticalPct float64
	NodeUptimeInfoAfter   time.Duration

	InfraCPUWarningPct     float64
	InfraMemoryWarningPct  float64
	InfraTemperatureWarnC  float64
	InfraStateTableWarnPct float64
}

// DefaultThresholds returns the documented heuristic defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SignalCriticalDBM: -85,
		SignalWarningDBM:  -75,

		DisconnectWindow:       24 * time.Hour,
		DisconnectWarningCount: 3,
		DisconnectErrorCount:   10,
		RoamWindow:             time.Hour,
		RoamWarningCount:       5,

		UtilizationWarningPct: 70,
		UtilizationErrorPct:   90,

		NeighborOverlapFraction: 0.3,
		NeighborRSSIDBM:         -70,

		ZigbeeOverlapWarning: 0.5,
		ZigbeeOverlapError:   0.8,

		LQIWarning:             50,
		LQIError:               25,
		ZigbeeStaleAfter:       24 * time.Hour,
		ZigbeeUnavailableShare: 0.3,
		ZigbeeShareMinDevices:  5,
		ZigbeeAvgLQIWarning:    100,
		ZigbeeAvgLQIError:      50,
		ZigbeeAvgLQIMinDevices: 3,
		MinChannelWidth5MHz:    80,
		ClientsWarning:         30,
		ClientsError:           50,
		NodeCPUWarningPct:      95,
		NodeMemoryWarningPct:   85,
		NodeMemoryCriticalPct:  95,
		NodeUptimeInfoAfter:    30 * 24 * time.Hour,
		InfraCPUWarningPct:     90,
		InfraMemoryWarningPct:  90,
		InfraTemperatureWarnC:  75,
		InfraStateTableWarnPct: 80,
	}
}

// Input is one immutable snapshot for a detection pass.
type Input struct {
	Mesh   model.MeshNetworkState
	Zigbee *model.ZigbeeNetworkState
	Scans  []model.ChannelScanResult
	Events []model.ConnectionEvent
	Infra  []model.InfraHealthSample
	Now    time.Time
}

// Detector runs every rule group over a snapshot. Stateless and safe for
// concurrent use.
type Detector struct {
	th Thresholds
}

// New returns a detector with the given thresholds.
func New(th Thresholds) *Detector {
	return &Detector{th: th}
}

// Detect runs all rule groups and returns problems sorted by id. Each id
// is deterministic per condition instance, so repeated passes over the
// same snapshot yield the same set.
func (d *Detector) Detect(in Input) []model.NetworkProblem {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	c := &collector{now: now}

	d.detectDeviceSignal(c, in.Mesh.Devices)
	d.detectEventHistory(c, in.Events, now)
	d.detectChannelScans(c, in.Scans, in.Mesh.WiFi)
	d.detectZigbeeOverlap(c, in.Mesh.WiFi, in.Zigbee)
	d.detectZigbee(c, in.Zigbee, now)
	d.detectConfiguration(c, in.Mesh)
	d.detectCapacity(c, in.Mesh.Nodes)
	d.detectInfrastructure(c, in.Infra)

	return c.sorted()
}

func (d *Detector) detectDeviceSignal(c *collector, devices []model.NetworkDevice) {
	for _, dev := range devices {
		if dev.SignalDBM == nil || dev.Status != model.DeviceOnline {
			continue
		}
		mac := model.NormalizeMAC(dev.MAC)
		rssi := *dev.SignalDBM

		switch {
		case rssi < d.th.SignalCriticalDBM:
			c.add(model.NetworkProblem{
				ID:              fmt.Sprintf("signal-critical-%s", mac),
				Category:        model.CategorySignalWeakness,
				Severity:        model.SeverityCritical,
				AffectedDevices: []string{mac},
				AffectedNodes:   nodeList(dev.NodeID),
				Description:     fmt.Sprintf("Device %s has critically weak signal (%.0f dBm).", deviceLabel(dev), rssi),
				RootCause:       "Device is far outside reliable coverage of its serving node.",
				Recommendation:  "Move the device closer to a node or add a node near its location.",
			})
		case rssi < d.th.SignalWarningDBM:
			c.add(model.NetworkProblem{
				ID:              fmt.Sprintf("signal-weak-%s", mac),
				Category:        model.CategorySignalWeakness,
				Severity:        model.SeverityWarning,
				AffectedDevices: []string{mac},
				AffectedNodes:   nodeList(dev.NodeID),
				Description:     fmt.Sprintf("Device %s has weak signal (%.0f dBm).", deviceLabel(dev), rssi),
				RootCause:       "Device operates at the edge of its serving node's coverage.",
				Recommendation:  "Check node placement relative to where this device is used.",
			})
		}
	}
}

func (d *Detector) detectEventHistory(c *collector, events []model.ConnectionEvent, now time.Time) {
	type counters struct {
		disconnects int
		roams       int
	}
	perDevice := make(map[string]*counters)

	disconnectCutoff := now.Add(-d.th.DisconnectWindow)
	roamCutoff := now.Add(-d.th.RoamWindow)

	for _, ev := range events {
		mac := model.NormalizeMAC(ev.DeviceMAC)
		cnt := perDevice[mac]
		if cnt == nil {
			cnt = &counters{}
			perDevice[mac] = cnt
		}
		switch ev.Type {
		case model.EventDisconnect:
			if !ev.Timestamp.Before(disconnectCutoff) {
				cnt.disconnects++
			}
		case model.EventRoam:
			if !ev.Timestamp.Before(roamCutoff) {
				cnt.roams++
			}
		}
	}

	for mac, cnt := range perDevice {
		if cnt.disconnects >= d.th.DisconnectWarningCount {
			sev := model.SeverityWarning
			if cnt.disconnects >= d.th.DisconnectErrorCount {
				sev = model.SeverityError
			}
			c.add(model.NetworkProblem{
				ID:              fmt.Sprintf("disconnects-%s", mac),
				Category:        model.CategoryDeviceStability,
				Severity:        sev,
				AffectedDevices: []string{mac},
				Description:     fmt.Sprintf("Device %s disconnected %d times in the last %s.", mac, cnt.disconnects, d.th.DisconnectWindow),
				RootCause:       "Unstable link or aggressive power saving on the client.",
				Recommendation:  "Check signal strength at the device's location and client power-save settings.",
			})
		}
		if cnt.roams >= d.th.RoamWarningCount {
			c.add(model.NetworkProblem{
				ID:              fmt.Sprintf("roaming-%s", mac),
				Category:        model.CategoryRoamingIssue,
				Severity:        model.SeverityWarning,
				AffectedDevices: []string{mac},
				Description:     fmt.Sprintf("Device %s roamed %d times in the last %s.", mac, cnt.roams, d.th.RoamWindow),
				RootCause:       "Device sits between nodes with similar signal, ping-ponging between them.",
				Recommendation:  "Adjust roaming assistant thresholds or reposition the overlapping nodes.",
			})
		}
	}
}

func deviceLabel(dev model.NetworkDevice) string {
	if dev.Hostname != "" {
		return dev.Hostname
	}
	return model.NormalizeMAC(dev.MAC)
}

func nodeList(nodeID string) []string {
	if nodeID == "" {
		return nil
	}
	return []string{nodeID}
}
