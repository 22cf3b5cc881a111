package detect

import (
	"reflect"
	"testing"
	"time"

	"github.com/the-geek-freaks/meshscope/internal/model"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fptr(v float64) *float64 { return &v }

func healthySettings() model.WiFiSettings {
	return model.WiFiSettings{
		Channel24:        6,
		Channel5:         36,
		Width24MHz:       20,
		Width5MHz:        80,
		Security:         model.SecurityWPA3,
		Beamforming:      true,
		MUMIMO:           true,
		OFDMA:            true,
		RoamingAssistant: true,
	}
}

func TestDetect_CriticalSignal(t *testing.T) {
	t.Parallel()

	in := Input{
		Mesh: model.MeshNetworkState{
			Nodes: []model.MeshNode{{ID: "main", Name: "Main"}},
			Devices: []model.NetworkDevice{
				{MAC: "AA:BB:CC:DD:EE:FF", NodeID: "main", Status: model.DeviceOnline, SignalDBM: fptr(-90)},
			},
			WiFi: healthySettings(),
		},
		Now: testNow,
	}

	d := New(DefaultThresholds())
	problems := d.Detect(in)

	var found *model.NetworkProblem
	for i := range problems {
		if problems[i].ID == "signal-critical-aa:bb:cc:dd:ee:ff" {
			found = &problems[i]
		}
	}
	if found == nil {
		t.Fatalf("missing signal-critical problem, got %d problems", len(problems))
	}
	if found.Severity != model.SeverityCritical {
		t.Fatalf("severity=%q", found.Severity)
	}
	if found.Category != model.CategorySignalWeakness {
		t.Fatalf("category=%q", found.Category)
	}
}

func TestDetect_Idempotent(t *testing.T) {
	t.Parallel()

	in := Input{
		Mesh: model.MeshNetworkState{
			Nodes: []model.MeshNode{
				{ID: "main", Name: "Main", ConnectedClients: 40, CPUPercent: 97, MemoryPercent: 96},
			},
			Devices: []model.NetworkDevice{
				{MAC: "aa:bb:cc:dd:ee:01", Status: model.DeviceOnline, SignalDBM: fptr(-90)},
				{MAC: "aa:bb:cc:dd:ee:02", Status: model.DeviceOnline, SignalDBM: fptr(-78)},
			},
			WiFi: model.WiFiSettings{Channel24: 3, Security: model.SecurityWEP},
		},
		Zigbee: &model.ZigbeeNetworkState{
			Channel: 17,
			Devices: []model.ZigbeeDevice{
				{IEEEAddress: "0x01", Type: model.ZigbeeEndDevice, Available: false},
				{IEEEAddress: "0x02", Type: model.ZigbeeEndDevice, Available: true, LQI: 30, LastSeen: testNow},
			},
		},
		Now: testNow,
	}

	d := New(DefaultThresholds())
	first := d.Detect(in)
	second := d.Detect(in)

	if len(first) == 0 {
		t.Fatal("expected problems")
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two passes over the same snapshot differ")
	}

	seen := map[string]bool{}
	for _, p := range first {
		if seen[p.ID] {
			t.Fatalf("duplicate id %q", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestDetect_DisconnectAndRoamWindows(t *testing.T) {
	t.Parallel()

	events := []model.ConnectionEvent{}
	// 4 disconnects within 24h: warning.
	for i := 0; i < 4; i++ {
		events = append(events, model.ConnectionEvent{
			DeviceMAC: "aa:bb:cc:dd:ee:01",
			Type:      model.EventDisconnect,
			Timestamp: testNow.Add(-time.Duration(i+1) * time.Hour),
		})
	}
	// 12 disconnects, but outside the window: ignored.
	for i := 0; i < 12; i++ {
		events = append(events, model.ConnectionEvent{
			DeviceMAC: "aa:bb:cc:dd:ee:02",
			Type:      model.EventDisconnect,
			Timestamp: testNow.Add(-25 * time.Hour),
		})
	}
	// 6 roams within the hour: warning.
	for i := 0; i < 6; i++ {
		events = append(events, model.ConnectionEvent{
			DeviceMAC: "aa:bb:cc:dd:ee:03",
			Type:      model.EventRoam,
			Timestamp: testNow.Add(-time.Duration(i+1) * time.Minute),
		})
	}

	d := New(DefaultThresholds())
	problems := d.Detect(Input{
		Mesh:   model.MeshNetworkState{WiFi: healthySettings()},
		Events: events,
		Now:    testNow,
	})

	ids := map[string]model.ProblemSeverity{}
	for _, p := range problems {
		ids[p.ID] = p.Severity
	}
	if sev, ok := ids["disconnects-aa:bb:cc:dd:ee:01"]; !ok || sev != model.SeverityWarning {
		t.Fatalf("disconnects problem=%v %v", sev, ok)
	}
	if _, ok := ids["disconnects-aa:bb:cc:dd:ee:02"]; ok {
		t.Fatal("stale disconnects should not fire")
	}
	if sev, ok := ids["roaming-aa:bb:cc:dd:ee:03"]; !ok || sev != model.SeverityWarning {
		t.Fatalf("roaming problem=%v %v", sev, ok)
	}
}

func TestDetect_DisconnectEscalatesToError(t *testing.T) {
	t.Parallel()

	var events []model.ConnectionEvent
	for i := 0; i < 10; i++ {
		events = append(events, model.ConnectionEvent{
			DeviceMAC: "aa:bb:cc:dd:ee:01",
			Type:      model.EventDisconnect,
			Timestamp: testNow.Add(-time.Duration(i+1) * time.Hour),
		})
	}

	d := New(DefaultThresholds())
	problems := d.Detect(Input{
		Mesh:   model.MeshNetworkState{WiFi: healthySettings()},
		Events: events,
		Now:    testNow,
	})

	for _, p := range problems {
		if p.ID == "disconnects-aa:bb:cc:dd:ee:01" {
			if p.Severity != model.SeverityError {
				t.Fatalf("severity=%q", p.Severity)
			}
			return
		}
	}
	t.Fatal("disconnects problem missing")
}

func TestDetect_ChannelScans(t *testing.T) {
	t.Parallel()

	scans := []model.ChannelScanResult{
		{Band: model.Band24, Channel: 6, UtilizationPct: 95},
		{Band: model.Band5, Channel: 36, UtilizationPct: 75},
		{
			Band: model.Band24, Channel: 6, UtilizationPct: 10,
			Neighbors: []model.NeighborNetwork{
				{SSID: "strong", BSSID: "aa:aa:aa:aa:aa:01", Band: model.Band24, Channel: 6, RSSI: -60},
				{SSID: "weak", BSSID: "aa:aa:aa:aa:aa:02", Band: model.Band24, Channel: 6, RSSI: -72},
			},
		},
	}

	d := New(DefaultThresholds())
	problems := d.Detect(Input{
		Mesh:  model.MeshNetworkState{WiFi: healthySettings()},
		Scans: scans,
		Now:   testNow,
	})

	ids := map[string]model.ProblemSeverity{}
	for _, p := range problems {
		ids[p.ID] = p.Severity
	}
	if ids["congestion-2.4ghz-6"] != model.SeverityError {
		t.Fatalf("2.4 congestion=%q", ids["congestion-2.4ghz-6"])
	}
	if ids["congestion-5ghz-36"] != model.SeverityWarning {
		t.Fatalf("5 congestion=%q", ids["congestion-5ghz-36"])
	}
	if _, ok := ids["neighbor-interference-aa:aa:aa:aa:aa:01"]; !ok {
		t.Fatal("strong neighbor should fire")
	}
	if _, ok := ids["neighbor-interference-aa:aa:aa:aa:aa:02"]; ok {
		t.Fatal("neighbor below RSSI threshold should not fire")
	}
}

func TestDetect_ZigbeeOverlapAffectsAllDevices(t *testing.T) {
	t.Parallel()

	in := Input{
		Mesh: model.MeshNetworkState{WiFi: healthySettings()}, // channel 6
		Zigbee: &model.ZigbeeNetworkState{
			Channel: 17, // 2435 MHz, right inside WiFi 6
			Devices: []model.ZigbeeDevice{
				{IEEEAddress: "0x02", Type: model.ZigbeeRouter, Available: true, LQI: 200, LastSeen: testNow},
				{IEEEAddress: "0x01", Type: model.ZigbeeEndDevice, Available: true, LQI: 180, LastSeen: testNow},
			},
		},
		Now: testNow,
	}

	d := New(DefaultThresholds())
	problems := d.Detect(in)

	for _, p := range problems {
		if p.ID == "wifi-zigbee-overlap" {
			if p.Severity != model.SeverityError {
				t.Fatalf("severity=%q", p.Severity)
			}
			want := []string{"0x01", "0x02"}
			if !reflect.DeepEqual(p.AffectedDevices, want) {
				t.Fatalf("affected=%v", p.AffectedDevices)
			}
			if p.Recommendation == "" {
				t.Fatal("expected a recommendation")
			}
			return
		}
	}
	t.Fatal("wifi-zigbee-overlap missing")
}

func TestDetect_ZigbeeNetworkRules(t *testing.T) {
	t.Parallel()

	devices := []model.ZigbeeDevice{
		{IEEEAddress: "0x01", Type: model.ZigbeeEndDevice, Available: true, LQI: 80, LastSeen: testNow},
		{IEEEAddress: "0x02", Type: model.ZigbeeEndDevice, Available: true, LQI: 90, LastSeen: testNow},
		{IEEEAddress: "0x03", Type: model.ZigbeeEndDevice, Available: true, LQI: 70, LastSeen: testNow},
		{IEEEAddress: "0x04", Type: model.ZigbeeEndDevice, Available: true, LQI: 85, LastSeen: testNow},
		{IEEEAddress: "0x05", Type: model.ZigbeeEndDevice, Available: false},
		{IEEEAddress: "0x06", Type: model.ZigbeeEndDevice, Available: false},
		{IEEEAddress: "0x07", Type: model.ZigbeeEndDevice, Available: false},
	}

	d := New(DefaultThresholds())
	problems := d.Detect(Input{
		Mesh:   model.MeshNetworkState{WiFi: model.WiFiSettings{Channel24: 1}},
		Zigbee: &model.ZigbeeNetworkState{Channel: 25, Devices: devices},
		Now:    testNow,
	})

	ids := map[string]model.ProblemSeverity{}
	for _, p := range problems {
		ids[p.ID] = p.Severity
	}
	if _, ok := ids["zigbee-no-routers"]; !ok {
		t.Fatal("zigbee-no-routers missing")
	}
	if ids["zigbee-availability"] != model.SeverityError {
		t.Fatalf("availability=%q", ids["zigbee-availability"])
	}
	if ids["zigbee-mesh-quality"] != model.SeverityWarning {
		t.Fatalf("mesh-quality=%q", ids["zigbee-mesh-quality"])
	}
}

func TestDetect_ZigbeeStaleDevice(t *testing.T) {
	t.Parallel()

	d := New(DefaultThresholds())
	problems := d.Detect(Input{
		Mesh: model.MeshNetworkState{WiFi: model.WiFiSettings{Channel24: 1}},
		Zigbee: &model.ZigbeeNetworkState{
			Channel: 25,
			Devices: []model.ZigbeeDevice{
				{IEEEAddress: "0x01", Type: model.ZigbeeRouter, Available: true, LQI: 200, LastSeen: testNow.Add(-30 * time.Hour)},
			},
		},
		Now: testNow,
	})

	found := false
	for _, p := range problems {
		if p.ID == "zigbee-stale-0x01" {
			found = true
		}
	}
	if !found {
		t.Fatal("zigbee-stale problem missing")
	}
}

func TestDetect_ConfigurationRules(t *testing.T) {
	t.Parallel()

	in := Input{
		Mesh: model.MeshNetworkState{
			Nodes: []model.MeshNode{{ID: "a"}, {ID: "b"}},
			WiFi: model.WiFiSettings{
				Channel24:        4,
				Channel5:         36,
				Width5MHz:        40,
				Security:         model.SecurityOpen,
				RoamingAssistant: false,
			},
		},
		Now: testNow,
	}

	d := New(DefaultThresholds())
	problems := d.Detect(in)

	ids := map[string]model.ProblemSeverity{}
	for _, p := range problems {
		ids[p.ID] = p.Severity
	}
	if ids["config-channel-24"] != model.SeverityWarning {
		t.Fatalf("channel=%q", ids["config-channel-24"])
	}
	if ids["config-security"] != model.SeverityCritical {
		t.Fatalf("security=%q", ids["config-security"])
	}
	if ids["config-width-5"] != model.SeverityWarning {
		t.Fatalf("width=%q", ids["config-width-5"])
	}
	if ids["config-roaming"] != model.SeverityWarning {
		t.Fatalf("roaming=%q", ids["config-roaming"])
	}
	if ids["config-beamforming"] != model.SeverityInfo {
		t.Fatalf("beamforming=%q", ids["config-beamforming"])
	}
	if ids["config-mu-mimo"] != model.SeverityInfo || ids["config-ofdma"] != model.SeverityInfo {
		t.Fatal("feature infos missing")
	}
}

func TestDetect_CapacityRules(t *testing.T) {
	t.Parallel()

	in := Input{
		Mesh: model.MeshNetworkState{
			Nodes: []model.MeshNode{
				{ID: "big", Name: "Big", ConnectedClients: 55, CPUPercent: 50, MemoryPercent: 90, Uptime: 31 * 24 * 3600},
				{ID: "ok", Name: "OK", ConnectedClients: 5, CPUPercent: 10, MemoryPercent: 40},
			},
			WiFi: healthySettings(),
		},
		Now: testNow,
	}

	d := New(DefaultThresholds())
	problems := d.Detect(in)

	ids := map[string]model.ProblemSeverity{}
	for _, p := range problems {
		ids[p.ID] = p.Severity
	}
	if ids["capacity-clients-big"] != model.SeverityError {
		t.Fatalf("clients=%q", ids["capacity-clients-big"])
	}
	if ids["capacity-memory-big"] != model.SeverityWarning {
		t.Fatalf("memory=%q", ids["capacity-memory-big"])
	}
	if ids["uptime-big"] != model.SeverityInfo {
		t.Fatalf("uptime=%q", ids["uptime-big"])
	}
	if _, ok := ids["capacity-clients-ok"]; ok {
		t.Fatal("healthy node should not fire")
	}
}

func TestDetect_InfrastructureRules(t *testing.T) {
	t.Parallel()

	d := New(DefaultThresholds())
	problems := d.Detect(Input{
		Mesh: model.MeshNetworkState{WiFi: healthySettings()},
		Infra: []model.InfraHealthSample{
			{Host: "gw", CPUPercent: 95, TemperatureC: 80, StateTableUsedPct: 85},
		},
		Now: testNow,
	})

	ids := map[string]bool{}
	for _, p := range problems {
		ids[p.ID] = true
	}
	for _, want := range []string{"infra-cpu-gw", "infra-temp-gw", "infra-statetable-gw"} {
		if !ids[want] {
			t.Fatalf("%s missing", want)
		}
	}
	if ids["infra-memory-gw"] {
		t.Fatal("memory rule should not fire")
	}
}
