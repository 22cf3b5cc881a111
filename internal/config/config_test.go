package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/the-geek-freaks/meshscope/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestMustLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `
env: dev
site:
  name: home
  config_path: /etc/meshscope/site.yaml
analysis:
  interval: 1m
  resolution_m: 0.5
registry:
  enabled: false
log:
  level: debug
  format: text
`)

	cfg := MustLoad(path)

	if cfg.Env != "dev" {
		t.Fatalf("env=%q", cfg.Env)
	}
	if cfg.Site.Name != "home" {
		t.Fatalf("site=%q", cfg.Site.Name)
	}
	if cfg.Analysis.Interval != time.Minute {
		t.Fatalf("interval=%v", cfg.Analysis.Interval)
	}
	if cfg.Analysis.ResolutionM != 0.5 {
		t.Fatalf("resolution=%v", cfg.Analysis.ResolutionM)
	}
	if cfg.Registry.Enabled {
		t.Fatal("registry should be disabled")
	}
	if cfg.Health.Address != ":8080" {
		t.Fatalf("health address default=%q", cfg.Health.Address)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Fatalf("log=%+v", cfg.Log)
	}
}

func TestMustLoad_MissingFilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
}

func TestMustLoadSite(t *testing.T) {
	path := writeFile(t, "site.yaml", `
site_name: home
building:
  floor_height_m: 3
  floors:
    - number: 0
      name: ground
      width_m: 12
      length_m: 10
      rooms:
        - name: kitchen
          material: concrete
          min_x: 0
          min_y: 0
          max_x: 4
          max_y: 4
placements:
  - node_id: main
    node_mac: "AA:BB:CC:DD:EE:FF"
    floor: ground
    floor_number: 0
    position: {x: 6, y: 5, z: 1}
neighbors:
  - ssid: nextdoor
    bssid: "11:22:33:44:55:66"
    band: "2.4ghz"
    channel: 1
    rssi: -68
`)

	site := MustLoadSite(path)

	if site.SiteName != "home" {
		t.Fatalf("site_name=%q", site.SiteName)
	}
	if len(site.Building.Floors) != 1 || site.Building.Floors[0].WidthM != 12 {
		t.Fatalf("floors=%+v", site.Building.Floors)
	}
	if site.Building.Floors[0].Rooms[0].Material != model.MaterialConcrete {
		t.Fatalf("material=%q", site.Building.Floors[0].Rooms[0].Material)
	}
	if len(site.Placements) != 1 || site.Placements[0].Position.X != 6 {
		t.Fatalf("placements=%+v", site.Placements)
	}
	// Top-level neighbors are folded into the building's list.
	if len(site.Building.Neighbors) != 1 || site.Building.Neighbors[0].Channel != 1 {
		t.Fatalf("neighbors=%+v", site.Building.Neighbors)
	}
}
