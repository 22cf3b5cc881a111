package model

import "time"

// Position is a point on the simplified per-floor coordinate grid, meters.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// NodePlacement pins a mesh node to a physical position. Unique per node,
// latest write wins.
type NodePlacement struct {
	NodeID           string   `json:"node_id" yaml:"node_id"`
	NodeMAC          string   `json:"node_mac" yaml:"node_mac"`
	Floor            string   `json:"floor" yaml:"floor"`
	FloorNumber      int      `json:"floor_number" yaml:"floor_number"`
	Position         Position `json:"position" yaml:"position"`
	CoverageRadius24 float64  `json:"coverage_radius_24,omitempty" yaml:"coverage_radius_24,omitempty"`
	CoverageRadius5  float64  `json:"coverage_radius_5,omitempty" yaml:"coverage_radius_5,omitempty"`
}

type WallMaterial string

const (
	MaterialDrywall  WallMaterial = "drywall"
	MaterialWood     WallMaterial = "wood"
	MaterialGlass    WallMaterial = "glass"
	MaterialBrick    WallMaterial = "brick"
	MaterialConcrete WallMaterial = "concrete"
	MaterialMetal    WallMaterial = "metal"
)

// Room is an axis-aligned rectangle on a floor plan with a wall material.
type Room struct {
	Name     string       `json:"name" yaml:"name"`
	Material WallMaterial `json:"material" yaml:"material"`
	MinX     float64      `json:"min_x" yaml:"min_x"`
	MinY     float64      `json:"min_y" yaml:"min_y"`
	MaxX     float64      `json:"max_x" yaml:"max_x"`
	MaxY     float64      `json:"max_y" yaml:"max_y"`
}

// FloorPlan describes one floor's geometry.
type FloorPlan struct {
	Number  int     `json:"number" yaml:"number"`
	Name    string  `json:"name" yaml:"name"`
	WidthM  float64 `json:"width_m" yaml:"width_m"`
	LengthM float64 `json:"length_m" yaml:"length_m"`
	Rooms   []Room  `json:"rooms,omitempty" yaml:"rooms,omitempty"`
}

// Building is the site geometry plus ambient interference sources.
type Building struct {
	Floors       []FloorPlan       `json:"floors" yaml:"floors"`
	FloorHeightM float64           `json:"floor_height_m" yaml:"floor_height_m"`
	Neighbors    []NeighborNetwork `json:"neighbors,omitempty" yaml:"neighbors,omitempty"`
}

// Floor returns the plan for the given floor number, nil if unknown.
func (b *Building) Floor(number int) *FloorPlan {
	if b == nil {
		return nil
	}
	for i := range b.Floors {
		if b.Floors[i].Number == number {
			return &b.Floors[i]
		}
	}
	return nil
}

// HeatmapPoint is one simulated grid cell.
type HeatmapPoint struct {
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Signal24DBM     float64 `json:"signal_24_dbm"`
	Signal5DBM      float64 `json:"signal_5_dbm"`
	Quality         float64 `json:"quality"`
	NodeID          string  `json:"node_id,omitempty"`
	InterferenceDBM float64 `json:"interference_dbm"`
}

type DeadZoneSeverity string

const (
	DeadZoneMild     DeadZoneSeverity = "mild"
	DeadZoneModerate DeadZoneSeverity = "moderate"
	DeadZoneSevere   DeadZoneSeverity = "severe"
)

// DeadZone is a cluster of grid cells below the usability threshold.
type DeadZone struct {
	CenterX    float64          `json:"center_x"`
	CenterY    float64          `json:"center_y"`
	RadiusM    float64          `json:"radius_m"`
	CellCount  int              `json:"cell_count"`
	AvgQuality float64          `json:"avg_quality"`
	Severity   DeadZoneSeverity `json:"severity"`
}

// FloorHeatmap is the per-floor coverage simulation result.
type FloorHeatmap struct {
	FloorNumber     int            `json:"floor_number"`
	ResolutionM     float64        `json:"resolution_m"`
	Points          []HeatmapPoint `json:"points"`
	DeadZones       []DeadZone     `json:"dead_zones"`
	AvgQuality      float64        `json:"avg_quality"`
	Recommendations []string       `json:"recommendations"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// SignalReading is one (node, RSSI) observation used for multilateration.
type SignalReading struct {
	NodeMAC string  `json:"node_mac" yaml:"node_mac"`
	RSSI    float64 `json:"rssi" yaml:"rssi"`
}

// EstimatedPosition is a multilateration result. Signals echoes the
// readings actually used so callers can explain the estimate.
type EstimatedPosition struct {
	DeviceMAC   string          `json:"device_mac"`
	Position    Position        `json:"position"`
	FloorNumber int             `json:"floor_number"`
	Confidence  float64         `json:"confidence"`
	Method      string          `json:"method"`
	Signals     []SignalReading `json:"signals"`
}

// SpatialMap collects position estimates for one analysis pass.
type SpatialMap struct {
	Devices     []EstimatedPosition `json:"devices"`
	GeneratedAt time.Time           `json:"generated_at"`
}
