// Package heatmap simulates per-floor signal coverage over a grid using a
// log-distance propagation model with material attenuation and cross-floor
// leakage, and derives dead zones and placement recommendations from it.
package heatmap

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/the-geek-freaks/meshscope/internal/model"
	"github.com/the-geek-freaks/meshscope/internal/signal"
)

const (
	// weakQualityThreshold marks a grid cell as part of a dead zone.
	weakQualityThreshold = 30.0

	// interferenceVisibilityDBM filters ambient neighbor networks: weaker
	// sources do not contribute to the interference floor.
	interferenceVisibilityDBM = -70.0

	// snrDerateThresholdDB is the SNR below which composite quality is
	// derated proportionally.
	snrDerateThresholdDB = 20.0

	// interferenceFloorDBM is reported when no ambient source is visible.
	interferenceFloorDBM = -120.0

	// defaultFloorHeightM is used when the building does not specify one.
	defaultFloorHeightM = 3.0
)

// Options tunes the propagation model. Zero value means defaults.
type Options struct {
	// ResolutionM is meters per grid step. Must be > 0.
	ResolutionM float64

	TxPower24DBM       float64
	TxPower5DBM        float64
	PathLossExponent24 float64
	PathLossExponent5  float64

	// FloorAttenuationDB is the extra penalty per floor crossed, on top of
	// the vertical component of the 3D distance.
	FloorAttenuationDB float64
}

// DefaultOptions returns the calibrated defaults at 1 m resolution.
func DefaultOptions() Options {
	return Options{
		ResolutionM:        1,
		TxPower24DBM:       signal.DefaultTxPowerDBM,
		TxPower5DBM:        signal.DefaultTxPowerDBM - 3,
		PathLossExponent24: signal.DefaultPathLossExponent,
		PathLossExponent5:  2.8,
		FloorAttenuationDB: 15,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.TxPower24DBM == 0 {
		o.TxPower24DBM = def.TxPower24DBM
	}
	if o.TxPower5DBM == 0 {
		o.TxPower5DBM = def.TxPower5DBM
	}
	if o.PathLossExponent24 <= 0 {
		o.PathLossExponent24 = def.PathLossExponent24
	}
	if o.PathLossExponent5 <= 0 {
		o.PathLossExponent5 = def.PathLossExponent5
	}
	if o.FloorAttenuationDB <= 0 {
		o.FloorAttenuationDB = def.FloorAttenuationDB
	}
	return o
}

// wallAttenuationDB is the per-crossing penalty by wall material.
var wallAttenuationDB = map[model.WallMaterial]float64{
	model.MaterialGlass:    2,
	model.MaterialDrywall:  3,
	model.MaterialWood:     4,
	model.MaterialBrick:    8,
	model.MaterialConcrete: 12,
	model.MaterialMetal:    20,
}

// Generator simulates coverage. Stateless and safe for concurrent use.
type Generator struct {
	opts Options
}

// New returns a generator. The resolution is validated per call so a
// zero-value Options still fails fast instead of looping forever.
func New(opts Options) *Generator {
	return &Generator{opts: opts.withDefaults()}
}

// GenerateFloorHeatmap simulates the given floor. A missing building,
// missing floor plan, or empty placement list yields a placeholder result
// with explanatory recommendations rather than an error; a non-positive
// resolution is a programming error and fails fast.
func (g *Generator) GenerateFloorHeatmap(b *model.Building, placements []model.NodePlacement, floorNumber int, now time.Time) (*model.FloorHeatmap, error) {
	if g.opts.ResolutionM <= 0 {
		return nil, fmt.Errorf("heatmap: resolution must be positive, got %v", g.opts.ResolutionM)
	}

	hm := &model.FloorHeatmap{
		FloorNumber: floorNumber,
		ResolutionM: g.opts.ResolutionM,
		GeneratedAt: now,
	}

	plan := b.Floor(floorNumber)
	if plan == nil {
		hm.Recommendations = []string{
			fmt.Sprintf("No floor plan configured for floor %d. Add building geometry to enable coverage simulation.", floorNumber),
		}
		return hm, nil
	}
	if len(placements) == 0 {
		hm.Recommendations = []string{
			"No node placements configured. Assign physical positions to mesh nodes to enable coverage simulation.",
		}
		return hm, nil
	}

	floorHeight := b.FloorHeightM
	if floorHeight <= 0 {
		floorHeight = defaultFloorHeightM
	}

	interference := ambientInterferenceDBM(b.Neighbors)

	res := g.opts.ResolutionM
	nx := int(math.Floor(plan.WidthM/res)) + 1
	ny := int(math.Floor(plan.LengthM/res)) + 1

	hm.Points = make([]model.HeatmapPoint, 0, nx*ny)
	var qualitySum float64
	derated := 0

	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			x := float64(ix) * res
			y := float64(iy) * res

			pt := model.HeatmapPoint{
				X:               x,
				Y:               y,
				Signal24DBM:     math.Inf(-1),
				Signal5DBM:      math.Inf(-1),
				InterferenceDBM: interference,
			}

			var bestAny float64 = math.Inf(-1)
			for _, p := range placements {
				s24, s5 := g.signalAt(plan, p, x, y, floorNumber, floorHeight)
				if s24 > pt.Signal24DBM {
					pt.Signal24DBM = s24
				}
				if s5 > pt.Signal5DBM {
					pt.Signal5DBM = s5
				}
				if best := math.Max(s24, s5); best > bestAny {
					bestAny = best
					pt.NodeID = p.NodeID
				}
			}

			pt.Quality = signal.QualityFromRSSI(bestAny)
			if snr := bestAny - interference; snr < snrDerateThresholdDB {
				pt.Quality *= signal.Clamp(snr, 0, snrDerateThresholdDB) / snrDerateThresholdDB
				derated++
			}

			qualitySum += pt.Quality
			hm.Points = append(hm.Points, pt)
		}
	}

	if len(hm.Points) > 0 {
		hm.AvgQuality = qualitySum / float64(len(hm.Points))
	}
	hm.DeadZones = clusterDeadZones(hm.Points, res)
	hm.Recommendations = g.recommendations(placements, hm, derated)

	return hm, nil
}

// signalAt computes both bands' signal from one node at a cell,
// including cross-floor leakage and same-floor wall attenuation.
func (g *Generator) signalAt(plan *model.FloorPlan, p model.NodePlacement, x, y float64, floorNumber int, floorHeight float64) (s24, s5 float64) {
	dx := x - p.Position.X
	dy := y - p.Position.Y
	floorDiff := math.Abs(float64(p.FloorNumber - floorNumber))
	dz := floorDiff*floorHeight + p.Position.Z
	dist := math.Sqrt(dx*dx + dy*dy + dz*dz)

	s24 = signal.RSSIAtDistance(dist, g.opts.TxPower24DBM, g.opts.PathLossExponent24)
	s5 = signal.RSSIAtDistance(dist, g.opts.TxPower5DBM, g.opts.PathLossExponent5)

	if floorDiff > 0 {
		penalty := floorDiff * g.opts.FloorAttenuationDB
		s24 -= penalty
		s5 -= penalty
		return s24, s5
	}

	if loss := wallLossDB(plan, p.Position.X, p.Position.Y, x, y); loss > 0 {
		s24 -= loss
		// 5 GHz penetrates walls worse.
		s5 -= loss * 1.5
	}
	return s24, s5
}

// wallLossDB sums material attenuation for every room boundary the direct
// path crosses. Each room contributes at most two crossings (in and out).
func wallLossDB(plan *model.FloorPlan, x0, y0, x1, y1 float64) float64 {
	var loss float64
	for _, room := range plan.Rooms {
		crossings := rectCrossings(room, x0, y0, x1, y1)
		if crossings == 0 {
			continue
		}
		if crossings > 2 {
			crossings = 2
		}
		per, ok := wallAttenuationDB[room.Material]
		if !ok {
			per = wallAttenuationDB[model.MaterialDrywall]
		}
		loss += per * float64(crossings)
	}
	return loss
}

// rectCrossings counts how many of the room's four edges the segment
// (x0,y0)-(x1,y1) intersects.
func rectCrossings(r model.Room, x0, y0, x1, y1 float64) int {
	n := 0
	if segmentsIntersect(x0, y0, x1, y1, r.MinX, r.MinY, r.MaxX, r.MinY) {
		n++
	}
	if segmentsIntersect(x0, y0, x1, y1, r.MaxX, r.MinY, r.MaxX, r.MaxY) {
		n++
	}
	if segmentsIntersect(x0, y0, x1, y1, r.MaxX, r.MaxY, r.MinX, r.MaxY) {
		n++
	}
	if segmentsIntersect(x0, y0, x1, y1, r.MinX, r.MaxY, r.MinX, r.MinY) {
		n++
	}
	return n
}

func segmentsIntersect(ax, ay, bx, by, cx, cy, dx, dy float64) bool {
	d1 := cross(cx, cy, dx, dy, ax, ay)
	d2 := cross(cx, cy, dx, dy, bx, by)
	d3 := cross(ax, ay, bx, by, cx, cy)
	d4 := cross(ax, ay, bx, by, dx, dy)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(ox, oy, ax, ay, bx, by float64) float64 {
	return (ax-ox)*(by-oy) - (ay-oy)*(bx-ox)
}

// ambientInterferenceDBM power-sums neighbor networks above the
// visibility threshold.
func ambientInterferenceDBM(neighbors []model.NeighborNetwork) float64 {
	var mw float64
	for _, n := range neighbors {
		if n.RSSI > interferenceVisibilityDBM {
			mw += signal.MilliwattsFromDBM(n.RSSI)
		}
	}
	if mw == 0 {
		return interferenceFloorDBM
	}
	return signal.DBMFromMilliwatts(mw)
}

func (g *Generator) recommendations(placements []model.NodePlacement, hm *model.FloorHeatmap, derated int) []string {
	var recs []string

	sameFloor := false
	for _, p := range placements {
		if p.FloorNumber == hm.FloorNumber {
			sameFloor = true
			break
		}
	}
	if !sameFloor {
		recs = append(recs, fmt.Sprintf("Floor %d is only covered by leakage from other floors. Place a mesh node on this floor.", hm.FloorNumber))
	}

	severe := 0
	for _, dz := range hm.DeadZones {
		if dz.Severity == model.DeadZoneSevere {
			severe++
		}
	}
	if severe > 0 {
		recs = append(recs, fmt.Sprintf("%d severe dead zone(s) detected on floor %d. Reposition a node or add one near the affected area.", severe, hm.FloorNumber))
	}

	if hm.AvgQuality < 50 {
		recs = append(recs, fmt.Sprintf("Average signal quality on floor %d is %.0f/100. Consider moving nodes closer to usage areas.", hm.FloorNumber, hm.AvgQuality))
	}

	if n := len(hm.Points); n > 0 && float64(derated)/float64(n) > 0.25 {
		recs = append(recs, "Ambient neighbor networks derate a large share of this floor. Switching to a less congested channel may help.")
	}

	return recs
}

// sortDeadZones keeps dead-zone output deterministic.
func sortDeadZones(zones []model.DeadZone) {
	sort.Slice(zones, func(i, j int) bool {
		if zones[i].CenterY != zones[j].CenterY {
			return zones[i].CenterY < zones[j].CenterY
		}
		if zones[i].CenterX != zones[j].CenterX {
			return zones[i].CenterX < zones[j].CenterX
		}
		return zones[i].CellCount > zones[j].CellCount
	})
}
