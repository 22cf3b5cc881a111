// Package locate estimates physical device positions from per-node signal
// readings via weighted multilateration.
package locate

import (
	"math"
	"sort"
	"time"

	"github.com/the-geek-freaks/meshscope/internal/model"
	"github.com/the-geek-freaks/meshscope/internal/signal"
)

const (
	confidenceSingle  = 0.3
	confidencePair    = 0.5
	confidenceBase    = 0.5
	confidencePerNode = 0.1
	confidenceMax     = 0.9
)

// Options tunes the distance model. Zero value means defaults.
type Options struct {
	TxPowerDBM       float64
	PathLossExponent float64
}

func (o Options) withDefaults() Options {
	if o.TxPowerDBM == 0 {
		o.TxPowerDBM = signal.DefaultTxPowerDBM
	}
	if o.PathLossExponent <= 0 {
		o.PathLossExponent = signal.DefaultPathLossExponent
	}
	return o
}

// Estimator converts signal readings into position estimates. Node
// positions are queried per call from the supplied placement index; the
// estimator keeps no state and is safe for concurrent use.
type Estimator struct {
	opts Options
}

// New returns an estimator with the given options.
func New(opts Options) *Estimator {
	return &Estimator{opts: opts.withDefaults()}
}

// Estimate computes a device position from its readings against known
// placements. Returns nil when no reading matches a known node; missing
// data is not an error.
func (e *Estimator) Estimate(deviceMAC string, readings []model.SignalReading, placements model.PlacementIndex) *model.EstimatedPosition {
	type anchor struct {
		reading   model.SignalReading
		placement model.NodePlacement
		distance  float64
	}

	anchors := make([]anchor, 0, len(readings))
	for _, r := range readings {
		p, ok := placements.Lookup(r.NodeMAC)
		if !ok {
			continue
		}
		anchors = append(anchors, anchor{
			reading:   r,
			placement: p,
			distance:  signal.DistanceFromRSSI(r.RSSI, e.opts.TxPowerDBM, e.opts.PathLossExponent),
		})
	}

	if len(anchors) == 0 {
		return nil
	}

	// Strongest reading decides the floor and keeps output order stable.
	sort.SliceStable(anchors, func(i, j int) bool {
		if anchors[i].reading.RSSI != anchors[j].reading.RSSI {
			return anchors[i].reading.RSSI > anchors[j].reading.RSSI
		}
		return anchors[i].reading.NodeMAC < anchors[j].reading.NodeMAC
	})

	used := make([]model.SignalReading, 0, len(anchors))
	for _, a := range anchors {
		used = append(used, a.reading)
	}

	est := &model.EstimatedPosition{
		DeviceMAC:   model.NormalizeMAC(deviceMAC),
		FloorNumber: anchors[0].placement.FloorNumber,
		Signals:     used,
	}

	switch len(anchors) {
	case 1:
		est.Position = anchors[0].placement.Position
		est.Confidence = confidenceSingle
		est.Method = "single-node"
	case 2:
		// Inverse-distance-weighted bilateration.
		w0 := 1 / anchors[0].distance
		w1 := 1 / anchors[1].distance
		sum := w0 + w1
		est.Position = weightedPosition(
			[]model.Position{anchors[0].placement.Position, anchors[1].placement.Position},
			[]float64{w0 / sum, w1 / sum},
		)
		est.Confidence = confidencePair
		est.Method = "bilateration"
	default:
		// Inverse-square-distance-weighted centroid.
		weights := make([]float64, len(anchors))
		positions := make([]model.Position, len(anchors))
		var sum float64
		for i, a := range anchors {
			weights[i] = 1 / (a.distance * a.distance)
			positions[i] = a.placement.Position
			sum += weights[i]
		}
		for i := range weights {
			weights[i] /= sum
		}
		est.Position = weightedPosition(positions, weights)
		est.Confidence = math.Min(confidenceMax, confidenceBase+confidencePerNode*float64(len(anchors)))
		est.Method = "multilateration"
	}

	return est
}

// Map estimates every device with readings and assembles a SpatialMap.
// Devices without a usable estimate are skipped. Output is sorted by MAC.
func (e *Estimator) Map(signals map[string][]model.SignalReading, placements model.PlacementIndex, now time.Time) model.SpatialMap {
	macs := make([]string, 0, len(signals))
	for mac := range signals {
		macs = append(macs, mac)
	}
	sort.Strings(macs)

	out := model.SpatialMap{GeneratedAt: now}
	for _, mac := range macs {
		if est := e.Estimate(mac, signals[mac], placements); est != nil {
			out.Devices = append(out.Devices, *est)
		}
	}
	return out
}

func weightedPosition(positions []model.Position, weights []float64) model.Position {
	var p model.Position
	for i, pos := range positions {
		p.X += weights[i] * pos.X
		p.Y += weights[i] * pos.Y
		p.Z += weights[i] * pos.Z
	}
	return p
}
