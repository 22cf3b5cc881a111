package heatmap

import (
	"math"

	"github.com/the-geek-freaks/meshscope/internal/model"
)

// deadZoneLinkFactor times the resolution is the maximum distance at which
// two weak cells belong to the same dead zone.
const deadZoneLinkFactor = 3.0

const (
	deadZoneSevereBelow   = 10.0
	deadZoneModerateBelow = 20.0
)

// unionFind is a plain disjoint-set with path compression. Grouping weak
// cells through it makes clustering independent of cell order, so boundary
// ties cannot flip results between runs.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// clusterDeadZones groups cells with quality below the usability threshold
// into dead zones. Clusters need at least two cells; singletons are noise.
func clusterDeadZones(points []model.HeatmapPoint, resolutionM float64) []model.DeadZone {
	weak := make([]model.HeatmapPoint, 0)
	for _, p := range points {
		if p.Quality < weakQualityThreshold {
			weak = append(weak, p)
		}
	}
	if len(weak) < 2 {
		return nil
	}

	linkDist := deadZoneLinkFactor * resolutionM
	uf := newUnionFind(len(weak))
	for i := 0; i < len(weak); i++ {
		for j := i + 1; j < len(weak); j++ {
			if cellDistance(weak[i], weak[j]) <= linkDist {
				uf.union(i, j)
			}
		}
	}

	groups := make(map[int][]int)
	for i := range weak {
		root := uf.find(i)
		groups[root] = append(groups[root], i)
	}

	zones := make([]model.DeadZone, 0, len(groups))
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}

		var cx, cy, qsum float64
		for _, i := range members {
			cx += weak[i].X
			cy += weak[i].Y
			qsum += weak[i].Quality
		}
		n := float64(len(members))
		cx /= n
		cy /= n
		avg := qsum / n

		var radius float64
		for _, i := range members {
			dx := weak[i].X - cx
			dy := weak[i].Y - cy
			if d := math.Sqrt(dx*dx + dy*dy); d > radius {
				radius = d
			}
		}
		// A single-cell-wide cluster still covers half a cell around it.
		radius += resolutionM / 2

		zones = append(zones, model.DeadZone{
			CenterX:    cx,
			CenterY:    cy,
			RadiusM:    radius,
			CellCount:  len(members),
			AvgQuality: avg,
			Severity:   deadZoneSeverity(avg),
		})
	}

	sortDeadZones(zones)
	return zones
}

func deadZoneSeverity(avgQuality float64) model.DeadZoneSeverity {
	switch {
	case avgQuality < deadZoneSevereBelow:
		return model.DeadZoneSevere
	case avgQuality < deadZoneModerateBelow:
		return model.DeadZoneModerate
	default:
		return model.DeadZoneMild
	}
}

func cellDistance(a, b model.HeatmapPoint) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
