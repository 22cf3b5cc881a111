package heatmap

import (
	"fmt"
	"time"

	"github.com/the-geek-freaks/meshscope/internal/model"
)

const (
	// placementSearchStepM is the candidate grid step for the brute-force
	// placement search. Coarse on purpose: the search is O(cells x
	// candidates) and meant for offline use.
	placementSearchStepM = 5.0

	// placementMinImprovement is the average-quality gain a candidate must
	// deliver before it is worth suggesting.
	placementMinImprovement = 5.0
)

// PlacementSuggestion is the best position found for an additional node.
type PlacementSuggestion struct {
	Position     model.Position `json:"position"`
	FloorNumber  int            `json:"floor_number"`
	BaselineAvg  float64        `json:"baseline_avg"`
	ProjectedAvg float64        `json:"projected_avg"`
	Improvement  float64        `json:"improvement"`
}

// FindOptimalPlacement scans candidate positions on the floor (5 m step,
// margins excluded) with a synthetic test node and returns the position
// with the largest average-quality improvement, or nil when no candidate
// improves the floor by more than the minimum. Expensive; treat as an
// offline operation.
func (g *Generator) FindOptimalPlacement(b *model.Building, placements []model.NodePlacement, floorNumber int) (*PlacementSuggestion, error) {
	if g.opts.ResolutionM <= 0 {
		return nil, fmt.Errorf("heatmap: resolution must be positive, got %v", g.opts.ResolutionM)
	}
	plan := b.Floor(floorNumber)
	if plan == nil || len(placements) == 0 {
		return nil, nil
	}

	// Fixed reference time: the search compares simulations, the timestamp
	// is irrelevant and must not perturb determinism.
	var at time.Time

	baseline, err := g.GenerateFloorHeatmap(b, placements, floorNumber, at)
	if err != nil {
		return nil, err
	}

	var best *PlacementSuggestion
	candidate := make([]model.NodePlacement, len(placements), len(placements)+1)
	copy(candidate, placements)

	for y := placementSearchStepM; y < plan.LengthM; y += placementSearchStepM {
		for x := placementSearchStepM; x < plan.WidthM; x += placementSearchStepM {
			test := model.NodePlacement{
				NodeID:      "candidate",
				FloorNumber: floorNumber,
				Position:    model.Position{X: x, Y: y},
			}
			trial, err := g.GenerateFloorHeatmap(b, append(candidate, test), floorNumber, at)
			if err != nil {
				return nil, err
			}

			improvement := trial.AvgQuality - baseline.AvgQuality
			if improvement <= placementMinImprovement {
				continue
			}
			if best == nil || improvement > best.Improvement {
				best = &PlacementSuggestion{
					Position:     test.Position,
					FloorNumber:  floorNumber,
					BaselineAvg:  baseline.AvgQuality,
					ProjectedAvg: trial.AvgQuality,
					Improvement:  improvement,
				}
			}
		}
	}

	return best, nil
}
