package heatmap

import (
	"testing"

	"github.com/the-geek-freaks/meshscope/internal/model"
)

func TestFindOptimalPlacement_ImprovesSparseCoverage(t *testing.T) {
	t.Parallel()

	b := singleFloorBuilding(25, 25)
	placements := []model.NodePlacement{
		{NodeID: "main", FloorNumber: 0, Position: model.Position{X: 0, Y: 0}},
	}
	g := New(Options{ResolutionM: 2.5})

	s, err := g.FindOptimalPlacement(b, placements, 0)
	if err != nil {
		t.Fatalf("FindOptimalPlacement: %v", err)
	}
	if s == nil {
		t.Fatal("expected a suggestion for a corner-only layout")
	}
	if s.Improvement <= placementMinImprovement {
		t.Fatalf("improvement=%v", s.Improvement)
	}
	if s.Position.X <= 0 || s.Position.X >= 25 || s.Position.Y <= 0 || s.Position.Y >= 25 {
		t.Fatalf("position=%+v outside margins", s.Position)
	}
	if s.ProjectedAvg <= s.BaselineAvg {
		t.Fatalf("projected=%v baseline=%v", s.ProjectedAvg, s.BaselineAvg)
	}
}

func TestFindOptimalPlacement_NoConfig(t *testing.T) {
	t.Parallel()

	g := New(Options{ResolutionM: 1})
	s, err := g.FindOptimalPlacement(singleFloorBuilding(10, 10), nil, 0)
	if err != nil {
		t.Fatalf("FindOptimalPlacement: %v", err)
	}
	if s != nil {
		t.Fatalf("suggestion=%+v, want nil", s)
	}
}

func TestFindOptimalPlacement_Deterministic(t *testing.T) {
	t.Parallel()

	b := singleFloorBuilding(20, 20)
	placements := []model.NodePlacement{
		{NodeID: "main", FloorNumber: 0, Position: model.Position{X: 1, Y: 1}},
	}
	g := New(Options{ResolutionM: 2})

	a, err := g.FindOptimalPlacement(b, placements, 0)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	c, err := g.FindOptimalPlacement(b, placements, 0)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if a == nil || c == nil {
		t.Fatalf("a=%v c=%v", a, c)
	}
	if *a != *c {
		t.Fatalf("suggestions differ: %+v vs %+v", a, c)
	}
}
