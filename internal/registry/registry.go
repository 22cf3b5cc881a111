// Package registry owns problem state between analysis passes. The
// detector itself is pure; callers hand its output to Reconcile, which
// merges it into a Repository and resolves what disappeared.
package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/the-geek-freaks/meshscope/internal/model"
)

// Repository stores problems keyed by their deterministic id. Lookups
// return (nil, nil) for unknown ids. Implementations must tolerate
// concurrent readers; writes follow single-writer discipline and are
// serialized by the caller.
type Repository interface {
	Upsert(ctx context.Context, p model.NetworkProblem) error
	Get(ctx context.Context, id string) (*model.NetworkProblem, error)
	Active(ctx context.Context) ([]model.NetworkProblem, error)
	Resolve(ctx context.Context, id string, at time.Time) error
	ResolveMissing(ctx context.Context, keep []string, at time.Time) error
	Clear(ctx context.Context) error
	Close() error
}

// Summary counts what one reconciliation pass changed.
type Summary struct {
	New      int
	Updated  int
	Resolved int
}

// Reconcile merges one detection pass into the repository: detected
// problems are upserted (known active ids keep their original
// DetectedAt), and previously-active ids absent from this pass are
// resolved. Running it twice with the same input is a no-op the second
// time, apart from Updated counting.
func Reconcile(ctx context.Context, repo Repository, detected []model.NetworkProblem, now time.Time) (Summary, error) {
	var sum Summary

	activeBefore, err := repo.Active(ctx)
	if err != nil {
		return sum, err
	}
	known := make(map[string]model.NetworkProblem, len(activeBefore))
	for _, p := range activeBefore {
		known[p.ID] = p
	}

	keep := make([]string, 0, len(detected))
	for _, p := range detected {
		p.ResolvedAt = nil
		if prev, ok := known[p.ID]; ok {
			p.DetectedAt = prev.DetectedAt
			sum.Updated++
		} else {
			if p.DetectedAt.IsZero() {
				p.DetectedAt = now
			}
			sum.New++
		}
		if err := repo.Upsert(ctx, p); err != nil {
			return sum, err
		}
		keep = append(keep, p.ID)
	}

	if err := repo.ResolveMissing(ctx, keep, now); err != nil {
		return sum, err
	}

	seen := make(map[string]bool, len(keep))
	for _, id := range keep {
		seen[id] = true
	}
	for id := range known {
		if !seen[id] {
			sum.Resolved++
		}
	}

	return sum, nil
}

// Memory is an in-process Repository for embedding and tests.
type Memory struct {
	mu       sync.RWMutex
	problems map[string]model.NetworkProblem
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{problems: make(map[string]model.NetworkProblem)}
}

func (m *Memory) Upsert(_ context.Context, p model.NetworkProblem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.problems[p.ID] = p
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*model.NetworkProblem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.problems[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *Memory) Active(_ context.Context) ([]model.NetworkProblem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var active []model.NetworkProblem
	for _, p := range m.problems {
		if p.Active() {
			active = append(active, p)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active, nil
}

func (m *Memory) Resolve(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.problems[id]
	if !ok || !p.Active() {
		return nil
	}
	t := at
	p.ResolvedAt = &t
	m.problems[id] = p
	return nil
}

func (m *Memory) ResolveMissing(_ context.Context, keep []string, at time.Time) error {
	keepSet := make(map[string]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.problems {
		if !p.Active() || keepSet[id] {
			continue
		}
		t := at
		p.ResolvedAt = &t
		m.problems[id] = p
	}
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.problems = make(map[string]model.NetworkProblem)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
