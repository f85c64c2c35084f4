package service

import (
	"context"

	"tradenet/internal/apperr"
	"tradenet/internal/model"
	"tradenet/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HierarchyCalculator derives hierarchy levels from the supplier chain and
// keeps them consistent across reassignments. It never commits anything
// itself: callers run it inside a transaction so validation, the node write,
// and descendant propagation land as one atomic unit.
type HierarchyCalculator struct {
	repo repository.NodeRepository
}

func NewHierarchyCalculator(repo repository.NodeRepository) *HierarchyCalculator {
	return &HierarchyCalculator{repo: repo}
}

// LevelUnder validates candidate as a supplier for nodeID and returns the
// level nodeID would take beneath it. A nil candidate means the node becomes
// a root (level 0).
//
// The cycle check walks candidate's ancestor chain with a visited set:
// if nodeID appears anywhere in that chain the assignment would make the
// node its own transitive supplier. A repeated ancestor means the stored
// chain is already looped; that also aborts rather than walking forever.
func (h *HierarchyCalculator) LevelUnder(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID, candidate *model.Node) (int, error) {
	if candidate == nil {
		return 0, nil
	}
	if candidate.ID == nodeID {
		return 0, apperr.Cycle("a node cannot be its own supplier")
	}

	visited := map[uuid.UUID]struct{}{candidate.ID: {}}
	cur := candidate
	for cur.SupplierID != nil {
		ancestorID := *cur.SupplierID
		if ancestorID == nodeID {
			return 0, apperr.Cycle("assignment would make the node its own transitive supplier")
		}
		if _, seen := visited[ancestorID]; seen {
			return 0, apperr.Cycle("supplier chain already contains a loop")
		}
		visited[ancestorID] = struct{}{}

		ancestor, err := h.repo.FindByID(ctx, tx, ancestorID)
		if err != nil {
			return 0, err
		}
		cur = ancestor
	}

	return candidate.Level + 1, nil
}

// Propagate recomputes the level of every transitive descendant of nodeID
// after its own level changed to nodeLevel. Breadth-first over the
// is-supplied-by relation; returns the new level per descendant (the node
// itself is the caller's to persist). A node seen in two frontiers means the
// stored chain is looped, which aborts instead of walking forever.
func (h *HierarchyCalculator) Propagate(ctx context.Context, tx *gorm.DB, nodeID uuid.UUID, nodeLevel int) (map[uuid.UUID]int, error) {
	levels := make(map[uuid.UUID]int)
	visited := map[uuid.UUID]struct{}{nodeID: {}}
	frontier := []uuid.UUID{nodeID}
	frontierLevel := nodeLevel

	for len(frontier) > 0 {
		clients, err := h.repo.FindClients(ctx, tx, frontier)
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, c := range clients {
			if _, seen := visited[c.ID]; seen {
				return nil, apperr.Cycle("supplier chain already contains a loop")
			}
			visited[c.ID] = struct{}{}
			levels[c.ID] = frontierLevel + 1
			frontier = append(frontier, c.ID)
		}
		frontierLevel++
	}

	return levels, nil
}
