package queue

import "github.com/spec-kit/support-console/internal/domain"

// Selection is the subset of a ranked view chosen for a bulk action.
type Selection struct {
	// IDs are the selected ticket ids present in the view, in rank order.
	IDs []int64
	// Skipped are requested ids that are not part of the view.
	Skipped []int64
}

// Select restricts ids to tickets present in ranked. It never adds tickets
// that were not requested.
func Select(ranked []domain.Ticket, ids []int64) Selection {
	requested := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}
	var sel Selection
	inView := make(map[int64]struct{}, len(ranked))
	for _, t := range ranked {
		inView[t.ID] = struct{}{}
		if _, ok := requested[t.ID]; ok {
			sel.IDs = append(sel.IDs, t.ID)
		}
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := inView[id]; !ok {
			sel.Skipped = append(sel.Skipped, id)
		}
	}
	return sel
}
