package lifecycle

import (
	"sort"

	"github.com/spec-kit/support-console/internal/domain"
)

// MergeInto absorbs source into the ticket it is applied to. Both tickets
// must belong to the same end user. Messages and internal notes of both are
// interleaved chronologically; the caller removes source from the store.
func MergeInto(source *domain.Ticket) Mutation {
	return func(target *domain.Ticket, env Env) (bool, error) {
		if source == nil {
			return false, ErrTargetRequired
		}
		if source.ID == target.ID {
			return false, ErrMergeSelf
		}
		if source.OdID == "" || source.OdID != target.OdID {
			return false, ErrMergeDifferentUser
		}

		messages := make([]domain.Message, 0, len(target.Messages)+len(source.Messages))
		messages = append(messages, target.Messages...)
		messages = append(messages, source.Clone().Messages...)
		sort.SliceStable(messages, func(i, j int) bool {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		})
		target.Messages = messages

		notes := make([]domain.InternalNote, 0, len(target.InternalNotes)+len(source.InternalNotes))
		notes = append(notes, target.InternalNotes...)
		notes = append(notes, source.InternalNotes...)
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].CreatedAt.Before(notes[j].CreatedAt)
		})
		target.InternalNotes = notes

		if !containsID(target.MergedFrom, source.ID) {
			target.MergedFrom = append(target.MergedFrom, source.ID)
		}
		record(target, env, domain.HistoryEntry{Kind: domain.HistoryMerged, From: []int64{source.ID}})
		return true, nil
	}
}

// Merge validates and builds the surviving ticket of merging source into
// target. Neither input is modified.
func (e *Engine) Merge(source, target *domain.Ticket, actor string) (*domain.Ticket, error) {
	if target == nil {
		return nil, ErrTargetRequired
	}
	merged, _, err := e.Apply(target, actor, MergeInto(source))
	if err != nil {
		return nil, err
	}
	return merged, nil
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
