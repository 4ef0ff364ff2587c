package domain

import "sort"

// IsProvisional reports whether the ticket was opened in the console and has
// no backend id yet. Provisional ids are negative so they can never collide
// with an id the backend assigns.
func (t *Ticket) IsProvisional() bool {
	return t.ID < 0
}

// LocalFacts are additive ticket changes the backend has not recorded.
// Entries are matched by id, or by value for plain lists.
type LocalFacts struct {
	MergedFrom    []int64
	Collaborators []string
	Tags          []string
	Messages      []Message
	InternalNotes []InternalNote
	History       []HistoryEntry
}

// Additions returns what after carries that before does not. A nil before
// yields everything on after.
func Additions(before, after *Ticket) LocalFacts {
	if after == nil {
		return LocalFacts{}
	}
	if before == nil {
		before = &Ticket{}
	}
	var f LocalFacts
	for _, id := range after.MergedFrom {
		if !containsInt64(before.MergedFrom, id) {
			f.MergedFrom = append(f.MergedFrom, id)
		}
	}
	for _, agent := range after.Collaborators {
		if !containsString(before.Collaborators, agent) {
			f.Collaborators = append(f.Collaborators, agent)
		}
	}
	for _, tag := range after.Tags {
		if !containsString(before.Tags, tag) {
			f.Tags = append(f.Tags, tag)
		}
	}
	for _, m := range after.Messages {
		if !hasMessage(before.Messages, m.ID) {
			f.Messages = append(f.Messages, m.clone())
		}
	}
	for _, n := range after.InternalNotes {
		if !hasNote(before.InternalNotes, n.ID) {
			f.InternalNotes = append(f.InternalNotes, n)
		}
	}
	for _, h := range after.History {
		if !hasHistory(before.History, h.ID) {
			h.From = append([]int64(nil), h.From...)
			f.History = append(f.History, h)
		}
	}
	return f
}

// Empty reports whether there is nothing to carry.
func (f LocalFacts) Empty() bool {
	return len(f.MergedFrom) == 0 && len(f.Collaborators) == 0 && len(f.Tags) == 0 &&
		len(f.Messages) == 0 && len(f.InternalNotes) == 0 && len(f.History) == 0
}

// Union returns f extended with the entries of other it does not have yet.
func (f LocalFacts) Union(other LocalFacts) LocalFacts {
	t := &Ticket{}
	f.ApplyTo(t)
	other.ApplyTo(t)
	return Additions(nil, t)
}

// Within drops the facts that are no longer on t, such as a tag removed
// after it was added locally.
func (f LocalFacts) Within(t *Ticket) LocalFacts {
	var out LocalFacts
	for _, id := range f.MergedFrom {
		if containsInt64(t.MergedFrom, id) {
			out.MergedFrom = append(out.MergedFrom, id)
		}
	}
	for _, agent := range f.Collaborators {
		if t.HasCollaborator(agent) {
			out.Collaborators = append(out.Collaborators, agent)
		}
	}
	for _, tag := range f.Tags {
		if t.HasTag(tag) {
			out.Tags = append(out.Tags, tag)
		}
	}
	for _, m := range f.Messages {
		if hasMessage(t.Messages, m.ID) {
			out.Messages = append(out.Messages, m)
		}
	}
	for _, n := range f.InternalNotes {
		if hasNote(t.InternalNotes, n.ID) {
			out.InternalNotes = append(out.InternalNotes, n)
		}
	}
	for _, h := range f.History {
		if hasHistory(t.History, h.ID) {
			out.History = append(out.History, h)
		}
	}
	return out
}

// ApplyTo adds the missing facts to t. Messages, notes and history stay in
// chronological order.
func (f LocalFacts) ApplyTo(t *Ticket) {
	for _, id := range f.MergedFrom {
		if !containsInt64(t.MergedFrom, id) {
			t.MergedFrom = append(t.MergedFrom, id)
		}
	}
	for _, agent := range f.Collaborators {
		if !t.HasCollaborator(agent) {
			t.Collaborators = append(t.Collaborators, agent)
		}
	}
	for _, tag := range f.Tags {
		if !t.HasTag(tag) {
			t.Tags = append(t.Tags, tag)
		}
	}

	added := false
	for _, m := range f.Messages {
		if !hasMessage(t.Messages, m.ID) {
			t.Messages = append(t.Messages, m.clone())
			added = true
		}
	}
	if added {
		sort.SliceStable(t.Messages, func(i, j int) bool {
			return t.Messages[i].CreatedAt.Before(t.Messages[j].CreatedAt)
		})
	}

	added = false
	for _, n := range f.InternalNotes {
		if !hasNote(t.InternalNotes, n.ID) {
			t.InternalNotes = append(t.InternalNotes, n)
			added = true
		}
	}
	if added {
		sort.SliceStable(t.InternalNotes, func(i, j int) bool {
			return t.InternalNotes[i].CreatedAt.Before(t.InternalNotes[j].CreatedAt)
		})
	}

	added = false
	for _, h := range f.History {
		if !hasHistory(t.History, h.ID) {
			h.From = append([]int64(nil), h.From...)
			t.History = append(t.History, h)
			added = true
		}
	}
	if added {
		sort.SliceStable(t.History, func(i, j int) bool {
			return t.History[i].At.Before(t.History[j].At)
		})
	}
}

func containsInt64(values []int64, v int64) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func hasMessage(messages []Message, id string) bool {
	for _, m := range messages {
		if m.ID == id {
			return true
		}
	}
	return false
}

func hasNote(notes []InternalNote, id string) bool {
	for _, n := range notes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func hasHistory(history []HistoryEntry, id string) bool {
	for _, h := range history {
		if h.ID == id {
			return true
		}
	}
	return false
}
