// Package annotation is the normalized, id-keyed store of persisted
// annotations. Every update returns a new State; maps and slices held by a
// previous State are never written to.
package annotation

import (
	"github.com/starford/vellum/internal/action"
	"github.com/starford/vellum/internal/models"
)

// State is the annotations slice.
type State struct {
	ActiveID      string
	AllIDs        []string
	ByID          map[string]models.Annotation
	IsInitialized bool
}

// InitialState returns an empty store.
func InitialState() State {
	return State{AllIDs: []string{}, ByID: map[string]models.Annotation{}}
}

// SetActiveAnnotationID selects an annotation. The id is not checked; an
// empty id clears the selection.
type SetActiveAnnotationID struct {
	ID string
}

// Type implements action.Action.
func (SetActiveAnnotationID) Type() string { return "annotations/setActiveAnnotationId" }

// Reduce applies a to s.
func Reduce(s State, a action.Action) State {
	switch a := a.(type) {
	case action.CreateAnnotationFulfilled:
		return s.merge([]models.Annotation{a.Annotation})
	case action.FetchAnnotationsFulfilled:
		next := s.merge(a.Page.Entries)
		next.IsInitialized = true
		return next
	case action.RemoveAnnotation:
		return s.remove(a.ID)
	case SetActiveAnnotationID:
		s.ActiveID = a.ID
	}
	return s
}

// merge inserts entries, keeping the first-seen order and letting later
// content win.
func (s State) merge(entries []models.Annotation) State {
	byID := make(map[string]models.Annotation, len(s.ByID)+len(entries))
	for id, a := range s.ByID {
		byID[id] = a
	}
	allIDs := make([]string, len(s.AllIDs), len(s.AllIDs)+len(entries))
	copy(allIDs, s.AllIDs)

	for _, a := range entries {
		if a.Type == models.TypeDrawing {
			a = FormatDrawing(a)
		}
		if indexOf(allIDs, a.ID) < 0 {
			allIDs = append(allIDs, a.ID)
		}
		byID[a.ID] = a
	}

	s.ByID = byID
	s.AllIDs = allIDs
	return s
}

func (s State) remove(id string) State {
	byID := make(map[string]models.Annotation, len(s.ByID))
	for k, a := range s.ByID {
		if k != id {
			byID[k] = a
		}
	}
	allIDs := make([]string, 0, len(s.AllIDs))
	for _, k := range s.AllIDs {
		if k != id {
			allIDs = append(allIDs, k)
		}
	}
	s.ByID = byID
	s.AllIDs = allIDs
	if s.ActiveID == id {
		s.ActiveID = ""
	}
	return s
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
