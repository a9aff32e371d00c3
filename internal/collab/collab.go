// Package collab holds the collaborators of the current file.
package collab

import (
	"github.com/starford/vellum/internal/action"
	"github.com/starford/vellum/internal/models"
)

// State is the collaborators slice.
type State struct {
	Collaborators []models.Collaborator
	IsLoading     bool
}

// InitialState returns an empty, idle slice.
func InitialState() State {
	return State{Collaborators: []models.Collaborator{}}
}

// Reduce applies a to s. A failed fetch empties the collection rather than
// keeping stale entries.
func Reduce(s State, a action.Action) State {
	switch a := a.(type) {
	case action.FetchCollaboratorsPending:
		s.IsLoading = true
	case action.FetchCollaboratorsFulfilled:
		entries := make([]models.Collaborator, len(a.Entries))
		copy(entries, a.Entries)
		return State{Collaborators: entries}
	case action.FetchCollaboratorsRejected:
		return InitialState()
	}
	return s
}

// GetCollaborators returns the loaded collaborators.
func GetCollaborators(s State) []models.Collaborator {
	return s.Collaborators
}
