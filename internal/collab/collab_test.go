package collab

import (
	"testing"

	"github.com/starford/vellum/internal/action"
	"github.com/starford/vellum/internal/models"
)

func TestFetchLifecycle(t *testing.T) {
	s := Reduce(InitialState(), action.FetchCollaboratorsPending{})
	if !s.IsLoading {
		t.Error("pending should set loading")
	}
	s = Reduce(s, action.FetchCollaboratorsFulfilled{Entries: []models.Collaborator{{ID: "1", Name: "Ada", Type: models.CollaboratorUser}}})
	if s.IsLoading || len(GetCollaborators(s)) != 1 {
		t.Errorf("fulfilled state = %+v", s)
	}
}

func TestRejectedResetsToEmpty(t *testing.T) {
	s := Reduce(InitialState(), action.FetchCollaboratorsFulfilled{Entries: []models.Collaborator{{ID: "1"}}})
	s = Reduce(s, action.FetchCollaboratorsRejected{})
	got := GetCollaborators(s)
	if got == nil || len(got) != 0 {
		t.Errorf("collaborators = %#v, want empty", got)
	}
}
