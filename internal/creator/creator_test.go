package creator

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/vellum/internal/action"
	"github.com/starford/vellum/internal/drawing"
	"github.com/starford/vellum/internal/geometry"
	"github.com/starford/vellum/internal/models"
	"github.com/starford/vellum/internal/selection"
)

func regionItem(page int) *Item {
	return &Item{
		Location:   models.Page(page),
		Shape:      geometry.Shape{X: 10, Y: 10, Width: 100, Height: 100},
		TargetType: models.TypeRegion,
	}
}

func TestCreatorLifecycle(t *testing.T) {
	s := InitialState()

	s = Reduce(s, SetStaged{Item: regionItem(1)})
	if diff := cmp.Diff(regionItem(1), s.Staged); diff != "" {
		t.Errorf("staged (-want +got):\n%s", diff)
	}
	if s.Status != StatusInit {
		t.Errorf("SetStaged changed status to %q", s.Status)
	}

	s = Reduce(s, action.CreateAnnotationPending{})
	if s.Status != StatusPending || s.Error != nil {
		t.Errorf("pending: status=%q error=%v", s.Status, s.Error)
	}

	s = Reduce(s, action.CreateAnnotationFulfilled{})
	if s.Status != StatusInit || s.Staged != nil || s.Error != nil {
		t.Errorf("fulfilled: %+v", s)
	}
}

func TestRejectionRetainsStaged(t *testing.T) {
	s := InitialState()
	s = Reduce(s, SetStaged{Item: regionItem(1)})
	s = Reduce(s, SetStatus{Status: StatusPending})
	before := s.Staged

	errInfo := models.SerializeError(errors.New("boom"))
	s = Reduce(s, action.CreateAnnotationRejected{Error: errInfo})

	if s.Status != StatusRejected {
		t.Errorf("status = %q, want rejected", s.Status)
	}
	if s.Error != errInfo {
		t.Errorf("error = %+v, want the dispatched error", s.Error)
	}
	if diff := cmp.Diff(before, s.Staged); diff != "" {
		t.Errorf("staged changed (-want +got):\n%s", diff)
	}

	// Retry clears the error.
	s = Reduce(s, action.CreateAnnotationPending{})
	if s.Error != nil || s.Staged == nil {
		t.Errorf("retry: %+v", s)
	}
}

func TestUpdateStaged(t *testing.T) {
	s := Reduce(InitialState(), UpdateStaged{Patch: Patch{Shape: &geometry.Shape{X: 1}}})
	if s.Staged != nil {
		t.Fatal("update with nothing staged should be a no-op")
	}

	s = Reduce(s, SetStaged{Item: regionItem(1)})
	original := s.Staged

	shape := geometry.Shape{X: 20, Y: 30, Width: 5, Height: 6}
	s = Reduce(s, UpdateStaged{Patch: Patch{Shape: &shape}})
	if diff := cmp.Diff(shape, s.Staged.Shape); diff != "" {
		t.Errorf("shape (-want +got):\n%s", diff)
	}
	if s.Staged.Location != models.Page(1) || s.Staged.TargetType != models.TypeRegion {
		t.Errorf("merge clobbered other fields: %+v", s.Staged)
	}
	if original.Shape.X != 10 {
		t.Error("update mutated the previous staged value")
	}
}

func TestUpdateStagedWhilePending(t *testing.T) {
	s := Reduce(InitialState(), SetStaged{Item: regionItem(1)})
	s = Reduce(s, action.CreateAnnotationPending{})
	loc := models.Page(3)
	s = Reduce(s, UpdateStaged{Patch: Patch{Location: &loc}})
	if s.Status != StatusPending || s.Staged.Location != loc {
		t.Errorf("state = %+v", s)
	}
}

func TestAuxiliaryFields(t *testing.T) {
	s := Reduce(InitialState(), SetCursor{Cursor: 7})
	s = Reduce(s, SetMessage{Message: "hello"})
	if GetCreatorCursor(s) != 7 || GetCreatorMessage(s) != "hello" || GetCreatorStatus(s) != StatusInit {
		t.Errorf("state = %+v", s)
	}

	s = Reduce(s, action.ResetCreator{})
	if diff := cmp.Diff(InitialState(), s); diff != "" {
		t.Errorf("reset (-want +got):\n%s", diff)
	}
}

func TestGetCreatorStagedForLocation(t *testing.T) {
	s := Reduce(InitialState(), SetStaged{Item: regionItem(1)})
	if GetCreatorStagedForLocation(s, models.Page(2)) != nil {
		t.Error("page 2 should not see the page 1 item")
	}
	if GetCreatorStagedForLocation(s, models.Frame(1)) != nil {
		t.Error("frame 1 should not see the page 1 item")
	}
	if GetCreatorStagedForLocation(s, models.Page(1)) == nil {
		t.Error("page 1 should see its item")
	}
	if GetCreatorStagedForLocation(InitialState(), models.Page(1)) != nil {
		t.Error("nothing staged should yield nil")
	}
}

func TestStagedTypeSelectors(t *testing.T) {
	s := Reduce(InitialState(), SetStaged{Item: regionItem(1)})
	if !IsCreatorStagedRegion(s) || IsCreatorStagedDrawing(s) {
		t.Error("region selectors wrong")
	}
	h := drawing.NewHistory()
	h.Insert(drawing.NewStroke([]geometry.Point{{X: 1, Y: 1}, {X: 5, Y: 9}}))
	s = Reduce(s, SetStaged{Item: ItemFromDrawing(models.Page(1), h)})
	if IsCreatorStagedRegion(s) || !IsCreatorStagedDrawing(s) {
		t.Error("drawing selectors wrong")
	}
}

func TestItemFromDrawing(t *testing.T) {
	h := drawing.NewHistory()
	h.Insert(drawing.NewStroke([]geometry.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}))
	h.Insert(drawing.NewStroke([]geometry.Point{{X: 0, Y: 10}}))

	item := ItemFromDrawing(models.Page(2), h)
	want := geometry.Shape{X: 0, Y: 2, Width: 3, Height: 8}
	if diff := cmp.Diff(want, item.Shape); diff != "" {
		t.Errorf("shape (-want +got):\n%s", diff)
	}
	if len(item.Shapes) != 2 || !item.Shapes[0].IsPath() {
		t.Errorf("shapes = %+v", item.Shapes)
	}

	payload := item.Payload("v1", "note")
	if payload.Type != models.TypeDrawing || len(payload.Target.PathGroups) != 1 || len(payload.Target.PathGroups[0].Paths) != 2 {
		t.Errorf("payload = %+v", payload)
	}
	if err := payload.Validate(); err != nil {
		t.Errorf("payload should validate: %v", err)
	}
}

func TestItemFromSelection(t *testing.T) {
	sel := selection.CreateSelection(selection.Arg{
		Location: models.Page(4),
		Range: selection.StaticRange{
			Bounding: geometry.Rect{Left: 10, Top: 10, Width: 50, Height: 10},
			Rects:    []geometry.Rect{{Left: 10, Top: 10, Width: 50, Height: 10}},
		},
		ContainerRect: geometry.Rect{Width: 100, Height: 100},
	})
	item := ItemFromSelection(sel)
	if item.TargetType != models.TypeHighlight || item.Location != models.Page(4) {
		t.Errorf("item = %+v", item)
	}
	if diff := cmp.Diff([]geometry.Shape{{X: 10, Y: 10, Width: 50, Height: 10}}, item.Shapes); diff != "" {
		t.Errorf("shapes (-want +got):\n%s", diff)
	}

	payload := item.Payload("v1", "")
	if payload.Description != nil || len(payload.Target.Shapes) != 1 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestRegionPayload(t *testing.T) {
	payload := regionItem(1).Payload("v9", "look here")
	if payload.Target.Shape == nil || payload.Target.Shape.Width != 100 {
		t.Errorf("shape = %+v", payload.Target.Shape)
	}
	if payload.Description == nil || payload.Description.Message != "look here" {
		t.Errorf("description = %+v", payload.Description)
	}
	if err := payload.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}
