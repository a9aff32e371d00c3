package selection

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/vellum/internal/action"
	"github.com/starford/vellum/internal/geometry"
	"github.com/starford/vellum/internal/models"
)

func testRange() StaticRange {
	return StaticRange{
		Bounding: geometry.Rect{Left: 100, Top: 100, Width: 200, Height: 40},
		Rects: []geometry.Rect{
			{Left: 100, Top: 100, Width: 50, Height: 20},
			{Left: 150, Top: 100, Width: 50, Height: 20},
			{Left: 100, Top: 120, Width: 200, Height: 20},
		},
	}
}

func TestCreateSelectionKeepsRawRects(t *testing.T) {
	item := CreateSelection(Arg{
		Location:      models.Page(1),
		Range:         testRange(),
		ContainerRect: geometry.Rect{Left: 0, Top: 0, Width: 1000, Height: 1000},
	})

	if len(item.Rects) != 3 {
		t.Fatalf("rects = %d, want 3 (no row merging)", len(item.Rects))
	}
	want := geometry.Shape{X: 150, Y: 100, Width: 50, Height: 20}
	if diff := cmp.Diff(want, item.Rects[1]); diff != "" {
		t.Errorf("rect[1] (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geometry.Shape{X: 100, Y: 100, Width: 200, Height: 40}, item.BoundingRect); diff != "" {
		t.Errorf("bounding (-want +got):\n%s", diff)
	}
}

func TestRelative(t *testing.T) {
	item := CreateSelection(Arg{
		Location:      models.Page(1),
		Range:         testRange(),
		ContainerRect: geometry.Rect{Left: 100, Top: 100, Width: 400, Height: 200},
	})
	bounding, rects := item.Relative()
	if diff := cmp.Diff(geometry.Shape{X: 0, Y: 0, Width: 50, Height: 20}, bounding); diff != "" {
		t.Errorf("bounding (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geometry.Shape{X: 12.5, Y: 0, Width: 12.5, Height: 10}, rects[1]); diff != "" {
		t.Errorf("rect[1] (-want +got):\n%s", diff)
	}
}

func TestReduceReplacesAndClears(t *testing.T) {
	var s State
	s = Reduce(s, SetSelection{Arg: &Arg{Location: models.Page(1), Range: testRange()}})
	if s.Selection == nil || s.Selection.Location != models.Page(1) {
		t.Fatalf("selection = %+v", s.Selection)
	}

	s = Reduce(s, SetSelection{Arg: &Arg{Location: models.Page(2), Range: StaticRange{}}})
	if s.Selection.Location != models.Page(2) || len(s.Selection.Rects) != 0 {
		t.Errorf("new selection should replace old, got %+v", s.Selection)
	}

	s = Reduce(s, SetSelection{})
	if s.Selection != nil {
		t.Error("nil arg should clear")
	}
}

func TestReduceClearsOnTerminalActions(t *testing.T) {
	arg := &Arg{Location: models.Page(1), Range: testRange()}
	for _, a := range []action.Action{
		action.CreateAnnotationFulfilled{},
		action.ResetCreator{},
		action.SetIsPromoting{IsPromoting: true},
	} {
		s := Reduce(State{}, SetSelection{Arg: arg})
		if s = Reduce(s, a); s.Selection != nil {
			t.Errorf("%s should clear the selection", a.Type())
		}
	}

	s := Reduce(State{}, SetSelection{Arg: arg})
	if s = Reduce(s, action.SetIsPromoting{IsPromoting: false}); s.Selection == nil {
		t.Error("leaving promotion mode should keep the selection")
	}
}

func TestGetSelectionForLocation(t *testing.T) {
	s := Reduce(State{}, SetSelection{Arg: &Arg{Location: models.Page(1), Range: testRange()}})
	if GetSelectionForLocation(s, models.Page(1)) == nil {
		t.Error("same location should return the selection")
	}
	if GetSelectionForLocation(s, models.Page(2)) != nil {
		t.Error("other page should return nil")
	}
	if GetSelectionForLocation(s, models.Frame(1)) != nil {
		t.Error("frame 1 must not match page 1")
	}
}
