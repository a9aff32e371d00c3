// Package selection captures a raw text or pointer selection and keeps the one
// live SelectionItem.
package selection

import (
	"github.com/starford/vellum/internal/action"
	"github.com/starford/vellum/internal/geometry"
	"github.com/starford/vellum/internal/models"
)

// Range is the part of a DOM Range the tracker reads.
type Range interface {
	BoundingClientRect() geometry.Rect
	ClientRects() []geometry.Rect
}

// StaticRange is a Range backed by fixed rectangles.
type StaticRange struct {
	Bounding geometry.Rect
	Rects    []geometry.Rect
}

// BoundingClientRect implements Range.
func (r StaticRange) BoundingClientRect() geometry.Rect { return r.Bounding }

// ClientRects implements Range.
func (r StaticRange) ClientRects() []geometry.Rect { return r.Rects }

// Arg is the input to CreateSelection.
type Arg struct {
	Location      models.Location
	Range         Range
	ContainerRect geometry.Rect
}

// Item is a normalized selection. Rects holds one shape per raw client rect.
type Item struct {
	Location      models.Location  `json:"location"`
	BoundingRect  geometry.Shape   `json:"bounding_rect"`
	Rects         []geometry.Shape `json:"rects"`
	ContainerRect geometry.Shape   `json:"container_rect"`
}

// CreateSelection reads the range geometry into an Item.
func CreateSelection(arg Arg) *Item {
	raw := arg.Range.ClientRects()
	rects := make([]geometry.Shape, len(raw))
	for i, r := range raw {
		rects[i] = geometry.ShapeFromRect(r)
	}
	return &Item{
		Location:      arg.Location,
		BoundingRect:  geometry.ShapeFromRect(arg.Range.BoundingClientRect()),
		Rects:         rects,
		ContainerRect: geometry.ShapeFromRect(arg.ContainerRect),
	}
}

// Relative returns the bounding rect and rects as percentages of the
// container, the form annotations are stored in.
func (i *Item) Relative() (geometry.Shape, []geometry.Shape) {
	rects := make([]geometry.Shape, len(i.Rects))
	for n, r := range i.Rects {
		rects[n] = geometry.RelativeShape(r, i.ContainerRect)
	}
	return geometry.RelativeShape(i.BoundingRect, i.ContainerRect), rects
}

// State holds the live selection, if any.
type State struct {
	Selection *Item
}

// SetSelection replaces the live selection. A nil Arg clears it.
type SetSelection struct {
	Arg *Arg
}

// Type implements action.Action.
func (SetSelection) Type() string { return "selection/setSelection" }

// Reduce applies a to s.
func Reduce(s State, a action.Action) State {
	switch a := a.(type) {
	case SetSelection:
		if a.Arg == nil {
			return State{}
		}
		return State{Selection: CreateSelection(*a.Arg)}
	case action.CreateAnnotationFulfilled, action.ResetCreator:
		return State{}
	case action.SetIsPromoting:
		if a.IsPromoting {
			return State{}
		}
	}
	return s
}

// GetSelectionForLocation returns the live selection when it belongs to loc.
func GetSelectionForLocation(s State, loc models.Location) *Item {
	if s.Selection == nil || s.Selection.Location != loc {
		return nil
	}
	return s.Selection
}
