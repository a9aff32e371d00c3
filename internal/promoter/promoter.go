// Package promoter upgrades a passive, already rendered selection straight into
// a staged creator item without entering creation mode first.
package promoter

import (
	"slices"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/starford/vellum/internal/action"
	"github.com/starford/vellum/internal/geometry"
	"github.com/starford/vellum/internal/selection"
)

// State is the promoter slice.
type State struct {
	IsPromoting bool
	Selection   *selection.Item
}

// SetSelection records a selection made while promoting. A nil Arg clears it.
type SetSelection struct {
	Arg *selection.Arg
}

// Type implements action.Action.
func (SetSelection) Type() string { return "promoter/setSelection" }

// Reduce applies a to s.
func Reduce(s State, a action.Action) State {
	switch a := a.(type) {
	case action.SetIsPromoting:
		s.IsPromoting = a.IsPromoting
		if a.IsPromoting {
			s.Selection = nil
		}
	case SetSelection:
		if a.Arg == nil {
			s.Selection = nil
			return s
		}
		s.Selection = createSelection(*a.Arg)
	case action.CreateAnnotationFulfilled, action.ResetCreator:
		s.IsPromoting = false
	}
	return s
}

func createSelection(arg selection.Arg) *selection.Item {
	item := selection.CreateSelection(arg)
	item.Rects = CombineRectsByRow(item.Rects)
	return item
}

// CombineRectsByRow merges shapes whose vertical extents overlap into one
// shape per visual row. Rows that only touch stay separate. Output follows
// the order in which each row first appears.
func CombineRectsByRow(shapes []geometry.Shape) []geometry.Shape {
	var rows []r2.Rect
	for _, s := range shapes {
		rect := toRect(s)
		i := slices.IndexFunc(rows, func(r r2.Rect) bool { return r.Y.InteriorIntersects(rect.Y) })
		if i < 0 {
			rows = append(rows, rect)
			continue
		}
		rows[i] = rows[i].Union(rect)
		// A grown row can now overlap rows that were apart before.
		for j := 0; j < len(rows); {
			if j == i || !rows[i].Y.InteriorIntersects(rows[j].Y) {
				j++
				continue
			}
			rows[i] = rows[i].Union(rows[j])
			rows = slices.Delete(rows, j, j+1)
			if j < i {
				i--
			}
			j = 0
		}
	}

	out := make([]geometry.Shape, len(rows))
	for i, r := range rows {
		out[i] = geometry.Shape{X: r.X.Lo, Y: r.Y.Lo, Width: r.X.Length(), Height: r.Y.Length()}
	}
	return out
}

func toRect(s geometry.Shape) r2.Rect {
	return r2.Rect{
		X: r1.Interval{Lo: s.X, Hi: s.X + s.Width},
		Y: r1.Interval{Lo: s.Y, Hi: s.Y + s.Height},
	}
}

// GetIsPromoting reports whether promotion mode is on.
func GetIsPromoting(s State) bool {
	return s.IsPromoting
}

// GetPromotedSelection returns the row-merged selection, if any.
func GetPromotedSelection(s State) *selection.Item {
	return s.Selection
}
