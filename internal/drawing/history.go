// Package drawing holds the undo/redo buffer used while a drawing annotation is
// being composed.
package drawing

import (
	"math"

	"github.com/starford/vellum/internal/geometry"
)

// Stroke is one continuous pen stroke with its cached bounds.
type Stroke struct {
	Path []geometry.Point `json:"path"`
	MinX float64          `json:"min_x"`
	MinY float64          `json:"min_y"`
	MaxX float64          `json:"max_x"`
	MaxY float64          `json:"max_y"`
}

// NewStroke builds a stroke and computes its bounds from path.
func NewStroke(path []geometry.Point) Stroke {
	s := Stroke{Path: path}
	s.UpdateBounds()
	return s
}

// UpdateBounds recomputes MinX..MaxY after Path has been changed in place.
func (s *Stroke) UpdateBounds() {
	s.MinX, s.MinY = math.Inf(1), math.Inf(1)
	s.MaxX, s.MaxY = math.Inf(-1), math.Inf(-1)
	for _, p := range s.Path {
		s.MinX = math.Min(s.MinX, p.X)
		s.MinY = math.Min(s.MinY, p.Y)
		s.MaxX = math.Max(s.MaxX, p.X)
		s.MaxY = math.Max(s.MaxY, p.Y)
	}
}

// Counts reports the depth of each stack.
type Counts struct {
	UndoCount int `json:"undo_count"`
	RedoCount int `json:"redo_count"`
}

// Box is the aggregate bounding box of every visible stroke.
type Box struct {
	MinX  float64            `json:"min_x"`
	MaxX  float64            `json:"max_x"`
	MinY  float64            `json:"min_y"`
	MaxY  float64            `json:"max_y"`
	Paths [][]geometry.Point `json:"paths"`
}

// Shape converts the box into a rectangle. An empty box yields the zero shape.
func (b Box) Shape() geometry.Shape {
	if len(b.Paths) == 0 {
		return geometry.Shape{}
	}
	return geometry.Shape{X: b.MinX, Y: b.MinY, Width: b.MaxX - b.MinX, Height: b.MaxY - b.MinY}
}

// History is a linear undo/redo stack of strokes. Inserting a stroke discards
// any redo history. The zero value is ready to use; it is not safe for
// concurrent use.
type History struct {
	undoStack []Stroke
	redoStack []Stroke
}

// NewHistory returns an empty buffer.
func NewHistory() *History {
	return &History{}
}

// Insert records a new stroke and clears the redo stack.
func (h *History) Insert(s Stroke) {
	h.undoStack = append(h.undoStack, s)
	h.redoStack = nil
}

// Undo moves the newest stroke to the redo stack. It returns false when there
// is nothing to undo.
func (h *History) Undo() bool {
	n := len(h.undoStack)
	if n == 0 {
		return false
	}
	s := h.undoStack[n-1]
	h.undoStack = h.undoStack[:n-1]
	h.redoStack = append(h.redoStack, s)
	return true
}

// Redo reverses the most recent Undo. It returns false when there is nothing
// to redo.
func (h *History) Redo() bool {
	n := len(h.redoStack)
	if n == 0 {
		return false
	}
	s := h.redoStack[n-1]
	h.redoStack = h.redoStack[:n-1]
	h.undoStack = append(h.undoStack, s)
	return true
}

// NumberOfItems returns the depth of both stacks.
func (h *History) NumberOfItems() Counts {
	return Counts{UndoCount: len(h.undoStack), RedoCount: len(h.redoStack)}
}

// Items returns the visible strokes, oldest first. Redo entries are never
// included.
func (h *History) Items() []Stroke {
	out := make([]Stroke, len(h.undoStack))
	copy(out, h.undoStack)
	return out
}

// ApplyToItems calls fn on every visible stroke, and on every redo stroke too
// when includeRedo is set.
func (h *History) ApplyToItems(fn func(*Stroke), includeRedo bool) {
	for i := range h.undoStack {
		fn(&h.undoStack[i])
	}
	if !includeRedo {
		return
	}
	for i := range h.redoStack {
		fn(&h.redoStack[i])
	}
}

// AxisAlignedBoundingBox folds the bounds of every visible stroke. With no
// strokes the box is inverted (+Inf minima, -Inf maxima).
func (h *History) AxisAlignedBoundingBox() Box {
	box := Box{
		MinX:  math.Inf(1),
		MaxX:  math.Inf(-1),
		MinY:  math.Inf(1),
		MaxY:  math.Inf(-1),
		Paths: [][]geometry.Point{},
	}
	for _, s := range h.undoStack {
		box.MinX = math.Min(box.MinX, s.MinX)
		box.MinY = math.Min(box.MinY, s.MinY)
		box.MaxX = math.Max(box.MaxX, s.MaxX)
		box.MaxY = math.Max(box.MaxY, s.MaxY)
		box.Paths = append(box.Paths, s.Path)
	}
	return box
}

// IsEmpty reports whether there are no visible strokes.
func (h *History) IsEmpty() bool {
	return len(h.undoStack) == 0
}

// Destroy drops both stacks. Calling it more than once is harmless.
func (h *History) Destroy() {
	h.undoStack = nil
	h.redoStack = nil
}

// SVGPaths serializes every visible stroke.
func (h *History) SVGPaths() []string {
	out := make([]string, 0, len(h.undoStack))
	for _, s := range h.undoStack {
		out = append(out, PathToSVG(s.Path))
	}
	return out
}
