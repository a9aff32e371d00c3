// Package creator is the state machine for an annotation being created:
// staged shape, pending commit, and success or rejection.
package creator

import (
	"github.com/starford/vellum/internal/action"
	"github.com/starford/vellum/internal/drawing"
	"github.com/starford/vellum/internal/geometry"
	"github.com/starford/vellum/internal/models"
	"github.com/starford/vellum/internal/selection"
)

// Status is the creator lifecycle state.
type Status string

// Legal flow: init -> started -> staged -> pending -> init | rejected.
const (
	StatusInit     Status = "init"
	StatusStarted  Status = "started"
	StatusStaged   Status = "staged"
	StatusPending  Status = "pending"
	StatusRejected Status = "rejected"
)

// Item is a staged, not yet persisted annotation.
type Item struct {
	Location   models.Location  `json:"location"`
	Shape      geometry.Shape   `json:"shape"`
	Shapes     []geometry.Shape `json:"shapes,omitempty"`
	TargetType string           `json:"target_type"`
}

// Patch is a partial update for the staged item. Nil fields are left alone.
type Patch struct {
	Location   *models.Location
	Shape      *geometry.Shape
	Shapes     []geometry.Shape
	TargetType *string
}

// State is the creator slice.
type State struct {
	Cursor  int
	Error   *models.ErrorInfo
	Message string
	Staged  *Item
	Status  Status
}

// InitialState returns an idle creator.
func InitialState() State {
	return State{Status: StatusInit}
}

// SetStaged replaces the staged item; nil clears it. Status is untouched.
type SetStaged struct {
	Item *Item
}

// SetStatus forces a status transition.
type SetStatus struct {
	Status Status
}

// UpdateStaged shallow-merges Patch into the staged item.
type UpdateStaged struct {
	Patch Patch
}

// SetCursor records the text-entry cursor position.
type SetCursor struct {
	Cursor int
}

// SetMessage records the draft comment text.
type SetMessage struct {
	Message string
}

func (SetStaged) Type() string    { return "creator/setStaged" }
func (SetStatus) Type() string    { return "creator/setStatus" }
func (UpdateStaged) Type() string { return "creator/updateStaged" }
func (SetCursor) Type() string    { return "creator/setCursor" }
func (SetMessage) Type() string   { return "creator/setMessage" }

// Reduce applies a to s. There are no transition guards; callers only issue
// legal transitions.
func Reduce(s State, a action.Action) State {
	switch a := a.(type) {
	case SetStaged:
		s.Staged = cloneItem(a.Item)
	case SetStatus:
		s.Status = a.Status
	case UpdateStaged:
		if s.Staged == nil {
			return s
		}
		s.Staged = merge(*s.Staged, a.Patch)
	case SetCursor:
		s.Cursor = a.Cursor
	case SetMessage:
		s.Message = a.Message
	case action.ResetCreator:
		return InitialState()
	case action.CreateAnnotationPending:
		s.Status = StatusPending
		s.Error = nil
	case action.CreateAnnotationFulfilled:
		s.Status = StatusInit
		s.Staged = nil
		s.Error = nil
		s.Message = ""
		s.Cursor = 0
	case action.CreateAnnotationRejected:
		s.Status = StatusRejected
		s.Error = a.Error
	}
	return s
}

func merge(item Item, p Patch) *Item {
	if p.Location != nil {
		item.Location = *p.Location
	}
	if p.Shape != nil {
		item.Shape = *p.Shape
	}
	if p.Shapes != nil {
		item.Shapes = p.Shapes
	}
	if p.TargetType != nil {
		item.TargetType = *p.TargetType
	}
	return &item
}

func cloneItem(item *Item) *Item {
	if item == nil {
		return nil
	}
	c := *item
	return &c
}

// ItemFromDrawing stages the visible strokes of h: the shape is their
// bounding box and each stroke becomes a path shape.
func ItemFromDrawing(loc models.Location, h *drawing.History) *Item {
	box := h.AxisAlignedBoundingBox()
	shapes := make([]geometry.Shape, 0, len(box.Paths))
	for _, p := range box.Paths {
		shapes = append(shapes, geometry.Shape{Path: p})
	}
	return &Item{
		Location:   loc,
		Shape:      box.Shape(),
		Shapes:     shapes,
		TargetType: models.TypeDrawing,
	}
}

// ItemFromSelection stages a highlight from a selection, in container-relative
// coordinates.
func ItemFromSelection(sel *selection.Item) *Item {
	bounding, rects := sel.Relative()
	return &Item{
		Location:   sel.Location,
		Shape:      bounding,
		Shapes:     rects,
		TargetType: models.TypeHighlight,
	}
}

// Payload builds the create request for the staged item.
func (i *Item) Payload(fileVersionID, message string) models.NewAnnotation {
	target := models.Target{Location: i.Location, Type: i.TargetType}
	switch i.TargetType {
	case models.TypeHighlight:
		target.Shapes = i.Shapes
	case models.TypeDrawing:
		group := models.PathGroup{Stroke: models.Stroke{Color: "#000000", Size: 4}}
		for _, s := range i.Shapes {
			group.Paths = append(group.Paths, models.DrawingPath{Points: s.Path})
		}
		target.PathGroups = []models.PathGroup{group}
	default:
		shape := i.Shape
		target.Shape = &shape
	}
	payload := models.NewAnnotation{
		Type:        i.TargetType,
		Target:      target,
		FileVersion: models.FileVersion{ID: fileVersionID},
	}
	if message != "" {
		payload.Description = &models.Description{Message: message}
	}
	return payload
}
