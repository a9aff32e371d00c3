// Package models defines the domain types shared by the annotation core and the
// annotation service.
package models

import (
	"time"

	"github.com/starford/vellum/internal/geometry"
)

// LocationType discriminates between paged and continuous content.
type LocationType string

// Location kinds.
const (
	LocationPage  LocationType = "page"
	LocationFrame LocationType = "frame"
)

// Location identifies where on a document an annotation lives. Two locations
// match only when both the kind and the value are equal.
type Location struct {
	Type  LocationType `json:"type"`
	Value int          `json:"value"`
}

// Page returns a page location.
func Page(n int) Location {
	return Location{Type: LocationPage, Value: n}
}

// Frame returns a frame/time location.
func Frame(n int) Location {
	return Location{Type: LocationFrame, Value: n}
}

// Annotation types.
const (
	TypeRegion    = "region"
	TypeHighlight = "highlight"
	TypeDrawing   = "drawing"
	TypePoint     = "point"
)

// Stroke styles a drawing path group.
type Stroke struct {
	Color string  `json:"color"`
	Size  float64 `json:"size"`
}

// DrawingPath is one stroke inside a path group.
type DrawingPath struct {
	Points []geometry.Point `json:"points"`
}

// PathGroup is the raw drawing payload: strokes sharing one style.
type PathGroup struct {
	Paths  []DrawingPath `json:"paths"`
	Stroke Stroke        `json:"stroke"`
}

// Target says where an annotation applies and what it covers. Region targets
// carry Shape, highlights carry Shapes, and drawings carry PathGroups until
// they are formatted into Shapes.
type Target struct {
	Location   Location         `json:"location"`
	Type       string           `json:"type"`
	Shape      *geometry.Shape  `json:"shape,omitempty"`
	Shapes     []geometry.Shape `json:"shapes,omitempty"`
	PathGroups []PathGroup      `json:"path_groups,omitempty"`
}

// User is an annotation author or file collaborator.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Login string `json:"login,omitempty"`
	Type  string `json:"type"`
}

// Permissions lists what the current user may do with an annotation.
type Permissions struct {
	CanDelete  bool `json:"can_delete"`
	CanEdit    bool `json:"can_edit"`
	CanReply   bool `json:"can_reply"`
	CanResolve bool `json:"can_resolve"`
}

// Description is the first comment in an annotation thread.
type Description struct {
	Message string `json:"message"`
}

// FileVersion references the version an annotation was made on.
type FileVersion struct {
	ID string `json:"id"`
}

// Annotation is a persisted annotation.
type Annotation struct {
	ID          string       `json:"id"`
	Type        string       `json:"type"`
	Target      Target       `json:"target"`
	Description *Description `json:"description,omitempty"`
	FileVersion FileVersion  `json:"file_version"`
	CreatedBy   User         `json:"created_by"`
	CreatedAt   time.Time    `json:"created_at"`
	Permissions Permissions  `json:"permissions"`
}

// Message returns the description text, or "" when there is none.
func (a Annotation) Message() string {
	if a.Description == nil {
		return ""
	}
	return a.Description.Message
}

// AnnotationPage is one page of a paginated listing.
type AnnotationPage struct {
	Entries    []Annotation `json:"entries"`
	Limit      int          `json:"limit"`
	NextMarker *string      `json:"next_marker"`
}
