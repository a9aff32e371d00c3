package annotation

import (
	"github.com/starford/vellum/internal/drawing"
	"github.com/starford/vellum/internal/geometry"
	"github.com/starford/vellum/internal/models"
)

// FormatDrawing normalizes a drawing so it carries the same shape union as
// other annotation types: one path shape per stroke and a bounding rectangle.
// PathGroups are kept for styling.
func FormatDrawing(a models.Annotation) models.Annotation {
	h := drawing.NewHistory()
	for _, group := range a.Target.PathGroups {
		for _, p := range group.Paths {
			if len(p.Points) == 0 {
				continue
			}
			h.Insert(drawing.NewStroke(p.Points))
		}
	}
	defer h.Destroy()

	box := h.AxisAlignedBoundingBox()
	shapes := make([]geometry.Shape, 0, len(box.Paths))
	for _, p := range box.Paths {
		shapes = append(shapes, geometry.Shape{Path: p})
	}
	bounds := box.Shape()

	a.Target.Shapes = shapes
	a.Target.Shape = &bounds
	if a.Target.Type == "" {
		a.Target.Type = models.TypeDrawing
	}
	return a
}
