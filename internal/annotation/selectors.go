package annotation

import "github.com/starford/vellum/internal/models"

// GetAnnotation returns the annotation with id.
func GetAnnotation(s State, id string) (models.Annotation, bool) {
	a, ok := s.ByID[id]
	return a, ok
}

// GetAnnotations returns every annotation in insertion order.
func GetAnnotations(s State) []models.Annotation {
	out := make([]models.Annotation, 0, len(s.AllIDs))
	for _, id := range s.AllIDs {
		if a, ok := s.ByID[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// GetAnnotationsForLocation returns the annotations whose target location
// equals loc exactly.
func GetAnnotationsForLocation(s State, loc models.Location) []models.Annotation {
	var out []models.Annotation
	for _, a := range GetAnnotations(s) {
		if a.Target.Location == loc {
			out = append(out, a)
		}
	}
	return out
}

// GetActiveAnnotationID returns the selected annotation id, or "".
func GetActiveAnnotationID(s State) string {
	return s.ActiveID
}

// GetActiveAnnotation resolves the active id. An id that references nothing
// yields false.
func GetActiveAnnotation(s State) (models.Annotation, bool) {
	if s.ActiveID == "" {
		return models.Annotation{}, false
	}
	return GetAnnotation(s, s.ActiveID)
}

// GetIsInitialized reports whether a fetch has completed.
func GetIsInitialized(s State) bool {
	return s.IsInitialized
}
