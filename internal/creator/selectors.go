package creator

import "github.com/starford/vellum/internal/models"

// GetCreatorStagedForLocation returns the staged item only when it belongs to
// loc, so views at other pages or frames never see it.
func GetCreatorStagedForLocation(s State, loc models.Location) *Item {
	if s.Staged == nil || s.Staged.Location != loc {
		return nil
	}
	return s.Staged
}

// Plain field selectors.
func GetCreatorStatus(s State) Status           { return s.Status }
func GetCreatorCursor(s State) int              { return s.Cursor }
func GetCreatorMessage(s State) string          { return s.Message }
func GetCreatorError(s State) *models.ErrorInfo { return s.Error }
func GetCreatorStaged(s State) *Item            { return s.Staged }

// IsCreatorStagedRegion reports whether a region is staged.
func IsCreatorStagedRegion(s State) bool {
	return s.Staged != nil && s.Staged.TargetType == models.TypeRegion
}

// IsCreatorStagedDrawing reports whether a drawing is staged.
func IsCreatorStagedDrawing(s State) bool {
	return s.Staged != nil && s.Staged.TargetType == models.TypeDrawing
}
