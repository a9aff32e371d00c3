package models

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// NewAnnotation is the payload for creating an annotation.
type NewAnnotation struct {
	Type        string       `json:"type"`
	Target      Target       `json:"target"`
	Description *Description `json:"description,omitempty"`
	FileVersion FileVersion  `json:"file_version"`
}

// Validate checks that the payload describes a well-formed annotation.
func (n NewAnnotation) Validate() error {
	if err := validation.ValidateStruct(&n,
		validation.Field(&n.Type, validation.Required, validation.In(TypeRegion, TypeHighlight, TypeDrawing, TypePoint)),
		validation.Field(&n.FileVersion),
		validation.Field(&n.Target),
	); err != nil {
		return err
	}
	switch n.Type {
	case TypeRegion, TypePoint:
		if n.Target.Shape == nil {
			return errors.New("target: shape is required")
		}
	case TypeHighlight:
		if len(n.Target.Shapes) == 0 {
			return errors.New("target: shapes are required")
		}
	case TypeDrawing:
		if len(n.Target.PathGroups) == 0 {
			return errors.New("target: path_groups are required")
		}
	}
	return nil
}

// Validate checks the file version reference.
func (f FileVersion) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.ID, validation.Required),
	)
}

// Validate checks the target location.
func (t Target) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Location),
	)
}

// Validate checks that the location kind is known and the value is usable.
func (l Location) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Type, validation.Required, validation.In(LocationPage, LocationFrame)),
		validation.Field(&l.Value, validation.Min(0)),
	)
}

// Collaborator is a user or group with access to a file.
type Collaborator struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Login      string `json:"login,omitempty"`
	Type       string `json:"type"`
	IsUploader bool   `json:"is_uploader,omitempty"`
}

// Collaborator types.
const (
	CollaboratorUser  = "user"
	CollaboratorGroup = "group"
)

// Validate checks a collaborator record.
func (c Collaborator) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Type, validation.Required, validation.In(CollaboratorUser, CollaboratorGroup)),
	)
}

// CollaboratorsOptions filters a collaborators listing.
type CollaboratorsOptions struct {
	IncludeGroups          bool
	IncludeUploaderCollabs bool
}
