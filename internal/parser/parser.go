// Package parser decodes annotation batch files dropped into the inbox.
//
// A batch is YAML or JSON:
//
//	file_id: "42"
//	file_version_id: "7"
//	created_by: {id: "u1", name: "Importer"}
//	annotations:
//	  - id: optional-stable-id
//	    type: region
//	    message: "Check this"
//	    target:
//	      location: {type: page, value: 1}
//	      shape: {x: 10, y: 10, width: 20, height: 5}
package parser

import (
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/vellum/internal/models"
)

// Batch is a decoded inbox file.
type Batch struct {
	FileID        string       `json:"file_id"`
	FileVersionID string       `json:"file_version_id"`
	CreatedBy     *models.User `json:"created_by,omitempty"`
	Annotations   []BatchEntry `json:"annotations"`
}

// BatchEntry is one annotation inside a batch.
type BatchEntry struct {
	ID      string        `json:"id,omitempty"`
	Type    string        `json:"type"`
	Message string        `json:"message,omitempty"`
	Target  models.Target `json:"target"`
}

// Validate checks the batch header and every entry.
func (b Batch) Validate() error {
	if err := validation.ValidateStruct(&b,
		validation.Field(&b.FileID, validation.Required),
		validation.Field(&b.FileVersionID, validation.Required),
		validation.Field(&b.Annotations, validation.Required),
	); err != nil {
		return err
	}
	for i, p := range b.Payloads() {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("annotations[%d]: %w", i, err)
		}
	}
	return nil
}

// Payloads converts the entries into creation payloads, in file order.
func (b Batch) Payloads() []models.NewAnnotation {
	out := make([]models.NewAnnotation, 0, len(b.Annotations))
	for _, e := range b.Annotations {
		target := e.Target
		if target.Type == "" {
			target.Type = e.Type
		}
		p := models.NewAnnotation{
			Type:        e.Type,
			Target:      target,
			FileVersion: models.FileVersion{ID: b.FileVersionID},
		}
		if e.Message != "" {
			p.Description = &models.Description{Message: e.Message}
		}
		out = append(out, p)
	}
	return out
}

// ErrEmpty is returned for a file with no content.
var ErrEmpty = errors.New("parser: empty batch")

// Parse decodes and validates a batch. JSON input is accepted because it is
// valid YAML; field names follow the JSON API in both cases.
func Parse(data []byte) (*Batch, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parser: decode: %w", err)
	}
	if raw == nil {
		return nil, ErrEmpty
	}
	// Re-encode through JSON so the models' json tags drive field mapping.
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("parser: normalize: %w", err)
	}
	var b Batch
	if err := json.Unmarshal(buf, &b); err != nil {
		return nil, fmt.Errorf("parser: decode: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("parser: invalid batch: %w", err)
	}
	return &b, nil
}
