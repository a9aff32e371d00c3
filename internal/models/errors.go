package models

import (
	"errors"
	"fmt"
)

// APIError is the error body returned by the annotation service.
type APIError struct {
	Type      string `json:"type"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// ErrorInfo is an error reduced to plain data so it can live in store state.
type ErrorInfo struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// SerializeError converts err into ErrorInfo. A nil error yields nil.
func SerializeError(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return &ErrorInfo{Name: apiErr.Code, Message: apiErr.Message}
	}
	return &ErrorInfo{Name: "Error", Message: err.Error()}
}
