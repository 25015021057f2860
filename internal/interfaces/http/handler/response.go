package handler

import "github.com/devmarket/backend/internal/interfaces/http/dto"

// APIResponse is a generic typed response wrapper, mostly useful in tests
// for decoding handler output without interface{} juggling.
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the envelope shape of a failed request
type ErrorResponse struct {
	Success bool           `json:"success"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// CountData wraps a bare count payload
type CountData struct {
	Count int64 `json:"count"`
}
