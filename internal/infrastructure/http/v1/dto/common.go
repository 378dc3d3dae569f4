// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// IDResponse is returned by endpoints that only need to echo an id.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse acknowledges an operation without a body of its own.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse documents the body written by the error middleware.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Limit      int `json:"limit,omitempty"`
	Offset     int `json:"offset,omitempty"`
}

// NewListResponse creates a list response; a nil slice is sent as [].
func NewListResponse[T any](items []T, total, limit, offset int) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, TotalCount: total, Limit: limit, Offset: offset}
}
