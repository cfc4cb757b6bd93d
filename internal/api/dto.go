package api

import "github.com/nbtodo/nbtodo/internal/models"

// Todo is the wire item type (aliased from the domain layer).
type Todo = models.Todo

// CreateTodoRequest is the request body for adding a manual todo.
type CreateTodoRequest struct {
	Text string `json:"text" example:"buy milk" validate:"required"`
}

// UpdateTodoRequest is the request body for patching a manual todo.
// Absent fields are left unchanged.
type UpdateTodoRequest struct {
	Text *string `json:"text,omitempty" example:"buy oat milk"`
	Done *bool   `json:"done,omitempty" example:"true"`
}

// ReplaceTodosRequest is the request body for replacing the manual collection.
type ReplaceTodosRequest struct {
	Items []Todo `json:"items" validate:"required"`
}

// ItemsResponse wraps the merged todo listing.
type ItemsResponse struct {
	Items []Todo `json:"items" validate:"required"`
}
