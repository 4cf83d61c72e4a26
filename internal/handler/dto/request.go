package dto

// UpdateTaskRequest represents the request body for PATCH /tasks/:id.
// Pointer fields distinguish "field omitted" from "field present"; an
// explicitly-present empty dependencies array clears all dependencies.
type UpdateTaskRequest struct {
	Status       *string   `json:"status,omitempty"`
	Priority     *string   `json:"priority,omitempty"`
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Dependencies *[]string `json:"dependencies,omitempty"`
	ProgressNote *string   `json:"progress_note,omitempty"`
	ProgressType *string   `json:"progress_type,omitempty"`
}

// CreateTaskRequest represents the request body for POST /tasks.
type CreateTaskRequest struct {
	EpicID       string   `json:"epic_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Type         string   `json:"type,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}
