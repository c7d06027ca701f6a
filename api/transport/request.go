package transport

import (
	"time"

	"github.com/fastygo/taskboard/domain"
)

type SubtaskRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type TaskCreateRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Completed   bool             `json:"completed"`
	DueDate     *time.Time       `json:"due_date"`
	Priority    string           `json:"priority"`
	ProjectID   string           `json:"project_id"`
	Tags        []string         `json:"tags"`
	Subtasks    []SubtaskRequest `json:"subtasks"`
}

func (r TaskCreateRequest) ToInput(userID string) domain.TaskInput {
	input := domain.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		DueDate:     r.DueDate,
		Priority:    domain.Priority(r.Priority),
		ProjectID:   r.ProjectID,
		Tags:        r.Tags,
		CreatedBy:   userID,
	}
	for _, st := range r.Subtasks {
		input.Subtasks = append(input.Subtasks, domain.Subtask{Title: st.Title, Completed: st.Completed})
	}
	return input
}

// TaskUpdateRequest is a partial update; omitted fields are left untouched.
type TaskUpdateRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Completed    *bool      `json:"completed"`
	DueDate      *time.Time `json:"due_date"`
	ClearDueDate bool       `json:"clear_due_date"`
	Priority     *string    `json:"priority"`
	ProjectID    *string    `json:"project_id"`
	Tags         *[]string  `json:"tags"`
}

func (r TaskUpdateRequest) ToPatch() domain.TaskPatch {
	patch := domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		DueDate:     r.DueDate,
		ClearDue:    r.ClearDueDate,
		ProjectID:   r.ProjectID,
	}
	if r.Priority != nil {
		p := domain.Priority(*r.Priority)
		patch.Priority = &p
	}
	if r.Tags != nil {
		patch.Tags = *r.Tags
		patch.SetTags = true
	}
	return patch
}

type SubtaskUpdateRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

type CommentRequest struct {
	Body string `json:"body"`
}

type ProjectCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type ProjectUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Active      *bool   `json:"active"`
}

func (r ProjectUpdateRequest) ToPatch() domain.ProjectPatch {
	return domain.ProjectPatch{
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		Active:      r.Active,
	}
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
