package domain

import "time"

// Project groups tasks under a named, colour-coded heading.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	Active      bool      `json:"active"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// ProjectPatch is a partial update; nil fields are left untouched.
type ProjectPatch struct {
	Name        *string
	Description *string
	Color       *string
	Active      *bool
}

func (p ProjectPatch) Apply(project *Project) {
	if p.Name != nil {
		project.Name = *p.Name
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
	if p.Color != nil {
		project.Color = *p.Color
	}
	if p.Active != nil {
		project.Active = *p.Active
	}
}

// ProjectInput carries the caller-supplied fields of a new project.
type ProjectInput struct {
	Name        string
	Description string
	Color       string
	CreatedBy   string
}
