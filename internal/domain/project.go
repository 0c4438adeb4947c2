package domain

import "time"

// Project is a named bucket of time entries. Names are unique per user.
type Project struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewProject creates a project for a user.
func NewProject(userID int64, name, description, color string) Project {
	return Project{
		UserID:      userID,
		Name:        name,
		Description: description,
		Color:       color,
	}
}

// String returns the project name for display purposes.
func (p Project) String() string {
	return p.Name
}
