package sqlite

import (
	"context"

	"gorm.io/gorm"
)

// CreateProject inserts a project and fills in its ID
func (r *SQLiteRepository) CreateProject(ctx context.Context, project *Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return HandleDatabaseError("create project", err)
	}
	return nil
}

// GetProject retrieves a project owned by userID
func (r *SQLiteRepository) GetProject(ctx context.Context, userID, id int64) (*Project, error) {
	var project Project
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&project).Error
	if err != nil {
		return nil, HandleLookupError(err, "project", idString(id))
	}
	return &project, nil
}

// FindProjectByName retrieves the user's project with exactly this name
func (r *SQLiteRepository) FindProjectByName(ctx context.Context, userID int64, name string) (*Project, error) {
	var project Project
	err := r.db.WithContext(ctx).Where("user_id = ? AND name = ?", userID, name).First(&project).Error
	if err != nil {
		return nil, HandleLookupError(err, "project", name)
	}
	return &project, nil
}

// ListProjects returns the user's projects ordered by name
func (r *SQLiteRepository) ListProjects(ctx context.Context, userID int64) ([]*Project, error) {
	var projects []*Project
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&projects).Error
	if err != nil {
		return nil, HandleDatabaseError("list projects", err)
	}
	return projects, nil
}

// UpdateProject writes name, description and color of a project owned by project.UserID
func (r *SQLiteRepository) UpdateProject(ctx context.Context, project *Project) error {
	project.UpdatedAt = storageNow()
	result := r.db.WithContext(ctx).Model(&Project{}).
		Where("user_id = ? AND id = ?", project.UserID, project.ID).
		Updates(map[string]any{
			"name":        project.Name,
			"description": project.Description,
			"color":       project.Color,
			"updated_at":  project.UpdatedAt,
		})
	return ValidateRowsAffected(result, "update project", "project", idString(project.ID))
}

// DeleteProject removes a project and every time entry recorded against it
func (r *SQLiteRepository) DeleteProject(ctx context.Context, userID, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND project_id = ?", userID, id).Delete(&TimeEntry{}).Error; err != nil {
			return HandleDatabaseError("delete project entries", err)
		}
		result := tx.Where("user_id = ? AND id = ?", userID, id).Delete(&Project{})
		return ValidateRowsAffected(result, "delete project", "project", idString(id))
	})
}
