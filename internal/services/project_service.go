package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"worktimer/internal/domain"
	"worktimer/internal/errors"
	"worktimer/internal/repository/sqlite"
	"worktimer/internal/validation"
)

// projectServiceImpl implements the ProjectService interface
type projectServiceImpl struct {
	repo             sqlite.Repository
	mapper           *domain.Mapper
	projectValidator *validation.ProjectValidator
}

// NewProjectService creates a new ProjectService instance
func NewProjectService(repo sqlite.Repository, validator *validation.Validator) ProjectService {
	return &projectServiceImpl{
		repo:             repo,
		mapper:           domain.NewMapper(),
		projectValidator: validation.NewProjectValidator(validator),
	}
}

// RandomColor returns a random #rrggbb color
func RandomColor() string {
	return fmt.Sprintf("#%06x", rand.IntN(0x1000000))
}

// CreateProject creates a project; an empty color gets a random one
func (p *projectServiceImpl) CreateProject(ctx context.Context, userID int64, name, description, color string) (*domain.Project, error) {
	name, color = strings.TrimSpace(name), strings.TrimSpace(color)

	// 1. Validate input
	if err := p.projectValidator.ValidateProject(name, color); err != nil {
		return nil, err
	}
	if err := p.ensureNameAvailable(ctx, userID, 0, name); err != nil {
		return nil, err
	}

	// 2. Persist
	if color == "" {
		color = RandomColor()
	}
	project := domain.NewProject(userID, name, strings.TrimSpace(description), color)
	dbProject := p.mapper.Project.ToDatabase(project)
	if err := p.repo.CreateProject(ctx, &dbProject); err != nil {
		return nil, err
	}

	created := p.mapper.Project.FromDatabase(dbProject)
	return &created, nil
}

// GetProject returns one of the user's projects
func (p *projectServiceImpl) GetProject(ctx context.Context, userID, projectID int64) (*domain.Project, error) {
	dbProject, err := p.repo.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	project := p.mapper.Project.FromDatabase(*dbProject)
	return &project, nil
}

// ListProjects returns the user's projects ordered by name
func (p *projectServiceImpl) ListProjects(ctx context.Context, userID int64) ([]domain.Project, error) {
	dbProjects, err := p.repo.ListProjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.mapper.Project.FromDatabaseSlice(dbProjects), nil
}

// UpdateProject replaces name, description and color. An empty color keeps
// the current one.
func (p *projectServiceImpl) UpdateProject(ctx context.Context, userID, projectID int64, name, description, color string) (*domain.Project, error) {
	name, color = strings.TrimSpace(name), strings.TrimSpace(color)

	if err := p.projectValidator.ValidateProject(name, color); err != nil {
		return nil, err
	}

	existing, err := p.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if err := p.ensureNameAvailable(ctx, userID, projectID, name); err != nil {
		return nil, err
	}

	existing.Name = name
	existing.Description = strings.TrimSpace(description)
	if color != "" {
		existing.Color = color
	}

	dbProject := p.mapper.Project.ToDatabase(*existing)
	if err := p.repo.UpdateProject(ctx, &dbProject); err != nil {
		return nil, err
	}

	updated := p.mapper.Project.FromDatabase(dbProject)
	return &updated, nil
}

// DeleteProject removes a project together with its entries
func (p *projectServiceImpl) DeleteProject(ctx context.Context, userID, projectID int64) error {
	return p.repo.DeleteProject(ctx, userID, projectID)
}

func (p *projectServiceImpl) ensureNameAvailable(ctx context.Context, userID, selfID int64, name string) error {
	found, err := p.repo.FindProjectByName(ctx, userID, name)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil
		}
		return err
	}
	if found.ID == selfID {
		return nil
	}

	validationError := validation.NewValidationError()
	validationError.AddDuplicateError("name", name, "A project with this name already exists")
	return validationError.AsAppError()
}
