package services

import (
	"context"
	"net/http"

	"github.com/luqmanbooso/BuildMart-sub001/internal/models"
	"github.com/luqmanbooso/BuildMart-sub001/internal/repository"
)

// ProjectService owns project auction validation and retrieval.
type ProjectService struct {
	Repo repository.ProjectRepository
}

// NewProjectService creates a new ProjectService instance.
func NewProjectService(repo repository.ProjectRepository) *ProjectService {
	return &ProjectService{Repo: repo}
}

// CreateProject validates and persists a new project auction.
func (s *ProjectService) CreateProject(ctx context.Context, req models.ProjectRequest) (*models.Project, error) {
	if req.ClientID == "" || req.Title == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "missing required fields: clientId or title")
	}
	if req.MinBudget != nil && !req.MinBudget.IsPositive() {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "minBudget must be a positive amount")
	}
	if req.MaxBudget != nil && !req.MaxBudget.IsPositive() {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "maxBudget must be a positive amount")
	}
	if req.MinBudget != nil && req.MaxBudget != nil && req.MinBudget.GreaterThan(*req.MaxBudget) {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "minBudget cannot exceed maxBudget")
	}

	project, err := s.Repo.CreateProject(ctx, req)
	if err != nil {
		return nil, mapRepoError(err, "")
	}
	return project, nil
}

// GetProject returns one project.
func (s *ProjectService) GetProject(ctx context.Context, projectId string) (*models.Project, error) {
	project, err := s.Repo.GetProjectByID(ctx, projectId)
	if err != nil {
		return nil, mapRepoError(err, "project not found")
	}
	return project, nil
}

// GetAllProjects returns every project.
func (s *ProjectService) GetAllProjects(ctx context.Context) ([]models.Project, error) {
	projects, err := s.Repo.GetAllProjects(ctx)
	if err != nil {
		return nil, mapRepoError(err, "")
	}
	return projects, nil
}
