package repository

import (
	"context"
	"errors"
	"time"

	"github.com/luqmanbooso/BuildMart-sub001/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectRepository is the storage contract for project auctions. The rule
// engine only reads projects; creation exists so the marketplace has
// budget-bearing auctions to bid against.
type ProjectRepository interface {
	CreateProject(ctx context.Context, req models.ProjectRequest) (*models.Project, error)
	GetProjectByID(ctx context.Context, projectId string) (*models.Project, error)
	GetAllProjects(ctx context.Context) ([]models.Project, error)
}

// PostgresProjectRepository is the ProjectRepository implementation for Postgres.
type PostgresProjectRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresProjectRepository creates a new PostgresProjectRepository instance.
func NewPostgresProjectRepository(db *pgxpool.Pool) *PostgresProjectRepository {
	return &PostgresProjectRepository{DB: db}
}

const projectColumns = `id, client_id, title, description, category, min_budget, max_budget, status, created_at`

func scanProject(row rowScanner) (*models.Project, error) {
	var project models.Project
	var category *string
	err := row.Scan(
		&project.ID,
		&project.ClientID,
		&project.Title,
		&project.Description,
		&category,
		&project.MinBudget,
		&project.MaxBudget,
		&project.Status,
		&project.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if category != nil {
		project.Category = *category
	}
	return &project, nil
}

// CreateProject persists a new open project auction.
func (r *PostgresProjectRepository) CreateProject(ctx context.Context, req models.ProjectRequest) (*models.Project, error) {
	newProject := models.Project{
		ID:          uuid.New().String(),
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		MinBudget:   req.MinBudget,
		MaxBudget:   req.MaxBudget,
		Status:      models.OpenProject,
		CreatedAt:   time.Now().UTC(),
	}

	insertQuery := `INSERT INTO project (id, client_id, title, description, category, min_budget, max_budget, status, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		newProject.ID,
		newProject.ClientID,
		newProject.Title,
		newProject.Description,
		newProject.Category,
		newProject.MinBudget,
		newProject.MaxBudget,
		newProject.Status,
		newProject.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &newProject, nil
}

// GetProjectByID returns one project, or ErrNotFound.
func (r *PostgresProjectRepository) GetProjectByID(ctx context.Context, projectId string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project WHERE id = $1`
	project, err := scanProject(r.DB.QueryRow(ctx, query, projectId))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return project, err
}

// GetAllProjects returns every project, newest first.
func (r *PostgresProjectRepository) GetAllProjects(ctx context.Context) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project ORDER BY created_at DESC`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}
