package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/luqmanbooso/BuildMart-sub001/internal/models"
	"github.com/luqmanbooso/BuildMart-sub001/internal/services"
	"github.com/luqmanbooso/BuildMart-sub001/internal/utils"
)

// ProjectHandler handles HTTP requests for project auctions.
type ProjectHandler struct {
	Service *services.ProjectService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewProjectHandler creates a new ProjectHandler instance.
func NewProjectHandler(service *services.ProjectService, logger *log.Logger, timeout time.Duration) *ProjectHandler {
	return &ProjectHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

func (h *ProjectHandler) sendError(w http.ResponseWriter, err error, fallback string) {
	h.Logger.Println(err)
	if errResp, ok := err.(*models.ErrorResponse); ok {
		utils.SendErrorResponse(w, errResp)
		return
	}
	utils.SendErrorResponse(w, models.NewErrorResponse(http.StatusInternalServerError, models.KindStorageError, fallback))
}

// CreateProject handles creation of a new project auction.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var projectReq models.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&projectReq); err != nil {
		utils.SendErrorResponse(w, models.NewErrorResponse(http.StatusBadRequest, "invalid_request", "invalid request body"))
		return
	}

	project, err := h.Service.CreateProject(ctx, projectReq)
	if err != nil {
		h.sendError(w, err, "failed to create project")
		return
	}
	utils.SendJSON(w, http.StatusCreated, project)
}

// GetProject handles retrieval of one project.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projectId := r.PathValue("projectId")

	project, err := h.Service.GetProject(ctx, projectId)
	if err != nil {
		h.sendError(w, err, "failed to retrieve project")
		return
	}
	utils.SendJSON(w, http.StatusOK, project)
}

// GetAllProjects handles listing every project.
func (h *ProjectHandler) GetAllProjects(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	projects, err := h.Service.GetAllProjects(ctx)
	if err != nil {
		h.sendError(w, err, "failed to retrieve projects")
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	utils.SendJSON(w, http.StatusOK, projects)
}
