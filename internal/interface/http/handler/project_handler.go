package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/dto"
	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/project"
)

type ProjectHandler struct {
	createProjectUC *project.CreateProjectUseCase
	updateProjectUC *project.UpdateProjectUseCase
	deleteProjectUC *project.DeleteProjectUseCase
	getProjectUC    *project.GetProjectUseCase
	listProjectsUC  *project.ListProjectsUseCase
}

func NewProjectHandler(
	createProjectUC *project.CreateProjectUseCase,
	updateProjectUC *project.UpdateProjectUseCase,
	deleteProjectUC *project.DeleteProjectUseCase,
	getProjectUC *project.GetProjectUseCase,
	listProjectsUC *project.ListProjectsUseCase,
) *ProjectHandler {
	return &ProjectHandler{
		createProjectUC: createProjectUC,
		updateProjectUC: updateProjectUC,
		deleteProjectUC: deleteProjectUC,
		getProjectUC:    getProjectUC,
		listProjectsUC:  listProjectsUC,
	}
}

// ListProjects обрабатывает GET /projects?category=&status=&limit=&offset=.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	h.list(c, nil)
}

// ListUserProjects обрабатывает GET /users/:id/projects.
func (h *ProjectHandler) ListUserProjects(c *gin.Context) {
	clientID, ok := uuidParam(c, "id", "некорректный ID пользователя")
	if !ok {
		return
	}
	h.list(c, &clientID)
}

func (h *ProjectHandler) list(c *gin.Context, clientID *uuid.UUID) {
	limit, offset := pagination(c)

	projects, total, err := h.listProjectsUC.Execute(c.Request.Context(), project.ListProjectsInput{
		Category: c.Query("category"),
		Status:   c.Query("status"),
		ClientID: clientID,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToProjectResponses(projects), total, limit, offset)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := uuidParam(c, "id", "некорректный ID проекта")
	if !ok {
		return
	}

	details, err := h.getProjectUC.Execute(c.Request.Context(), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProjectDetailsResponse(details))
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req dto.ProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, err := req.ToDraft()
	if err != nil {
		response.ValidationFailed(c, "deadline", "некорректный формат дедлайна")
		return
	}

	created, err := h.createProjectUC.Execute(c.Request.Context(), actor, draft)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToProjectResponse(created))
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	projectID, ok := uuidParam(c, "id", "некорректный ID проекта")
	if !ok {
		return
	}

	var req dto.ProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, err := req.ToDraft()
	if err != nil {
		response.ValidationFailed(c, "deadline", "некорректный формат дедлайна")
		return
	}

	updated, err := h.updateProjectUC.Execute(c.Request.Context(), projectID, actor.ID, draft)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProjectResponse(updated))
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	projectID, ok := uuidParam(c, "id", "некорректный ID проекта")
	if !ok {
		return
	}

	if err := h.deleteProjectUC.Execute(c.Request.Context(), projectID, actor.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
