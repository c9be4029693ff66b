package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pagecrafter/internal/domain"
	"pagecrafter/internal/service"
)

// ProjectHandler handles project management, conversation and export endpoints.
type ProjectHandler struct {
	projectService service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// Create handles POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}

	var input service.CreateProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "name is required")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), userID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, project)
}

// List handles GET /api/v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	projects, total, err := h.projectService.List(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	if projects == nil {
		projects = []domain.Project{}
	}

	RespondPaginated(c, projects, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(c.Request.Context(), userID, projectID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, project)
}

// Delete handles DELETE /api/v1/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), userID, projectID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "project deleted"})
}

// SendMessage handles POST /api/v1/projects/:id/messages
func (h *ProjectHandler) SendMessage(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Prompt string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "prompt is required")
		return
	}

	turn, err := h.projectService.SendMessage(c.Request.Context(), userID, projectID, req.Prompt)
	if err != nil {
		if c.Request.Context().Err() != nil {
			c.AbortWithStatus(statusClientClosedRequest)
			return
		}
		HandleError(c, err)
		return
	}

	RespondOK(c, turn)
}

// Export handles GET /api/v1/projects/:id/export?format=
func (h *ProjectHandler) Export(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	format := domain.ExportFormat(c.DefaultQuery("format", string(domain.ExportHTML)))
	file, err := h.projectService.Export(c.Request.Context(), userID, projectID, format)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Publish handles POST /api/v1/projects/:id/exports
func (h *ProjectHandler) Publish(c *gin.Context) {
	userID, ok := authUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Format domain.ExportFormat `json:"format" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "format is required")
		return
	}

	link, err := h.projectService.PublishExport(c.Request.Context(), userID, projectID, req.Format)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, link)
}
