package handler

import (
	"net/http"

	"coursegen/middleware"
	"coursegen/model"
	"coursegen/service"

	"github.com/gin-gonic/gin"
)

type suggestionRequest struct {
	MainTopic string `json:"mainTopic"`
	Prompt    string `json:"prompt"`
}

// POST /api/project-templates
func (h *Handler) ResolveSuggestions(c *gin.Context) {
	var req suggestionRequest
	if !bindJSON(c, &req) {
		return
	}
	topic := req.MainTopic
	if topic == "" {
		topic = req.Prompt
	}
	res, err := h.svc.ResolveSuggestions(c.Request.Context(), middleware.SessionFrom(c), topic)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.GenericResponse{
		Success: true,
		Status:  http.StatusOK,
		Payload: res,
		Note:    res.Note,
	})
}

// GET /api/project-templates
func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.svc.ListTemplates(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, templates)
}

type assignRequest struct {
	UserID string `json:"userid"`
	Title  string `json:"title"`
}

// POST /api/project-templates/:templateId/assign
func (h *Handler) AssignTemplate(c *gin.Context) {
	var req assignRequest
	if !bindJSON(c, &req) {
		return
	}
	tpl, err := h.svc.AssignTemplate(c.Request.Context(), middleware.SessionFrom(c), c.Param("templateId"), req.UserID, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tpl)
}

// POST /api/projects
func (h *Handler) SaveProject(c *gin.Context) {
	var req service.SaveProjectRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.svc.SaveProject(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, p)
}

// GET /api/projects?uid=
func (h *Handler) ListUserProjects(c *gin.Context) {
	projects, err := h.svc.ListUserProjects(c.Request.Context(), middleware.SessionFrom(c), c.Query("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, projects)
}

// PATCH /api/projects/:projectId
func (h *Handler) UpdateUserProject(c *gin.Context) {
	var patch model.UserProjectPatch
	if !bindJSON(c, &patch) {
		return
	}
	p, err := h.svc.UpdateUserProject(c.Request.Context(), middleware.SessionFrom(c), c.Param("projectId"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *Handler) ApproveProject(c *gin.Context) { h.setApproval(c, model.ApprovalAccepted) }

func (h *Handler) RejectProject(c *gin.Context) { h.setApproval(c, model.ApprovalRejected) }

func (h *Handler) setApproval(c *gin.Context, decision string) {
	p, err := h.svc.SetProjectApproval(c.Request.Context(), middleware.SessionFrom(c), c.Param("projectId"), decision)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, p)
}

// DELETE /api/projects/:projectId
func (h *Handler) DeleteProject(c *gin.Context) {
	if err := h.svc.DeleteProject(c.Request.Context(), middleware.SessionFrom(c), c.Param("projectId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.GenericResponse{Success: true, Status: http.StatusOK, Message: "Project deleted"})
}
