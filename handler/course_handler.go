package handler

import (
	"net/http"

	"coursegen/middleware"
	"coursegen/service"

	"github.com/gin-gonic/gin"
)

// POST /api/ai/outline
func (h *Handler) GenerateOutline(c *gin.Context) {
	var req service.OutlineRequest
	if !bindJSON(c, &req) {
		return
	}
	outline, err := h.svc.GenerateOutline(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"mainTopic": outline.MainTopic,
		"language":  outline.Language,
		"topics":    outline.Topics,
		"content":   map[string]interface{}{lowerKey(outline.MainTopic): outline.Topics},
	})
}

// POST /api/courses/create
func (h *Handler) CreateCourse(c *gin.Context) {
	var req service.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.svc.CreateCourse(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, gin.H{"courseId": course.ID.Hex(), "course": course})
}

// GET /api/courses/:courseId
func (h *Handler) GetCourse(c *gin.Context) {
	course, err := h.svc.GetCourse(c.Request.Context(), middleware.SessionFrom(c), c.Param("courseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, course)
}

// GET /api/courses?uid=
func (h *Handler) ListUserCourses(c *gin.Context) {
	courses, err := h.svc.ListUserCourses(c.Request.Context(), middleware.SessionFrom(c), c.Query("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, courses)
}

// GET /api/courses/all
func (h *Handler) ListAllCourses(c *gin.Context) {
	courses, err := h.svc.ListAllCourses(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, courses)
}

// DELETE /api/courses/:courseId
func (h *Handler) DeleteCourse(c *gin.Context) {
	if err := h.svc.DeleteCourse(c.Request.Context(), middleware.SessionFrom(c), c.Param("courseId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": http.StatusOK, "message": "Course deleted"})
}

type progressRequest struct {
	CourseID string  `json:"courseId" binding:"required"`
	Progress float64 `json:"progress"`
}

// POST /api/courses/update-progress
func (h *Handler) UpdateProgress(c *gin.Context) {
	var req progressRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.svc.UpdateProgress(c.Request.Context(), middleware.SessionFrom(c), req.CourseID, req.Progress)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, course)
}

type courseIDRequest struct {
	CourseID string `json:"courseId" binding:"required"`
}

// POST /api/courses/finish
func (h *Handler) FinishCourse(c *gin.Context) {
	var req courseIDRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.svc.FinishCourse(c.Request.Context(), middleware.SessionFrom(c), req.CourseID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, course)
}

// POST /api/courses/generate-content
func (h *Handler) FillSubtopic(c *gin.Context) {
	var req service.FillRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.svc.FillSubtopic(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, course)
}

// GET /api/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.svc.CourseStats(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}
