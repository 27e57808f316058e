package handler

import (
	"coursegen/middleware"

	"github.com/gin-gonic/gin"
)

// POST /api/quiz/generate
func (h *Handler) GenerateQuiz(c *gin.Context) {
	var req courseIDRequest
	if !bindJSON(c, &req) {
		return
	}
	questions, err := h.svc.GenerateQuiz(c.Request.Context(), middleware.SessionFrom(c), req.CourseID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"questions": questions})
}

type quizResultRequest struct {
	CourseID string  `json:"courseId" binding:"required"`
	Score    float64 `json:"score"`
}

// POST /api/quiz-results
func (h *Handler) SaveQuizResult(c *gin.Context) {
	var req quizResultRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.svc.SaveQuizResult(c.Request.Context(), middleware.SessionFrom(c), req.CourseID, req.Score)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, result)
}

// GET /api/quiz/:userId
func (h *Handler) ListQuizResults(c *gin.Context) {
	results, err := h.svc.ListQuizResults(c.Request.Context(), middleware.SessionFrom(c), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, results)
}
