package handler

import (
	"time"

	"coursegen/middleware"

	"github.com/gin-gonic/gin"
)

// GET /api/performance/:uid
func (h *Handler) GetPerformance(c *gin.Context) {
	perf, err := h.svc.GetPerformance(c.Request.Context(), middleware.SessionFrom(c), c.Param("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, perf)
}

// GET /api/performance/all
func (h *Handler) GetAllPerformance(c *gin.Context) {
	rows, err := h.svc.GetAllPerformance(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, rows)
}

type scoreRequest struct {
	UID        string    `json:"uid"`
	Email      string    `json:"email"`
	TotalScore float64   `json:"totalScore"`
	Date       time.Time `json:"date"`
}

// POST /api/performance/score
func (h *Handler) RecordDailyScore(c *gin.Context) {
	var req scoreRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.RecordDailyScore(c.Request.Context(), middleware.SessionFrom(c), req.UID, req.Email, req.TotalScore, req.Date); err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, nil)
}

// POST /api/updateCountsForAllUsers
func (h *Handler) RecomputeAllStreaks(c *gin.Context) {
	n, err := h.svc.RecomputeAllStreaks(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"updatedCount": n})
}
