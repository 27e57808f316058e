package handler

import (
	"net/http"

	"coursegen/apierr"
	"coursegen/model"

	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, model.GenericResponse{Success: true, Status: http.StatusOK, Payload: payload})
}

func respondCreated(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, model.GenericResponse{Success: true, Status: http.StatusCreated, Payload: payload})
}

// respondError renders any error in the response envelope. Non-API errors
// become a 500.
func respondError(c *gin.Context, err error) {
	ae := apierr.From(err)
	status := ae.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, model.GenericResponse{
		Success: false,
		Status:  status,
		Message: ae.Error(),
		Error: &model.ErrorInfo{
			ErrorType: ae.Code,
			Code:      status,
			Message:   ae.Error(),
			Retryable: ae.Retryable(),
		},
	})
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apierr.Validation("invalid request body: "+err.Error()))
		return false
	}
	return true
}
