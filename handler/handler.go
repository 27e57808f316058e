package handler

import (
	"coursegen/logger"
	"coursegen/service"
)

type Handler struct {
	svc    *service.Service
	logger *logger.Logger
}

func NewHandler(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, logger: log}
}
