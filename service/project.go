package service

import (
	"context"
	"strings"

	"coursegen/apierr"
	"coursegen/model"

	"go.uber.org/zap/zapcore"
)

type SaveProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Time        string `json:"time"`
	Email       string `json:"email"`
}

func (s *Service) SaveProject(ctx context.Context, sess model.Session, req SaveProjectRequest) (*model.UserProject, error) {
	traceID := traceOf(sess)
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting SaveProject", map[string]any{
		"method": "SaveProject",
		"userId": sess.UserID,
	}, "SERVICE", nil)
	if err := requireUser(sess); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, apierr.Validation("title is required")
	}
	p := &model.UserProject{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Time:        req.Time,
		UserID:      sess.UserID,
		FirebaseUID: sess.UserID,
		Email:       req.Email,
		Approve:     model.ApprovalPending,
	}
	if err := s.projects.CreateUserProject(ctx, p); err != nil {
		aerr := storeError(err, "project")
		s.logFailure(traceID, "SaveProject", "Failed to save project", aerr, nil)
		return nil, aerr
	}
	s.cacheDelete(ctx, traceID, allPerformanceKey)
	return p, nil
}

// ListUserProjects lists uid's projects, every project when uid is empty and
// the caller is an admin.
func (s *Service) ListUserProjects(ctx context.Context, sess model.Session, uid string) ([]model.UserProject, error) {
	traceID := traceOf(sess)
	if uid == "" && !sess.IsAdmin() {
		uid = sess.UserID
	}
	if uid == "" && !sess.IsAdmin() {
		return nil, apierr.Validation("user id is required")
	}
	projects, err := s.projects.ListUserProjects(ctx, uid)
	if err != nil {
		aerr := storeError(err, "project")
		s.logFailure(traceID, "ListUserProjects", "Failed to list projects", aerr, nil)
		return nil, aerr
	}
	return projects, nil
}

func (s *Service) UpdateUserProject(ctx context.Context, sess model.Session, projectID string, patch model.UserProjectPatch) (*model.UserProject, error) {
	traceID := traceOf(sess)
	patch.Approve = nil
	p, err := s.projects.UpdateUserProject(ctx, projectID, patch)
	if err != nil {
		aerr := storeError(err, "project")
		s.logFailure(traceID, "UpdateUserProject", "Failed to update project", aerr, map[string]any{"projectId": projectID})
		return nil, aerr
	}
	return p, nil
}

// SetProjectApproval moves a project to accepted or rejected.
func (s *Service) SetProjectApproval(ctx context.Context, sess model.Session, projectID, decision string) (*model.UserProject, error) {
	traceID := traceOf(sess)
	s.logger.Log(zapcore.InfoLevel, traceID, "Starting SetProjectApproval", map[string]any{
		"method":    "SetProjectApproval",
		"projectId": projectID,
		"decision":  decision,
	}, "SERVICE", nil)
	if decision != model.ApprovalAccepted && decision != model.ApprovalRejected {
		return nil, apierr.Validation("decision must be accepted or rejected")
	}
	p, err := s.projects.UpdateUserProject(ctx, projectID, model.UserProjectPatch{Approve: &decision})
	if err != nil {
		aerr := storeError(err, "project")
		s.logFailure(traceID, "SetProjectApproval", "Failed to update approval", aerr, map[string]any{"projectId": projectID})
		return nil, aerr
	}
	return p, nil
}

func (s *Service) DeleteProject(ctx context.Context, sess model.Session, projectID string) error {
	traceID := traceOf(sess)
	if err := s.projects.DeleteUserProject(ctx, projectID); err != nil {
		aerr := storeError(err, "project")
		s.logFailure(traceID, "DeleteProject", "Failed to delete project", aerr, map[string]any{"projectId": projectID})
		return aerr
	}
	s.cacheDelete(ctx, traceID, allPerformanceKey)
	return nil
}
