package handler

import (
	"strings"

	"coursegen/middleware"
	"coursegen/model"

	"github.com/gin-gonic/gin"
)

type promptRequest struct {
	Prompt      string `json:"prompt"`
	UserAPIKey  string `json:"userApiKey"`
	UseOwnKey   bool   `json:"useUserApiKey"`
	CourseTopic string `json:"mainTopic"`
}

func lowerKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// bindPrompt reads a prompt body. Older clients send their own API key in
// the body instead of the header; it is folded into the session.
func bindPrompt(c *gin.Context) (promptRequest, model.Session, bool) {
	var req promptRequest
	if !bindJSON(c, &req) {
		return req, model.Session{}, false
	}
	sess := middleware.SessionFrom(c)
	if req.UseOwnKey && strings.TrimSpace(req.UserAPIKey) != "" {
		sess.UserAPIKey = strings.TrimSpace(req.UserAPIKey)
	}
	return req, sess, true
}

// POST /api/ai/prompt
func (h *Handler) Prompt(c *gin.Context) {
	req, sess, ok := bindPrompt(c)
	if !ok {
		return
	}
	text, err := h.svc.Prompt(c.Request.Context(), sess, req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"generatedText": text})
}

// POST /api/ai/generate
func (h *Handler) Generate(c *gin.Context) {
	req, sess, ok := bindPrompt(c)
	if !ok {
		return
	}
	html, err := h.svc.Generate(c.Request.Context(), sess, req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"text": html})
}

// POST /api/ai/chat
func (h *Handler) Chat(c *gin.Context) {
	req, sess, ok := bindPrompt(c)
	if !ok {
		return
	}
	html, err := h.svc.Chat(c.Request.Context(), sess, req.CourseTopic, req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"text": html})
}

// POST /api/ai/yt
func (h *Handler) FindVideo(c *gin.Context) {
	req, sess, ok := bindPrompt(c)
	if !ok {
		return
	}
	id, err := h.svc.FindVideo(c.Request.Context(), sess, req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"url": id})
}

// POST /api/ai/image
func (h *Handler) FindImage(c *gin.Context) {
	req, sess, ok := bindPrompt(c)
	if !ok {
		return
	}
	url, err := h.svc.FindImage(c.Request.Context(), sess, req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"url": url})
}

// POST /api/ai/transcript
func (h *Handler) Transcript(c *gin.Context) {
	req, sess, ok := bindPrompt(c)
	if !ok {
		return
	}
	lines, err := h.svc.Transcript(c.Request.Context(), sess, req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"url": lines})
}
