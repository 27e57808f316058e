package middleware

import (
	"errors"
	"net/http"
	"strings"

	"coursegen/apierr"
	"coursegen/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionKey      = "session"
	HeaderRequestID = "X-Request-ID"
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderAPIKey    = "X-User-API-Key"
)

// SessionFrom returns the session Auth stored on the context.
func SessionFrom(c *gin.Context) model.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(model.Session); ok {
			return s
		}
	}
	return model.Session{TraceID: c.GetHeader(HeaderRequestID)}
}

// RequestID makes sure every request carries a trace id, reusing the
// caller's X-Request-ID when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
			c.Request.Header.Set(HeaderRequestID, id)
		}
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

type Claims struct {
	Role string `json:"role,omitempty"`
	UID  string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// Auth builds the request session. With a secret configured a bearer token
// is required and the user id comes from its uid or sub claim. Without one
// the X-User-ID header is trusted, which is only meant for local runs.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		sess := model.Session{
			TraceID:    c.GetHeader(HeaderRequestID),
			UserAPIKey: strings.TrimSpace(c.GetHeader(HeaderAPIKey)),
		}
		if secret == "" {
			sess.UserID = strings.TrimSpace(c.GetHeader(HeaderUserID))
			sess.Role = c.GetHeader(HeaderUserRole)
			c.Set(sessionKey, sess)
			c.Next()
			return
		}

		claims, err := parseBearer(c.GetHeader("Authorization"), key)
		if err != nil {
			abortUnauthorized(c, err)
			return
		}
		sess.UserID = claims.UID
		if sess.UserID == "" {
			sess.UserID = claims.Subject
		}
		if sess.UserID == "" {
			abortUnauthorized(c, errors.New("token carries no user id"))
			return
		}
		sess.Role = claims.Role
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func parseBearer(header string, key []byte) (*Claims, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, errors.New("authorization header must be \"Bearer <token>\"")
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(parts[1]), claims, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireAdmin rejects sessions without the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFrom(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, model.GenericResponse{
				Success: false,
				Status:  http.StatusForbidden,
				Error: &model.ErrorInfo{
					ErrorType: apierr.CodeUnauthorized,
					Code:      http.StatusForbidden,
					Message:   "admin role required",
				},
			})
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, model.GenericResponse{
		Success: false,
		Status:  http.StatusUnauthorized,
		Error: &model.ErrorInfo{
			ErrorType: apierr.CodeUnauthorized,
			Code:      http.StatusUnauthorized,
			Message:   "Invalid or expired token",
			Details:   err.Error(),
		},
	})
}
