package model

type GenericResponse struct {
	Success bool        `json:"success"`
	Status  int         `json:"status"`
	Payload interface{} `json:"payload,omitempty"`
	Message string      `json:"message,omitempty"`
	Note    string      `json:"note,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	ErrorType string `json:"errorType"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Session is the per-request identity handed from the HTTP layer to services.
type Session struct {
	UserID     string
	TraceID    string
	UserAPIKey string
	Role       string
}

func (s Session) IsAdmin() bool {
	return s.Role == "admin"
}
