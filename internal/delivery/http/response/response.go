package response

import (
	"net/http"

	"inquiry-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key the request id middleware stores the id under
const RequestIDKey = "RequestID"

// Response standardizes the API JSON response
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(RequestIDKey),
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: c.GetString(RequestIDKey),
	})
}

// AttemptStatus is the HTTP status of a submission result:
// 202 while the bot check is open, 201 once dispatched, 200 otherwise
func AttemptStatus(state domain.SubmissionState) int {
	switch state {
	case domain.StateAwaitingVerification:
		return http.StatusAccepted
	case domain.StateSucceeded:
		return http.StatusCreated
	default:
		return http.StatusOK
	}
}

// Attempt sends the outcome of a submit or verification call. The message is the
// localized result, or the submit button label when there is nothing to report.
func Attempt(c *gin.Context, view *domain.AttemptView) {
	msg := view.Message
	if msg == "" || view.State == domain.StateAwaitingVerification {
		msg = view.Control.Label
	}
	Success(c, AttemptStatus(view.State), msg, view)
}
