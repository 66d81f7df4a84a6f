package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stayhub/models"
)

// ServiceError is a typed business error carrying a stable reason code and
// the HTTP status it maps to. Collaborator I/O failures are wrapped before
// they reach a handler, so transport-level errors never leak upward.
type ServiceError struct {
	Code    string
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return e.Code + ": " + e.Message
}

// NewServiceError builds a ServiceError with the given code, status and message.
func NewServiceError(code string, status int, message string) *ServiceError {
	return &ServiceError{Code: code, Status: status, Message: message}
}

// ErrorHandler is a middleware to catch panics and return structured errors.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, models.APIResponse{
					Success:    false,
					Message:    "Internal Server Error",
					StatusCode: http.StatusInternalServerError,
					Error:      "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// Respond sends a success envelope.
func Respond(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success:    true,
		Message:    message,
		StatusCode: http.StatusOK,
		Data:       data,
	})
}

// Fail translates an error into the response envelope. ServiceErrors keep
// their code and status; anything else becomes a 500 with a generic message.
func Fail(c *gin.Context, err error) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		c.JSON(svcErr.Status, models.APIResponse{
			Success:    false,
			Message:    svcErr.Message,
			StatusCode: svcErr.Status,
			Error:      svcErr.Code,
		})
		return
	}

	GetLogger().Error("Unhandled service error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, models.APIResponse{
		Success:    false,
		Message:    "Internal Server Error",
		StatusCode: http.StatusInternalServerError,
		Error:      "internalError",
	})
}

// FailValidation reports a request-binding failure (never retried by clients).
func FailValidation(c *gin.Context, details string) {
	c.JSON(http.StatusUnprocessableEntity, models.APIResponse{
		Success:    false,
		Message:    "Validation failed",
		StatusCode: http.StatusUnprocessableEntity,
		Error:      details,
	})
}
