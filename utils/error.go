package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler is a middleware that turns panics into a 500 JSON body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error: "Internal Server Error",
				})
			}
		}()
		c.Next()
	}
}

// RespondError writes err as {"error": msg}. AppErrors keep their message
// and status; anything else becomes a 500 with fallback as the message.
// The cause is logged, and only appended to the message when the error
// marks it public.
func RespondError(c *gin.Context, err error, fallback string) {
	logger := GetLogger()

	var appErr *AppError
	if !errors.As(err, &appErr) {
		logger.Error(fallback, zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
		return
	}

	status := appErr.Kind.Status()
	msg := appErr.Message
	if appErr.PublicCause && appErr.Err != nil {
		msg = appErr.Error()
	}
	if status >= http.StatusInternalServerError {
		logger.Error(appErr.Message, zap.Stringer("kind", appErr.Kind), zap.Error(appErr.Err), zap.String("path", c.Request.URL.Path))
	} else {
		logger.Debug(msg, zap.Stringer("kind", appErr.Kind), zap.String("path", c.Request.URL.Path))
	}
	c.JSON(status, ErrorResponse{Error: msg})
}

// JSONError sends a standardized JSON error response.
func JSONError(c *gin.Context, status int, message string) {
	GetLogger().Warn(message, zap.Int("status", status))
	c.JSON(status, ErrorResponse{Error: message})
}
