package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/logger"
)

// Envelope is the success body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// RespondOK sends a 200 envelope.
func RespondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// RespondWithError answers with the error envelope. An *apperrors.AppError
// keeps its status, code and message; anything else is logged in full and
// reported as a generic 500.
func RespondWithError(c *gin.Context, log *logger.Logger, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		log.WithContext(c.Request.Context()).Error("Unhandled error", map[string]interface{}{
			logger.FieldError: err.Error(),
			"path":            c.Request.URL.Path,
		})
		appErr = apperrors.Internal(err)
	}
	RespondAppError(c, appErr)
}

// RespondAppError sends appErr as is.
func RespondAppError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
