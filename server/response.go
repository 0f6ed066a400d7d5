package server

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/asrd/errors"
)

// RespondWithError inspects err: if it is an *errors.AppError the status
// and structured body are derived automatically; otherwise a generic 500
// is sent. The body always carries "error" as a plain message string.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	internal := errors.Internal(err)
	c.JSON(internal.HTTPStatus, internal.ToResponse())
}
