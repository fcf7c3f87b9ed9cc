package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/logger"
)

// writeError translates an error into the JSON error envelope. Non-AppErrors
// surface as a generic internal error so internals never leak to clients.
func writeError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		logger.Error("unhandled error", logger.ErrorFields(c.FullPath(), err))
		appErr = errors.Internal(err)
	}
	c.JSON(errors.StatusOf(appErr), appErr.ToResponse())
}

func abortWithError(c *gin.Context, err error) {
	writeError(c, err)
	c.Abort()
}
