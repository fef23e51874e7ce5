package middleware

import (
	"net/http"

	"SnapTalk/logger"
	"SnapTalk/tools/errs"

	"github.com/gin-gonic/gin"
)

// JSONError renders any error as the CodeError envelope. Non-code errors are
// logged and reported as 500.
func JSONError(c *gin.Context, err error) {
	if ce := errs.Unpack(err); ce != nil {
		status := ce.Code
		if status < 400 || status > 599 {
			status = http.StatusInternalServerError
		}
		c.JSON(status, ce)
		return
	}
	logger.Errorf("unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, errs.ErrInternal)
}
