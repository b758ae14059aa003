package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/blnkfinance/blnk-atm/internal/apierror"
)

// respondWithError writes err as an apierror body with the matching status.
func respondWithError(c *gin.Context, err error) {
	apiErr := apierror.FromError(err)
	c.JSON(apierror.MapErrorToHTTPStatus(apiErr), gin.H{"error": apiErr.Message, "code": apiErr.Code})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": apierror.ErrInvalidInput})
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer", "code": apierror.ErrInvalidInput})
		return 0, false
	}
	return id, true
}
