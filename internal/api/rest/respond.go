package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/easygrow/plantcore/internal/types"
	"github.com/gin-gonic/gin"
)

// respondError translates a service error into the HTTP envelope. Unknown
// errors are reported as internal without leaking their message.
func respondError(c *gin.Context, err error) {
	kind := types.KindOf(err)

	status := http.StatusInternalServerError
	code := "INTERNAL_500"
	message := "internal server error"

	switch kind {
	case types.KindNotFound:
		status, code, message = http.StatusNotFound, "NOT_FOUND_404", err.Error()
	case types.KindConflict:
		status, code, message = http.StatusConflict, "CONFLICT_409", err.Error()
	case types.KindInvalidInput:
		status, code, message = http.StatusBadRequest, "BAD_REQUEST_400", err.Error()
	case types.KindUnauthorized:
		status, code, message = http.StatusUnauthorized, "AUTH_401", err.Error()
	}

	c.JSON(status, types.NewErrorResponse(code, message, nil))
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, types.NewErrorResponse("BAD_REQUEST_400", err.Error(), nil))
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(
			"BAD_REQUEST_400", "invalid "+name, nil))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(
			"BAD_REQUEST_400", name+" must be an integer", nil))
		return 0, false
	}
	return value, true
}

func queryBool(c *gin.Context, name string, def bool) (bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(
			"BAD_REQUEST_400", name+" must be a boolean", nil))
		return false, false
	}
	return value, true
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// queryDate accepts RFC3339 timestamps or bare dates.
func queryDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, true
		}
	}
	c.JSON(http.StatusBadRequest, types.NewErrorResponse(
		"BAD_REQUEST_400", name+" must be an RFC3339 timestamp or YYYY-MM-DD date", nil))
	return nil, false
}
