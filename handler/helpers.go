package handler

import (
	"time"

	"goaltracker/dto"
	"goaltracker/utils"

	"github.com/gin-gonic/gin"
)

// bind decodes the JSON body into req and writes a 400 on failure.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// dateQuery reads an optional YYYY-MM-DD query parameter.
func dateQuery(c *gin.Context, name string) (time.Time, bool) {
	t, err := dto.ParseOptionalDate(name, c.Query(name))
	if err != nil {
		utils.Fail(c, err)
		return time.Time{}, false
	}
	return t, true
}

// date parses an optional body date, writing a 400 on failure.
func date(c *gin.Context, field, value string) (time.Time, bool) {
	t, err := dto.ParseOptionalDate(field, value)
	if err != nil {
		utils.Fail(c, err)
		return time.Time{}, false
	}
	return t, true
}
