package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// pathID parses the :id segment. Ids that are not positive integers can
// never match a row.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// queryPage falls back to the first page for missing, malformed or
// non-positive values.
func queryPage(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
