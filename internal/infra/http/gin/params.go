package ginserver

import (
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"staycal/internal/domain/shared/dates"
)

// swappable in tests
var timeNow = time.Now

func parseIntWithDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// dateParam parses an ISO YYYY-MM-DD value and writes the 400 itself on
// failure.
func dateParam(c *gin.Context, name, raw string) (dates.Date, bool) {
	d, err := dates.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a YYYY-MM-DD date"})
		return dates.Date{}, false
	}
	return d, true
}

func monthParam(c *gin.Context, name, raw string) (dates.MonthKey, bool) {
	key, err := dates.ParseMonthKey(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a YYYY-MM month"})
		return dates.MonthKey{}, false
	}
	return key, true
}
