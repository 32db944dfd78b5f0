package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staycal/internal/app/dto"
	calendarapp "staycal/internal/app/handlers/calendar"
	"staycal/internal/app/queries"
)

// CalendarHandler serves the materialized month view.
type CalendarHandler struct {
	Queries queries.Bus
}

func (h CalendarHandler) Month(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "calendar handler unavailable"})
		return
	}
	key, ok := monthParam(c, "month", c.Param("month"))
	if !ok {
		return
	}
	query := calendarapp.GetMonthQuery{PropertyID: c.Param("id"), Month: key}
	result, err := queries.Ask[calendarapp.GetMonthQuery, dto.CalendarMonth](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ CalendarHTTP = CalendarHandler{}
