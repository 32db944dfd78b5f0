package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staycal/internal/app/dto"
	availabilityapp "staycal/internal/app/handlers/availability"
	"staycal/internal/app/queries"
)

// AvailabilityHandler wires the availability query to HTTP.
type AvailabilityHandler struct {
	Queries queries.Bus
}

func (h AvailabilityHandler) Check(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "availability handler unavailable"})
		return
	}
	checkIn, ok := dateParam(c, "check_in", c.Query("check_in"))
	if !ok {
		return
	}
	checkOut, ok := dateParam(c, "check_out", c.Query("check_out"))
	if !ok {
		return
	}
	query := availabilityapp.CheckAvailabilityQuery{
		PropertyID:   c.Param("id"),
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		CheckoutView: c.Query("view") == "checkout",
	}
	result, err := queries.Ask[availabilityapp.CheckAvailabilityQuery, dto.AvailabilityResult](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
