package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staycal/internal/app/dto"
	pricingapp "staycal/internal/app/handlers/pricing"
	"staycal/internal/app/queries"
)

// PricingHandler wires the quote query to HTTP.
type PricingHandler struct {
	Queries queries.Bus
}

// Quote responds with either a price breakdown or a structured
// unavailability; both are 200s since neither is a failure.
func (h PricingHandler) Quote(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pricing handler unavailable"})
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
	query := pricingapp.GetQuoteQuery{
		PropertyID: c.Param("id"),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     parseIntWithDefault(c.Query("guests"), 1),
		CouponCode: c.Query("coupon"),
	}
	result, err := queries.Ask[pricingapp.GetQuoteQuery, dto.QuoteResult](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PricingHTTP = PricingHandler{}
