package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staycal/internal/app/apperr"
	"staycal/internal/domain/booking"
	domaincalendar "staycal/internal/domain/calendar"
	domainrules "staycal/internal/domain/rules"
)

// respondError maps application and domain errors onto HTTP statuses.
// Concurrency losses are 409 so callers know a retry may succeed.
func respondError(c *gin.Context, err error) {
	var cfgErr *domainrules.ConfigError
	var gapErr *domaincalendar.DataGapError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domaincalendar.ErrConcurrentUpdate),
		errors.Is(err, booking.ErrConcurrentUpdate),
		errors.Is(err, booking.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "pricing config incomplete",
			"missing_fields": cfgErr.Missing,
		})
	case errors.As(err, &gapErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "price_unavailable",
			"month": gapErr.Month.String(),
		})
	case errors.Is(err, domaincalendar.ErrMonthNotFound),
		errors.Is(err, booking.ErrNotFound),
		errors.Is(err, domainrules.ErrConfigNotFound),
		errors.Is(err, domainrules.ErrOverrideNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
