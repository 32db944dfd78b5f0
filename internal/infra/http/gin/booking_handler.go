package ginserver

import (
	"errors"
	"io"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"staycal/internal/app/commands"
	bookingapp "staycal/internal/app/handlers/booking"
)

// BookingHandler wires booking mutations to HTTP. HoldTTL is the hold
// duration used when a request asks for a hold without naming one.
type BookingHandler struct {
	Commands commands.Bus
	HoldTTL  time.Duration
}

type confirmBookingRequest struct {
	PropertyID string `json:"property_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Guests     int    `json:"guests"`
	CouponCode string `json:"coupon_code"`
	// Hold places a timed hold instead of confirming outright; HoldSeconds
	// overrides the configured hold duration.
	Hold        bool `json:"hold"`
	HoldSeconds int  `json:"hold_seconds"`
}

func (h BookingHandler) holdFor(req confirmBookingRequest) time.Duration {
	if req.HoldSeconds > 0 {
		return time.Duration(req.HoldSeconds) * time.Second
	}
	if req.Hold {
		return h.HoldTTL
	}
	return 0
}

func (h BookingHandler) Confirm(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "booking handler unavailable"})
		return
	}
	var req confirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkIn, ok := dateParam(c, "check_in", req.CheckIn)
	if !ok {
		return
	}
	checkOut, ok := dateParam(c, "check_out", req.CheckOut)
	if !ok {
		return
	}
	cmd := bookingapp.ConfirmBookingCommand{
		PropertyID: req.PropertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     req.Guests,
		CouponCode: req.CouponCode,
		HoldFor:    h.holdFor(req),
	}
	result, err := commands.Dispatch[bookingapp.ConfirmBookingCommand, *bookingapp.ConfirmBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	if result.Unavailable != nil {
		c.JSON(http.StatusConflict, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type releaseBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Release(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "booking handler unavailable"})
		return
	}
	// body is optional; a bare release defaults the reason
	var req releaseBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.ReleaseBookingCommand{
		BookingID: c.Param("id"),
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[bookingapp.ReleaseBookingCommand, *bookingapp.ReleaseBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
