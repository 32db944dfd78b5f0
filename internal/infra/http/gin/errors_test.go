package ginserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"

	"staycal/internal/app/apperr"
	"staycal/internal/domain/booking"
	domaincalendar "staycal/internal/domain/calendar"
	domainrules "staycal/internal/domain/rules"
	"staycal/internal/domain/shared/dates"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validation("bad input"), http.StatusBadRequest},
		{"calendar version race", domaincalendar.ErrConcurrentUpdate, http.StatusConflict},
		{"booking version race", booking.ErrConcurrentUpdate, http.StatusConflict},
		{"invalid transition", booking.ErrInvalidState, http.StatusConflict},
		{"config incomplete", &domainrules.ConfigError{PropertyID: "p", Missing: []string{"base_price_per_night"}}, http.StatusUnprocessableEntity},
		{"data gap", &domaincalendar.DataGapError{PropertyID: "p", Month: dates.MonthKey{Year: 2026, Month: time.June}}, http.StatusUnprocessableEntity},
		{"booking not found", booking.ErrNotFound, http.StatusNotFound},
		{"override not found", domainrules.ErrOverrideNotFound, http.StatusNotFound},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tt.err)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
