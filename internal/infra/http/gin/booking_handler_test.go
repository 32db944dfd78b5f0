package ginserver

import (
	"testing"
	"time"
)

func TestBookingHandlerHoldDuration(t *testing.T) {
	h := BookingHandler{HoldTTL: 30 * time.Minute}
	tests := []struct {
		name string
		req  confirmBookingRequest
		want time.Duration
	}{
		{"plain confirm", confirmBookingRequest{}, 0},
		{"hold with configured default", confirmBookingRequest{Hold: true}, 30 * time.Minute},
		{"explicit seconds", confirmBookingRequest{HoldSeconds: 90}, 90 * time.Second},
		{"explicit seconds win over flag", confirmBookingRequest{Hold: true, HoldSeconds: 60}, time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.holdFor(tt.req); got != tt.want {
				t.Fatalf("holdFor = %v, want %v", got, tt.want)
			}
		})
	}
}
