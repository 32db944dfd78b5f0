package calendarapp

import (
	"context"

	"staycal/internal/app/dto"
	"staycal/internal/app/queries"
	"staycal/internal/domain/calendar"
	"staycal/internal/domain/shared/dates"
)

const getMonthKey = "calendar.month"

type GetMonthQuery struct {
	PropertyID string
	Month      dates.MonthKey
}

func (q GetMonthQuery) Key() string { return getMonthKey }

type GetMonthHandler struct {
	Calendars calendar.Repository
}

func (h *GetMonthHandler) Handle(ctx context.Context, q GetMonthQuery) (dto.CalendarMonth, error) {
	doc, err := h.Calendars.Month(ctx, q.PropertyID, q.Month)
	if err != nil {
		return dto.CalendarMonth{}, err
	}
	return dto.MapCalendarMonth(doc), nil
}

var _ queries.Handler[GetMonthQuery, dto.CalendarMonth] = (*GetMonthHandler)(nil)
