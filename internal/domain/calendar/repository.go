package calendar

import (
	"context"

	"staycal/internal/domain/shared/dates"
)

// Repository is the calendar store: a key-value view over month documents
// with whole-document replacement and single-day patching. Implementations
// must honor the document Version on Replace (compare-and-swap) so
// concurrent regeneration and booking flips cannot silently overwrite each
// other.
type Repository interface {
	// Month returns the document or ErrMonthNotFound.
	Month(ctx context.Context, propertyID string, key dates.MonthKey) (*CalendarMonth, error)
	// MonthsTouching returns documents for every month a stay spans, in
	// chronological order. Missing months surface as a DataGapError.
	MonthsTouching(ctx context.Context, propertyID string, stay dates.StayRange) ([]*CalendarMonth, error)
	// Replace writes the whole document. The write succeeds only if the
	// stored version still equals doc.Version; on success the version is
	// bumped. Upserts when the document does not exist yet.
	Replace(ctx context.Context, doc *CalendarMonth) error
	// PatchDay updates one day entry in place without touching the rest of
	// the document.
	PatchDay(ctx context.Context, propertyID string, key dates.MonthKey, day int, entry DayEntry) error
}
