package dates

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	d, err := Parse("2026-06-20")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Year != 2026 || d.Month != time.June || d.Day != 20 {
		t.Fatalf("got %+v", d)
	}
	if d.String() != "2026-06-20" {
		t.Fatalf("String = %q", d.String())
	}
	if _, err := Parse("2026-6-2"); err == nil {
		t.Fatal("expected error for non-ISO input")
	}
	if _, err := Parse("not-a-date"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAddDaysRollsOverMonths(t *testing.T) {
	tests := []struct {
		start string
		n     int
		want  string
	}{
		{"2026-01-31", 1, "2026-02-01"},
		{"2026-02-28", 1, "2026-03-01"},
		{"2028-02-28", 1, "2028-02-29"}, // leap year
		{"2026-12-31", 1, "2027-01-01"},
		{"2026-06-01", -1, "2026-05-31"},
	}
	for _, tt := range tests {
		got := MustParse(tt.start).AddDays(tt.n)
		if got.String() != tt.want {
			t.Errorf("%s + %d days = %s, want %s", tt.start, tt.n, got, tt.want)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	a := MustParse("2026-06-20")
	b := MustParse("2026-06-23")
	if got := a.DaysUntil(b); got != 3 {
		t.Fatalf("DaysUntil = %d, want 3", got)
	}
	if got := b.DaysUntil(a); got != -3 {
		t.Fatalf("reverse DaysUntil = %d, want -3", got)
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		key  string
		want int
	}{
		{"2026-01", 31},
		{"2026-02", 28},
		{"2028-02", 29},
		{"2026-04", 30},
	}
	for _, tt := range tests {
		key, err := ParseMonthKey(tt.key)
		if err != nil {
			t.Fatalf("ParseMonthKey(%q): %v", tt.key, err)
		}
		if got := key.DaysInMonth(); got != tt.want {
			t.Errorf("%s has %d days, want %d", tt.key, got, tt.want)
		}
	}
}

func TestMonthKeyNext(t *testing.T) {
	key := MonthKey{Year: 2026, Month: time.December}
	next := key.Next()
	if next.Year != 2027 || next.Month != time.January {
		t.Fatalf("Next = %+v", next)
	}
}

func TestStayRangeValidate(t *testing.T) {
	if _, err := NewStayRange(MustParse("2026-06-23"), MustParse("2026-06-23")); err == nil {
		t.Fatal("zero-night range must be rejected")
	}
	if _, err := NewStayRange(MustParse("2026-06-23"), MustParse("2026-06-20")); err == nil {
		t.Fatal("inverted range must be rejected")
	}
	stay, err := NewStayRange(MustParse("2026-06-20"), MustParse("2026-06-23"))
	if err != nil {
		t.Fatalf("NewStayRange: %v", err)
	}
	if stay.Nights() != 3 {
		t.Fatalf("Nights = %d, want 3", stay.Nights())
	}
}

func TestStayRangeDaysExcludesCheckout(t *testing.T) {
	stay, _ := NewStayRange(MustParse("2026-06-20"), MustParse("2026-06-23"))
	days := stay.Days()
	want := []string{"2026-06-20", "2026-06-21", "2026-06-22"}
	if len(days) != len(want) {
		t.Fatalf("got %d days, want %d", len(days), len(want))
	}
	for i, d := range days {
		if d.String() != want[i] {
			t.Errorf("day %d = %s, want %s", i, d, want[i])
		}
	}
}

func TestStayRangeMonthsSpansBoundary(t *testing.T) {
	stay, _ := NewStayRange(MustParse("2026-06-28"), MustParse("2026-08-02"))
	months := stay.Months()
	want := []string{"2026-06", "2026-07", "2026-08"}
	if len(months) != len(want) {
		t.Fatalf("got %v", months)
	}
	for i, m := range months {
		if m.String() != want[i] {
			t.Errorf("month %d = %s, want %s", i, m, want[i])
		}
	}
}

func TestStayRangeContainsAndOverlaps(t *testing.T) {
	stay, _ := NewStayRange(MustParse("2026-06-20"), MustParse("2026-06-23"))
	if !stay.Contains(MustParse("2026-06-20")) || !stay.Contains(MustParse("2026-06-22")) {
		t.Fatal("occupied nights must be contained")
	}
	if stay.Contains(MustParse("2026-06-23")) {
		t.Fatal("checkout day is not occupied")
	}
	backToBack, _ := NewStayRange(MustParse("2026-06-23"), MustParse("2026-06-25"))
	if stay.Overlaps(backToBack) {
		t.Fatal("back-to-back stays must not overlap")
	}
	clash, _ := NewStayRange(MustParse("2026-06-22"), MustParse("2026-06-24"))
	if !stay.Overlaps(clash) {
		t.Fatal("expected overlap")
	}
}
