package core

import (
	"testing"
	"time"
)

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func TestAddMonthClampedReclampsEveryMonth(t *testing.T) {
	// A day-31 pattern must clamp independently in every month it lands
	// on: Jan 31 -> Feb 29 (leap) -> Mar 31 -> Apr 30 -> May 31.
	cur := at(2024, time.January, 31, 9)
	want := []time.Time{
		at(2024, time.February, 29, 9),
		at(2024, time.March, 31, 9),
		at(2024, time.April, 30, 9),
		at(2024, time.May, 31, 9),
	}
	for i, w := range want {
		cur = AddMonthClamped(cur, 1, 31)
		if !cur.Equal(w) {
			t.Fatalf("step %d: got %v, want %v", i, cur, w)
		}
	}
}

func TestAddMonthClampedNonLeapFebruary(t *testing.T) {
	got := AddMonthClamped(at(2023, time.January, 31, 9), 1, 31)
	if want := at(2023, time.February, 28, 9); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAddMonthClampedCrossesYear(t *testing.T) {
	got := AddMonthClamped(at(2024, time.December, 15, 9), 1, 15)
	if want := at(2025, time.January, 15, 9); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAddMonthClampedPreservesTimeOfDay(t *testing.T) {
	in := time.Date(2024, time.March, 10, 14, 45, 30, 0, time.UTC)
	got := AddMonthClamped(in, 1, 10)
	if got.Hour() != 14 || got.Minute() != 45 || got.Second() != 30 {
		t.Fatalf("time-of-day not preserved: %v", got)
	}
}

func TestAddDaysAndWeeks(t *testing.T) {
	base := at(2024, time.February, 27, 9)
	if got := AddDays(base, 3); !got.Equal(at(2024, time.March, 1, 9)) {
		t.Fatalf("AddDays across month boundary: got %v", got)
	}
	if got := AddWeeks(base, 1); !got.Equal(at(2024, time.March, 5, 9)) {
		t.Fatalf("AddWeeks: got %v", got)
	}
}

func TestLastDayOfMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}
	for _, tc := range cases {
		if got := LastDayOfMonth(tc.year, tc.month); got != tc.want {
			t.Fatalf("LastDayOfMonth(%d, %v) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestInitialNextRunDaily(t *testing.T) {
	// Created before the anchor hour: fires today at 09:00.
	got := InitialNextRun(at(2024, time.March, 10, 8), Daily, 0, 0)
	if want := at(2024, time.March, 10, 9); !got.Equal(want) {
		t.Fatalf("before anchor: got %v, want %v", got, want)
	}
	// Created after the anchor hour: rolls to tomorrow 09:00.
	got = InitialNextRun(at(2024, time.March, 10, 14), Daily, 0, 0)
	if want := at(2024, time.March, 11, 9); !got.Equal(want) {
		t.Fatalf("after anchor: got %v, want %v", got, want)
	}
}

func TestInitialNextRunWeekly(t *testing.T) {
	// 2024-03-10 is a Sunday (weekday 0).
	now := at(2024, time.March, 10, 8)

	// Target Friday (5): five days ahead.
	got := InitialNextRun(now, Weekly, 0, 5)
	if want := at(2024, time.March, 15, 9); !got.Equal(want) {
		t.Fatalf("friday target: got %v, want %v", got, want)
	}
	// Target Sunday before 09:00: fires today.
	got = InitialNextRun(now, Weekly, 0, 0)
	if want := at(2024, time.March, 10, 9); !got.Equal(want) {
		t.Fatalf("same-day before anchor: got %v, want %v", got, want)
	}
	// Target Sunday after 09:00: next week.
	got = InitialNextRun(at(2024, time.March, 10, 14), Weekly, 0, 0)
	if want := at(2024, time.March, 17, 9); !got.Equal(want) {
		t.Fatalf("same-day after anchor: got %v, want %v", got, want)
	}
}

func TestInitialNextRunMonthly(t *testing.T) {
	// Target day already past this month: next month.
	got := InitialNextRun(at(2024, time.March, 20, 12), Monthly, 15, 0)
	if want := at(2024, time.April, 15, 9); !got.Equal(want) {
		t.Fatalf("past target: got %v, want %v", got, want)
	}
	// Target day ahead this month.
	got = InitialNextRun(at(2024, time.March, 10, 12), Monthly, 15, 0)
	if want := at(2024, time.March, 15, 9); !got.Equal(want) {
		t.Fatalf("upcoming target: got %v, want %v", got, want)
	}
	// Day 31 in a 30-day month clamps.
	got = InitialNextRun(at(2024, time.April, 1, 8), Monthly, 31, 0)
	if want := at(2024, time.April, 30, 9); !got.Equal(want) {
		t.Fatalf("clamped target: got %v, want %v", got, want)
	}
}
