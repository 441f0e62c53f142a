package planner

import (
	"fmt"
	"time"

	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
)

// WeekID is an ISO-8601 week identifier such as "2026-W42".
type WeekID string

// MonthKey identifies a calendar month as "2026-10".
type MonthKey string

// WeekOf returns the ISO week containing t.
func WeekOf(t time.Time) WeekID {
	year, week := t.ISOWeek()
	return WeekID(fmt.Sprintf("%04d-W%02d", year, week))
}

// ParseWeekID validates a week identifier.
func ParseWeekID(raw string) (WeekID, error) {
	var year, week int
	if _, err := fmt.Sscanf(raw, "%4d-W%2d", &year, &week); err != nil || len(raw) != 8 {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid week id %q", raw))
	}
	id := WeekID(fmt.Sprintf("%04d-W%02d", year, week))
	if string(id) != raw || week < 1 || week > 53 || WeekOf(isoMonday(year, week)) != id {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("week %q does not exist", raw))
	}
	return id, nil
}

// ParseMonthKey validates a "YYYY-MM" month key.
func ParseMonthKey(raw string) (MonthKey, error) {
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid month %q", raw))
	}
	return MonthOf(t), nil
}

// MonthOf returns the month key of t.
func MonthOf(t time.Time) MonthKey {
	return MonthKey(t.Format("2006-01"))
}

// Monday returns midnight UTC of the week's Monday. Malformed ids yield the zero time.
func (w WeekID) Monday() time.Time {
	var year, week int
	if _, err := fmt.Sscanf(string(w), "%4d-W%2d", &year, &week); err != nil {
		return time.Time{}
	}
	return isoMonday(year, week)
}

func isoMonday(year, week int) time.Time {
	// January 4th always falls in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := int(jan4.Weekday()+6) % 7
	week1Monday := jan4.AddDate(0, 0, -offset)
	return week1Monday.AddDate(0, 0, (week-1)*7)
}

// Month returns the month bucket of the week, taken from its Monday.
func (w WeekID) Month() MonthKey {
	return MonthOf(w.Monday())
}

// Date returns the calendar date of day d within the week.
func (w WeekID) Date(d Day) time.Time {
	return w.Monday().AddDate(0, 0, int(d)-1)
}

// Next returns the following week.
func (w WeekID) Next() WeekID {
	return WeekOf(w.Monday().AddDate(0, 0, 7))
}

// IsPast reports whether the week's day d falls strictly before the calendar date of today.
func (w WeekID) IsPast(d Day, today time.Time) bool {
	session := w.Date(d)
	y, m, dd := today.Date()
	todayDate := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	return session.Before(todayDate)
}
