package planner

import (
	"fmt"
	"strconv"
	"strings"

	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
)

// MinutesPerDay bounds every interval; intervals never roll over midnight.
const MinutesPerDay = 24 * 60

// Day is an ISO day of week, Monday=1 through Sunday=7.
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = map[string]Day{
	"monday":    Monday,
	"tuesday":   Tuesday,
	"wednesday": Wednesday,
	"thursday":  Thursday,
	"friday":    Friday,
	"saturday":  Saturday,
	"sunday":    Sunday,
	"lunes":     Monday,
	"martes":    Tuesday,
	"miercoles": Wednesday,
	"miércoles": Wednesday,
	"jueves":    Thursday,
	"viernes":   Friday,
	"sabado":    Saturday,
	"sábado":    Saturday,
	"domingo":   Sunday,
}

// Valid reports whether d is within Monday..Sunday.
func (d Day) Valid() bool {
	return d >= Monday && d <= Sunday
}

// String returns the English day name.
func (d Day) String() string {
	switch d {
	case Monday:
		return "MONDAY"
	case Tuesday:
		return "TUESDAY"
	case Wednesday:
		return "WEDNESDAY"
	case Thursday:
		return "THURSDAY"
	case Friday:
		return "FRIDAY"
	case Saturday:
		return "SATURDAY"
	case Sunday:
		return "SUNDAY"
	}
	return fmt.Sprintf("DAY(%d)", int(d))
}

// ParseDay accepts 1-7, English or Spanish day names.
func ParseDay(raw string) (Day, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if n, err := strconv.Atoi(value); err == nil {
		d := Day(n)
		if d.Valid() {
			return d, nil
		}
	}
	if d, ok := dayNames[value]; ok {
		return d, nil
	}
	return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day of week %q", raw))
}

// ParseClock converts "H", "HH", "HMM", "HHMM" (colons optional) into minutes since midnight.
func ParseClock(raw string) (int, error) {
	digits := strings.ReplaceAll(strings.TrimSpace(raw), ":", "")
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, invalidTime(raw)
		}
	}

	var hour, minute int
	switch len(digits) {
	case 1, 2:
		hour, _ = strconv.Atoi(digits)
	case 3, 4:
		hour, _ = strconv.Atoi(digits[:len(digits)-2])
		minute, _ = strconv.Atoi(digits[len(digits)-2:])
	default:
		return 0, invalidTime(raw)
	}
	if hour > 23 || minute > 59 {
		return 0, invalidTime(raw)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func invalidTime(raw string) error {
	return appErrors.Clone(appErrors.ErrInvalidTimeFormat, fmt.Sprintf("invalid time format %q", raw))
}

// TimeInterval is a half-open [Start, End) range of minutes on a single day.
type TimeInterval struct {
	day      Day
	start    int
	duration int
}

// NewInterval validates and builds an interval.
func NewInterval(day Day, startMinute, durationMinutes int) (TimeInterval, error) {
	if !day.Valid() {
		return TimeInterval{}, appErrors.Clone(appErrors.ErrInvalidInterval, fmt.Sprintf("invalid day %d", int(day)))
	}
	if startMinute < 0 || startMinute >= MinutesPerDay {
		return TimeInterval{}, appErrors.Clone(appErrors.ErrInvalidInterval, fmt.Sprintf("start minute %d out of range", startMinute))
	}
	if durationMinutes <= 0 {
		return TimeInterval{}, appErrors.Clone(appErrors.ErrInvalidInterval, "interval duration must be positive")
	}
	if startMinute+durationMinutes > MinutesPerDay {
		return TimeInterval{}, appErrors.Clone(appErrors.ErrInvalidInterval, "interval crosses midnight")
	}
	return TimeInterval{day: day, start: startMinute, duration: durationMinutes}, nil
}

// IntervalBetween builds an interval from start and end minutes.
func IntervalBetween(day Day, startMinute, endMinute int) (TimeInterval, error) {
	return NewInterval(day, startMinute, endMinute-startMinute)
}

// MustInterval panics on invalid input; intended for fixtures and constants.
func MustInterval(day Day, start, end string) TimeInterval {
	s, err := ParseClock(start)
	if err != nil {
		panic(err)
	}
	e, err := ParseClock(end)
	if err != nil {
		panic(err)
	}
	iv, err := IntervalBetween(day, s, e)
	if err != nil {
		panic(err)
	}
	return iv
}

func (t TimeInterval) Day() Day      { return t.day }
func (t TimeInterval) Start() int    { return t.start }
func (t TimeInterval) End() int      { return t.start + t.duration }
func (t TimeInterval) Duration() int { return t.duration }

// Hours returns the duration expressed in hours.
func (t TimeInterval) Hours() float64 {
	return float64(t.duration) / 60
}

// IsZero reports whether t is the zero value.
func (t TimeInterval) IsZero() bool {
	return t.duration == 0
}

// String renders the interval as "MONDAY 08:00-09:30".
func (t TimeInterval) String() string {
	return fmt.Sprintf("%s %s-%s", t.day, FormatClock(t.start), FormatClock(t.End()))
}

// Conflicts reports strict overlap; touching endpoints do not conflict.
func Conflicts(a, b TimeInterval) bool {
	return a.day == b.day && a.start < b.End() && b.start < a.End()
}

// Touches reports overlap or adjacency, the merge predicate.
func Touches(a, b TimeInterval) bool {
	return a.day == b.day && a.start <= b.End() && a.End() >= b.start
}

// Contains reports whether inner lies fully within outer.
func Contains(outer, inner TimeInterval) bool {
	return outer.day == inner.day && outer.start <= inner.start && inner.End() <= outer.End()
}
