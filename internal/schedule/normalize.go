// Package schedule holds the booking rules for appointment slots: canonical
// date and clock values and the classification of a requested slot against
// the appointments already on the calendar.
package schedule

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

var (
	ErrInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrInvalidTime = errors.New("invalid time format, expected HH:MM or HH:MM:SS")

	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^([0-1]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)
)

// Date is a calendar date in YYYY-MM-DD form with no time zone attached.
type Date string

// Clock is a wall-clock time in HH:MM:SS form.
type Clock string

// NormalizeDate converts a date given as a string, a timestamp string or a
// time.Time into its canonical form. Timestamps keep their own calendar day;
// nothing is converted to UTC.
func NormalizeDate(v any) (Date, error) {
	switch t := v.(type) {
	case Date:
		return NormalizeDate(string(t))
	case time.Time:
		return Date(t.Format(DateLayout)), nil
	case *time.Time:
		if t == nil {
			return "", ErrInvalidDate
		}
		return NormalizeDate(*t)
	case []byte:
		return NormalizeDate(string(t))
	case string:
		s := strings.TrimSpace(t)
		if i := strings.IndexByte(s, 'T'); i >= 0 {
			s = s[:i]
		}
		if !datePattern.MatchString(s) {
			return "", ErrInvalidDate
		}
		return Date(s), nil
	default:
		return "", ErrInvalidDate
	}
}

// NormalizeTime converts HH:MM, HH:MM:SS or a time.Time into HH:MM:SS.
func NormalizeTime(v any) (Clock, error) {
	switch t := v.(type) {
	case Clock:
		return NormalizeTime(string(t))
	case time.Time:
		return Clock(t.Format(ClockLayout)), nil
	case *time.Time:
		if t == nil {
			return "", ErrInvalidTime
		}
		return NormalizeTime(*t)
	case []byte:
		return NormalizeTime(string(t))
	case string:
		s := strings.TrimSpace(t)
		if !timePattern.MatchString(s) {
			return "", ErrInvalidTime
		}
		if len(s) == 5 {
			s += ":00"
		}
		return Clock(s), nil
	default:
		return "", ErrInvalidTime
	}
}

func (d Date) String() string { return string(d) }

// Scan normalizes DATE columns, which lib/pq hands back as time.Time.
func (d *Date) Scan(src any) error {
	if src == nil {
		return fmt.Errorf("schedule: cannot scan NULL into Date")
	}
	v, err := NormalizeDate(src)
	if err != nil {
		return fmt.Errorf("schedule: scan date %v: %w", src, err)
	}
	*d = v
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return string(d), nil
}

func (c Clock) String() string { return string(c) }

// Scan normalizes TIME columns.
func (c *Clock) Scan(src any) error {
	if src == nil {
		return fmt.Errorf("schedule: cannot scan NULL into Clock")
	}
	v, err := NormalizeTime(src)
	if err != nil {
		return fmt.Errorf("schedule: scan time %v: %w", src, err)
	}
	*c = v
	return nil
}

func (c Clock) Value() (driver.Value, error) {
	return string(c), nil
}

// Before compares two canonical clocks. HH:MM:SS sorts lexically.
func (c Clock) Before(o Clock) bool {
	return c < o
}
