package dataprocessing

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ExcelEpoch is day zero of the 1900 date system. It sits on 30 December
// so that the phantom 29 February 1900 cancels out for modern dates.
var ExcelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const msPerDay = 24 * 60 * 60 * 1000

// maxExcelSerial is one past the last serial Excel accepts (9999-12-31).
const maxExcelSerial = 2958466

var clockPattern = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})(?::(\d{2})(?:\.\d+)?)?\s*(AM|PM)?$`)

// dateLayouts are the textual date and date-time forms accepted in date
// cells that were typed as text rather than entered as Excel dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	"1/2/06 15:04",
	"1/2/06",
	"01-02-06 15:04",
	"01-02-06",
	"2 Jan 2006 15:04",
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
	"Monday, January 2, 2006",
	"Mon Jan 2 2006 15:04:05",
	"Mon Jan 2 2006",
}

// dateTimeLayouts is the subset of dateLayouts that carries a time of day.
var dateTimeLayouts = func() []string {
	var out []string
	for _, l := range dateLayouts {
		if strings.Contains(l, "15") || strings.Contains(l, "3:04") {
			out = append(out, l)
		}
	}
	return out
}()

// ExcelSerialToTime converts a 1900-system serial (days since ExcelEpoch,
// fractional part = time of day) to a UTC timestamp rounded to the
// millisecond.
func ExcelSerialToTime(serial float64) time.Time {
	return serialToTime(math.Floor(serial), serial-math.Floor(serial))
}

// serialToTime adds whole days by calendar so that serials beyond the
// range of time.Duration stay exact; only the time of day is a Duration.
func serialToTime(days, fraction float64) time.Time {
	ms := math.Round(fraction * msPerDay)
	return ExcelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(ms) * time.Millisecond)
}

func validSerial(f float64) bool {
	return f >= 0 && f < maxExcelSerial
}

// ParseExcelDateTime combines a date cell and an optional time cell into a
// UTC timestamp. A numeric date is an Excel serial; its time of day comes
// from a positive numeric time value when given, else from the serial's own
// fraction. A textual time (HH:MM[:SS] with optional AM/PM) overrides the
// time of day. Unrecognised dates and serials outside Excel's range yield
// nil.
func ParseExcelDateTime(dateVal, timeVal any) *time.Time {
	var t time.Time
	switch d := dateVal.(type) {
	case nil:
		return nil
	case float64:
		if !validSerial(d) {
			return nil
		}
		days := math.Floor(d)
		fraction := d - days
		if tf, ok := timeFraction(timeVal); ok {
			fraction = tf
		}
		t = serialToTime(days, fraction)
	case string:
		parsed, ok := parseDateText(d)
		if !ok {
			return nil
		}
		t = parsed
		if tf, ok := timeFraction(timeVal); ok {
			y, m, day := t.Date()
			midnight := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
			t = midnight.Add(time.Duration(math.Round(tf*msPerDay)) * time.Millisecond)
		}
	default:
		return nil
	}

	if s, ok := timeVal.(string); ok && strings.Contains(s, ":") {
		if h, m, sec, ok := parseClockParts(s); ok {
			y, mo, day := t.Date()
			t = time.Date(y, mo, day, h, m, sec, 0, time.UTC)
		}
	}
	return &t
}

// timeFraction extracts a positive time-of-day fraction from a numeric time
// cell. Values above one carry a date part, which is discarded.
func timeFraction(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || f <= 0 {
		return 0, false
	}
	return f - math.Floor(f), true
}

func parseDateText(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && validSerial(f) {
		return ExcelSerialToTime(f), true
	}
	return time.Time{}, false
}

// parseClockParts reads "H:MM", "H:MM:SS" and either with an AM/PM suffix.
// 12 AM is hour 0 and 12 PM is hour 12.
func parseClockParts(s string) (hour, minute, second int, ok bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		second, _ = strconv.Atoi(m[3])
	}
	if minute > 59 || second > 59 {
		return 0, 0, 0, false
	}
	switch strings.ToUpper(m[4]) {
	case "AM":
		if hour < 1 || hour > 12 {
			return 0, 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return 0, 0, 0, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, 0, 0, false
		}
	}
	return hour, minute, second, true
}

// ParseClockTime normalises a shift time to "HH:MM". It accepts a full
// date-time string or a clock time with optional AM/PM; anything else is
// returned unchanged.
func ParseClockTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
		}
	}
	if h, m, _, ok := parseClockParts(s); ok {
		return fmt.Sprintf("%02d:%02d", h, m)
	}
	return s
}

// FractionToClock renders a day fraction as "HH:MM".
func FractionToClock(f float64) string {
	f = f - math.Floor(f)
	minutes := int(math.Round(f*24*60)) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// clockMinutes converts a clock string to minutes since midnight.
func clockMinutes(s string) (int, bool) {
	parts := strings.SplitN(ParseClockTime(s), ":", 3)
	if len(parts) < 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return h*60 + m, true
}

// ActivityDuration returns the "H:MM" span between two clock times,
// wrapping past midnight. Blank or unreadable times give "".
func ActivityDuration(from, to string) string {
	if from == "" || to == "" {
		return ""
	}
	start, ok := clockMinutes(from)
	if !ok {
		return ""
	}
	end, ok := clockMinutes(to)
	if !ok {
		return ""
	}
	diff := end - start
	if diff < 0 {
		diff += 24 * 60
	}
	return fmt.Sprintf("%d:%02d", diff/60, diff%60)
}

// ParseDuration converts an "H:MM" duration into decimal hours; any other
// shape counts as zero.
func ParseDuration(d string) float64 {
	parts := strings.Split(d, ":")
	if len(parts) != 2 {
		return 0
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}
	return float64(h) + float64(m)/60
}
