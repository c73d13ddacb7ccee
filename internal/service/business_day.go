package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/model"
)

// Window is a half-open time range [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

const dateLayout = "2006-01-02"

// LoadLocation resolves a company timezone; empty means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, apierror.Validationf("unknown timezone %q", name)
	}
	return loc, nil
}

// ParseClock parses "HH:MM" on a 24-hour clock.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, apierror.Validationf("time %q must be HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// ParseOperatingDays reads a comma separated weekday list ("0,1,6").
// Entries that are not weekdays are ignored.
func ParseOperatingDays(s string) map[time.Weekday]bool {
	days := make(map[time.Weekday]bool, 7)
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days[time.Weekday(n)] = true
	}
	return days
}

// FormatOperatingDays is the inverse of ParseOperatingDays.
func FormatOperatingDays(days []int) string {
	sorted := append([]int(nil), days...)
	sort.Ints(sorted)
	parts := make([]string, 0, len(sorted))
	for i, d := range sorted {
		if i > 0 && sorted[i-1] == d {
			continue
		}
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

// CalendarDay is midnight to midnight of date's day in loc.
func CalendarDay(date time.Time, loc *time.Location) Window {
	y, m, d := date.In(loc).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return Window{From: from, To: from.AddDate(0, 0, 1)}
}

// clockWindow opens at start on date's day and closes at end, on the next
// day when end is not after start.
func clockWindow(date time.Time, loc *time.Location, start, end string) (Window, error) {
	sh, sm, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	eh, em, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	y, m, d := date.In(loc).Date()
	from := time.Date(y, m, d, sh, sm, 0, 0, loc)
	to := time.Date(y, m, d, eh, em, 0, 0, loc)
	if !to.After(from) {
		to = to.AddDate(0, 0, 1)
	}
	return Window{From: from, To: to}, nil
}

// BusinessDay is the income window of date for company c. Without business
// hours, and on days the company does not operate, it is the calendar day.
func BusinessDay(c *model.Company, date time.Time, loc *time.Location) Window {
	calendar := CalendarDay(date, loc)
	if !c.BusinessHoursEnabled {
		return calendar
	}
	weekday := date.In(loc).Weekday()

	start, end := c.BusinessDayStart, c.BusinessDayEnd
	if c.UsePerDaySchedule {
		var found *model.CompanyDaySchedule
		for i := range c.DaySchedules {
			if c.DaySchedules[i].Weekday == int(weekday) {
				found = &c.DaySchedules[i]
				break
			}
		}
		if found == nil || found.Closed {
			return calendar
		}
		start, end = found.Start, found.End
	} else if !ParseOperatingDays(c.OperatingDays)[weekday] {
		return calendar
	}

	w, err := clockWindow(date, loc, start, end)
	if err != nil {
		return calendar
	}
	return w
}

// parseReportDate accepts YYYY-MM-DD in loc or an RFC3339 instant. The bool
// reports whether the value was a plain date.
func parseReportDate(s string, loc *time.Location) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, apierror.Validationf("date %q must be YYYY-MM-DD or RFC3339", s)
}

// ReportWindows computes the income and expense windows of a report.
//
// DAILY uses startDate only: expenses cover the calendar day and income the
// business day. CUSTOM with plain dates spans whole days from startDate to
// endDate inclusive, using the business day at both ends for income. CUSTOM
// with RFC3339 instants uses [start, end) literally for both windows.
func ReportWindows(c *model.Company, reportType, startDate, endDate string) (income, expense Window, err error) {
	loc, err := LoadLocation(c.Timezone)
	if err != nil {
		return Window{}, Window{}, err
	}
	start, startIsDate, err := parseReportDate(startDate, loc)
	if err != nil {
		return Window{}, Window{}, err
	}

	switch reportType {
	case model.ReportDaily:
		return BusinessDay(c, start, loc), CalendarDay(start, loc), nil

	case model.ReportCustom:
		if strings.TrimSpace(endDate) == "" {
			return Window{}, Window{}, apierror.Validationf("endDate is required for CUSTOM reports")
		}
		end, endIsDate, err := parseReportDate(endDate, loc)
		if err != nil {
			return Window{}, Window{}, err
		}
		if startIsDate != endIsDate {
			return Window{}, Window{}, apierror.Validationf("startDate and endDate must use the same format")
		}
		if end.Before(start) {
			return Window{}, Window{}, apierror.Validationf("endDate must not be before startDate")
		}
		if !startIsDate {
			if !end.After(start) {
				return Window{}, Window{}, apierror.Validationf("endDate must be after startDate")
			}
			w := Window{From: start.UTC(), To: end.UTC()}
			return w, w, nil
		}
		income = Window{From: BusinessDay(c, start, loc).From, To: BusinessDay(c, end, loc).To}
		expense = Window{From: CalendarDay(start, loc).From, To: CalendarDay(end, loc).To}
		return income, expense, nil

	default:
		return Window{}, Window{}, apierror.Validationf("unknown report type %q", reportType)
	}
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.From.Format(time.RFC3339), w.To.Format(time.RFC3339))
}
