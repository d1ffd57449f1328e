package dto

import (
	"strings"
	"time"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"
)

// ParseOptionalDate parses a YYYY-MM-DD value; empty yields the zero time.
func ParseOptionalDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := utils.ParseDate(value)
	if err != nil {
		return time.Time{}, errs.BadRequest("%s must be YYYY-MM-DD", field)
	}
	return t, nil
}

func parseOptionalDatePtr(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := ParseOptionalDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

var weekdayNames = map[string]time.Weekday{
	"SUN": time.Sunday, "SUNDAY": time.Sunday,
	"MON": time.Monday, "MONDAY": time.Monday,
	"TUE": time.Tuesday, "TUESDAY": time.Tuesday,
	"WED": time.Wednesday, "WEDNESDAY": time.Wednesday,
	"THU": time.Thursday, "THURSDAY": time.Thursday,
	"FRI": time.Friday, "FRIDAY": time.Friday,
	"SAT": time.Saturday, "SATURDAY": time.Saturday,
}

// ParseWeekdays accepts short or full English day names in any case.
func ParseWeekdays(names []string) (model.WeekdaySet, error) {
	var days []time.Weekday
	for _, name := range names {
		d, ok := weekdayNames[strings.ToUpper(strings.TrimSpace(name))]
		if !ok {
			return 0, errs.BadRequest("unknown weekday %q", name)
		}
		days = append(days, d)
	}
	return model.NewWeekdaySet(days...), nil
}

func WeekdayNames(set model.WeekdaySet) []string {
	var out []string
	for _, d := range set.Days() {
		out = append(out, strings.ToUpper(d.String()))
	}
	return out
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return utils.FormatDate(*t)
}
