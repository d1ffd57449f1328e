package model

import "time"

// ActivityFilter selects scheduled tasks, completions or progress entries.
// Empty ids and zero dates are not applied; From and To are inclusive.
type ActivityFilter struct {
	UserID       string
	GoalID       string
	ActionItemID string
	From         time.Time
	To           time.Time
}

// Matches reports whether a record with the given owners and date passes the filter.
func (f ActivityFilter) Matches(userID, goalID, actionItemID string, date time.Time) bool {
	if f.UserID != "" && f.UserID != userID {
		return false
	}
	if f.GoalID != "" && f.GoalID != goalID {
		return false
	}
	if f.ActionItemID != "" && f.ActionItemID != actionItemID {
		return false
	}
	if !f.From.IsZero() && date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && date.After(f.To) {
		return false
	}
	return true
}
