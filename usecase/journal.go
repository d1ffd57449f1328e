package usecase

import (
	"context"
	"strings"
	"time"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/utils"
)

const defaultJournalWindowDays = 30

type JournalService struct {
	repos Repositories
	clock Clock
}

func NewJournalService(repos Repositories, clock Clock) *JournalService {
	return &JournalService{repos: repos, clock: clock}
}

// CreateEntry writes the caller's journal entry for a day. One entry per day.
func (svc *JournalService) CreateEntry(ctx context.Context, id model.Identity, entry *model.JournalEntry) (*model.JournalEntry, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	entry.Content = strings.TrimSpace(entry.Content)
	if entry.Content == "" {
		return nil, errs.BadRequest("journal content is required")
	}
	if entry.Mood != 0 && (entry.Mood < 1 || entry.Mood > 5) {
		return nil, errs.BadRequest("mood must be between 1 and 5")
	}

	today := svc.clock.today()
	if entry.Date.IsZero() {
		entry.Date = today
	}
	entry.Date = utils.Day(entry.Date)
	if entry.Date.After(today) {
		return nil, errs.BadRequest("cannot write a journal entry for a future date")
	}

	entry.EntryID = utils.NewID()
	entry.UserID = id.UserID
	entry.CreatedAt = svc.clock.now()

	if err := svc.repos.Journal.CreateJournalEntry(ctx, entry); err != nil {
		if errs.IsDuplicate(err) {
			return nil, errs.Duplicate("a journal entry for %s already exists", utils.FormatDate(entry.Date))
		}
		return nil, err
	}
	return entry, nil
}

// ListEntries defaults to the last 30 days.
func (svc *JournalService) ListEntries(ctx context.Context, id model.Identity, from, to time.Time) ([]model.JournalEntry, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if to.IsZero() {
		to = svc.clock.today()
	}
	if from.IsZero() {
		from = utils.AddDays(to, -defaultJournalWindowDays)
	}
	from, to = utils.Day(from), utils.Day(to)
	if to.Before(from) {
		return nil, errs.BadRequest("range end is before range start")
	}
	return svc.repos.Journal.ListJournalEntries(ctx, id.UserID, from, to)
}
