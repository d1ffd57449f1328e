// Package memory is an in-memory implementation of every usecase store. It is
// safe for concurrent use and backs the test suite and STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"goaltracker/errs"
	"goaltracker/model"
	"goaltracker/usecase"
	"goaltracker/utils"
)

type tables struct {
	users         map[string]model.User
	goals         map[string]model.Goal
	progress      map[string]model.ProgressEntry
	milestones    map[string]model.Milestone
	obstacles     map[string]model.ObstacleEntry
	actionItems   map[string]model.ActionItem
	scheduled     map[string]model.ScheduledTask
	completions   map[string]model.TaskCompletion
	slots         map[string]model.TaskScheduleSlot
	streaks       map[string]model.StreakInfo
	shields       map[string]model.StreakShield
	reflections   map[string]model.GoalReflection
	journal       map[string]model.JournalEntry
	guardians     map[string]model.Guardian
	nudges        map[string]model.Nudge
	subscriptions map[string]model.UserSubscription
	purchases     map[string]model.UserPurchase
}

func newTables() tables {
	return tables{
		users:         make(map[string]model.User),
		goals:         make(map[string]model.Goal),
		progress:      make(map[string]model.ProgressEntry),
		milestones:    make(map[string]model.Milestone),
		obstacles:     make(map[string]model.ObstacleEntry),
		actionItems:   make(map[string]model.ActionItem),
		scheduled:     make(map[string]model.ScheduledTask),
		completions:   make(map[string]model.TaskCompletion),
		slots:         make(map[string]model.TaskScheduleSlot),
		streaks:       make(map[string]model.StreakInfo),
		shields:       make(map[string]model.StreakShield),
		reflections:   make(map[string]model.GoalReflection),
		journal:       make(map[string]model.JournalEntry),
		guardians:     make(map[string]model.Guardian),
		nudges:        make(map[string]model.Nudge),
		subscriptions: make(map[string]model.UserSubscription),
		purchases:     make(map[string]model.UserPurchase),
	}
}

// snapshot copies every table. Stored values are never mutated in place, so
// copying the maps is enough to restore state.
func (t tables) snapshot() tables {
	return tables{
		users:         maps.Clone(t.users),
		goals:         maps.Clone(t.goals),
		progress:      maps.Clone(t.progress),
		milestones:    maps.Clone(t.milestones),
		obstacles:     maps.Clone(t.obstacles),
		actionItems:   maps.Clone(t.actionItems),
		scheduled:     maps.Clone(t.scheduled),
		completions:   maps.Clone(t.completions),
		slots:         maps.Clone(t.slots),
		streaks:       maps.Clone(t.streaks),
		shields:       maps.Clone(t.shields),
		reflections:   maps.Clone(t.reflections),
		journal:       maps.Clone(t.journal),
		guardians:     maps.Clone(t.guardians),
		nudges:        maps.Clone(t.nudges),
		subscriptions: maps.Clone(t.subscriptions),
		purchases:     maps.Clone(t.purchases),
	}
}

// Store keeps every collection in maps guarded by one RWMutex.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	t    tables
}

var (
	_ usecase.TxRunner           = (*Store)(nil)
	_ usecase.UserStore          = (*Store)(nil)
	_ usecase.GoalStore          = (*Store)(nil)
	_ usecase.ProgressStore      = (*Store)(nil)
	_ usecase.MilestoneStore     = (*Store)(nil)
	_ usecase.ObstacleStore      = (*Store)(nil)
	_ usecase.ActionItemStore    = (*Store)(nil)
	_ usecase.ScheduledTaskStore = (*Store)(nil)
	_ usecase.CompletionStore    = (*Store)(nil)
	_ usecase.SlotStore          = (*Store)(nil)
	_ usecase.StreakStore        = (*Store)(nil)
	_ usecase.ShieldStore        = (*Store)(nil)
	_ usecase.ReflectionStore    = (*Store)(nil)
	_ usecase.JournalStore       = (*Store)(nil)
	_ usecase.GuardianStore      = (*Store)(nil)
	_ usecase.NudgeStore         = (*Store)(nil)
	_ usecase.SubscriptionStore  = (*Store)(nil)
	_ usecase.PurchaseStore      = (*Store)(nil)
)

// New creates an empty store.
func New() *Store {
	return &Store{t: newTables()}
}

// Repositories wires the store into every slot of usecase.Repositories.
func (s *Store) Repositories() usecase.Repositories {
	return usecase.Repositories{
		Tx:            s,
		Users:         s,
		Goals:         s,
		Progress:      s,
		Milestones:    s,
		Obstacles:     s,
		ActionItems:   s,
		Scheduled:     s,
		Completions:   s,
		Slots:         s,
		Streaks:       s,
		Shields:       s,
		Reflections:   s,
		Journal:       s,
		Guardians:     s,
		Nudges:        s,
		Subscriptions: s,
		Purchases:     s,
	}
}

type txKey struct{}

// WithTransaction runs transactions one at a time and restores the previous
// state when fn fails. Writes outside a transaction wait for it to finish, so
// a rollback never discards them.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	saved := s.t.snapshot()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.mu.Lock()
		s.t = saved
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lockWrite takes the write lock, and txMu too when ctx is not inside one of
// this store's transactions. The returned func releases both.
func (s *Store) lockWrite(ctx context.Context) func() {
	outside := !s.inTx(ctx)
	if outside {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if outside {
			s.txMu.Unlock()
		}
	}
}

// Users -----------------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	defer s.lockWrite(ctx)()

	if _, ok := s.t.users[user.UserID]; ok {
		return errs.Duplicate("user %s already exists", user.UserID)
	}
	for _, u := range s.t.users {
		if u.Username == user.Username {
			return errs.Duplicate("username %q is taken", user.Username)
		}
	}
	s.t.users[user.UserID] = *user
	return nil
}

func (s *Store) FindUserByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.t.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) GetUser(_ context.Context, userID string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.t.users[userID]
	if !ok {
		return nil, errs.NotFound("user", userID)
	}
	return &u, nil
}

// Goals -----------------------------------------------------------------------

func (s *Store) CreateGoal(ctx context.Context, goal *model.Goal) error {
	defer s.lockWrite(ctx)()

	if _, ok := s.t.goals[goal.GoalID]; ok {
		return errs.Duplicate("goal %s already exists", goal.GoalID)
	}
	s.t.goals[goal.GoalID] = cloneGoal(*goal)
	return nil
}

func (s *Store) GetGoal(_ context.Context, goalID string) (*model.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.t.goals[goalID]
	if !ok {
		return nil, errs.NotFound("goal", goalID)
	}
	g = cloneGoal(g)
	return &g, nil
}

func (s *Store) ListGoals(_ context.Context, userID string, includeArchived bool) ([]model.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Goal
	for _, g := range s.t.goals {
		if g.UserID != userID || (g.Archived && !includeArchived) {
			continue
		}
		out = append(out, cloneGoal(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CountActiveGoals(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, g := range s.t.goals {
		if g.UserID == userID && g.Status == model.GoalActive && !g.Archived {
			n++
		}
	}
	return n, nil
}

func (s *Store) UpdateGoal(ctx context.Context, goal *model.Goal) error {
	defer s.lockWrite(ctx)()

	if _, ok := s.t.goals[goal.GoalID]; !ok {
		return errs.NotFound("goal", goal.GoalID)
	}
	s.t.goals[goal.GoalID] = cloneGoal(*goal)
	return nil
}

func (s *Store) DeleteGoal(ctx context.Context, goalID string) error {
	defer s.lockWrite(ctx)()

	if _, ok := s.t.goals[goalID]; !ok {
		return errs.NotFound("goal", goalID)
	}
	delete(s.t.goals, goalID)
	return nil
}

// Progress, milestones, obstacles ----------------------------------------------

func (s *Store) CreateProgress(ctx context.Context, entry *model.ProgressEntry) error {
	defer s.lockWrite(ctx)()

	if _, ok := s.t.progress[entry.EntryID]; ok {
		return errs.Duplicate("progress entry %s already exists", entry.EntryID)
	}
	s.t.progress[entry.EntryID] = *entry
	return nil
}

func (s *Store) ListProgress(_ context.Context, filter model.ActivityFilter) ([]model.ProgressEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.ProgressEntry
	for _, p := range s.t.progress {
		if filter.Matches(p.UserID, p.GoalID, "", p.Date) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) CreateMilestone(ctx context.Context, m *model.Milestone) error {
	defer s.lockWrite(ctx)()

	if _, ok := s.t.milestones[m.MilestoneID]; ok {
		return errs.Duplicate("milestone %s already exists", m.MilestoneID)
	}
	s.t.milestones[m.MilestoneID] = *m
	return nil
}

func (s *Store) GetMilestone(_ context.Context, milestoneID string) (*model.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.t.milestones[milestoneID]
	if !ok {
		return nil, errs.NotFound("milestone", milestoneID)
	}
	return &m, nil
}

func (s *Store) ListMilestones(_ context.Context, goalID string) ([]model.Milestone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Milestone
	for _, m := range s.t.milestones {
		if m.GoalID == goalID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateMilestone(ctx context.Context, m *model.Milestone) error {
	defer s.lockWrite(ctx)()

	if _, ok := s.t.milestones[m.MilestoneID]; !ok {
		return errs.NotFound("milestone", m.MilestoneID)
	}
	s.t.milestones[m.MilestoneID] = *m
	return nil
}

func (s *Store) CreateObstacle(ctx context.Context, o *model.ObstacleEntry) error {
	defer s.lockWrite(ctx)()

	s.t.obstacles[o.ObstacleID] = *o
	return nil
}

func (s *Store) ListObstacles(_ context.Context, goalID string) ([]model.ObstacleEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.ObstacleEntry
	for _, o := range s.t.obstacles {
		if o.GoalID == goalID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Action items ----------------------------------------------------------------

func (s *Store) CreateActionItem(ctx context.Context, item *model.ActionItem) error {
	defer s.lockWrite(ctx)()

	if _, ok := s.t.actionItems[item.ActionItemID]; ok {
		return errs.Duplicate("action item %s already exists", item.ActionItemID)
	}
	s.t.actionItems[item.ActionItemID] = cloneActionItem(*item)
	return nil
}

func (s *Store) GetActionItem(_ context.Context, actionItemID string) (*model.ActionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.t.actionItems[actionItemID]
	if !ok {
		return nil, errs.NotFound("action item", actionItemID)
	}
	item = cloneActionItem(item)
	return &item, nil
}

func (s *Store) ListActionItems(_ context.Context, userID, goalID string) ([]model.ActionItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.ActionItem
	for _, item := range s.t.actionItems {
		if item.UserID != userID || (goalID != "" && item.GoalID != goalID) {
			continue
		}
		out = append(out, cloneActionItem(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateActionItem(ctx context.Context, item *model.ActionItem) error {
	defer s.lockWrite(ctx)()

	if _, ok := s.t.actionItems[item.ActionItemID]; !ok {
		return errs.NotFound("action item", item.ActionItemID)
	}
	s.t.actionItems[item.ActionItemID] = cloneActionItem(*item)
	return nil
}

func (s *Store) DeleteActionItem(ctx context.Context, actionItemID string) error {
	defer s.lockWrite(ctx)()

	if _, ok := s.t.actionItems[actionItemID]; !ok {
		return errs.NotFound("action item", actionItemID)
	}
	delete(s.t.actionItems, actionItemID)
	for id, st := range s.t.scheduled {
		if st.ActionItemID == actionItemID && !st.Completed {
			delete(s.t.scheduled, id)
		}
	}
	for id, slot := range s.t.slots {
		if slot.ActionItemID == actionItemID {
			delete(s.t.slots, id)
		}
	}
	return nil
}

// Scheduled tasks and completions -----------------------------------------------

func (s *Store) InsertScheduledTasks(ctx context.Context, tasks []model.ScheduledTask) error {
	defer s.lockWrite(ctx)()

	for _, t := range tasks {
		for _, existing := range s.t.scheduled {
			if existing.ActionItemID == t.ActionItemID && existing.ScheduledDate.Equal(t.ScheduledDate) {
				return errs.Duplicate("task %s is already scheduled on %s", t.ActionItemID, utils.FormatDate(t.ScheduledDate))
			}
		}
	}
	for _, t := range tasks {
		s.t.scheduled[t.ScheduledTaskID] = t
	}
	return nil
}

func (s *Store) ListScheduledTasks(_ context.Context, filter model.ActivityFilter) ([]model.ScheduledTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.ScheduledTask
	for _, t := range s.t.scheduled {
		if filter.Matches(t.UserID, t.GoalID, t.ActionItemID, t.ScheduledDate) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate)
		}
		return out[i].ActionItemID < out[j].ActionItemID
	})
	return out, nil
}

func (s *Store) FindScheduledTask(_ context.Context, actionItemID string, date time.Time) (*model.ScheduledTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.t.scheduled {
		if t.ActionItemID == actionItemID && t.ScheduledDate.Equal(date) {
			return &t, nil
		}
	}
	return nil, nil
}

func (s *Store) MarkScheduledTaskCompleted(ctx context.Context, scheduledTaskID string, at time.Time) error {
	defer s.lockWrite(ctx)()

	t, ok := s.t.scheduled[scheduledTaskID]
	if !ok {
		return errs.NotFound("scheduled task", scheduledTaskID)
	}
	t.Completed = true
	t.CompletedAt = &at
	s.t.scheduled[scheduledTaskID] = t
	return nil
}

func (s *Store) CreateCompletion(ctx context.Context, c *model.TaskCompletion) error {
	defer s.lockWrite(ctx)()

	for _, existing := range s.t.completions {
		if existing.ActionItemID == c.ActionItemID && existing.Date.Equal(c.Date) {
			return errs.Duplicate("task already completed on %s", utils.FormatDate(c.Date))
		}
	}
	s.t.completions[c.CompletionID] = *c
	return nil
}

func (s *Store) FindCompletion(_ context.Context, actionItemID string, date time.Time) (*model.TaskCompletion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.t.completions {
		if c.ActionItemID == actionItemID && c.Date.Equal(date) {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) ListCompletions(_ context.Context, filter model.ActivityFilter) ([]model.TaskCompletion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.TaskCompletion
	for _, c := range s.t.completions {
		if filter.Matches(c.UserID, c.GoalID, c.ActionItemID, c.Date) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Slots -----------------------------------------------------------------------

func (s *Store) CreateSlot(ctx context.Context, slot *model.TaskScheduleSlot) error {
	defer s.lockWrite(ctx)()

	if _, ok := s.t.slots[slot.SlotID]; ok {
		return errs.Duplicate("slot %s already exists", slot.SlotID)
	}
	s.t.slots[slot.SlotID] = *slot
	return nil
}

func (s *Store) GetSlot(_ context.Context, slotID string) (*model.TaskScheduleSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.t.slots[slotID]
	if !ok {
		return nil, errs.NotFound("slot", slotID)
	}
	return &slot, nil
}

func (s *Store) ListSlots(_ context.Context, actionItemID string) ([]model.TaskScheduleSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.TaskScheduleSlot
	for _, slot := range s.t.slots {
		if slot.ActionItemID == actionItemID {
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CloseSlot(ctx context.Context, slotID string, until time.Time) error {
	defer s.lockWrite(ctx)()

	slot, ok := s.t.slots[slotID]
	if !ok {
		return errs.NotFound("slot", slotID)
	}
	if slot.EffectiveUntil != nil {
		return errs.Conflict("slot %s was already rescheduled", slotID)
	}
	slot.EffectiveUntil = &until
	s.t.slots[slotID] = slot
	return nil
}

// Streaks and shields -----------------------------------------------------------

func (s *Store) FindStreak(_ context.Context, scope model.StreakScope) (*model.StreakInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.t.streaks[scope.Key()]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

func (s *Store) SaveStreak(ctx context.Context, info *model.StreakInfo) error {
	defer s.lockWrite(ctx)()

	key := info.Scope.Key()
	stored, exists := s.t.streaks[key]
	switch {
	case info.Version == 0 && exists:
		return errs.Conflict("streak %s was created concurrently", key)
	case info.Version != 0 && (!exists || stored.Version != info.Version):
		return errs.Conflict("streak %s was modified concurrently", key)
	}

	info.StreakID = key
	info.Version++
	s.t.streaks[key] = *info
	return nil
}

func (s *Store) ListStreaks(_ context.Context, userID string) ([]model.StreakInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.StreakInfo
	for _, info := range s.t.streaks {
		if info.Scope.UserID == userID {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StreakID < out[j].StreakID })
	return out, nil
}

func (s *Store) DeleteStreaks(ctx context.Context, scopes []model.StreakScope) error {
	defer s.lockWrite(ctx)()

	for _, sc := range scopes {
		delete(s.t.streaks, sc.Key())
	}
	return nil
}

func (s *Store) ListActiveUserStreaks(_ context.Context) ([]model.StreakInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.StreakInfo
	for _, info := range s.t.streaks {
		if info.Scope.Kind() == model.ScopeUser && info.CurrentMaintainedStreak > 0 {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StreakID < out[j].StreakID })
	return out, nil
}

func (s *Store) CreateShield(ctx context.Context, shield *model.StreakShield) error {
	defer s.lockWrite(ctx)()

	for _, existing := range s.t.shields {
		if existing.UserID == shield.UserID && existing.Date.Equal(shield.Date) {
			return errs.Duplicate("%s is already shielded", utils.FormatDate(shield.Date))
		}
	}
	s.t.shields[shield.ShieldID] = *shield
	return nil
}

func (s *Store) FindShield(_ context.Context, userID string, date time.Time) (*model.StreakShield, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, shield := range s.t.shields {
		if shield.UserID == userID && shield.Date.Equal(date) {
			return &shield, nil
		}
	}
	return nil, nil
}

func (s *Store) ListShields(_ context.Context, userID string) ([]model.StreakShield, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.StreakShield
	for _, shield := range s.t.shields {
		if shield.UserID == userID {
			out = append(out, shield)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Reflections and journal ---------------------------------------------------------

func (s *Store) CreateReflection(ctx context.Context, r *model.GoalReflection) error {
	defer s.lockWrite(ctx)()

	for _, existing := range s.t.reflections {
		if existing.GoalID == r.GoalID && existing.PeriodStart.Equal(r.PeriodStart) {
			return errs.Duplicate("a reflection for the period starting %s already exists", utils.FormatDate(r.PeriodStart))
		}
	}
	s.t.reflections[r.ReflectionID] = *r
	return nil
}

func (s *Store) ListReflections(_ context.Context, goalID string) ([]model.GoalReflection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.GoalReflection
	for _, r := range s.t.reflections {
		if r.GoalID == goalID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodStart.Before(out[j].PeriodStart) })
	return out, nil
}

func (s *Store) CreateJournalEntry(ctx context.Context, e *model.JournalEntry) error {
	defer s.lockWrite(ctx)()

	for _, existing := range s.t.journal {
		if existing.UserID == e.UserID && existing.Date.Equal(e.Date) {
			return errs.Duplicate("a journal entry for %s already exists", utils.FormatDate(e.Date))
		}
	}
	s.t.journal[e.EntryID] = *e
	return nil
}

func (s *Store) ListJournalEntries(_ context.Context, userID string, from, to time.Time) ([]model.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.JournalEntry
	for _, e := range s.t.journal {
		if e.UserID != userID || e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Guardians and nudges ------------------------------------------------------------

func (s *Store) CreateGuardian(ctx context.Context, g *model.Guardian) error {
	defer s.lockWrite(ctx)()

	for _, existing := range s.t.guardians {
		if existing.GoalID == g.GoalID && existing.GuardianUserID == g.GuardianUserID {
			return errs.Duplicate("guardian already invited")
		}
	}
	s.t.guardians[g.GuardianID] = *g
	return nil
}

func (s *Store) GetGuardian(_ context.Context, guardianID string) (*model.Guardian, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.t.guardians[guardianID]
	if !ok {
		return nil, errs.NotFound("guardian", guardianID)
	}
	return &g, nil
}

func (s *Store) UpdateGuardian(ctx context.Context, g *model.Guardian) error {
	defer s.lockWrite(ctx)()

	if _, ok := s.t.guardians[g.GuardianID]; !ok {
		return errs.NotFound("guardian", g.GuardianID)
	}
	s.t.guardians[g.GuardianID] = *g
	return nil
}

func (s *Store) FindGuardian(_ context.Context, goalID, guardianUserID string) (*model.Guardian, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.t.guardians {
		if g.GoalID == goalID && g.GuardianUserID == guardianUserID {
			return &g, nil
		}
	}
	return nil, nil
}

func (s *Store) ListGuardians(_ context.Context, userID string) ([]model.Guardian, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Guardian
	for _, g := range s.t.guardians {
		if g.OwnerUserID == userID || g.GuardianUserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateNudge(ctx context.Context, n *model.Nudge) error {
	defer s.lockWrite(ctx)()

	s.t.nudges[n.NudgeID] = *n
	return nil
}

func (s *Store) ListNudges(_ context.Context, toUserID string) ([]model.Nudge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Nudge
	for _, n := range s.t.nudges {
		if n.ToUserID == toUserID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Subscriptions and purchases ---------------------------------------------------------

func (s *Store) FindSubscription(_ context.Context, userID string) (*model.UserSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.t.subscriptions[userID]
	if !ok {
		return nil, nil
	}
	sub.Features = maps.Clone(sub.Features)
	return &sub, nil
}

func (s *Store) UpsertSubscription(ctx context.Context, sub *model.UserSubscription) error {
	defer s.lockWrite(ctx)()

	stored := *sub
	stored.Features = maps.Clone(sub.Features)
	s.t.subscriptions[sub.UserID] = stored
	return nil
}

func (s *Store) CreatePurchase(ctx context.Context, p *model.UserPurchase) error {
	defer s.lockWrite(ctx)()

	if _, ok := s.t.purchases[p.PurchaseID]; ok {
		return errs.Duplicate("purchase %s already exists", p.PurchaseID)
	}
	s.t.purchases[p.PurchaseID] = *p
	return nil
}

func (s *Store) ListPurchases(_ context.Context, userID string) ([]model.UserPurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.UserPurchase
	for _, p := range s.t.purchases {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchasedAt.Before(out[j].PurchasedAt) })
	return out, nil
}

// FindUsablePurchase returns the oldest purchase of product with units left.
func (s *Store) FindUsablePurchase(_ context.Context, userID string, product model.ProductType) (*model.UserPurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *model.UserPurchase
	for _, p := range s.t.purchases {
		if p.UserID != userID || p.Product != product || p.QuantityRemaining <= 0 {
			continue
		}
		if best == nil || p.PurchasedAt.Before(best.PurchasedAt) {
			best = &p
		}
	}
	return best, nil
}

func (s *Store) UsePurchase(ctx context.Context, purchaseID string) error {
	defer s.lockWrite(ctx)()

	p, ok := s.t.purchases[purchaseID]
	if !ok {
		return errs.NotFound("purchase", purchaseID)
	}
	if !p.UseOne() {
		return errs.UsageLimitExceeded("purchase %s has no units left", purchaseID)
	}
	s.t.purchases[purchaseID] = p
	return nil
}

func cloneGoal(g model.Goal) model.Goal {
	if g.TargetDate != nil {
		d := *g.TargetDate
		g.TargetDate = &d
	}
	return g
}

func cloneActionItem(item model.ActionItem) model.ActionItem {
	if item.Recurrence != nil {
		r := *item.Recurrence
		item.Recurrence = &r
	}
	if item.FrequencyGoal != nil {
		fg := *item.FrequencyGoal
		item.FrequencyGoal = &fg
	}
	if item.Reminder != nil {
		rem := *item.Reminder
		item.Reminder = &rem
	}
	return item
}
