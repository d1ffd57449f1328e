package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"goaltracker/dto"
	"goaltracker/errs"
	"goaltracker/middleware"
	"goaltracker/repository/memory"
	"goaltracker/services"
	"goaltracker/usecase"
	"goaltracker/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitValidator()
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Code  string          `json:"code"`
}

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	clock := usecase.Clock{Now: func() time.Time { return now }, Location: time.UTC}

	repos := memory.New().Repositories()
	tokens := services.NewTokenIssuer("handler-secret", "goaltracker", time.Hour, 24*time.Hour)
	blacklist := services.NewLocalTokenBlacklist()
	locker := services.NewLocalScopeLocker()
	notifier := services.LogNotifier{}

	subs := usecase.NewSubscriptionService(repos)
	streaks := usecase.NewStreakService(repos, locker, notifier, clock)

	router := gin.New()
	RegisterRoutes(router, Handlers{
		Auth:          NewAuthHandler(usecase.NewUserService(repos, tokens, clock), tokens, blacklist),
		Goals:         NewGoalHandler(usecase.NewGoalService(repos, subs, streaks, clock, 3), streaks),
		Tasks:         NewTaskHandler(usecase.NewTaskService(repos, streaks, clock), usecase.NewSlotService(repos, clock), streaks),
		Streaks:       NewStreakHandler(streaks),
		Reflections:   NewReflectionHandler(usecase.NewReflectionService(repos, clock), usecase.NewJournalService(repos, clock)),
		Guardians:     NewGuardianHandler(usecase.NewGuardianService(repos, subs, notifier, clock)),
		Subscriptions: NewSubscriptionHandler(subs),
		Health:        NewHealthHandler(nil, nil),
	}, RouteGuards{
		Auth:         middleware.AuthMiddleware(tokens, blacklist),
		Entitlements: subs,
	})
	return &testServer{router: router}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	code, _ := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "Passw0rd!",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": "Passw0rd!"})
	require.Equal(t, http.StatusOK, code)
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "alice")

	code, env := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "a2@example.com", "password": "Passw0rd!",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, string(errs.KindDuplicate), env.Code)

	code, _ = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "bobby", "email": "b@example.com", "password": "weak",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "Wr0ng!!"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "carol")

	code, _ := s.do(t, http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodGet, "/api/user/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRefreshIsPublicAndRotates(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "erin")

	code, env := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "erin", "password": "Passw0rd!"})
	require.Equal(t, http.StatusOK, code)
	first := decode[dto.LoginResponse](t, env)
	require.NotEmpty(t, first.RefreshToken)

	// No bearer header: the refresh token is the credential
	code, env = s.do(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh_token": first.RefreshToken})
	require.Equal(t, http.StatusOK, code)
	rotated := decode[dto.LoginResponse](t, env)
	require.NotEmpty(t, rotated.AccessToken)

	code, _ = s.do(t, http.MethodGet, "/api/user/profile", rotated.AccessToken, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh_token": first.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(t, http.MethodGet, "/api/goals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, string(errs.KindUnauthorized), env.Code)
}

func TestGoalTaskCompletionFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "dave")

	code, env := s.do(t, http.MethodPost, "/api/goals", token, gin.H{"title": "Run a 10k", "start_date": "2024-01-01"})
	require.Equal(t, http.StatusCreated, code)
	goal := decode[dto.GoalResponse](t, env)
	assert.Equal(t, -1, goal.DurationDays)

	code, _ = s.do(t, http.MethodPost, "/api/goals/"+goal.GoalID+"/tasks", token, gin.H{
		"title":       "Run",
		"task_type":   "RECURRING",
		"anchor_date": "2024-01-01",
		"recurrence":  gin.H{"frequency": "WEEKLY", "interval": 1, "days_of_week": []string{"funday"}},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodPost, "/api/goals/"+goal.GoalID+"/tasks", token, gin.H{
		"title":       "Run",
		"task_type":   "RECURRING",
		"anchor_date": "2024-01-01",
		"recurrence":  gin.H{"frequency": "WEEKLY", "interval": 1, "days_of_week": []string{"mon", "Wednesday"}},
	})
	require.Equal(t, http.StatusCreated, code)
	item := decode[dto.ActionItemResponse](t, env)
	require.NotNil(t, item.Recurrence)
	assert.Equal(t, []string{"MONDAY", "WEDNESDAY"}, item.Recurrence.DaysOfWeek)

	code, env = s.do(t, http.MethodPost, "/api/tasks/"+item.ID+"/schedule", token, gin.H{"from": "2024-01-01", "to": "2024-01-14"})
	require.Equal(t, http.StatusCreated, code)
	scheduled := decode[[]dto.ScheduledTaskResponse](t, env)
	assert.Len(t, scheduled, 4)

	code, _ = s.do(t, http.MethodPost, "/api/tasks/"+item.ID+"/complete", token, gin.H{"date": "01/08/2024"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, http.MethodPost, "/api/tasks/"+item.ID+"/complete", token, gin.H{"date": "2024-01-08"})
	require.Equal(t, http.StatusCreated, code)
	code, _ = s.do(t, http.MethodPost, "/api/tasks/"+item.ID+"/complete", token, gin.H{"date": "2024-01-10"})
	require.Equal(t, http.StatusCreated, code)
	code, env = s.do(t, http.MethodPost, "/api/tasks/"+item.ID+"/complete", token, gin.H{"date": "2024-01-10"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, string(errs.KindDuplicate), env.Code)

	code, env = s.do(t, http.MethodGet, "/api/tasks/"+item.ID+"/streak", token, nil)
	require.Equal(t, http.StatusOK, code)
	streak := decode[dto.StreakResponse](t, env)
	assert.Equal(t, "task", streak.Scope)
	// Tuesday had no activity, but nothing was scheduled either.
	assert.Equal(t, 1, streak.CurrentMaintainedStreak)
	assert.Equal(t, 2, streak.CurrentPerfectStreak)

	code, env = s.do(t, http.MethodGet, "/api/tasks/scheduled?from=2024-01-08&to=2024-01-10", token, nil)
	require.Equal(t, http.StatusOK, code)
	window := decode[[]dto.ScheduledTaskResponse](t, env)
	require.Len(t, window, 2)
	assert.True(t, window[0].Completed)
	assert.True(t, window[1].Completed)

	code, env = s.do(t, http.MethodGet, "/api/goals/"+goal.GoalID+"/insights", token, nil)
	assert.Equal(t, http.StatusPaymentRequired, code)
	assert.Equal(t, string(errs.KindSubscriptionRequired), env.Code)
}

func TestOtherUsersCannotSeeGoal(t *testing.T) {
	s := newTestServer(t)
	owner := s.login(t, "erin")
	other := s.login(t, "frank")

	code, env := s.do(t, http.MethodPost, "/api/goals", owner, gin.H{"title": "Private"})
	require.Equal(t, http.StatusCreated, code)
	goal := decode[dto.GoalResponse](t, env)

	code, _ = s.do(t, http.MethodGet, "/api/goals/"+goal.GoalID, other, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(t, http.MethodDelete, "/api/goals/"+goal.GoalID, other, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSlotRescheduleEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "gina")

	_, env := s.do(t, http.MethodPost, "/api/goals", token, gin.H{"title": "Wake early"})
	goal := decode[dto.GoalResponse](t, env)
	_, env = s.do(t, http.MethodPost, "/api/goals/"+goal.GoalID+"/tasks", token, gin.H{
		"title": "Alarm", "task_type": "RECURRING", "anchor_date": "2024-01-01",
		"recurrence": gin.H{"frequency": "DAILY"},
	})
	item := decode[dto.ActionItemResponse](t, env)

	code, _ := s.do(t, http.MethodPost, "/api/tasks/"+item.ID+"/slots", token, gin.H{"time_of_day": "7am"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(t, http.MethodPost, "/api/tasks/"+item.ID+"/slots", token, gin.H{"time_of_day": "06:00", "effective_from": "2024-01-01"})
	require.Equal(t, http.StatusCreated, code)
	a := decode[dto.SlotResponse](t, env)

	code, env = s.do(t, http.MethodPost, "/api/slots/"+a.ID+"/reschedule", token, gin.H{
		"slot_index": 1, "time_of_day": "06:45", "effective_date": "2024-01-15", "reason": "later sunrise",
	})
	require.Equal(t, http.StatusCreated, code)
	b := decode[dto.SlotResponse](t, env)
	assert.Equal(t, a.ID, b.RescheduledFromSlotID)

	code, env = s.do(t, http.MethodGet, "/api/tasks/"+item.ID+"/slots/active?date=2024-01-05", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, a.ID, decode[dto.SlotResponse](t, env).ID)

	code, env = s.do(t, http.MethodGet, "/api/tasks/"+item.ID+"/slots/active?date=2024-01-15", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, b.ID, decode[dto.SlotResponse](t, env).ID)

	code, _ = s.do(t, http.MethodPost, "/api/slots/"+a.ID+"/reschedule", token, gin.H{"time_of_day": "08:00", "effective_date": "2024-01-20"})
	assert.Equal(t, http.StatusConflict, code)
}

func TestGuardianInviteNeedsPremium(t *testing.T) {
	s := newTestServer(t)
	owner := s.login(t, "hank")
	s.login(t, "iris")

	_, env := s.do(t, http.MethodPost, "/api/goals", owner, gin.H{"title": "Save money"})
	goal := decode[dto.GoalResponse](t, env)

	code, env := s.do(t, http.MethodPost, "/api/guardians", owner, gin.H{"goal_id": goal.GoalID, "username": "iris"})
	assert.Equal(t, http.StatusPaymentRequired, code)
	assert.Equal(t, string(errs.KindSubscriptionRequired), env.Code)

	code, env = s.do(t, http.MethodGet, "/api/subscription", owner, nil)
	require.Equal(t, http.StatusOK, code)
	ent := decode[dto.EntitlementResponse](t, env)
	assert.Equal(t, "FREE", string(ent.Tier))
	assert.False(t, ent.Premium)
}

func TestJournalAndShieldEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "jack")

	code, _ := s.do(t, http.MethodPost, "/api/journal", token, gin.H{"content": "first entry", "mood": 3})
	require.Equal(t, http.StatusCreated, code)
	code, _ = s.do(t, http.MethodPost, "/api/journal", token, gin.H{"content": "second entry"})
	assert.Equal(t, http.StatusConflict, code)
	code, _ = s.do(t, http.MethodPost, "/api/journal", token, gin.H{"content": "x", "mood": 7})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := s.do(t, http.MethodGet, "/api/journal?from=2024-01-01", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "first entry")

	code, env = s.do(t, http.MethodPost, "/api/streaks/shield", token, gin.H{"date": "2024-01-09"})
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, string(errs.KindUsageLimitExceeded), env.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mongo":"disabled"`)
}
