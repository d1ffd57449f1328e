package handler

import (
	"goaltracker/dto"
	"goaltracker/middleware"
	"goaltracker/model"
	"goaltracker/usecase"
	"goaltracker/utils"

	"github.com/gin-gonic/gin"
)

type GoalHandler struct {
	goals   *usecase.GoalService
	streaks *usecase.StreakService
}

func NewGoalHandler(goals *usecase.GoalService, streaks *usecase.StreakService) *GoalHandler {
	return &GoalHandler{goals: goals, streaks: streaks}
}

func (h *GoalHandler) CreateGoal(c *gin.Context) {
	// Bind request body
	var req dto.CreateGoalRequest
	if !bind(c, &req) {
		return
	}
	// Convert to domain model
	goal, err := req.ToModel()
	if err != nil {
		utils.Fail(c, err)
		return
	}

	created, err := h.goals.CreateGoal(c.Request.Context(), middleware.Identity(c), goal)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, dto.ToGoalResponse(created))
}

func (h *GoalHandler) ListGoals(c *gin.Context) {
	includeArchived := c.Query("archived") == "true"
	goals, err := h.goals.ListGoals(c.Request.Context(), middleware.Identity(c), includeArchived)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToGoalResponses(goals))
}

func (h *GoalHandler) GetGoal(c *gin.Context) {
	goal, err := h.goals.GetGoal(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToGoalResponse(goal))
}

func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	// Bind request body
	var req dto.UpdateGoalRequest
	if !bind(c, &req) {
		return
	}
	// Convert to domain model
	upd, err := req.ToUpdate()
	if err != nil {
		utils.Fail(c, err)
		return
	}

	goal, err := h.goals.UpdateGoal(c.Request.Context(), middleware.Identity(c), c.Param("id"), upd)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToGoalResponse(goal))
}

func (h *GoalHandler) SetStatus(c *gin.Context) {
	var req dto.GoalStatusRequest
	if !bind(c, &req) {
		return
	}
	goal, err := h.goals.SetStatus(c.Request.Context(), middleware.Identity(c), c.Param("id"), req.Status)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToGoalResponse(goal))
}

func (h *GoalHandler) Archive(c *gin.Context) {
	var req dto.ArchiveRequest
	if !bind(c, &req) {
		return
	}
	goal, err := h.goals.Archive(c.Request.Context(), middleware.Identity(c), c.Param("id"), req.Archived)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToGoalResponse(goal))
}

func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	if err := h.goals.DeleteGoal(c.Request.Context(), middleware.Identity(c), c.Param("id")); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, gin.H{"message": "Goal deleted"})
}

func (h *GoalHandler) AddProgress(c *gin.Context) {
	// Bind request body
	var req dto.ProgressRequest
	if !bind(c, &req) {
		return
	}
	// Parse date
	day, ok := date(c, "date", req.Date)
	if !ok {
		return
	}

	entry, err := h.goals.AddProgress(c.Request.Context(), middleware.Identity(c), c.Param("id"), &model.ProgressEntry{
		Date:  day,
		Value: req.Value,
		Note:  req.Note,
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, entry)
}

func (h *GoalHandler) ListProgress(c *gin.Context) {
	entries, err := h.goals.ListProgress(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, entries)
}

func (h *GoalHandler) AddMilestone(c *gin.Context) {
	// Bind request body
	var req dto.MilestoneRequest
	if !bind(c, &req) {
		return
	}
	// Parse date
	target, ok := date(c, "target_date", req.TargetDate)
	if !ok {
		return
	}
	m := &model.Milestone{Title: req.Title}
	if !target.IsZero() {
		m.TargetDate = &target
	}

	created, err := h.goals.AddMilestone(c.Request.Context(), middleware.Identity(c), c.Param("id"), m)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, created)
}

func (h *GoalHandler) ListMilestones(c *gin.Context) {
	milestones, err := h.goals.ListMilestones(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, milestones)
}

func (h *GoalHandler) AchieveMilestone(c *gin.Context) {
	m, err := h.goals.AchieveMilestone(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, m)
}

func (h *GoalHandler) AddObstacle(c *gin.Context) {
	var req dto.ObstacleRequest
	if !bind(c, &req) {
		return
	}
	o, err := h.goals.AddObstacle(c.Request.Context(), middleware.Identity(c), c.Param("id"), &model.ObstacleEntry{
		Description: req.Description,
		Resolution:  req.Resolution,
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, o)
}

func (h *GoalHandler) ListObstacles(c *gin.Context) {
	obstacles, err := h.goals.ListObstacles(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, obstacles)
}

func (h *GoalHandler) Insights(c *gin.Context) {
	insights, err := h.goals.Insights(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, insights)
}

func (h *GoalHandler) Streak(c *gin.Context) {
	info, err := h.streaks.GoalStreak(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToStreakResponse(info))
}
