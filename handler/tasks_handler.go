package handler

import (
	"goaltracker/dto"
	"goaltracker/middleware"
	"goaltracker/usecase"
	"goaltracker/utils"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	tasks   *usecase.TaskService
	slots   *usecase.SlotService
	streaks *usecase.StreakService
}

func NewTaskHandler(tasks *usecase.TaskService, slots *usecase.SlotService, streaks *usecase.StreakService) *TaskHandler {
	return &TaskHandler{tasks: tasks, slots: slots, streaks: streaks}
}

func (h *TaskHandler) CreateActionItem(c *gin.Context) {
	// Bind request body
	var req dto.CreateActionItemRequest
	if !bind(c, &req) {
		return
	}
	// Convert to domain model
	item, err := req.ToModel()
	if err != nil {
		utils.Fail(c, err)
		return
	}

	created, err := h.tasks.CreateActionItem(c.Request.Context(), middleware.Identity(c), c.Param("id"), item)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, dto.ToActionItemResponse(created))
}

func (h *TaskHandler) ListActionItems(c *gin.Context) {
	items, err := h.tasks.ListActionItems(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToActionItemResponses(items))
}

func (h *TaskHandler) GetActionItem(c *gin.Context) {
	item, err := h.tasks.GetActionItem(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToActionItemResponse(item))
}

func (h *TaskHandler) DeleteActionItem(c *gin.Context) {
	if err := h.tasks.DeleteActionItem(c.Request.Context(), middleware.Identity(c), c.Param("id")); err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, gin.H{"message": "Action item deleted"})
}

func (h *TaskHandler) GenerateSchedule(c *gin.Context) {
	// Bind request body
	var req dto.ScheduleRequest
	if !bind(c, &req) {
		return
	}
	// Parse dates
	from, ok := date(c, "from", req.From)
	if !ok {
		return
	}
	to, ok := date(c, "to", req.To)
	if !ok {
		return
	}

	created, err := h.tasks.GenerateSchedule(c.Request.Context(), middleware.Identity(c), c.Param("id"), from, to)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, dto.ToScheduledTaskResponses(created))
}

// ListScheduled serves GET /tasks/scheduled?goal_id&from&to.
func (h *TaskHandler) ListScheduled(c *gin.Context) {
	from, ok := dateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := dateQuery(c, "to")
	if !ok {
		return
	}

	tasks, err := h.tasks.ListScheduled(c.Request.Context(), middleware.Identity(c), c.Query("goal_id"), from, to)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToScheduledTaskResponses(tasks))
}

func (h *TaskHandler) CompleteTask(c *gin.Context) {
	// Bind request body
	var req dto.CompleteTaskRequest
	if !bind(c, &req) {
		return
	}
	// Parse date
	day, ok := date(c, "date", req.Date)
	if !ok {
		return
	}

	completion, err := h.tasks.CompleteTask(c.Request.Context(), middleware.Identity(c), c.Param("id"), day, req.Note)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, completion)
}

func (h *TaskHandler) ListCompletions(c *gin.Context) {
	completions, err := h.tasks.ListCompletions(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, completions)
}

func (h *TaskHandler) Streak(c *gin.Context) {
	info, err := h.streaks.TaskStreak(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToStreakResponse(info))
}

func (h *TaskHandler) CreateSlot(c *gin.Context) {
	// Bind request body
	var req dto.CreateSlotRequest
	if !bind(c, &req) {
		return
	}
	// Parse date
	from, ok := date(c, "effective_from", req.EffectiveFrom)
	if !ok {
		return
	}

	slot, err := h.slots.CreateSlot(c.Request.Context(), middleware.Identity(c), c.Param("id"), req.SlotIndex, req.TimeOfDay, from)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, dto.ToSlotResponse(slot))
}

func (h *TaskHandler) ActiveSlot(c *gin.Context) {
	day, ok := dateQuery(c, "date")
	if !ok {
		return
	}
	slot, err := h.slots.ActiveSlot(c.Request.Context(), middleware.Identity(c), c.Param("id"), day)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToSlotResponse(slot))
}

func (h *TaskHandler) ListSlots(c *gin.Context) {
	slots, err := h.slots.ListSlots(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToSlotResponses(slots))
}

func (h *TaskHandler) Reschedule(c *gin.Context) {
	// Bind request body
	var req dto.RescheduleRequest
	if !bind(c, &req) {
		return
	}
	// Parse date
	effective, ok := date(c, "effective_date", req.EffectiveDate)
	if !ok {
		return
	}

	slot, err := h.slots.Reschedule(c.Request.Context(), middleware.Identity(c), c.Param("id"), usecase.SlotChange{
		SlotIndex:     req.SlotIndex,
		TimeOfDay:     req.TimeOfDay,
		EffectiveDate: effective,
		Reason:        req.Reason,
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, dto.ToSlotResponse(slot))
}
