package handler

import (
	"goaltracker/dto"
	"goaltracker/middleware"
	"goaltracker/model"
	"goaltracker/usecase"
	"goaltracker/utils"

	"github.com/gin-gonic/gin"
)

type ReflectionHandler struct {
	reflections *usecase.ReflectionService
	journal     *usecase.JournalService
}

func NewReflectionHandler(reflections *usecase.ReflectionService, journal *usecase.JournalService) *ReflectionHandler {
	return &ReflectionHandler{reflections: reflections, journal: journal}
}

func (h *ReflectionHandler) Status(c *gin.Context) {
	status, err := h.reflections.Status(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, dto.ToReflectionStatusResponse(status))
}

func (h *ReflectionHandler) Submit(c *gin.Context) {
	var req dto.ReflectionRequest
	if !bind(c, &req) {
		return
	}

	r, err := h.reflections.Submit(c.Request.Context(), middleware.Identity(c), c.Param("id"), &model.GoalReflection{
		Rating:     req.Rating,
		WentWell:   req.WentWell,
		Challenges: req.Challenges,
		NextSteps:  req.NextSteps,
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, r)
}

func (h *ReflectionHandler) List(c *gin.Context) {
	list, err := h.reflections.List(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, list)
}

func (h *ReflectionHandler) CreateJournalEntry(c *gin.Context) {
	// Bind request body
	var req dto.JournalRequest
	if !bind(c, &req) {
		return
	}
	// Parse date
	day, ok := date(c, "date", req.Date)
	if !ok {
		return
	}

	entry, err := h.journal.CreateEntry(c.Request.Context(), middleware.Identity(c), &model.JournalEntry{
		Date:    day,
		Mood:    req.Mood,
		Content: req.Content,
	})
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Created(c, entry)
}

func (h *ReflectionHandler) ListJournal(c *gin.Context) {
	from, ok := dateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := dateQuery(c, "to")
	if !ok {
		return
	}

	entries, err := h.journal.ListEntries(c.Request.Context(), middleware.Identity(c), from, to)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Success(c, entries)
}
