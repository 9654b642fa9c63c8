package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-events-console/internal/dto"
	"github.com/noah-isme/campus-events-console/internal/middleware"
	"github.com/noah-isme/campus-events-console/internal/models"
	"github.com/noah-isme/campus-events-console/internal/service"
	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
	"github.com/noah-isme/campus-events-console/pkg/response"
)

type eventService interface {
	Summaries(ctx context.Context, refresh bool) (service.Snapshot[[]models.EventSummary], error)
	Summary(ctx context.Context, eventID int64) (*models.EventSummary, bool, error)
	Create(ctx context.Context, req dto.CreateEventRequest) (*models.CreateEventResult, models.MutationStatus, error)
	Delete(ctx context.Context, eventID int64) (models.MutationStatus, error)
}

type staffDashboardService interface {
	Staff(ctx context.Context) (models.StaffDashboardStats, error)
}

// EventHandler serves the staff event console.
type EventHandler struct {
	events    eventService
	dashboard staffDashboardService
}

// NewEventHandler constructs the handler.
func NewEventHandler(events eventService, dashboard staffDashboardService) *EventHandler {
	return &EventHandler{events: events, dashboard: dashboard}
}

// Dashboard godoc
// @Summary Staff dashboard counters
// @Tags Staff
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /staff/dashboard [get]
func (h *EventHandler) Dashboard(c *gin.Context) {
	if h.dashboard == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	stats, err := h.dashboard.Staff(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, middleware.ExtractMeta(c))
}

// List godoc
// @Summary Event summaries with attendance percentages
// @Tags Staff
// @Produce json
// @Param refresh query bool false "Force a reload"
// @Success 200 {object} response.Envelope
// @Router /staff/events [get]
func (h *EventHandler) List(c *gin.Context) {
	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	h.summaries(c, refresh)
}

// Refresh godoc
// @Summary Reload the event summaries
// @Tags Staff
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /staff/events/refresh [post]
func (h *EventHandler) Refresh(c *gin.Context) {
	h.summaries(c, true)
}

func (h *EventHandler) summaries(c *gin.Context, refresh bool) {
	snap, err := h.events.Summaries(c.Request.Context(), refresh)
	meta := snapshotMeta(c, snap)
	meta["partial"] = anyPartial(snap.Data)
	if err == nil {
		err = snap.Err
	}
	if err != nil {
		if !snap.HasData {
			response.Error(c, err)
			return
		}
		response.ErrorWithData(c, err, snap.Data, meta)
		return
	}
	data := snap.Data
	if data == nil {
		data = []models.EventSummary{}
	}
	response.JSON(c, http.StatusOK, data, meta)
}

func anyPartial(summaries []models.EventSummary) bool {
	for _, s := range summaries {
		if s.Partial {
			return true
		}
	}
	return false
}

// Summary godoc
// @Summary One event summary
// @Tags Staff
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /staff/events/{id}/summary [get]
func (h *EventHandler) Summary(c *gin.Context) {
	id, err := eventIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, hit, err := h.events.Summary(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, summary, middleware.ExtractMeta(c))
}

// Create godoc
// @Summary Create an event
// @Tags Staff
// @Accept json
// @Produce json
// @Param payload body dto.CreateEventRequest true "Event"
// @Success 201 {object} response.Envelope
// @Router /staff/events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.NewValidationError("body", "must be a JSON event object"))
		return
	}
	result, status, err := h.events.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.CreateEventResponse{EventID: result.ID, Message: result.Message, Mutation: status})
}

// Delete godoc
// @Summary Delete an event
// @Description The X-Confirm-Delete header (or confirm query) must repeat the event id.
// @Tags Staff
// @Produce json
// @Param id path int true "Event ID"
// @Param X-Confirm-Delete header string false "Event ID being confirmed"
// @Success 200 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /staff/events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	id, err := eventIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	status, err := h.events.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DeleteEventResponse{EventID: id, Mutation: status})
}
