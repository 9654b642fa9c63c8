package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-events-console/internal/dto"
	"github.com/noah-isme/campus-events-console/internal/models"
	"github.com/noah-isme/campus-events-console/internal/service"
	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
	"github.com/noah-isme/campus-events-console/pkg/response"
)

type attendanceService interface {
	Roster(ctx context.Context, eventID int64) ([]models.AttendanceRosterEntry, service.Snapshot[[]models.AttendanceRosterEntry], error)
	Mark(ctx context.Context, eventID int64, req dto.MarkAttendanceRequest) (models.MutationStatus, error)
}

// AttendanceHandler serves the attendance screen of one event.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Roster godoc
// @Summary Registered students with their attendance
// @Tags Staff
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /staff/events/{id}/attendance [get]
func (h *AttendanceHandler) Roster(c *gin.Context) {
	id, err := eventIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, snap, err := h.service.Roster(c.Request.Context(), id)
	meta := snapshotMeta(c, snap)
	if entries == nil {
		entries = []models.AttendanceRosterEntry{}
	}
	body := dto.RosterResponse{EventID: id, Entries: entries}
	if err != nil {
		if !snap.HasData {
			response.Error(c, err)
			return
		}
		response.ErrorWithData(c, err, body, meta)
		return
	}
	response.JSON(c, http.StatusOK, body, meta)
}

// Mark godoc
// @Summary Mark a student present or absent
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param payload body dto.MarkAttendanceRequest true "Attendance"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /staff/events/{id}/attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	id, err := eventIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.NewValidationError("body", "must be a JSON attendance object"))
		return
	}
	status, err := h.service.Mark(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.MarkAttendanceResponse{
		EventID:   id,
		StudentID: req.StudentID,
		Status:    models.AttendanceStatus(req.Status),
		Mutation:  status,
	})
}
