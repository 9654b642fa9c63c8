package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-events-console/internal/dto"
	"github.com/noah-isme/campus-events-console/internal/models"
	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
	"github.com/noah-isme/campus-events-console/pkg/response"
)

type studentEventLister interface {
	List(ctx context.Context, query dto.EventListQuery) ([]models.Event, error)
}

type studentHomeService interface {
	Student(ctx context.Context) (models.StudentHomeStats, error)
}

type registrationService interface {
	Register(ctx context.Context, eventID int64, req dto.RegisterEventRequest) (int64, models.MutationStatus, error)
	List(ctx context.Context) ([]models.StudentRegistration, error)
}

type studentAttendanceLister interface {
	ListAll(ctx context.Context) ([]models.AttendanceRecord, error)
}

type feedbackSubmitter interface {
	Submit(ctx context.Context, req dto.SubmitFeedbackRequest) (int64, models.MutationStatus, error)
}

// StudentHandler serves the student app.
type StudentHandler struct {
	events        studentEventLister
	home          studentHomeService
	registrations registrationService
	attendance    studentAttendanceLister
	feedback      feedbackSubmitter
}

// StudentHandlerDeps groups the services behind the student app.
type StudentHandlerDeps struct {
	Events        studentEventLister
	Home          studentHomeService
	Registrations registrationService
	Attendance    studentAttendanceLister
	Feedback      feedbackSubmitter
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(deps StudentHandlerDeps) *StudentHandler {
	return &StudentHandler{
		events:        deps.Events,
		home:          deps.Home,
		registrations: deps.Registrations,
		attendance:    deps.Attendance,
		feedback:      deps.Feedback,
	}
}

// Home godoc
// @Summary Student home counters
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/home [get]
func (h *StudentHandler) Home(c *gin.Context) {
	stats, err := h.home.Student(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// Events godoc
// @Summary Browse events
// @Tags Student
// @Produce json
// @Param type query string false "Event type"
// @Success 200 {object} response.Envelope
// @Router /student/events [get]
func (h *StudentHandler) Events(c *gin.Context) {
	var query dto.EventListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.NewValidationError("type", "invalid query"))
		return
	}
	events, err := h.events.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	response.JSON(c, http.StatusOK, events, map[string]interface{}{"count": len(events)})
}

// Register godoc
// @Summary Register for an event
// @Tags Student
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param payload body dto.RegisterEventRequest true "Student identity"
// @Success 201 {object} response.Envelope
// @Router /student/events/{id}/register [post]
func (h *StudentHandler) Register(c *gin.Context) {
	id, err := eventIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.RegisterEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.NewValidationError("body", "must be a JSON student object"))
		return
	}
	studentID, status, err := h.registrations.Register(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.StudentWriteResponse{StudentID: studentID, EventID: id, Mutation: status})
}

// Registrations godoc
// @Summary All registrations
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/registrations [get]
func (h *StudentHandler) Registrations(c *gin.Context) {
	regs, err := h.registrations.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if regs == nil {
		regs = []models.StudentRegistration{}
	}
	response.JSON(c, http.StatusOK, regs)
}

// Attendance godoc
// @Summary All attendance records
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student/attendance [get]
func (h *StudentHandler) Attendance(c *gin.Context) {
	records, err := h.attendance.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if records == nil {
		records = []models.AttendanceRecord{}
	}
	response.JSON(c, http.StatusOK, records)
}

// Feedback godoc
// @Summary Submit event feedback
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body dto.SubmitFeedbackRequest true "Feedback"
// @Success 201 {object} response.Envelope
// @Router /student/feedback [post]
func (h *StudentHandler) Feedback(c *gin.Context) {
	var req dto.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.NewValidationError("body", "must be a JSON feedback object"))
		return
	}
	studentID, status, err := h.feedback.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.StudentWriteResponse{StudentID: studentID, EventID: req.EventID, Mutation: status})
}
