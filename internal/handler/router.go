package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-events-console/internal/middleware"
)

// Handlers bundles every HTTP handler of the console.
type Handlers struct {
	Events     *EventHandler
	Attendance *AttendanceHandler
	Feedback   *FeedbackHandler
	Reports    *ReportHandler
	Mutations  *MutationHandler
	Students   *StudentHandler
	Metrics    *MetricsHandler
}

// Register mounts the ops endpoints at the root and the console API under prefix.
func Register(r gin.IRouter, prefix string, h Handlers) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())
	if h.Metrics != nil {
		api.GET("/metrics/snapshot", h.Metrics.Snapshot)
	}

	staff := api.Group("/staff")
	if h.Events != nil {
		staff.GET("/dashboard", h.Events.Dashboard)
		staff.GET("/events", h.Events.List)
		staff.POST("/events", h.Events.Create)
		staff.POST("/events/refresh", h.Events.Refresh)
		staff.GET("/events/:id/summary", h.Events.Summary)
		staff.DELETE("/events/:id", middleware.Confirmation(), h.Events.Delete)
	}
	if h.Attendance != nil {
		staff.GET("/events/:id/attendance", h.Attendance.Roster)
		staff.POST("/events/:id/attendance", h.Attendance.Mark)
	}
	if h.Feedback != nil {
		staff.GET("/feedback", h.Feedback.Overview)
	}
	if h.Mutations != nil {
		staff.GET("/mutations", h.Mutations.List)
	}
	if h.Reports != nil {
		staff.GET("/reports", h.Reports.Overview)
		staff.GET("/reports/export", h.Reports.Export)
	}

	if h.Students != nil {
		student := api.Group("/student")
		student.GET("/home", h.Students.Home)
		student.GET("/events", h.Students.Events)
		student.POST("/events/:id/register", h.Students.Register)
		student.GET("/registrations", h.Students.Registrations)
		student.GET("/attendance", h.Students.Attendance)
		student.POST("/feedback", h.Students.Feedback)
	}
}
