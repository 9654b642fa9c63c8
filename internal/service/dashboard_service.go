package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/campus-events-console/internal/models"
)

type eventLister interface {
	List(ctx context.Context) ([]models.Event, error)
}

type registrationLister interface {
	ListAll(ctx context.Context) ([]models.StudentRegistration, error)
}

type attendanceLister interface {
	ListAll(ctx context.Context) ([]models.AttendanceRecord, error)
}

type feedbackLister interface {
	List(ctx context.Context) ([]models.FeedbackEntry, error)
}

// DashboardService builds the landing pages of both front-ends.
type DashboardService struct {
	events        eventLister
	registrations registrationLister
	attendance    attendanceLister
	feedback      feedbackLister
	logger        *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(events eventLister, registrations registrationLister, attendance attendanceLister, feedback feedbackLister, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{events: events, registrations: registrations, attendance: attendance, feedback: feedback, logger: logger}
}

// Staff fetches the four source lists concurrently and derives the staff counters.
func (s *DashboardService) Staff(ctx context.Context) (models.StaffDashboardStats, error) {
	var (
		events        []models.Event
		registrations []models.StudentRegistration
		attendance    []models.AttendanceRecord
		feedback      []models.FeedbackEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		events, err = s.events.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		registrations, err = s.registrations.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		attendance, err = s.attendance.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		feedback, err = s.feedback.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("staff dashboard fetch failed", zap.Error(err))
		return models.StaffDashboardStats{}, err
	}
	return StaffDashboard(events, registrations, attendance, feedback), nil
}

// Student derives the student home counters.
func (s *DashboardService) Student(ctx context.Context) (models.StudentHomeStats, error) {
	var (
		registrations []models.StudentRegistration
		attendance    []models.AttendanceRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		registrations, err = s.registrations.ListAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		attendance, err = s.attendance.ListAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("student home fetch failed", zap.Error(err))
		return models.StudentHomeStats{}, err
	}
	return StudentHome(registrations, attendance), nil
}
