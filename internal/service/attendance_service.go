package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/campus-events-console/internal/dto"
	"github.com/noah-isme/campus-events-console/internal/models"
	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
)

type eventRegistrationLister interface {
	ListByEvent(ctx context.Context, eventID int64) ([]models.Registration, error)
}

type attendanceRepository interface {
	ListByEvent(ctx context.Context, eventID int64) ([]models.AttendanceRecord, error)
	ListAll(ctx context.Context) ([]models.AttendanceRecord, error)
	Mark(ctx context.Context, req models.MarkAttendanceRequest) error
}

type rosterStore = Store[[]models.AttendanceRosterEntry]

// AttendanceService owns the per-event attendance rosters and the mark-attendance write.
type AttendanceService struct {
	registrations eventRegistrationLister
	attendance    attendanceRepository
	coordinator   *MutationCoordinator
	validator     *validator.Validate
	metrics       refreshRecorder
	logger        *zap.Logger

	mu      sync.Mutex
	rosters map[int64]*rosterStore
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(registrations eventRegistrationLister, attendance attendanceRepository, coordinator *MutationCoordinator, validate *validator.Validate, metrics refreshRecorder, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		registrations: registrations,
		attendance:    attendance,
		coordinator:   coordinator,
		validator:     validate,
		metrics:       metrics,
		logger:        logger,
		rosters:       make(map[int64]*rosterStore),
	}
}

// Roster refreshes and returns the roster of an event, overlaid with the
// in-flight state of every mark-attendance write for it. When the refresh
// fails the previous roster is returned together with the error.
func (s *AttendanceService) Roster(ctx context.Context, eventID int64) ([]models.AttendanceRosterEntry, Snapshot[[]models.AttendanceRosterEntry], error) {
	if eventID <= 0 {
		return nil, Snapshot[[]models.AttendanceRosterEntry]{}, appErrors.NewValidationError("event_id", "must be greater than 0")
	}
	store := s.roster(eventID)
	snap, err := store.Refresh(ctx)
	if errors.Is(err, appErrors.ErrRefreshSuperseded) {
		snap, err = store.Snapshot(), nil
	}
	return s.withMutations(eventID, snap.Data), snap, err
}

// Mark records present or absent for a registered student. A second mark for
// the same student while the first is in flight is rejected with a conflict.
func (s *AttendanceService) Mark(ctx context.Context, eventID int64, req dto.MarkAttendanceRequest) (models.MutationStatus, error) {
	if eventID <= 0 {
		return models.MutationStatus{}, appErrors.NewValidationError("event_id", "must be greater than 0")
	}
	if err := s.validator.Struct(req); err != nil {
		return models.MutationStatus{}, validationError(err)
	}

	key := attendanceKey(eventID, req.StudentID)
	err := s.coordinator.Run(ctx, key, "mark_attendance", func(ctx context.Context) error {
		return s.attendance.Mark(ctx, models.MarkAttendanceRequest{
			StudentID: req.StudentID,
			EventID:   eventID,
			Status:    models.AttendanceStatus(req.Status),
		})
	})
	return s.coordinator.Status(key), err
}

// ListAll returns every attendance record for the student app.
func (s *AttendanceService) ListAll(ctx context.Context) ([]models.AttendanceRecord, error) {
	return s.attendance.ListAll(ctx)
}

// OnMutationSettled refreshes the roster touched by key, if one is open.
func (s *AttendanceService) OnMutationSettled(ctx context.Context, key string) error {
	eventID, ok := eventIDFromKey(key)
	if !ok {
		return nil
	}
	if isDeleteKey(key) {
		s.DropEvent(ctx, eventID)
		return nil
	}
	s.mu.Lock()
	store, open := s.rosters[eventID]
	s.mu.Unlock()
	if !open {
		return nil
	}
	return store.OnMutationSettled(ctx, key)
}

// DropEvent discards the roster of a deleted event.
func (s *AttendanceService) DropEvent(_ context.Context, eventID int64) {
	s.mu.Lock()
	store, ok := s.rosters[eventID]
	delete(s.rosters, eventID)
	s.mu.Unlock()
	if ok {
		store.Reset()
	}
}

func (s *AttendanceService) roster(eventID int64) *rosterStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	if store, ok := s.rosters[eventID]; ok {
		return store
	}
	prefixes := []string{attendancePrefix(eventID), registrationPrefix(eventID)}
	store := NewStore[[]models.AttendanceRosterEntry]("roster:"+strconv.FormatInt(eventID, 10),
		func(ctx context.Context) ([]models.AttendanceRosterEntry, error) {
			return s.loadRoster(ctx, eventID)
		},
		WithScope[[]models.AttendanceRosterEntry](func(key string) bool {
			for _, prefix := range prefixes {
				if strings.HasPrefix(key, prefix) {
					return true
				}
			}
			return false
		}),
		WithRefreshMetrics[[]models.AttendanceRosterEntry](s.metrics),
		WithStoreLogger[[]models.AttendanceRosterEntry](s.logger),
	)
	s.rosters[eventID] = store
	return store
}

func (s *AttendanceService) loadRoster(ctx context.Context, eventID int64) ([]models.AttendanceRosterEntry, error) {
	var (
		regs    []models.Registration
		records []models.AttendanceRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		regs, err = s.registrations.ListByEvent(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.attendance.ListByEvent(gctx, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return BuildRoster(regs, records), nil
}

func (s *AttendanceService) withMutations(eventID int64, entries []models.AttendanceRosterEntry) []models.AttendanceRosterEntry {
	statuses := s.coordinator.StatusesWithPrefix(attendancePrefix(eventID))
	out := make([]models.AttendanceRosterEntry, len(entries))
	copy(out, entries)
	for i := range out {
		key := attendanceKey(eventID, out[i].StudentID)
		if st, ok := statuses[key]; ok {
			out[i].Mutation = st
		} else {
			out[i].Mutation = models.MutationStatus{Key: key, State: models.MutationStateIdle}
		}
	}
	return out
}
