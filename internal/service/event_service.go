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

type eventRepository interface {
	List(ctx context.Context) ([]models.Event, error)
	ListWithCounts(ctx context.Context) ([]models.StaffEvent, error)
	Create(ctx context.Context, event models.Event) (*models.CreateEventResult, error)
	Delete(ctx context.Context, eventID int64) error
}

type eventAttendanceLister interface {
	ListByEvent(ctx context.Context, eventID int64) ([]models.AttendanceRecord, error)
}

// EventDeletedFunc is called after an event was deleted on the backend.
type EventDeletedFunc func(ctx context.Context, eventID int64)

// EventServiceConfig tunes the summary pipeline.
type EventServiceConfig struct {
	FetchConcurrency int
}

// EventService owns the staff event list: the summary pipeline, its store and
// the create/delete writes.
type EventService struct {
	events      eventRepository
	attendance  eventAttendanceLister
	coordinator *MutationCoordinator
	cache       *CacheService
	confirmer   Confirmer
	validator   *validator.Validate
	store       *Store[[]models.EventSummary]
	concurrency int
	logger      *zap.Logger

	mu        sync.Mutex
	onDeleted []EventDeletedFunc
}

// NewEventService constructs the event service.
func NewEventService(events eventRepository, attendance eventAttendanceLister, coordinator *MutationCoordinator, cache *CacheService, confirmer Confirmer, validate *validator.Validate, cfg EventServiceConfig, metrics refreshRecorder, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 8
	}
	if confirmer == nil {
		confirmer = ContextConfirmer{}
	}
	svc := &EventService{
		events:      events,
		attendance:  attendance,
		coordinator: coordinator,
		cache:       cache,
		confirmer:   confirmer,
		validator:   validate,
		concurrency: cfg.FetchConcurrency,
		logger:      logger,
	}
	svc.store = NewStore[[]models.EventSummary]("event_summaries", svc.loadSummaries,
		WithScope[[]models.EventSummary](eventListScope),
		WithRefreshMetrics[[]models.EventSummary](metrics),
		WithStoreLogger[[]models.EventSummary](logger),
	)
	svc.store.Subscribe(svc.syncSummaryCache)
	return svc
}

// eventListScope matches every write that changes an event row or its counts.
func eventListScope(key string) bool {
	return strings.HasPrefix(key, "event:") ||
		strings.HasPrefix(key, keyAttendance) ||
		strings.HasPrefix(key, keyRegistration)
}

// Store exposes the summary store so it can be registered for refresh dispatch.
func (s *EventService) Store() *Store[[]models.EventSummary] {
	return s.store
}

// OnEventDeleted registers fn to run after a confirmed delete succeeds.
func (s *EventService) OnEventDeleted(fn EventDeletedFunc) {
	s.mu.Lock()
	s.onDeleted = append(s.onDeleted, fn)
	s.mu.Unlock()
}

// Summaries returns the event summary snapshot. refresh forces a reload;
// otherwise the store is only loaded when empty.
func (s *EventService) Summaries(ctx context.Context, refresh bool) (Snapshot[[]models.EventSummary], error) {
	if !refresh {
		return s.store.Load(ctx)
	}
	snap, err := s.store.Refresh(ctx)
	if errors.Is(err, appErrors.ErrRefreshSuperseded) {
		return s.store.Snapshot(), nil
	}
	return snap, err
}

// Summary returns one event summary, preferring the cache. The bool reports a
// cache hit. A miss is computed from the backend, never from the list snapshot,
// which may lag behind a write whose refresh is still queued.
func (s *EventService) Summary(ctx context.Context, eventID int64) (*models.EventSummary, bool, error) {
	var cached models.EventSummary
	if hit, _ := s.cache.Get(ctx, summaryCacheKey(eventID), &cached); hit {
		return &cached, true, nil
	}

	staffEvents, err := s.events.ListWithCounts(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, ev := range staffEvents {
		if ev.ID != eventID {
			continue
		}
		fetches := s.fetchAttendance(ctx, []int64{eventID})
		summaries := SummarizeEvents([]models.Event{ev.Event}, fetches, map[int64]int{ev.ID: ev.RegistrationCount})
		summary := summaries[0]
		s.cacheSummary(ctx, summary)
		return &summary, false, nil
	}
	return nil, false, appErrors.Clone(appErrors.ErrNotFound, "event not found")
}

// List returns the events visible to students, optionally filtered by type.
func (s *EventService) List(ctx context.Context, query dto.EventListQuery) ([]models.Event, error) {
	eventType := models.EventType(strings.TrimSpace(query.Type))
	if eventType != "" && !eventType.Valid() {
		return nil, appErrors.NewValidationError("type", reasonForEventType())
	}
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	return FilterEventsByType(events, eventType), nil
}

// Create validates and submits a new event.
func (s *EventService) Create(ctx context.Context, req dto.CreateEventRequest) (*models.CreateEventResult, models.MutationStatus, error) {
	req.CollegeID = strings.TrimSpace(req.CollegeID)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, models.MutationStatus{}, validationError(err)
	}

	key := eventCreateKey(req.CollegeID, req.Name, req.Date)
	var result *models.CreateEventResult
	err := s.coordinator.Run(ctx, key, "create_event", func(ctx context.Context) error {
		created, err := s.events.Create(ctx, models.Event{
			CollegeID: req.CollegeID,
			Name:      req.Name,
			Type:      models.EventType(req.Type),
			Date:      req.Date,
		})
		if err != nil {
			return err
		}
		result = created
		return nil
	})
	return result, s.coordinator.Status(key), err
}

// Delete removes an event after confirmation and invalidates everything that
// references it: cached summaries, reports, rosters and mutation states.
func (s *EventService) Delete(ctx context.Context, eventID int64) (models.MutationStatus, error) {
	if eventID <= 0 {
		return models.MutationStatus{}, appErrors.NewValidationError("event_id", "must be greater than 0")
	}
	key := eventDeleteKey(eventID)
	req := ConfirmationRequest{Action: "delete_event", Target: strconv.FormatInt(eventID, 10)}
	err := s.coordinator.RunConfirmed(ctx, key, "delete_event", s.confirmer, req, func(ctx context.Context) error {
		if err := s.events.Delete(ctx, eventID); err != nil {
			return err
		}
		s.invalidateEvent(ctx, eventID)
		return nil
	})
	return s.coordinator.Status(key), err
}

// OnMutationSettled drops the cached summary of an event whose attendance or
// registrations just changed. It runs on the write path, ahead of the queued
// store refresh.
func (s *EventService) OnMutationSettled(ctx context.Context, key string) error {
	if !strings.HasPrefix(key, keyAttendance) && !strings.HasPrefix(key, keyRegistration) {
		return nil
	}
	eventID, ok := eventIDFromKey(key)
	if !ok {
		return nil
	}
	return s.cache.Invalidate(ctx, summaryCacheKey(eventID))
}

func (s *EventService) invalidateEvent(ctx context.Context, eventID int64) {
	s.store.Apply(func(summaries []models.EventSummary) []models.EventSummary {
		kept := make([]models.EventSummary, 0, len(summaries))
		for _, summary := range summaries {
			if summary.ID != eventID {
				kept = append(kept, summary)
			}
		}
		return kept
	})
	_ = s.cache.Invalidate(ctx, summaryCacheKey(eventID))
	_ = s.cache.Invalidate(ctx, reportsCachePrefix+"*")
	s.coordinator.Forget(attendancePrefix(eventID))
	s.coordinator.Forget(registrationPrefix(eventID))

	s.mu.Lock()
	listeners := make([]EventDeletedFunc, len(s.onDeleted))
	copy(listeners, s.onDeleted)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(ctx, eventID)
	}
	s.logger.Info("event deleted", zap.Int64("event_id", eventID))
}

// loadSummaries is the fetch and aggregate pipeline behind the store.
func (s *EventService) loadSummaries(ctx context.Context) ([]models.EventSummary, error) {
	staffEvents, err := s.events.ListWithCounts(ctx)
	if err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(staffEvents))
	counts := make(map[int64]int, len(staffEvents))
	ids := make([]int64, 0, len(staffEvents))
	for _, ev := range staffEvents {
		events = append(events, ev.Event)
		counts[ev.ID] = ev.RegistrationCount
		ids = append(ids, ev.ID)
	}

	fetches := s.fetchAttendance(ctx, ids)
	return SummarizeEvents(events, fetches, counts), nil
}

// syncSummaryCache mirrors every applied snapshot into the summary cache.
// Superseded runs never reach subscribers, so they cannot overwrite newer entries.
func (s *EventService) syncSummaryCache(snap Snapshot[[]models.EventSummary]) {
	if snap.Err != nil {
		return
	}
	ctx := context.Background()
	for _, summary := range snap.Data {
		s.cacheSummary(ctx, summary)
	}
}

// fetchAttendance runs one bounded sub-fetch per event. Every event ends up in
// the result, either with its records or with the error of its fetch.
func (s *EventService) fetchAttendance(ctx context.Context, ids []int64) map[int64]models.AttendanceFetch {
	results := make([]models.AttendanceFetch, len(ids))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			records, err := s.attendance.ListByEvent(ctx, id)
			results[i] = models.AttendanceFetch{Records: records, Err: err}
			if err != nil {
				s.logger.Warn("attendance sub-fetch failed", zap.Int64("event_id", id), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[int64]models.AttendanceFetch, len(ids))
	for i, id := range ids {
		out[id] = results[i]
	}
	return out
}

// cacheSummary stores a complete summary. A partial one evicts whatever was
// cached before, so cache-first reads never outlive a failed sub-fetch.
func (s *EventService) cacheSummary(ctx context.Context, summary models.EventSummary) {
	if summary.Partial {
		_ = s.cache.Invalidate(ctx, summaryCacheKey(summary.ID))
		return
	}
	_ = s.cache.Set(ctx, summaryCacheKey(summary.ID), summary, 0)
}
