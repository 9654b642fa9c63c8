package service

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"

	"github.com/noah-isme/campus-events-console/internal/models"
	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
)

type stubCacheRepo struct {
	mu      sync.Mutex
	store   map[string][]byte
	deleted []string
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, pattern)
	for key := range s.store {
		if ok, _ := path.Match(pattern, key); ok {
			delete(s.store, key)
		}
	}
	return nil
}

func (s *stubCacheRepo) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.store[key]
	return ok
}

func newTestCache() (*CacheService, *stubCacheRepo) {
	repo := &stubCacheRepo{}
	return NewCacheService(repo, nil, time.Minute, nil, true), repo
}

type fakeEventRepo struct {
	mu          sync.Mutex
	events      []models.StaffEvent
	listErr     error
	created     []models.Event
	createErr   error
	deleted     []int64
	deleteErr   error
	deleteCalls int
}

func (f *fakeEventRepo) List(context.Context) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Event, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Event)
	}
	return out, nil
}

func (f *fakeEventRepo) ListWithCounts(context.Context) ([]models.StaffEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.StaffEvent, len(f.events))
	copy(out, f.events)
	return out, nil
}

func (f *fakeEventRepo) Create(_ context.Context, event models.Event) (*models.CreateEventResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	event.ID = int64(100 + len(f.created))
	f.created = append(f.created, event)
	f.events = append(f.events, models.StaffEvent{Event: event})
	return &models.CreateEventResult{ID: event.ID, Message: "Event created successfully"}, nil
}

func (f *fakeEventRepo) Delete(_ context.Context, eventID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, eventID)
	kept := f.events[:0]
	for _, ev := range f.events {
		if ev.ID != eventID {
			kept = append(kept, ev)
		}
	}
	f.events = kept
	return nil
}

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	byEvent map[int64][]models.AttendanceRecord
	errs    map[int64]error
	all     []models.AttendanceRecord
	allErr  error
	marked  []models.MarkAttendanceRequest
	markErr error
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeAttendanceRepo) ListByEvent(_ context.Context, eventID int64) ([]models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[eventID]; err != nil {
		return nil, err
	}
	return f.byEvent[eventID], nil
}

func (f *fakeAttendanceRepo) ListAll(context.Context) ([]models.AttendanceRecord, error) {
	return f.all, f.allErr
}

func (f *fakeAttendanceRepo) Mark(_ context.Context, req models.MarkAttendanceRequest) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, req)
	if f.byEvent == nil {
		f.byEvent = make(map[int64][]models.AttendanceRecord)
	}
	f.byEvent[req.EventID] = append(f.byEvent[req.EventID], models.AttendanceRecord{
		StudentID: req.StudentID, EventID: req.EventID, Status: req.Status,
	})
	return nil
}

func (f *fakeAttendanceRepo) markCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.marked)
}

type fakeRegistrationRepo struct {
	mu          sync.Mutex
	byEvent     map[int64][]models.Registration
	byEventErr  error
	all         []models.StudentRegistration
	allErr      error
	registered  []models.RegisterRequest
	registerErr error
}

func (f *fakeRegistrationRepo) ListByEvent(_ context.Context, eventID int64) ([]models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byEventErr != nil {
		return nil, f.byEventErr
	}
	return f.byEvent[eventID], nil
}

func (f *fakeRegistrationRepo) ListAll(context.Context) ([]models.StudentRegistration, error) {
	return f.all, f.allErr
}

func (f *fakeRegistrationRepo) Register(_ context.Context, req models.RegisterRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, req)
	return nil
}

type fakeStudentRepo struct {
	calls []models.FindOrCreateStudentRequest
	err   error
}

func (f *fakeStudentRepo) FindOrCreate(_ context.Context, req models.FindOrCreateStudentRequest) (*models.Student, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Student{ID: 42, CollegeID: req.CollegeID, Name: req.Name, Email: req.Email}, nil
}

type fakeFeedbackRepo struct {
	entries   []models.FeedbackEntry
	listErr   error
	submitted []models.SubmitFeedbackRequest
	submitErr error
}

func (f *fakeFeedbackRepo) List(context.Context) ([]models.FeedbackEntry, error) {
	return f.entries, f.listErr
}

func (f *fakeFeedbackRepo) Submit(_ context.Context, req models.SubmitFeedbackRequest) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, req)
	return nil
}

type fakeReportRepo struct {
	registrations []models.RegistrationReportRow
	topStudents   []models.TopStudentRow
	err           error
	calls         int
}

func (f *fakeReportRepo) Registrations(context.Context) ([]models.RegistrationReportRow, error) {
	f.calls++
	return f.registrations, f.err
}

func (f *fakeReportRepo) TopStudents(context.Context) ([]models.TopStudentRow, error) {
	return f.topStudents, f.err
}
