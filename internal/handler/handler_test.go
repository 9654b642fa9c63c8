package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-events-console/internal/dto"
	"github.com/noah-isme/campus-events-console/internal/models"
	"github.com/noah-isme/campus-events-console/internal/service"
	appErrors "github.com/noah-isme/campus-events-console/pkg/errors"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func doRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func newRouter(h Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, "/api/v1", h)
	return r
}

type fakeEventSrv struct {
	snap       service.Snapshot[[]models.EventSummary]
	err        error
	refreshed  bool
	summary    *models.EventSummary
	summaryHit bool
	created    dto.CreateEventRequest
	createErr  error
	deleted    int64
}

func (f *fakeEventSrv) Summaries(_ context.Context, refresh bool) (service.Snapshot[[]models.EventSummary], error) {
	f.refreshed = refresh
	return f.snap, f.err
}

func (f *fakeEventSrv) Summary(_ context.Context, id int64) (*models.EventSummary, bool, error) {
	if f.summary == nil || f.summary.ID != id {
		return nil, false, appErrors.ErrNotFound
	}
	return f.summary, f.summaryHit, nil
}

func (f *fakeEventSrv) Create(_ context.Context, req dto.CreateEventRequest) (*models.CreateEventResult, models.MutationStatus, error) {
	f.created = req
	if f.createErr != nil {
		return nil, models.MutationStatus{}, f.createErr
	}
	return &models.CreateEventResult{ID: 12, Message: "Event created"}, models.MutationStatus{Key: "event:create", State: models.MutationStateSuccess}, nil
}

func (f *fakeEventSrv) Delete(ctx context.Context, id int64) (models.MutationStatus, error) {
	ok, err := service.ContextConfirmer{}.Confirm(ctx, service.ConfirmationRequest{Target: "7"})
	if err != nil {
		return models.MutationStatus{}, err
	}
	if !ok {
		return models.MutationStatus{}, appErrors.ErrConfirmationDeclined
	}
	f.deleted = id
	return models.MutationStatus{State: models.MutationStateSuccess}, nil
}

func summary(id int64, partial bool) models.EventSummary {
	return models.EventSummary{Event: models.Event{ID: id, Name: "Hack Night"}, RegistrationCount: 8, AttendanceCount: 3, AttendancePercentage: 38, Partial: partial}
}

func TestEventHandlerListReturnsSnapshotMeta(t *testing.T) {
	srv := &fakeEventSrv{snap: service.Snapshot[[]models.EventSummary]{
		Data:       []models.EventSummary{summary(7, false), summary(8, true)},
		HasData:    true,
		Generation: 3,
	}}
	r := newRouter(Handlers{Events: NewEventHandler(srv, nil)})

	rec := doRequest(r, http.MethodGet, "/api/v1/staff/events", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env.Meta["partial"])
	assert.Equal(t, float64(3), env.Meta["generation"])
	assert.False(t, srv.refreshed)

	var data []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data, 2)
	assert.Equal(t, float64(38), data[0]["attendance_percentage"])

	doRequest(r, http.MethodPost, "/api/v1/staff/events/refresh", nil, nil)
	assert.True(t, srv.refreshed)
}

func TestEventHandlerListKeepsDataOnRefreshError(t *testing.T) {
	failure := appErrors.NewNetworkError(errors.New("refused"))
	srv := &fakeEventSrv{
		snap: service.Snapshot[[]models.EventSummary]{Data: []models.EventSummary{summary(7, false)}, HasData: true, Err: failure},
		err:  failure,
	}
	r := newRouter(Handlers{Events: NewEventHandler(srv, nil)})

	rec := doRequest(r, http.MethodGet, "/api/v1/staff/events?refresh=true", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.CodeNetwork, env.Error.Code)
	assert.NotEqual(t, "null", string(env.Data))

	srv.snap = service.Snapshot[[]models.EventSummary]{Err: failure}
	rec = doRequest(r, http.MethodGet, "/api/v1/staff/events", nil, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestEventHandlerSummary(t *testing.T) {
	s := summary(7, false)
	srv := &fakeEventSrv{summary: &s, summaryHit: true}
	r := newRouter(Handlers{Events: NewEventHandler(srv, nil)})

	rec := doRequest(r, http.MethodGet, "/api/v1/staff/events/7/summary", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeEnvelope(t, rec).Meta["cache_hit"])

	rec = doRequest(r, http.MethodGet, "/api/v1/staff/events/abc/summary", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(r, http.MethodGet, "/api/v1/staff/events/9/summary", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventHandlerCreate(t *testing.T) {
	srv := &fakeEventSrv{}
	r := newRouter(Handlers{Events: NewEventHandler(srv, nil)})

	rec := doRequest(r, http.MethodPost, "/api/v1/staff/events", map[string]string{
		"college_id": "C1", "name": "Talk", "type": "Tech Talk", "date": "2024-05-01",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Tech Talk", srv.created.Type)
	var body dto.CreateEventResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &body))
	assert.Equal(t, int64(12), body.EventID)
	assert.Equal(t, models.MutationStateSuccess, body.Mutation.State)

	srv.createErr = appErrors.NewConflictError("event:create:c1:talk:2024-05-01")
	rec = doRequest(r, http.MethodPost, "/api/v1/staff/events", map[string]string{"name": "Talk"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestEventHandlerDeleteConfirmation(t *testing.T) {
	srv := &fakeEventSrv{}
	r := newRouter(Handlers{Events: NewEventHandler(srv, nil)})

	rec := doRequest(r, http.MethodDelete, "/api/v1/staff/events/7", nil, nil)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.Equal(t, appErrors.CodeConfirmationRequired, decodeEnvelope(t, rec).Error.Code)

	rec = doRequest(r, http.MethodDelete, "/api/v1/staff/events/7", nil, map[string]string{"X-Confirm-Delete": "8"})
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Zero(t, srv.deleted)

	rec = doRequest(r, http.MethodDelete, "/api/v1/staff/events/7?confirm=7", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), srv.deleted)
}

type fakeDashboardSrv struct {
	stats models.StaffDashboardStats
	err   error
}

func (f *fakeDashboardSrv) Staff(context.Context) (models.StaffDashboardStats, error) {
	return f.stats, f.err
}

func TestEventHandlerDashboard(t *testing.T) {
	r := newRouter(Handlers{Events: NewEventHandler(&fakeEventSrv{}, &fakeDashboardSrv{err: appErrors.ErrTimeout})})
	rec := doRequest(r, http.MethodGet, "/api/v1/staff/dashboard", nil, nil)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

type fakeAttendanceSrv struct {
	entries []models.AttendanceRosterEntry
	snap    service.Snapshot[[]models.AttendanceRosterEntry]
	err     error
	marked  dto.MarkAttendanceRequest
	markErr error
}

func (f *fakeAttendanceSrv) Roster(context.Context, int64) ([]models.AttendanceRosterEntry, service.Snapshot[[]models.AttendanceRosterEntry], error) {
	return f.entries, f.snap, f.err
}

func (f *fakeAttendanceSrv) Mark(_ context.Context, eventID int64, req dto.MarkAttendanceRequest) (models.MutationStatus, error) {
	f.marked = req
	if f.markErr != nil {
		return models.MutationStatus{State: models.MutationStatePending}, f.markErr
	}
	return models.MutationStatus{Key: "attendance:7:1", State: models.MutationStateSuccess}, nil
}

func TestAttendanceHandler(t *testing.T) {
	srv := &fakeAttendanceSrv{
		entries: []models.AttendanceRosterEntry{{Registration: models.Registration{StudentID: 1, EventID: 7}, Status: models.AttendanceStatusUnmarked}},
		snap:    service.Snapshot[[]models.AttendanceRosterEntry]{HasData: true, Generation: 1},
	}
	r := newRouter(Handlers{Attendance: NewAttendanceHandler(srv)})

	rec := doRequest(r, http.MethodGet, "/api/v1/staff/events/7/attendance", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var roster dto.RosterResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &roster))
	assert.Equal(t, int64(7), roster.EventID)
	require.Len(t, roster.Entries, 1)
	assert.Equal(t, models.AttendanceStatusUnmarked, roster.Entries[0].Status)

	rec = doRequest(r, http.MethodPost, "/api/v1/staff/events/7/attendance", map[string]interface{}{"student_id": 1, "status": "present"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "present", srv.marked.Status)

	srv.markErr = appErrors.NewConflictError("attendance:7:1")
	rec = doRequest(r, http.MethodPost, "/api/v1/staff/events/7/attendance", map[string]interface{}{"student_id": 1, "status": "present"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(r, http.MethodPost, "/api/v1/staff/events/7/attendance", "not an object", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeStudentSrv struct {
	query     dto.EventListQuery
	register  dto.RegisterEventRequest
	feedback  dto.SubmitFeedbackRequest
	submitErr error
}

func (f *fakeStudentSrv) List(_ context.Context, query dto.EventListQuery) ([]models.Event, error) {
	f.query = query
	return []models.Event{{ID: 1, Type: models.EventTypeFest}}, nil
}

func (f *fakeStudentSrv) Student(context.Context) (models.StudentHomeStats, error) {
	return models.StudentHomeStats{}, nil
}

func (f *fakeStudentSrv) Register(_ context.Context, _ int64, req dto.RegisterEventRequest) (int64, models.MutationStatus, error) {
	f.register = req
	return 42, models.MutationStatus{State: models.MutationStateSuccess}, nil
}

func (f *fakeStudentSrv) Submit(_ context.Context, req dto.SubmitFeedbackRequest) (int64, models.MutationStatus, error) {
	f.feedback = req
	if f.submitErr != nil {
		return 0, models.MutationStatus{}, f.submitErr
	}
	return 42, models.MutationStatus{State: models.MutationStateSuccess}, nil
}

func (f *fakeStudentSrv) ListAll(context.Context) ([]models.AttendanceRecord, error) {
	return nil, nil
}

func TestStudentHandler(t *testing.T) {
	srv := &fakeStudentSrv{}
	students := NewStudentHandler(StudentHandlerDeps{Events: srv, Home: srv, Attendance: srv, Feedback: srv})
	r := newRouter(Handlers{Students: students})

	rec := doRequest(r, http.MethodGet, "/api/v1/student/events?type=Fest", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Fest", srv.query.Type)
	assert.Equal(t, float64(1), decodeEnvelope(t, rec).Meta["count"])

	rec = doRequest(r, http.MethodGet, "/api/v1/student/attendance", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(decodeEnvelope(t, rec).Data))

	rec = doRequest(r, http.MethodPost, "/api/v1/student/feedback", map[string]interface{}{
		"college_id": "C1", "name": "Ada", "email": "ada@example.edu", "event_id": 7, "rating": 5, "feedback_text": "great",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "great", srv.feedback.Comment)

	srv.submitErr = appErrors.NewValidationError("rating", "must be at most 5")
	rec = doRequest(r, http.MethodPost, "/api/v1/student/feedback", map[string]interface{}{"rating": 9}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "rating", decodeEnvelope(t, rec).Error.Field)
}

func TestStudentHandlerRegister(t *testing.T) {
	srv := &fakeStudentSrv{}
	r := newRouter(Handlers{Students: NewStudentHandler(StudentHandlerDeps{Registrations: srvRegistrations{srv}})})

	rec := doRequest(r, http.MethodPost, "/api/v1/student/events/7/register", map[string]string{
		"college_id": "C1", "name": "Ada", "email": "ada@example.edu",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ada@example.edu", srv.register.Email)
	var body dto.StudentWriteResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &body))
	assert.Equal(t, int64(42), body.StudentID)
	assert.Equal(t, int64(7), body.EventID)
}

type srvRegistrations struct{ *fakeStudentSrv }

func (s srvRegistrations) List(context.Context) ([]models.StudentRegistration, error) {
	return nil, nil
}

type fakeReportSrv struct {
	format string
	err    error
}

func (f *fakeReportSrv) Overview(context.Context) (models.ReportsOverview, bool, error) {
	return models.ReportsOverview{}, true, nil
}

func (f *fakeReportSrv) Export(_ context.Context, format string) (*service.ReportFile, error) {
	f.format = format
	if f.err != nil {
		return nil, f.err
	}
	return &service.ReportFile{Filename: "registrations.csv", ContentType: "text/csv", Payload: []byte("Event,Total Registrations\n")}, nil
}

func TestReportHandler(t *testing.T) {
	srv := &fakeReportSrv{}
	r := newRouter(Handlers{Reports: NewReportHandler(srv)})

	rec := doRequest(r, http.MethodGet, "/api/v1/staff/reports", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeEnvelope(t, rec).Meta["cache_hit"])

	rec = doRequest(r, http.MethodGet, "/api/v1/staff/reports/export?format=csv", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", srv.format)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "registrations.csv")
	assert.Equal(t, "Event,Total Registrations\n", rec.Body.String())

	srv.err = appErrors.NewValidationError("format", "must be one of csv pdf")
	rec = doRequest(r, http.MethodGet, "/api/v1/staff/reports/export?format=xls", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeStatusReader map[string]models.MutationStatus

func (f fakeStatusReader) StatusesWithPrefix(string) map[string]models.MutationStatus {
	return f
}

func TestMutationHandler(t *testing.T) {
	r := newRouter(Handlers{Mutations: NewMutationHandler(fakeStatusReader{
		"attendance:7:2": {Key: "attendance:7:2", State: models.MutationStatePending},
		"attendance:7:1": {Key: "attendance:7:1", State: models.MutationStateSuccess},
	})})

	rec := doRequest(r, http.MethodGet, "/api/v1/staff/mutations", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(r, http.MethodGet, "/api/v1/staff/mutations?prefix=attendance:7:", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var statuses []models.MutationStatus
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &statuses))
	require.Len(t, statuses, 2)
	assert.Equal(t, "attendance:7:1", statuses[0].Key)
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestMetricsHandlerReady(t *testing.T) {
	r := newRouter(Handlers{Metrics: NewMetricsHandler(service.NewMetricsService(), fakePinger{})})
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/ready", nil, nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/health", nil, nil).Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/metrics", nil, nil).Code)

	r = newRouter(Handlers{Metrics: NewMetricsHandler(nil, fakePinger{err: appErrors.ErrNetwork})})
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(r, http.MethodGet, "/ready", nil, nil).Code)
}
