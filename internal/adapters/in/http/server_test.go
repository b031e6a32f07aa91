package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	apihttp "fieldservice/internal/adapters/in/http"
	"fieldservice/internal/adapters/in/payload"
	"fieldservice/internal/core/application/usecases/commands"
	"fieldservice/internal/core/application/usecases/queries"
	"fieldservice/internal/core/domain/model/kernel"
	"fieldservice/internal/core/domain/model/scheduling"
	"fieldservice/internal/core/domain/services"
	"fieldservice/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Monday.
var testNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

const (
	nearbyWorker  = "2f1c5a8e-0d3b-4c55-9a61-3e7f2b8d9c10"
	distantWorker = "7b9e4d21-6a0f-4e8c-b3d2-5c1a9f8e7d64"
	storedJobID   = "c3d8e5f0-1a2b-4c6d-8e9f-0a1b2c3d4e5f"
)

type MockStoredJobScheduler struct {
	mock.Mock
}

func (m *MockStoredJobScheduler) Handle(ctx context.Context, command commands.ScheduleJobCommand) (scheduling.Result, error) {
	args := m.Called(ctx, command)
	return args.Get(0).(scheduling.Result), args.Error(1)
}

type MockPendingJobsScheduler struct {
	mock.Mock
}

func (m *MockPendingJobsScheduler) Handle(
	ctx context.Context,
	command commands.SchedulePendingJobsCommand,
) ([]scheduling.Result, error) {
	args := m.Called(ctx, command)
	results, _ := args.Get(0).([]scheduling.Result)
	return results, args.Error(1)
}

type MockJobResultsReader struct {
	mock.Mock
}

func (m *MockJobResultsReader) Handle(
	ctx context.Context,
	query queries.GetJobResultsQuery,
) ([]queries.GetJobResultsQueryResponse, error) {
	args := m.Called(ctx, query)
	attempts, _ := args.Get(0).([]queries.GetJobResultsQueryResponse)
	return attempts, args.Error(1)
}

type recordingObserver struct {
	mu       sync.Mutex
	modes    []string
	requests []string
}

func (o *recordingObserver) ObserveResults(mode string, _ []scheduling.Result, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.modes = append(o.modes, mode)
}

func (o *recordingObserver) ObserveHTTP(method, path string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, method+" "+path+" "+http.StatusText(status))
}

type fixture struct {
	echo     *echo.Echo
	stored   *MockStoredJobScheduler
	pending  *MockPendingJobsScheduler
	results  *MockJobResultsReader
	observer *recordingObserver
}

func newFixture(t *testing.T, optimizeByDefault bool) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := services.FixedClock(testNow)
	generator := services.NewCandidateGenerator(nil, services.ConstantAvailability(1), nil)
	scheduler := services.NewJobScheduler(generator, services.NewScheduleTimeCalculator(clock), logger)

	f := &fixture{
		echo:     echo.New(),
		stored:   &MockStoredJobScheduler{},
		pending:  &MockPendingJobsScheduler{},
		results:  &MockJobResultsReader{},
		observer: &recordingObserver{},
	}
	server := apihttp.NewServer(apihttp.Dependencies{
		Scheduler:         scheduler,
		Batch:             services.NewBatchScheduler(scheduler, clock, logger),
		ScheduleJob:       f.stored,
		SchedulePending:   f.pending,
		JobResults:        f.results,
		Observer:          f.observer,
		OptimizeByDefault: optimizeByDefault,
		Logger:            logger,
	})
	require.NoError(t, server.Register(f.echo, apihttp.RouteOptions{
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "fieldservice_up 1\n")
		}),
		RequestObserver: f.observer,
	}))
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func workerJSON(id string, lat, lon float64) map[string]any {
	return map[string]any{
		"worker_id": id,
		"home_base": map[string]any{"latitude": lat, "longitude": lon},
		"skills": []map[string]any{
			{"id": "electrical", "category": "trade", "level": "expert", "years_of_experience": 8},
		},
	}
}

func jobJSON(id, priority string) map[string]any {
	return map[string]any{
		"id":                       id,
		"location":                 map[string]any{"latitude": 52.52, "longitude": 13.405},
		"required_skills":          []string{"electrical"},
		"priority":                 priority,
		"estimated_duration_hours": 2,
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())
}

func TestOpenAPIDocumentIsServed(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/openapi.yaml", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/scheduling/jobs:")
}

func TestLoadOpenAPI(t *testing.T) {
	doc, err := apihttp.LoadOpenAPI()

	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/api/v1/jobs/{jobId}/results"))
}

func TestMetricsRoute(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fieldservice_up 1")
}

func TestScheduleJob_AssignsNearestQualifiedWorker(t *testing.T) {
	f := newFixture(t, false)
	body := mustJSON(t, map[string]any{
		"job": jobJSON("0e6f1b52-4a3c-4d7e-8f90-1a2b3c4d5e6f", "high"),
		"workers": []any{
			workerJSON(distantWorker, 52.0, 13.0),
			workerJSON(nearbyWorker, 52.53, 13.41),
		},
	})

	rec := f.do(t, http.MethodPost, "/api/v1/scheduling/jobs", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[payload.Result](t, rec)
	assert.True(t, result.Feasible)
	require.NotNil(t, result.AssignedWorkerID)
	assert.Equal(t, nearbyWorker, *result.AssignedWorkerID)
	assert.Equal(t, []string{distantWorker}, result.Alternatives)
	assert.Equal(t, "none", result.Failure)
	assert.Equal(t, []string{apihttp.ModeAPISingle}, f.observer.modes)
}

func TestScheduleJob_InvalidJobIsAValidationResult(t *testing.T) {
	f := newFixture(t, false)
	j := jobJSON("0e6f1b52-4a3c-4d7e-8f90-1a2b3c4d5e6f", "medium")
	j["preferred_window"] = map[string]any{
		"start": "2025-03-10T12:00:00Z",
		"end":   "2025-03-10T10:00:00Z",
	}
	body := mustJSON(t, map[string]any{
		"job":     j,
		"workers": []any{workerJSON(nearbyWorker, 52.53, 13.41)},
	})

	rec := f.do(t, http.MethodPost, "/api/v1/scheduling/jobs", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[payload.Result](t, rec)
	assert.False(t, result.Feasible)
	assert.Equal(t, "validation", result.Failure)
	assert.True(t, strings.HasPrefix(result.Notes, scheduling.NoteInvalidJobPrefix))
}

func TestScheduleJob_RejectsInvalidWorker(t *testing.T) {
	f := newFixture(t, false)
	w := workerJSON(nearbyWorker, 52.53, 13.41)
	w["availability"] = []map[string]any{
		{"weekday": "monday", "start": "25:00", "end": "26:00", "type": "regular"},
	}
	body := mustJSON(t, map[string]any{
		"job":     jobJSON("0e6f1b52-4a3c-4d7e-8f90-1a2b3c4d5e6f", "medium"),
		"workers": []any{w},
	})

	rec := f.do(t, http.MethodPost, "/api/v1/scheduling/jobs", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	apiErr := decode[apihttp.Error](t, rec)
	assert.Equal(t, http.StatusBadRequest, apiErr.Code)
	assert.Contains(t, apiErr.Message, "workers[0]")
	assert.Empty(t, f.observer.modes)
}

func TestScheduleJob_RejectsBodyNotMatchingSchema(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing workers", `{"job":` + mustJSON(t, jobJSON("0e6f1b52-4a3c-4d7e-8f90-1a2b3c4d5e6f", "low")) + `}`},
		{"unknown priority", mustJSON(t, map[string]any{
			"job":     jobJSON("0e6f1b52-4a3c-4d7e-8f90-1a2b3c4d5e6f", "someday"),
			"workers": []any{},
		})},
		{"latitude out of range", `{"job":{"id":"0e6f1b52-4a3c-4d7e-8f90-1a2b3c4d5e6f",` +
			`"location":{"latitude":91,"longitude":0},"required_skills":["x"],` +
			`"priority":"low","estimated_duration_hours":1},"workers":[]}`},
		{"not json", `{"job":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)

			rec := f.do(t, http.MethodPost, "/api/v1/scheduling/jobs", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestScheduleBatch_AppendsInvalidJobsLast(t *testing.T) {
	f := newFixture(t, false)
	invalid := jobJSON("9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d", "emergency")
	invalid["due_date"] = "2025-03-11T12:00:00Z"
	invalid["preferred_window"] = map[string]any{
		"start": "2025-03-10T12:00:00Z",
		"end":   "2025-03-10T12:00:00Z",
	}
	body := mustJSON(t, map[string]any{
		"jobs": []any{
			invalid,
			jobJSON("11111111-2222-4333-8444-555555555555", "low"),
			jobJSON("66666666-7777-4888-8999-aaaaaaaaaaaa", "urgent"),
		},
		"workers": []any{
			workerJSON(nearbyWorker, 52.53, 13.41),
			workerJSON(distantWorker, 52.0, 13.0),
		},
		"optimize": true,
	})

	rec := f.do(t, http.MethodPost, "/api/v1/scheduling/batch", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	results := decode[[]payload.Result](t, rec)
	require.Len(t, results, 3)
	assert.Equal(t, "66666666-7777-4888-8999-aaaaaaaaaaaa", results[0].JobID)
	assert.Equal(t, "11111111-2222-4333-8444-555555555555", results[1].JobID)
	assert.True(t, results[0].Feasible)
	assert.True(t, results[1].Feasible)
	assert.Equal(t, "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d", results[2].JobID)
	assert.Equal(t, "validation", results[2].Failure)
	assert.Equal(t, []string{apihttp.ModeAPIBatch}, f.observer.modes)
}

func TestScheduleStoredJob(t *testing.T) {
	jobID := kernel.MustUUIDFromString(storedJobID)
	worker := kernel.MustUUIDFromString(nearbyWorker)
	start := testNow.Add(30 * time.Minute)
	feasible, err := scheduling.NewFeasibleResult(jobID, scheduling.Assignment{
		WorkerID:      worker,
		Start:         start,
		End:           start.Add(2 * time.Hour),
		TravelMinutes: 15,
		Confidence:    0.9,
	})
	require.NoError(t, err)

	tests := []struct {
		name       string
		result     scheduling.Result
		err        error
		wantStatus int
		wantInBody string
	}{
		{"scheduled", feasible, nil, http.StatusOK, nearbyWorker},
		{"unknown job", scheduling.Result{}, errs.NewObjectNotFoundError("job", storedJobID), http.StatusNotFound, "object not found"},
		{"already scheduled", scheduling.Result{}, commands.ErrJobAlreadyScheduled, http.StatusConflict, "already scheduled"},
		{"storage failure", scheduling.Result{}, errors.New("connection reset"), http.StatusInternalServerError, "Failed to schedule job"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			f.stored.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ScheduleJobCommand) bool {
				return cmd.JobID().IsEqual(jobID) && len(cmd.Constraints()) == 1
			})).Return(tt.result, tt.err).Once()

			rec := f.do(t, http.MethodPost, "/api/v1/jobs/"+storedJobID+"/schedule",
				`{"constraints":[{"type":"max_travel_time","value":45}]}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantInBody)
			assert.NotContains(t, rec.Body.String(), "connection reset")
			f.stored.AssertExpectations(t)
		})
	}
}

func TestScheduleStoredJob_WithoutBodyUsesDefaults(t *testing.T) {
	f := newFixture(t, false)
	jobID := kernel.MustUUIDFromString(storedJobID)
	f.stored.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ScheduleJobCommand) bool {
		return len(cmd.Constraints()) == 0 && cmd.Objectives().IsZero()
	})).Return(scheduling.NewInfeasibleResult(jobID, scheduling.FailureNoSolution, scheduling.NoteNoCandidates), nil).Once()

	rec := f.do(t, http.MethodPost, "/api/v1/jobs/"+storedJobID+"/schedule", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[payload.Result](t, rec)
	assert.False(t, result.Feasible)
	assert.Equal(t, "no_solution", result.Failure)
	f.stored.AssertExpectations(t)
}

func TestScheduleStoredJob_RejectsMalformedID(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodPost, "/api/v1/jobs/not-a-uuid/schedule", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.stored.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestSchedulePendingJobs(t *testing.T) {
	jobID := kernel.MustUUIDFromString(storedJobID)
	noSolution := scheduling.NewInfeasibleResult(jobID, scheduling.FailureNoSolution, scheduling.NoteNoCandidates)

	tests := []struct {
		name              string
		optimizeByDefault bool
		body              string
		wantOptimize      bool
	}{
		{"default off", false, "", false},
		{"default on", true, "", true},
		{"body overrides default", true, `{"optimize":false}`, false},
		{"body enables", false, `{"optimize":true}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.optimizeByDefault)
			f.pending.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.SchedulePendingJobsCommand) bool {
				return cmd.Optimize() == tt.wantOptimize
			})).Return([]scheduling.Result{noSolution}, nil).Once()

			rec := f.do(t, http.MethodPost, "/api/v1/jobs/schedule-pending", tt.body)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			results := decode[[]payload.Result](t, rec)
			require.Len(t, results, 1)
			assert.Equal(t, storedJobID, results[0].JobID)
			f.pending.AssertExpectations(t)
		})
	}
}

func TestSchedulePendingJobs_NothingPending(t *testing.T) {
	f := newFixture(t, false)
	f.pending.On("Handle", mock.Anything, mock.Anything).Return(nil, commands.ErrNoPendingJobs).Once()

	rec := f.do(t, http.MethodPost, "/api/v1/jobs/schedule-pending", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSchedulePendingJobs_RejectsInvalidObjectives(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(t, http.MethodPost, "/api/v1/jobs/schedule-pending", `{"objectives":{"skill":-1}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.pending.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestGetJobResults(t *testing.T) {
	f := newFixture(t, false)
	worker := kernel.MustUUIDFromString(nearbyWorker)
	alternative := kernel.MustUUIDFromString(distantWorker)
	start := testNow.Add(time.Hour)
	end := start.Add(2 * time.Hour)
	travel, confidence := 12.5, 0.81
	attempts := []queries.GetJobResultsQueryResponse{
		{
			AttemptedAt:      testNow,
			AssignedWorkerID: &worker,
			ScheduledStart:   &start,
			ScheduledEnd:     &end,
			TravelMinutes:    &travel,
			Confidence:       &confidence,
			Alternatives:     []kernel.UUID{alternative},
			Failure:          "none",
		},
		{
			AttemptedAt:         testNow.Add(-time.Hour),
			Notes:               scheduling.NoteNoFeasibleCandidates,
			ConstraintsViolated: []string{"Max Travel Time"},
			Failure:             "no_solution",
		},
	}
	f.results.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetJobResultsQuery) bool {
		return q.Limit() == 5 && q.JobID().String() == storedJobID
	})).Return(attempts, nil).Once()

	rec := f.do(t, http.MethodGet, "/api/v1/jobs/"+storedJobID+"/results?limit=5", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[[]apihttp.Attempt](t, rec)
	require.Len(t, got, 2)
	assert.True(t, got[0].Feasible)
	require.NotNil(t, got[0].AssignedWorkerID)
	assert.Equal(t, nearbyWorker, *got[0].AssignedWorkerID)
	assert.Equal(t, []string{distantWorker}, got[0].Alternatives)
	assert.False(t, got[1].Feasible)
	assert.Equal(t, []string{"Max Travel Time"}, got[1].ConstraintsViolated)
	assert.Empty(t, got[1].Alternatives)
	f.results.AssertExpectations(t)
}

func TestGetJobResults_DefaultLimit(t *testing.T) {
	f := newFixture(t, false)
	f.results.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetJobResultsQuery) bool {
		return q.Limit() == queries.DefaultResultsLimit
	})).Return([]queries.GetJobResultsQueryResponse{}, nil).Once()

	rec := f.do(t, http.MethodGet, "/api/v1/jobs/"+storedJobID+"/results", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetJobResults_RejectsBadLimit(t *testing.T) {
	for _, limit := range []string{"500", "0", "abc"} {
		t.Run(limit, func(t *testing.T) {
			f := newFixture(t, false)

			rec := f.do(t, http.MethodGet, "/api/v1/jobs/"+storedJobID+"/results?limit="+limit, "")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			f.results.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
		})
	}
}

func TestGetJobResults_HidesStorageErrors(t *testing.T) {
	f := newFixture(t, false)
	f.results.On("Handle", mock.Anything, mock.Anything).Return(nil, errors.New("pq: relation missing")).Once()

	rec := f.do(t, http.MethodGet, "/api/v1/jobs/"+storedJobID+"/results", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":500,"message":"Failed to retrieve job results"}`, rec.Body.String())
}

func TestRequestMetricsUseRouteTemplate(t *testing.T) {
	f := newFixture(t, false)
	f.results.On("Handle", mock.Anything, mock.Anything).Return([]queries.GetJobResultsQueryResponse{}, nil)

	f.do(t, http.MethodGet, "/api/v1/jobs/"+storedJobID+"/results", "")
	f.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, []string{
		"GET /api/v1/jobs/:jobId/results OK",
		"GET /health OK",
	}, f.observer.requests)
}
