package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otomoto_sync/internal/domain"
)

type fakeSyncService struct {
	runResult     domain.OperationResult
	refreshResult domain.OperationResult
	cycleErr      error
	statusState   *domain.CycleState
	statusErr     error

	lastForce      bool
	lastExternalID string
	cycleCalls     int
}

func (f *fakeSyncService) RunFullSync(ctx context.Context, force bool) domain.OperationResult {
	f.lastForce = force
	return f.runResult
}

func (f *fakeSyncService) RefreshOne(ctx context.Context, externalID string, force bool) domain.OperationResult {
	f.lastExternalID = externalID
	f.lastForce = force
	return f.refreshResult
}

func (f *fakeSyncService) InitiateCycle(ctx context.Context) error {
	f.cycleCalls++
	return f.cycleErr
}

func (f *fakeSyncService) CycleStatus(ctx context.Context) (*domain.CycleState, error) {
	return f.statusState, f.statusErr
}

func newTestRouter(service *fakeSyncService) *mux.Router {
	router := mux.NewRouter()
	NewSyncHandler(service, slog.New(slog.NewTextHandler(io.Discard, nil))).RegisterRoutes(router)
	return router
}

func TestRunFullSync(t *testing.T) {
	service := &fakeSyncService{
		runResult: domain.OperationResult{
			Status:  "success",
			Message: "synchronization completed",
			Summary: domain.CycleSummary{Created: 3},
		},
	}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/sync/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, service.lastForce)

	var result domain.OperationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, 3, result.Summary.Created)
}

func TestRunFullSyncForce(t *testing.T) {
	service := &fakeSyncService{runResult: domain.OperationResult{Status: "success"}}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/sync/run?force=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, service.lastForce)
}

func TestRunFullSyncBusy(t *testing.T) {
	service := &fakeSyncService{
		runResult: domain.OperationResult{Status: "error", Message: "sync already running"},
	}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/sync/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRefreshOne(t *testing.T) {
	service := &fakeSyncService{
		refreshResult: domain.OperationResult{Status: "success", Message: "updated"},
	}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/sync/refresh/12345?force=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", service.lastExternalID)
	assert.True(t, service.lastForce)
}

func TestInitiateCycle(t *testing.T) {
	service := &fakeSyncService{}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/sync/cycle", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, service.cycleCalls)
}

func TestInitiateCycleFailure(t *testing.T) {
	service := &fakeSyncService{cycleErr: errors.New("db down")}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/sync/cycle", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCycleStatus(t *testing.T) {
	service := &fakeSyncService{
		statusState: &domain.CycleState{
			Status:      domain.CycleRunning,
			CurrentPage: 4,
			Summary:     domain.CycleSummary{PagesFetched: 3},
		},
	}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/sync/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var state domain.CycleState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, domain.CycleRunning, state.Status)
	assert.Equal(t, 4, state.CurrentPage)
}

func TestCycleStatusNoCycleYet(t *testing.T) {
	service := &fakeSyncService{statusErr: domain.ErrCycleStateInvalid}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/sync/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	service := &fakeSyncService{}
	router := newTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/sync/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
