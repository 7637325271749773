// Package httpapi exposes the admin endpoints for triggering and inspecting
// synchronization.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"otomoto_sync/internal/domain"
)

// SyncService is the surface of the sync engine the admin API drives.
type SyncService interface {
	RunFullSync(ctx context.Context, force bool) domain.OperationResult
	RefreshOne(ctx context.Context, externalID string, force bool) domain.OperationResult
	InitiateCycle(ctx context.Context) error
	CycleStatus(ctx context.Context) (*domain.CycleState, error)
}

type SyncHandler struct {
	service SyncService
	logger  *slog.Logger
}

func NewSyncHandler(service SyncService, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		service: service,
		logger:  logger.With("component", "httpapi"),
	}
}

// RegisterRoutes registers the sync admin routes.
func (sh *SyncHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/sync/run", sh.RunFullSync).Methods("POST")
	r.HandleFunc("/api/sync/refresh/{externalID}", sh.RefreshOne).Methods("POST")
	r.HandleFunc("/api/sync/cycle", sh.InitiateCycle).Methods("POST")
	r.HandleFunc("/api/sync/status", sh.CycleStatus).Methods("GET")
}

// RunFullSync runs a synchronous full sync and returns its report.
// ?force=1 pushes updates through unchanged and manually-edited listings.
func (sh *SyncHandler) RunFullSync(w http.ResponseWriter, r *http.Request) {
	force := isForce(r)
	sh.logger.Info("full sync requested", "force", force)

	result := sh.service.RunFullSync(r.Context(), force)
	writeResult(w, result)
}

// RefreshOne re-syncs a single advert by its external id.
func (sh *SyncHandler) RefreshOne(w http.ResponseWriter, r *http.Request) {
	externalID := mux.Vars(r)["externalID"]
	if externalID == "" {
		http.Error(w, "external id required", http.StatusBadRequest)
		return
	}
	force := isForce(r)
	sh.logger.Info("single refresh requested", "external_id", externalID, "force", force)

	result := sh.service.RefreshOne(r.Context(), externalID, force)
	writeResult(w, result)
}

// InitiateCycle starts a fresh background batch cycle.
func (sh *SyncHandler) InitiateCycle(w http.ResponseWriter, r *http.Request) {
	sh.logger.Info("cycle initiation requested")

	if err := sh.service.InitiateCycle(r.Context()); err != nil {
		sh.logger.Error("cycle initiation failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

// CycleStatus reports the persisted cycle state.
func (sh *SyncHandler) CycleStatus(w http.ResponseWriter, r *http.Request) {
	state, err := sh.service.CycleStatus(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrCycleStateInvalid) {
			http.Error(w, "no cycle has run yet", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}

func isForce(r *http.Request) bool {
	switch r.URL.Query().Get("force") {
	case "1", "true", "yes":
		return true
	}
	return false
}

func writeResult(w http.ResponseWriter, result domain.OperationResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status == "error" {
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(result)
}
