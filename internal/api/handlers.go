package api

import (
	"errors"
	"net/http"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/syncer"
)

// Handler serves the sync control endpoints.
type Handler struct {
	sync    *syncer.Service
	trigger func()
}

// NewHandler creates a Handler. trigger requests an asynchronous sync
// pass from the scheduler.
func NewHandler(sync *syncer.Service, trigger func()) *Handler {
	return &Handler{sync: sync, trigger: trigger}
}

// Status handles GET /status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sync.Status())
}

// Sync handles POST /sync. By default the pass runs asynchronously via
// the scheduler trigger; with ?wait=true the request blocks until the
// pass finishes and returns its report.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("wait") != "true" {
		h.trigger()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
		return
	}

	report, err := h.sync.Run(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrSyncRunning) {
			writeJSON(w, http.StatusConflict, errorBody("sync already running"))
			return
		}
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
