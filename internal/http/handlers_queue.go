package httpx

import (
	"log/slog"
	"net/http"

	"github.com/tailfin-labs/tailfin/internal/core"
)

// QueueHandlers exposes operational queue information.
type QueueHandlers struct {
	queue  core.QueueRepository
	logger *slog.Logger
}

// QueueHandlersOptions configures QueueHandlers.
type QueueHandlersOptions struct {
	Queue  core.QueueRepository
	Logger *slog.Logger
}

// NewQueueHandlers constructs QueueHandlers.
func NewQueueHandlers(opts QueueHandlersOptions) *QueueHandlers {
	return &QueueHandlers{
		queue:  opts.Queue,
		logger: opts.Logger.With("component", "queue_handlers"),
	}
}

// Stats handles GET /api/queue/stats.
func (h *QueueHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queue.Stats(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
