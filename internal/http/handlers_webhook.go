package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/tailfin-labs/tailfin/internal/service"
)

// WebhookHandlers receives event batches from the upstream provider.
type WebhookHandlers struct {
	matcher      *service.Matcher
	maxBodyBytes int64
	logger       *slog.Logger
}

// WebhookHandlersOptions configures WebhookHandlers.
type WebhookHandlersOptions struct {
	Matcher      *service.Matcher
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// NewWebhookHandlers constructs WebhookHandlers.
func NewWebhookHandlers(opts WebhookHandlersOptions) *WebhookHandlers {
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 10 << 20
	}
	return &WebhookHandlers{
		matcher:      opts.Matcher,
		maxBodyBytes: maxBody,
		logger:       opts.Logger.With("component", "webhook_handler"),
	}
}

// Receive ingests one webhook batch.
//
// The provider retries non-2xx responses and eventually disables the
// subscription on persistent failures, so once a batch is parseable the
// response is 200 even if enqueueing partially failed; the provider cannot
// fix our database by resending. Only a malformed body earns a 400.
func (h *WebhookHandlers) Receive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodyBytes+1))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "unreadable_body", Err: err})
		return
	}
	if int64(len(body)) > h.maxBodyBytes {
		WriteError(w, ErrorParams{
			Code: http.StatusRequestEntityTooLarge, ErrCode: "body_too_large",
			Err: errors.New("webhook body exceeds configured limit"),
		})
		return
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		// Sender misconfiguration; a 4xx would only trigger redelivery loops.
		WriteJSON(w, http.StatusOK, map[string]int{"events": 0, "matched": 0, "enqueued": 0})
		return
	}

	var batch []json.RawMessage
	if err := json.Unmarshal(body, &batch); err != nil {
		if !json.Valid(body) {
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
			return
		}
		if body[0] == '{' {
			// Some delivery modes send a single object instead of an array.
			batch = []json.RawMessage{json.RawMessage(body)}
		}
		// Any other valid non-array value falls through as an empty batch.
	}

	if len(batch) == 0 {
		WriteJSON(w, http.StatusOK, map[string]int{"events": 0, "matched": 0, "enqueued": 0})
		return
	}

	result, err := h.matcher.MatchBatch(ctx, batch)
	if err != nil {
		// Parseable batch, our side failed. Acknowledge anyway; a retry
		// storm will not repair the queue and redelivery is conflict-safe.
		h.logger.ErrorContext(ctx, "batch matching failed", "error", err)
		WriteJSON(w, http.StatusOK, map[string]int{"events": len(batch), "matched": 0, "enqueued": 0})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]int{
		"events":   result.Events,
		"matched":  result.Matched,
		"enqueued": result.Enqueued,
	})
}
