package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tailfin-labs/tailfin/internal/core"
	"github.com/tailfin-labs/tailfin/internal/domain/model"
	apperrors "github.com/tailfin-labs/tailfin/internal/errors"
)

// CredentialHandlers provides HTTP handlers for destination credentials.
type CredentialHandlers struct {
	credentials core.CredentialRepository
	pools       core.DestinationPools
	logger      *slog.Logger
}

// CredentialHandlersOptions configures CredentialHandlers.
type CredentialHandlersOptions struct {
	Credentials core.CredentialRepository
	Pools       core.DestinationPools
	Logger      *slog.Logger
}

// NewCredentialHandlers constructs CredentialHandlers.
func NewCredentialHandlers(opts CredentialHandlersOptions) *CredentialHandlers {
	return &CredentialHandlers{
		credentials: opts.Credentials,
		pools:       opts.Pools,
		logger:      opts.Logger.With("component", "credential_handlers"),
	}
}

// Create handles POST /api/credentials.
func (h *CredentialHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCredentialRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteAppError(w, apperrors.E(apperrors.KindInvalid, "invalid credential", err))
		return
	}

	cred, err := h.credentials.Create(r.Context(), req.UserID, &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	cred.Password = ""
	WriteJSON(w, http.StatusCreated, cred)
}

// List handles GET /api/credentials?user_id=...
func (h *CredentialHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_user_id",
			Err: errors.New("user_id query parameter is required")})
		return
	}

	creds, err := h.credentials.List(r.Context(), userID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"credentials": creds})
}

// Delete handles DELETE /api/credentials/{id}. Rejected while jobs still
// reference the credential.
func (h *CredentialHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.credentials.Delete(r.Context(), id); err != nil {
		WriteAppError(w, err)
		return
	}
	if h.pools != nil {
		h.pools.Evict(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// TestConnection handles POST /api/credentials/{id}/test. It dials the
// destination and reports reachability without mutating anything.
func (h *CredentialHandlers) TestConnection(w http.ResponseWriter, r *http.Request) {
	cred, err := h.credentials.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	dest, err := h.pools.Acquire(ctx, cred)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	if err := dest.Exec(ctx, "SELECT 1"); err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
