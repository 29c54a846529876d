package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-catalog/api/responses"
	"github.com/angelmondragon/storefront-catalog/api/validators"
	"github.com/angelmondragon/storefront-catalog/internal/browse"
	pkgerrors "github.com/angelmondragon/storefront-catalog/pkg/errors"
	"github.com/angelmondragon/storefront-catalog/pkg/logger"
	"github.com/angelmondragon/storefront-catalog/pkg/pagination"
)

const (
	maxPathLength  = 512
	maxQueryLength = 2048
)

// SessionService hosts stateful browse sessions.
type SessionService interface {
	CreateSession(ctx context.Context, path, rawQuery string) (*browse.SessionView, error)
	Dispatch(ctx context.Context, id string, req browse.ActionRequest, page pagination.Params) (*browse.SessionView, error)
	View(ctx context.Context, id string, page pagination.Params) (*browse.SessionView, error)
	Close(ctx context.Context, id string) error
}

type createSessionRequest struct {
	Path  string `json:"path" validate:"omitempty,startswith=/,max=512"`
	Query string `json:"query" validate:"max=2048"`
}

// CreateBrowseSession opens a session positioned at the supplied location.
func CreateBrowseSession(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		var payload createSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.CreateSession(
			r.Context(),
			validators.SanitizeString(payload.Path, maxPathLength),
			validators.SanitizeString(payload.Query, maxQueryLength),
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// GetBrowseSession returns a page of the session's current projection.
func GetBrowseSession(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}
		id, err := sessionIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.View(r.Context(), id, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DispatchBrowseAction applies one filter action to a session.
func DispatchBrowseAction(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}
		id, err := sessionIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload browse.ActionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Dispatch(r.Context(), id, payload, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CloseBrowseSession commits any pending location and ends the session.
func CloseBrowseSession(svc SessionService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}
		id, err := sessionIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Close(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func sessionIDParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "sessionId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid session id").
			WithDetails(map[string]any{"sessionId": raw})
	}
	return id.String(), nil
}
