package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gudangmitra/gudang-backend/api/middleware"
	"github.com/gudangmitra/gudang-backend/internal/requests"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
)

// actorFrom builds the lifecycle actor from the authenticated context.
func actorFrom(r *http.Request) (requests.Actor, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return requests.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return requests.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return requests.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid role")
	}
	return requests.Actor{UserID: userID, Role: role}, nil
}

// pathID returns the {id} route parameter untouched; the facade reconciles it.
func pathID(r *http.Request) string {
	return chi.URLParam(r, "id")
}
