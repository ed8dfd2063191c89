package controllers

import (
	"context"
	"net/http"

	"github.com/gudangmitra/gudang-backend/api/responses"
	"github.com/gudangmitra/gudang-backend/api/validators"
	"github.com/gudangmitra/gudang-backend/internal/auth"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
)

// AuthLogin exchanges email and password for an access token.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "auth service unavailable")
	}
	return sessionHandler(logg, http.StatusOK, svc.Login)
}

// AuthRegister creates a plain user account and signs it in.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg, "auth service unavailable")
	}
	return sessionHandler(logg, http.StatusCreated, svc.Register)
}

func sessionHandler[Req any](logg *logger.Logger, status int, issue func(context.Context, Req) (*auth.LoginResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body Req
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := issue(r.Context(), body)
		writeResult(r.Context(), logg, w, status, out, err)
	}
}

func unavailable(logg *logger.Logger, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, msg))
	}
}
