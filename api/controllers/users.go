package controllers

import (
	"context"
	"net/http"

	"github.com/gudangmitra/gudang-backend/api/responses"
	"github.com/gudangmitra/gudang-backend/api/validators"
	"github.com/gudangmitra/gudang-backend/internal/requests"
	"github.com/gudangmitra/gudang-backend/internal/users"
	"github.com/gudangmitra/gudang-backend/pkg/enums"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
)

// UsersFacade is the user surface of the query facade.
type UsersFacade interface {
	ListUsers(ctx context.Context, filter users.ListFilter) ([]users.UserDTO, error)
	GetUser(ctx context.Context, rawID any) (*users.UserDTO, error)
	CreateUser(ctx context.Context, input users.CreateUserInput, actor requests.Actor) (*users.CreateUserResult, error)
	UpdateUser(ctx context.Context, rawID any, input users.UpdateUserInput, actor requests.Actor) (*users.UserDTO, error)
	DeleteUser(ctx context.Context, rawID any, actor requests.Actor) error
}

type createUserPayload struct {
	Name       string  `json:"name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password"`
	Role       string  `json:"role" validate:"omitempty,oneof=admin manager user"`
	Department *string `json:"department"`
}

type updateUserPayload struct {
	Name       *string `json:"name"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Role       *string `json:"role" validate:"omitempty,oneof=admin manager user"`
	Department *string `json:"department"`
	Password   *string `json:"password"`
}

func ListUsers(svc UsersFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := users.ListFilter{Search: validators.QueryString(r, "search")}
		if raw := validators.QueryString(r, "role"); raw != "" {
			role, err := enums.ParseUserRole(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			filter.Role = &role
		}
		out, err := svc.ListUsers(r.Context(), filter)
		writeResult(r.Context(), logg, w, http.StatusOK, out, err)
	}
}

func GetUser(svc UsersFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.GetUser(r.Context(), pathID(r))
		writeResult(r.Context(), logg, w, http.StatusOK, out, err)
	}
}

func CreateUser(svc UsersFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body createUserPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.CreateUser(r.Context(), users.CreateUserInput{
			Name:       body.Name,
			Email:      body.Email,
			Password:   body.Password,
			Role:       enums.UserRole(body.Role),
			Department: body.Department,
		}, actor)
		writeResult(r.Context(), logg, w, http.StatusCreated, out, err)
	}
}

// UpdateUser is open to every authenticated caller; the facade limits plain
// users to their own profile without a role change.
func UpdateUser(svc UsersFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateUserPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := users.UpdateUserInput{
			Name:       body.Name,
			Email:      body.Email,
			Department: body.Department,
			Password:   body.Password,
		}
		if body.Role != nil {
			role := enums.UserRole(*body.Role)
			input.Role = &role
		}
		out, err := svc.UpdateUser(r.Context(), pathID(r), input, actor)
		writeResult(r.Context(), logg, w, http.StatusOK, out, err)
	}
}

func DeleteUser(svc UsersFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		err = svc.DeleteUser(r.Context(), pathID(r), actor)
		writeResult(r.Context(), logg, w, http.StatusOK, map[string]bool{"deleted": true}, err)
	}
}
