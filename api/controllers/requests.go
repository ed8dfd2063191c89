package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gudangmitra/gudang-backend/api/responses"
	"github.com/gudangmitra/gudang-backend/api/validators"
	"github.com/gudangmitra/gudang-backend/internal/facade"
	"github.com/gudangmitra/gudang-backend/internal/requests"
	pkgerrors "github.com/gudangmitra/gudang-backend/pkg/errors"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
)

// RequestsFacade is the request surface of the query facade.
type RequestsFacade interface {
	GetAll(ctx context.Context, query facade.RequestQuery) ([]requests.RequestDTO, error)
	GetByID(ctx context.Context, rawID any) (*requests.RequestDTO, error)
	Create(ctx context.Context, input facade.CreateRequestInput, actor requests.Actor) (*requests.RequestDTO, error)
	Update(ctx context.Context, input facade.UpdateRequestInput, actor requests.Actor) (*requests.RequestDTO, error)
	Delete(ctx context.Context, rawID any, actor requests.Actor) error
	AddComment(ctx context.Context, input facade.CommentInput, actor requests.Actor) (*requests.CommentDTO, error)
}

// requestPayload is the client's request object. Ids stay untyped so legacy
// integers reach the reconciler.
type requestPayload struct {
	ID              any              `json:"id"`
	Title           *string          `json:"title"`
	Description     *string          `json:"description"`
	CategoryID      any              `json:"categoryId"`
	ItemID          any              `json:"itemId"`
	UserID          any              `json:"userId"`
	Priority        *string          `json:"priority"`
	Quantity        *int             `json:"quantity"`
	TotalCost       *decimal.Decimal `json:"totalCost"`
	Status          *string          `json:"status"`
	RejectionReason *string          `json:"rejectionReason"`
}

func (p requestPayload) createInput() facade.CreateRequestInput {
	return facade.CreateRequestInput{
		Title:       deref(p.Title),
		Description: p.Description,
		CategoryID:  p.CategoryID,
		ItemID:      p.ItemID,
		UserID:      p.UserID,
		Priority:    deref(p.Priority),
		Quantity:    p.Quantity,
		TotalCost:   p.TotalCost,
		Status:      deref(p.Status),
	}
}

func (p requestPayload) updateInput(id any) facade.UpdateRequestInput {
	if id == nil {
		id = p.ID
	}
	return facade.UpdateRequestInput{
		ID:              id,
		Title:           p.Title,
		Description:     p.Description,
		Priority:        p.Priority,
		Quantity:        p.Quantity,
		TotalCost:       p.TotalCost,
		CategoryID:      p.CategoryID,
		ItemID:          p.ItemID,
		Status:          p.Status,
		RejectionReason: p.RejectionReason,
	}
}

type commentPayload struct {
	RequestID any    `json:"requestId"`
	Content   string `json:"content"`
}

// actionPayload is the legacy single-endpoint envelope.
type actionPayload struct {
	Action     string          `json:"action" validate:"required"`
	ID         any             `json:"id"`
	UserID     any             `json:"userId"`
	Status     string          `json:"status"`
	CategoryID any             `json:"categoryId"`
	Priority   string          `json:"priority"`
	Request    *requestPayload `json:"request"`
	Comment    *commentPayload `json:"comment"`
}

// RequestsAction dispatches POST /requests {action: ...}.
func RequestsAction(svc RequestsFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body actionPayload
		if err := validators.DecodeLenientJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		switch strings.TrimSpace(body.Action) {
		case "getAll":
			out, err := svc.GetAll(ctx, facade.RequestQuery{
				UserID:     body.UserID,
				Status:     body.Status,
				CategoryID: body.CategoryID,
				Priority:   body.Priority,
			})
			writeResult(ctx, logg, w, http.StatusOK, out, err)
		case "getById":
			out, err := svc.GetByID(ctx, body.ID)
			writeResult(ctx, logg, w, http.StatusOK, out, err)
		case "create":
			if body.Request == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "request is required"))
				return
			}
			out, err := svc.Create(ctx, body.Request.createInput(), actor)
			writeResult(ctx, logg, w, http.StatusCreated, out, err)
		case "update":
			if body.Request == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "request is required"))
				return
			}
			out, err := svc.Update(ctx, body.Request.updateInput(nil), actor)
			writeResult(ctx, logg, w, http.StatusOK, out, err)
		case "delete":
			id := body.ID
			if id == nil && body.Request != nil {
				id = body.Request.ID
			}
			err := svc.Delete(ctx, id, actor)
			writeResult(ctx, logg, w, http.StatusOK, map[string]bool{"deleted": true}, err)
		case "addComment":
			if body.Comment == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "comment is required"))
				return
			}
			out, err := svc.AddComment(ctx, facade.CommentInput{
				RequestID: body.Comment.RequestID,
				Content:   body.Comment.Content,
			}, actor)
			writeResult(ctx, logg, w, http.StatusCreated, out, err)
		default:
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown action").
				WithDetails(map[string]any{"action": body.Action}))
		}
	}
}

func ListRequests(svc RequestsFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.GetAll(r.Context(), facade.RequestQuery{
			UserID:     validators.QueryID(r, "userId"),
			Status:     validators.QueryString(r, "status"),
			CategoryID: validators.QueryID(r, "categoryId"),
			Priority:   validators.QueryString(r, "priority"),
		})
		writeResult(r.Context(), logg, w, http.StatusOK, out, err)
	}
}

func GetRequest(svc RequestsFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.GetByID(r.Context(), pathID(r))
		writeResult(r.Context(), logg, w, http.StatusOK, out, err)
	}
}

func CreateRequest(svc RequestsFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body requestPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Create(r.Context(), body.createInput(), actor)
		writeResult(r.Context(), logg, w, http.StatusCreated, out, err)
	}
}

func UpdateRequest(svc RequestsFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body requestPayload
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.Update(r.Context(), body.updateInput(pathID(r)), actor)
		writeResult(r.Context(), logg, w, http.StatusOK, out, err)
	}
}

func DeleteRequest(svc RequestsFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		err = svc.Delete(r.Context(), pathID(r), actor)
		writeResult(r.Context(), logg, w, http.StatusOK, map[string]bool{"deleted": true}, err)
	}
}

func AddRequestComment(svc RequestsFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body struct {
			Content string `json:"content" validate:"required"`
		}
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := svc.AddComment(r.Context(), facade.CommentInput{RequestID: pathID(r), Content: body.Content}, actor)
		writeResult(r.Context(), logg, w, http.StatusCreated, out, err)
	}
}

func writeResult(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, status int, data any, err error) {
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, status, data)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
