package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gudangmitra/gudang-backend/api/responses"
	"github.com/gudangmitra/gudang-backend/api/validators"
	"github.com/gudangmitra/gudang-backend/internal/notifications"
	"github.com/gudangmitra/gudang-backend/internal/requests"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
	"github.com/gudangmitra/gudang-backend/pkg/pagination"
)

// NotificationsFacade is the notification surface of the query facade.
type NotificationsFacade interface {
	ListNotifications(ctx context.Context, actor requests.Actor, params notifications.ListParams) (*notifications.ListResult, error)
	MarkNotificationRead(ctx context.Context, actor requests.Actor, rawID string) error
	MarkAllNotificationsRead(ctx context.Context, actor requests.Actor) (int64, error)
}

// ListNotifications returns the caller's notifications, newest first.
func ListNotifications(svc NotificationsFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unreadOnly, err := validators.ParseQueryBool(r, "unreadOnly")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out, err := svc.ListNotifications(r.Context(), actor, notifications.ListParams{
			Limit:      limit,
			Cursor:     validators.QueryString(r, "cursor"),
			UnreadOnly: unreadOnly,
		})
		writeResult(r.Context(), logg, w, http.StatusOK, out, err)
	}
}

func MarkNotificationRead(svc NotificationsFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		err = svc.MarkNotificationRead(r.Context(), actor, chi.URLParam(r, "notificationId"))
		writeResult(r.Context(), logg, w, http.StatusOK, map[string]bool{"read": true}, err)
	}
}

func MarkAllNotificationsRead(svc NotificationsFacade, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		count, err := svc.MarkAllNotificationsRead(r.Context(), actor)
		writeResult(r.Context(), logg, w, http.StatusOK, map[string]int64{"updated": count}, err)
	}
}
