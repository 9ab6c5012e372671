package echoapi

import (
	"fmt"
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shiksha/core"
	"github.com/trezcool/shiksha/core/appstate"
	"github.com/trezcool/shiksha/core/user"
)

// sessionExists keeps the app state endpoints from creating state for unknown sessions.
func (api *sessionApi) sessionExists(ctx echo.Context) (string, error) {
	id := ctx.Param("id")
	if _, err := api.svc.Get(ctx.Request().Context(), id); err != nil {
		return "", errors.Wrap(err, "getting session")
	}
	return id, nil
}

func (api *sessionApi) appState(ctx echo.Context) error {
	id, err := api.sessionExists(ctx)
	if err != nil {
		return err
	}
	st, err := api.appSvc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting app state")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *sessionApi) setLanguage(ctx echo.Context) error {
	id, err := api.sessionExists(ctx)
	if err != nil {
		return err
	}
	var data LanguageRequest
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	lang, err := appstate.ParseLanguage(data.Language)
	if err != nil {
		return core.NewFieldValidationError("language", err.Error())
	}
	st, err := api.appSvc.SetLanguage(ctx.Request().Context(), id, lang)
	if err != nil {
		return errors.Wrap(err, "setting language")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *sessionApi) setConnectivity(ctx echo.Context) error {
	id, err := api.sessionExists(ctx)
	if err != nil {
		return err
	}
	var data ConnectivityRequest
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	st, err := api.appSvc.SetOnline(ctx.Request().Context(), id, *data.Online)
	if err != nil {
		return errors.Wrap(err, "setting connectivity")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *sessionApi) sync(ctx echo.Context) error {
	id, err := api.sessionExists(ctx)
	if err != nil {
		return err
	}
	st, err := api.appSvc.Sync(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "syncing")
	}
	return ctx.JSON(http.StatusAccepted, st)
}

func (api *sessionApi) notifications(ctx echo.Context) error {
	id, err := api.sessionExists(ctx)
	if err != nil {
		return err
	}
	st, err := api.appSvc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting app state")
	}
	return ctx.JSON(http.StatusOK, NotificationsResponse{Notifications: st.Notifications, Unread: st.UnreadCount()})
}

func (api *sessionApi) markNotificationRead(ctx echo.Context) error {
	id, err := api.sessionExists(ctx)
	if err != nil {
		return err
	}
	st, err := api.appSvc.MarkNotificationRead(ctx.Request().Context(), id, ctx.Param("nid"))
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, NotificationsResponse{Notifications: st.Notifications, Unread: st.UnreadCount()})
}

// pushNotification adds a notification to the session and emails its logged in account, if any.
func (api *sessionApi) pushNotification(ctx echo.Context) error {
	reqCtx, id := ctx.Request().Context(), ctx.Param("id")
	sess, err := api.svc.Get(reqCtx, id)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}

	var data appstate.NewNotification
	if err = api.bind(ctx, &data); err != nil {
		return err
	}
	notif, err := api.appSvc.AddNotification(reqCtx, id, data)
	if err != nil {
		return errors.Wrap(err, "adding notification")
	}

	if uid := sess.Session.UserID; uid != "" {
		recipient, err := api.usrSvc.GetByID(reqCtx, uid)
		switch {
		case err == user.ErrNotFound:
		case err != nil:
			return errors.Wrap(err, "getting session user")
		case recipient.Email != "":
			api.mailSvc.SendMessages(&core.EmailMessage{
				To:           []mail.Address{{Name: recipient.Name, Address: recipient.Email}},
				Subject:      fmt.Sprintf("New %s: %s", notif.Type, notif.Title),
				TemplateName: "notification",
				TemplateData: map[string]string{
					"Name":    recipient.Name,
					"Title":   notif.Title,
					"Message": notif.Message,
				},
			})
		}
	}
	return ctx.JSON(http.StatusCreated, notif)
}
