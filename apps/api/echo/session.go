package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shiksha/core"
	"github.com/trezcool/shiksha/core/appstate"
	"github.com/trezcool/shiksha/core/navigation"
	"github.com/trezcool/shiksha/core/user"
)

type sessionApi struct {
	svc        *navigation.Service
	appSvc     *appstate.Service
	usrSvc     *user.Service
	mailSvc    core.EmailService
	auth       *jwtAuth
	validate   *validator.Validate
	translator ut.Translator
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps, auth *jwtAuth) {
	api := sessionApi{
		svc:        deps.SessionSvc,
		appSvc:     deps.AppStateSvc,
		usrSvc:     deps.UserSvc,
		mailSvc:    deps.MailSvc,
		auth:       auth,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	sg := g.Group("/sessions")
	sg.POST("", api.create)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.DELETE("", api.destroy)
	dg.GET("/dashboard", api.dashboard)

	// navigation
	dg.POST("/commands", api.command)
	dg.POST("/navigate", api.navigate)
	dg.POST("/back", api.dispatchFunc(navigation.Back))
	dg.POST("/home", api.dispatchFunc(navigation.Home))
	dg.POST("/splash-complete", api.dispatchFunc(navigation.CompleteSplash))
	dg.POST("/role", api.selectRole)
	dg.POST("/login", api.login)
	dg.POST("/onboarding-complete", api.dispatchFunc(navigation.CompleteOnboarding))
	dg.POST("/logout", api.dispatchFunc(navigation.Logout))

	// app state
	dg.GET("/app", api.appState)
	dg.PUT("/app/language", api.setLanguage)
	dg.PUT("/app/connectivity", api.setConnectivity)
	dg.POST("/app/sync", api.sync)
	dg.GET("/notifications", api.notifications)
	dg.POST("/notifications/:nid/read", api.markNotificationRead)
	dg.POST("/notifications", api.pushNotification, jwt, notifierMiddleware(deps.UserSvc))
}

// Handlers

func (api *sessionApi) create(ctx echo.Context) error {
	st, err := api.svc.Start(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "starting session")
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	st, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *sessionApi) destroy(ctx echo.Context) error {
	reqCtx, id := ctx.Request().Context(), ctx.Param("id")
	if err := api.svc.End(reqCtx, id); err != nil {
		return errors.Wrap(err, "ending session")
	}
	if err := api.appSvc.Delete(reqCtx, id); err != nil {
		return errors.Wrap(err, "deleting app state")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sessionApi) dashboard(ctx echo.Context) error {
	reqCtx, id := ctx.Request().Context(), ctx.Param("id")
	dash, err := api.svc.Dashboard(reqCtx, id)
	if err != nil {
		return errors.Wrap(err, "resolving dashboard")
	}
	res := DashboardResponse{Dashboard: dash}
	if dash != navigation.DashboardNone {
		if res.Role, err = api.svc.Role(reqCtx, id); err != nil {
			return errors.Wrap(err, "getting role")
		}
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *sessionApi) dispatch(ctx echo.Context, cmd navigation.Command) error {
	st, err := api.svc.Dispatch(ctx.Request().Context(), ctx.Param("id"), cmd)
	if err != nil {
		return errors.Wrapf(err, "dispatching %s", cmd.Type)
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *sessionApi) dispatchFunc(newCmd func() navigation.Command) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return api.dispatch(ctx, newCmd())
	}
}

func (api *sessionApi) command(ctx echo.Context) error {
	var cmd navigation.Command
	if err := ctx.Bind(&cmd); err != nil {
		return errors.Wrap(err, "binding to Command")
	}
	cmd = cmd.Normalized()
	if cmd.Type == navigation.CmdLoginSuccess {
		return errLoginCommand
	}
	return api.dispatch(ctx, cmd)
}

func (api *sessionApi) navigate(ctx echo.Context) error {
	var data NavigateRequest
	if err := api.bind(ctx, &data); err != nil {
		return err
	}
	screen, err := navigation.ParseScreen(data.Screen)
	if err != nil {
		return core.NewFieldValidationError("screen", err.Error())
	}
	return api.dispatch(ctx, navigation.Navigate(screen))
}

func (api *sessionApi) selectRole(ctx echo.Context) error {
	var data RoleRequest
	if err := api.bind(ctx, &data); err != nil {
		return err
	}
	role, err := navigation.ParseRole(data.Role)
	if err != nil {
		return core.NewFieldValidationError("role", err.Error())
	}
	return api.dispatch(ctx, navigation.SelectRole(role))
}

// login authenticates the account against the role selected on the session, then completes the login step.
func (api *sessionApi) login(ctx echo.Context) error {
	reqCtx, id := ctx.Request().Context(), ctx.Param("id")

	var data user.Credentials
	if err := api.bind(ctx, &data); err != nil {
		return err
	}

	role, err := api.svc.Role(reqCtx, id)
	if err != nil {
		return errors.Wrap(err, "getting role")
	}

	usr, err := api.usrSvc.Authenticate(reqCtx, data)
	switch errors.Cause(err) {
	case nil:
	case user.ErrAuthenticationFailed:
		return errAuthenticationFailed
	case user.ErrAccountDeactivated:
		return errAccountDeactivated
	default:
		return errors.Wrap(err, "authenticating")
	}
	if !roleMatches(usr, role) {
		return errRoleMismatch
	}

	st, err := api.svc.Dispatch(reqCtx, id, navigation.LoginSuccess(usr.ID))
	if err != nil {
		return errors.Wrap(err, "dispatching login-success")
	}
	token, err := api.auth.generateToken(api.auth.claims(usr, id))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, State: st})
}

// roleMatches tells whether usr may log in under role. Admins use the teacher side.
func roleMatches(usr user.User, role navigation.Role) bool {
	switch role {
	case navigation.RoleTeacher:
		return usr.IsTeacher() || usr.IsAdmin()
	case navigation.RoleStudent:
		return usr.IsStudent()
	}
	return false
}

func (api *sessionApi) bind(ctx echo.Context, data interface{}) error {
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding request")
	}
	return api.validate.Struct(data)
}
