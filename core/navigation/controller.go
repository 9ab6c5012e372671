package navigation

import (
	"context"

	"github.com/pkg/errors"
)

// Dashboard is the variant of the dashboard screen shown for the persisted role.
type Dashboard string

const (
	DashboardTeacher Dashboard = "teacher"
	DashboardStudent Dashboard = "student"
	DashboardNone    Dashboard = "none" // no role: placeholder offering to choose one
)

// View describes what a client should display for a session.
type View struct {
	Screen        Screen    `json:"screen"`
	Dashboard     Dashboard `json:"dashboard,omitempty"`
	HasView       bool      `json:"has_view"`
	CanGoBack     bool      `json:"can_go_back"`
	HistoryDepth  int       `json:"history_depth"`
	Authenticated bool      `json:"authenticated"`
}

// Controller applies the navigation operations to one Session.
// It is not safe for concurrent use; Service serializes access per session.
type Controller struct {
	session *Session
	roles   RoleStore
}

var _ Navigator = (*Controller)(nil)

func NewController(session *Session, roles RoleStore) *Controller {
	return &Controller{session: session, roles: roles}
}

func (c *Controller) Session() Session { return c.session.Clone() }

// Navigate pushes the current screen and moves to target. Navigating to the current screen is a no-op,
// and so is a target missing from the screen catalogue.
func (c *Controller) Navigate(target Screen) {
	if target.IsValid() {
		c.session.navigate(target)
	}
}

// Back pops the last visited screen, or lands on the dashboard when there is no history.
func (c *Controller) Back() { c.session.back() }

// Home clears the history and lands on the dashboard.
func (c *Controller) Home() { c.session.home() }

func (c *Controller) CompleteSplash() { c.session.completeSplash() }

// SelectRole persists role and moves to the login screen.
// The session is left untouched if the role could not be stored.
func (c *Controller) SelectRole(ctx context.Context, role Role) error {
	if !role.IsValid() {
		return ErrUnknownRole
	}
	if err := c.roles.SetRole(ctx, c.session.ID, role); err != nil {
		return errors.Wrap(err, "storing role")
	}
	c.session.roleSelected()
	return nil
}

// LoginSuccess marks the session authenticated, optionally recording who logged in.
func (c *Controller) LoginSuccess(userID ...string) {
	var uid string
	if len(userID) > 0 {
		uid = userID[0]
	}
	c.session.loginSuccess(uid)
}

func (c *Controller) CompleteOnboarding() { c.session.completeOnboarding() }

// Logout forgets the persisted role and resets the session back to role selection.
// The session is left untouched if the role could not be deleted.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.roles.DeleteRole(ctx, c.session.ID); err != nil {
		return errors.Wrap(err, "deleting role")
	}
	c.session.loggedOut()
	return nil
}

// Role is the single lookup of the persisted role. ErrNoRole when none was selected.
func (c *Controller) Role(ctx context.Context) (Role, error) {
	return c.roles.GetRole(ctx, c.session.ID)
}

// Dashboard resolves which dashboard the dashboard screen renders.
func (c *Controller) Dashboard(ctx context.Context) (Dashboard, error) {
	role, err := c.Role(ctx)
	switch {
	case errors.Cause(err) == ErrNoRole:
		return DashboardNone, nil
	case err != nil:
		return "", errors.Wrap(err, "getting role")
	case role == RoleTeacher:
		return DashboardTeacher, nil
	default:
		return DashboardStudent, nil
	}
}

// View returns what to display; the dashboard is only resolved when it is the current screen.
func (c *Controller) View(ctx context.Context) (View, error) {
	s := c.session
	v := View{
		Screen:        s.CurrentScreen,
		HasView:       s.CurrentScreen.HasView(),
		CanGoBack:     len(s.History) > 0,
		HistoryDepth:  len(s.History),
		Authenticated: s.IsAuthenticated,
	}
	if s.CurrentScreen == ScreenDashboard {
		dash, err := c.Dashboard(ctx)
		if err != nil {
			return View{}, err
		}
		v.Dashboard = dash
	}
	return v, nil
}

// Apply runs cmd against the session.
func (c *Controller) Apply(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	switch cmd.Type {
	case CmdNavigate:
		c.Navigate(cmd.Target)
	case CmdBack:
		c.Back()
	case CmdHome:
		c.Home()
	case CmdCompleteSplash:
		c.CompleteSplash()
	case CmdSelectRole:
		return c.SelectRole(ctx, cmd.Role)
	case CmdLoginSuccess:
		c.LoginSuccess(cmd.UserID)
	case CmdCompleteOnboarding:
		c.CompleteOnboarding()
	case CmdLogout:
		return c.Logout(ctx)
	}
	return nil
}
