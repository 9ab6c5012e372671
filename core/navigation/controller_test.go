package navigation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/shiksha/core/navigation"
	inmemdb "github.com/trezcool/shiksha/storage/database/inmem"
)

var errStoreDown = errors.New("store down")

type brokenRoleStore struct{}

func (brokenRoleStore) GetRole(context.Context, string) (Role, error) { return "", errStoreDown }
func (brokenRoleStore) SetRole(context.Context, string, Role) error { return errStoreDown }
func (brokenRoleStore) DeleteRole(context.Context, string) error { return errStoreDown }

func newController(t *testing.T, screen Screen, history ...Screen) (*Controller, *Session, RoleStore) {
	t.Helper()
	sess := NewSession("sess-1", time.Now().UTC())
	sess.CurrentScreen = screen
	sess.History = append(sess.History, history...)
	roles := inmemdb.NewRoleStore(inmemdb.NewDB())
	return NewController(&sess, roles), &sess, roles
}

func TestNewSession(t *testing.T) {
	now := time.Now().UTC()
	sess := NewSession("id", now)

	assert.Equal(t, ScreenSplash, sess.CurrentScreen)
	assert.NotNil(t, sess.History)
	assert.Empty(t, sess.History)
	assert.False(t, sess.IsAuthenticated)
	assert.False(t, sess.HasSeenOnboarding)
	assert.Equal(t, now, sess.CreatedAt)
}

func TestController_Navigation(t *testing.T) {
	tests := []struct {
		name        string
		screen      Screen
		history     []Screen
		run         func(c *Controller)
		wantScreen  Screen
		wantHistory []Screen
	}{
		{
			name:        "navigate pushes current screen",
			screen:      ScreenDashboard,
			run:         func(c *Controller) { c.Navigate(ScreenAttendance) },
			wantScreen:  ScreenAttendance,
			wantHistory: []Screen{ScreenDashboard},
		},
		{
			name:        "navigate to current screen is a no-op",
			screen:      ScreenDashboard,
			history:     []Screen{ScreenChat},
			run:         func(c *Controller) { c.Navigate(ScreenDashboard) },
			wantScreen:  ScreenDashboard,
			wantHistory: []Screen{ScreenChat},
		},
		{
			name:   "twice to same target pushes once",
			screen: ScreenDashboard,
			run: func(c *Controller) {
				c.Navigate(ScreenSettings)
				c.Navigate(ScreenSettings)
			},
			wantScreen:  ScreenSettings,
			wantHistory: []Screen{ScreenDashboard},
		},
		{
			name:   "back after navigate restores",
			screen: ScreenDashboard,
			run: func(c *Controller) {
				c.Navigate(ScreenHomeworkView)
				c.Back()
			},
			wantScreen:  ScreenDashboard,
			wantHistory: []Screen{},
		},
		{
			name:        "back pops most recent",
			screen:      ScreenChat,
			history:     []Screen{ScreenDashboard, ScreenNotifications},
			run:         func(c *Controller) { c.Back() },
			wantScreen:  ScreenNotifications,
			wantHistory: []Screen{ScreenDashboard},
		},
		{
			name:        "back on empty history lands on dashboard",
			screen:      ScreenSettings,
			run:         func(c *Controller) { c.Back() },
			wantScreen:  ScreenDashboard,
			wantHistory: []Screen{},
		},
		{
			name:        "home clears history",
			screen:      ScreenChat,
			history:     []Screen{ScreenDashboard, ScreenAttendance, ScreenAchievements},
			run:         func(c *Controller) { c.Home() },
			wantScreen:  ScreenDashboard,
			wantHistory: []Screen{},
		},
		{
			name:        "complete splash",
			screen:      ScreenSplash,
			run:         func(c *Controller) { c.CompleteSplash() },
			wantScreen:  ScreenRoleSelection,
			wantHistory: []Screen{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, sess, _ := newController(t, tt.screen, tt.history...)
			tt.run(c)
			assert.Equal(t, tt.wantScreen, sess.CurrentScreen)
			assert.Equal(t, tt.wantHistory, sess.History)
		})
	}
}

func TestController_LoginSuccess(t *testing.T) {
	tests := []struct {
		name       string
		seen       bool
		wantScreen Screen
	}{
		{name: "onboarding not seen", wantScreen: ScreenOnboarding},
		{name: "onboarding seen", seen: true, wantScreen: ScreenDashboard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, sess, _ := newController(t, ScreenLogin)
			sess.HasSeenOnboarding = tt.seen

			c.LoginSuccess("usr-1")
			assert.True(t, sess.IsAuthenticated)
			assert.Equal(t, "usr-1", sess.UserID)
			assert.Equal(t, tt.wantScreen, sess.CurrentScreen)
		})
	}
}

func TestController_SelectRoleAndLogout(t *testing.T) {
	ctx := context.Background()
	c, sess, roles := newController(t, ScreenRoleSelection)

	require.NoError(t, c.SelectRole(ctx, RoleTeacher))
	assert.Equal(t, ScreenLogin, sess.CurrentScreen)
	role, err := roles.GetRole(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleTeacher, role)

	assert.Equal(t, ErrUnknownRole, c.SelectRole(ctx, Role("parent")))
	assert.Equal(t, ScreenLogin, sess.CurrentScreen)

	c.LoginSuccess()
	c.CompleteOnboarding()
	c.Navigate(ScreenAttendance)

	require.NoError(t, c.Logout(ctx))
	assert.Equal(t, ScreenRoleSelection, sess.CurrentScreen)
	assert.Empty(t, sess.History)
	assert.False(t, sess.IsAuthenticated)
	assert.False(t, sess.HasSeenOnboarding)
	assert.Empty(t, sess.UserID)
	_, err = roles.GetRole(ctx, sess.ID)
	assert.Equal(t, ErrNoRole, err)

	// logout without a stored role is fine
	require.NoError(t, c.Logout(ctx))
}

func TestController_LogoutThenSelectRole(t *testing.T) {
	ctx := context.Background()
	c, sess, roles := newController(t, ScreenDashboard, ScreenLogin)

	require.NoError(t, c.Logout(ctx))
	c.CompleteSplash()
	require.NoError(t, c.SelectRole(ctx, RoleTeacher))

	assert.Equal(t, ScreenLogin, sess.CurrentScreen)
	role, err := roles.GetRole(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleTeacher, role)
}

func TestController_StoreFailureLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	sess := NewSession("sess-1", time.Now().UTC())
	sess.CurrentScreen = ScreenRoleSelection
	c := NewController(&sess, brokenRoleStore{})

	err := c.SelectRole(ctx, RoleStudent)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, ScreenRoleSelection, sess.CurrentScreen)

	sess.CurrentScreen = ScreenChat
	sess.IsAuthenticated = true
	err = c.Logout(ctx)
	assert.Error(t, err)
	assert.Equal(t, ScreenChat, sess.CurrentScreen)
	assert.True(t, sess.IsAuthenticated)

	_, err = c.Dashboard(ctx)
	assert.Error(t, err)
}

func TestController_Dashboard(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		role Role
		want Dashboard
	}{
		{name: "no role", want: DashboardNone},
		{name: "teacher", role: RoleTeacher, want: DashboardTeacher},
		{name: "student", role: RoleStudent, want: DashboardStudent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, sess, roles := newController(t, ScreenDashboard)
			if tt.role != "" {
				require.NoError(t, roles.SetRole(ctx, sess.ID, tt.role))
			}

			got, err := c.Dashboard(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			view, err := c.View(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, view.Dashboard)
			assert.True(t, view.HasView)
			assert.False(t, view.CanGoBack)
		})
	}
}

func TestController_View(t *testing.T) {
	c, _, _ := newController(t, ScreenDashboard)
	c.Navigate(ScreenMarks)

	view, err := c.View(context.Background())
	require.NoError(t, err)
	assert.Equal(t, View{Screen: ScreenMarks, CanGoBack: true, HistoryDepth: 1}, view)
}

func TestController_Apply(t *testing.T) {
	ctx := context.Background()
	c, sess, _ := newController(t, ScreenSplash)

	steps := []struct {
		cmd        Command
		wantScreen Screen
	}{
		{cmd: CompleteSplash(), wantScreen: ScreenRoleSelection},
		{cmd: SelectRole(RoleStudent), wantScreen: ScreenLogin},
		{cmd: LoginSuccess("u"), wantScreen: ScreenOnboarding},
		{cmd: CompleteOnboarding(), wantScreen: ScreenDashboard},
		{cmd: Navigate(ScreenAchievements), wantScreen: ScreenAchievements},
		{cmd: Back(), wantScreen: ScreenDashboard},
		{cmd: Navigate(ScreenChat), wantScreen: ScreenChat},
		{cmd: Home(), wantScreen: ScreenDashboard},
		{cmd: Logout(), wantScreen: ScreenRoleSelection},
	}
	for _, step := range steps {
		require.NoError(t, c.Apply(ctx, step.cmd), step.cmd.Type)
		assert.Equal(t, step.wantScreen, sess.CurrentScreen, step.cmd.Type)
	}

	assert.Equal(t, ErrUnknownCommand, c.Apply(ctx, Command{Type: "jump"}))
	assert.Equal(t, ErrUnknownScreen, c.Apply(ctx, Navigate("nowhere")))
	assert.Equal(t, ScreenRoleSelection, sess.CurrentScreen)
}

func TestEntryScenario(t *testing.T) {
	ctx := context.Background()
	c, sess, roles := newController(t, ScreenSplash)

	c.CompleteSplash()
	assert.Equal(t, ScreenRoleSelection, sess.CurrentScreen)

	require.NoError(t, c.SelectRole(ctx, RoleStudent))
	role, err := roles.GetRole(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, role)
	assert.Equal(t, ScreenLogin, sess.CurrentScreen)

	c.LoginSuccess()
	assert.Equal(t, ScreenOnboarding, sess.CurrentScreen)

	c.CompleteOnboarding()
	assert.Equal(t, ScreenDashboard, sess.CurrentScreen)
	assert.Equal(t, []Screen{}, sess.History)

	dash, err := c.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, DashboardStudent, dash)
}

func TestNavigatorFunc(t *testing.T) {
	var got Screen
	var nav Navigator = NavigatorFunc(func(target Screen) { got = target })
	nav.Navigate(ScreenSettings)
	assert.Equal(t, ScreenSettings, got)
}

func TestController_NavigateUnknownScreen(t *testing.T) {
	c, sess, _ := newController(t, ScreenAttendance, ScreenDashboard)

	var nav Navigator = c
	nav.Navigate("library")
	nav.Navigate("")
	assert.Equal(t, ScreenAttendance, sess.CurrentScreen)
	assert.Equal(t, []Screen{ScreenDashboard}, sess.History)

	nav.Navigate(ScreenChat)
	assert.Equal(t, ScreenChat, sess.CurrentScreen)
	assert.Equal(t, []Screen{ScreenDashboard, ScreenAttendance}, sess.History)
}
