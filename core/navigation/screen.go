package navigation

import "github.com/trezcool/shiksha/core"

// Screen names one full-page view of the application.
type Screen string

// Entry flow screens
const (
	ScreenSplash        Screen = "splash"
	ScreenRoleSelection Screen = "role-selection"
	ScreenLogin         Screen = "login"
	ScreenOnboarding    Screen = "onboarding"
	ScreenDashboard     Screen = "dashboard"
)

// Content screens, reached from the dashboard
const (
	ScreenAttendance          Screen = "attendance"
	ScreenMarks               Screen = "marks"
	ScreenHomework            Screen = "homework"
	ScreenHomeworkView        Screen = "homework-view"
	ScreenCompetitions        Screen = "competitions"
	ScreenParentCommunication Screen = "parent-communication"
	ScreenMarksProgress       Screen = "marks-progress"
	ScreenAttendanceView      Screen = "attendance-view"
	ScreenCompetitionAlerts   Screen = "competition-alerts"
	ScreenAchievements        Screen = "achievements"
	ScreenNotifications       Screen = "notifications"
	ScreenChat                Screen = "chat"
	ScreenSettings            Screen = "settings"
)

type screenInfo struct {
	leaf    bool
	hasView bool // false: rendered as a "coming soon" placeholder
}

var screens = map[Screen]screenInfo{
	ScreenSplash:        {hasView: true},
	ScreenRoleSelection: {hasView: true},
	ScreenLogin:         {hasView: true},
	ScreenOnboarding:    {hasView: true},
	ScreenDashboard:     {hasView: true},

	ScreenAttendance:          {leaf: true, hasView: true},
	ScreenMarks:               {leaf: true},
	ScreenHomework:            {leaf: true},
	ScreenHomeworkView:        {leaf: true, hasView: true},
	ScreenCompetitions:        {leaf: true},
	ScreenParentCommunication: {leaf: true},
	ScreenMarksProgress:       {leaf: true, hasView: true},
	ScreenAttendanceView:      {leaf: true, hasView: true},
	ScreenCompetitionAlerts:   {leaf: true, hasView: true},
	ScreenAchievements:        {leaf: true, hasView: true},
	ScreenNotifications:       {leaf: true, hasView: true},
	ScreenChat:                {leaf: true, hasView: true},
	ScreenSettings:            {leaf: true, hasView: true},
}

// ParseScreen cleans s and checks it names a known screen.
func ParseScreen(s string) (Screen, error) {
	scr := Screen(core.CleanString(s, true /* lower */))
	if !scr.IsValid() {
		return "", ErrUnknownScreen
	}
	return scr, nil
}

func (s Screen) IsValid() bool {
	_, ok := screens[s]
	return ok
}

// IsLeaf reports whether s is a content screen (anything past the dashboard).
func (s Screen) IsLeaf() bool { return screens[s].leaf }

// HasView reports whether s has a dedicated view.
func (s Screen) HasView() bool { return screens[s].hasView }

func (s Screen) String() string { return string(s) }

// Screens lists every known screen, entry flow first.
func Screens() []Screen {
	return []Screen{
		ScreenSplash, ScreenRoleSelection, ScreenLogin, ScreenOnboarding, ScreenDashboard,
		ScreenAttendance, ScreenMarks, ScreenHomework, ScreenHomeworkView, ScreenCompetitions,
		ScreenParentCommunication, ScreenMarksProgress, ScreenAttendanceView, ScreenCompetitionAlerts,
		ScreenAchievements, ScreenNotifications, ScreenChat, ScreenSettings,
	}
}
