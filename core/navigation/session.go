package navigation

import "time"

// Session is the in-memory record of one device: where it is, where it has been and its auth status.
type Session struct {
	ID                string    `json:"id"`
	CurrentScreen     Screen    `json:"current_screen"`
	History           []Screen  `json:"history"` // most recent last
	IsAuthenticated   bool      `json:"is_authenticated"`
	HasSeenOnboarding bool      `json:"has_seen_onboarding"`
	UserID            string    `json:"user_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"` // UTC
	UpdatedAt         time.Time `json:"updated_at"` // UTC
}

// NewSession returns a session at the splash screen.
func NewSession(id string, now time.Time) Session {
	return Session{
		ID:            id,
		CurrentScreen: ScreenSplash,
		History:       []Screen{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Clone returns a copy that does not share its history with s.
func (s Session) Clone() Session {
	hist := make([]Screen, len(s.History))
	copy(hist, s.History)
	s.History = hist
	return s
}

func (s *Session) navigate(target Screen) {
	if target == s.CurrentScreen {
		return
	}
	s.History = append(s.History, s.CurrentScreen)
	s.CurrentScreen = target
}

func (s *Session) back() {
	n := len(s.History)
	if n == 0 {
		s.CurrentScreen = ScreenDashboard
		return
	}
	s.CurrentScreen = s.History[n-1]
	s.History = s.History[:n-1]
}

func (s *Session) home() {
	s.History = []Screen{}
	s.CurrentScreen = ScreenDashboard
}

func (s *Session) completeSplash() {
	s.CurrentScreen = ScreenRoleSelection
}

func (s *Session) roleSelected() {
	s.CurrentScreen = ScreenLogin
}

func (s *Session) loginSuccess(userID string) {
	s.IsAuthenticated = true
	if userID != "" {
		s.UserID = userID
	}
	if !s.HasSeenOnboarding {
		s.CurrentScreen = ScreenOnboarding
	} else {
		s.CurrentScreen = ScreenDashboard
	}
}

func (s *Session) completeOnboarding() {
	s.HasSeenOnboarding = true
	s.CurrentScreen = ScreenDashboard
}

func (s *Session) loggedOut() {
	s.IsAuthenticated = false
	s.HasSeenOnboarding = false
	s.UserID = ""
	s.History = []Screen{}
	s.CurrentScreen = ScreenRoleSelection
}
