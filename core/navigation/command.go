package navigation

import "github.com/trezcool/shiksha/core"

type CommandType string

const (
	CmdNavigate           CommandType = "navigate"
	CmdBack               CommandType = "back"
	CmdHome               CommandType = "home"
	CmdCompleteSplash     CommandType = "complete-splash"
	CmdSelectRole         CommandType = "select-role"
	CmdLoginSuccess       CommandType = "login-success"
	CmdCompleteOnboarding CommandType = "complete-onboarding"
	CmdLogout             CommandType = "logout"
)

// Command is one discrete event sent to a session: a navigation request from a screen
// or an outcome of one of the entry flow screens (splash, role selection, login, onboarding).
type Command struct {
	Type   CommandType `json:"type"`
	Target Screen      `json:"target,omitempty"` // CmdNavigate
	Role   Role        `json:"role,omitempty"`   // CmdSelectRole
	UserID string      `json:"-"`                // CmdLoginSuccess; set by the login collaborator only
}

func Navigate(target Screen) Command { return Command{Type: CmdNavigate, Target: target} }
func Back() Command { return Command{Type: CmdBack} }
func Home() Command { return Command{Type: CmdHome} }
func CompleteSplash() Command { return Command{Type: CmdCompleteSplash} }
func SelectRole(role Role) Command { return Command{Type: CmdSelectRole, Role: role} }
func LoginSuccess(userID string) Command { return Command{Type: CmdLoginSuccess, UserID: userID} }
func CompleteOnboarding() Command { return Command{Type: CmdCompleteOnboarding} }
func Logout() Command { return Command{Type: CmdLogout} }

// Normalized trims and lowercases the free-form fields, the way ParseScreen and ParseRole read them.
func (cmd Command) Normalized() Command {
	cmd.Type = CommandType(core.CleanString(string(cmd.Type), true /* lower */))
	cmd.Target = Screen(core.CleanString(string(cmd.Target), true /* lower */))
	cmd.Role = Role(core.CleanString(string(cmd.Role), true /* lower */))
	return cmd
}

// Validate checks the command type is known and carries what it needs.
func (cmd Command) Validate() error {
	switch cmd.Type {
	case CmdNavigate:
		if !cmd.Target.IsValid() {
			return ErrUnknownScreen
		}
	case CmdSelectRole:
		if !cmd.Role.IsValid() {
			return ErrUnknownRole
		}
	case CmdBack, CmdHome, CmdCompleteSplash, CmdLoginSuccess, CmdCompleteOnboarding, CmdLogout:
	default:
		return ErrUnknownCommand
	}
	return nil
}

// touchesRole reports whether applying the command writes to the RoleStore.
func (cmd Command) touchesRole() bool { return cmd.Type == CmdSelectRole || cmd.Type == CmdLogout }

// Navigator is handed to the screens so they can request a navigation without knowing the controller.
type Navigator interface {
	Navigate(target Screen)
}

// NavigatorFunc adapts a plain function to a Navigator.
type NavigatorFunc func(target Screen)

func (f NavigatorFunc) Navigate(target Screen) { f(target) }
