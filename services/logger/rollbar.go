package logsvc

import (
	"log"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/shiksha/core"
	"github.com/trezcool/shiksha/core/navigation"
	"github.com/trezcool/shiksha/core/user"
)

// RollbarLogger prints every entry to std and reports it to Rollbar when reporting is on.
type RollbarLogger struct {
	std       *log.Logger
	canReport bool // a token is configured and we run neither in debug nor in test mode
	reporting bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)

	l := &RollbarLogger{std: std, canReport: conf.RollbarToken != "" && !conf.Debug && !conf.TestMode}
	l.Enable(true)
	return l
}

// Enable turns reporting on or off. It never turns it on without a token, nor in debug or test mode.
func (l *RollbarLogger) Enable(enabled bool) {
	l.reporting = enabled && l.canReport
	rollbar.SetEnabled(l.reporting)
}

func (l *RollbarLogger) Reporting() bool { return l.reporting }

// entry splits args into what Rollbar receives and the person to report it for.
// Args may be errors, maps of extra data, a user.User and a navigation.Session.
func entry(msg string, args []interface{}) (interfaces []interface{}, person *user.User) {
	interfaces = append(make([]interface{}, 0, len(args)+1), msg)
	extras := make(map[string]interface{})
	for _, arg := range args {
		switch a := arg.(type) {
		case user.User:
			if person == nil {
				usr := a
				person = &usr
			}
		case navigation.Session:
			extras["session_id"] = a.ID
			extras["screen"] = a.CurrentScreen.String()
			extras["authenticated"] = a.IsAuthenticated
		case map[string]interface{}:
			for k, v := range a {
				extras[k] = v
			}
		default:
			interfaces = append(interfaces, arg)
		}
	}
	if len(extras) > 0 {
		interfaces = append(interfaces, extras)
	}
	return interfaces, person
}

func (l *RollbarLogger) log(level, msg string, args []interface{}) {
	interfaces, person := entry(msg, args)
	if l.reporting {
		if person != nil {
			rollbar.SetPerson(person.ID, person.Username, person.Email)
		} else {
			rollbar.ClearPerson()
		}
		rollbar.Log(level, interfaces...)
	}

	l.std.Printf("[%s] %s", strings.ToUpper(level), msg)
	for _, arg := range interfaces[1:] {
		l.std.Printf("  %+v", arg)
	}
	if person != nil {
		l.std.Printf("  user=%s", person.ID)
	}
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) { l.log(rollbar.DEBUG, msg, args) }

func (l *RollbarLogger) Info(msg string, args ...interface{}) { l.log(rollbar.INFO, msg, args) }

func (l *RollbarLogger) Warn(msg string, args ...interface{}) { l.log(rollbar.WARN, msg, args) }

func (l *RollbarLogger) Error(msg string, args ...interface{}) { l.log(rollbar.ERR, msg, args) }

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(rollbar.CRIT, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
