package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shiksha/core"
	"github.com/trezcool/shiksha/core/navigation"
	"github.com/trezcool/shiksha/core/user"
)

func TestRollbarLogger_Enable(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		debug    bool
		testMode bool
		want     bool
	}{
		{name: "no token", want: false},
		{name: "debug", token: "tkn", debug: true, want: false},
		{name: "test mode", token: "tkn", testMode: true, want: false},
		{name: "token", token: "tkn", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := core.NewTestConfig()
			conf.RollbarToken, conf.Debug, conf.TestMode = tt.token, tt.debug, tt.testMode

			l := NewRollbarLogger(log.New(new(bytes.Buffer), "", 0), conf)
			defer l.Enable(false)
			if got := l.Reporting(); got != tt.want {
				t.Errorf("Reporting() = %v; want %v", got, tt.want)
			}

			// what main does outside of debug mode
			l.Enable(true)
			assert.Equal(t, tt.want, l.Reporting())
			l.Enable(false)
			assert.False(t, l.Reporting())
		})
	}
}

func TestEntry(t *testing.T) {
	errBoom := errors.New("boom")
	usr := user.User{ID: "usr-1", Username: "meera"}
	sess := navigation.NewSession("sess-1", core.NowFunc())
	sess.CurrentScreen = navigation.ScreenChat

	interfaces, person := entry("saving session", []interface{}{
		errBoom,
		usr,
		user.User{ID: "usr-2"}, // only the first user is reported
		sess,
		map[string]interface{}{"command": "logout"},
	})
	require.NotNil(t, person)
	assert.Equal(t, "usr-1", person.ID)
	assert.Equal(t, []interface{}{
		"saving session",
		errBoom,
		map[string]interface{}{
			"session_id":    "sess-1",
			"screen":        "chat",
			"authenticated": false,
			"command":       "logout",
		},
	}, interfaces)

	interfaces, person = entry("plain", nil)
	assert.Nil(t, person)
	assert.Equal(t, []interface{}{"plain"}, interfaces)
}

func TestRollbarLogger_Output(t *testing.T) {
	var buf bytes.Buffer
	l := NewRollbarLogger(log.New(&buf, "", 0), core.NewTestConfig())

	sess := navigation.NewSession("sess-1", core.NowFunc())
	l.Error("saving session", errors.New("db down"), sess, user.User{ID: "usr-1"})
	l.Debug("select-role: role-selection -> login")

	out := buf.String()
	assert.Contains(t, out, "[ERROR] saving session\n")
	assert.Contains(t, out, "db down")
	assert.Contains(t, out, "session_id:sess-1")
	assert.Contains(t, out, "user=usr-1")
	assert.Contains(t, out, "[DEBUG] select-role: role-selection -> login\n")
}
