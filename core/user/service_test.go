package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shiksha/core"
	. "github.com/trezcool/shiksha/core/user"
	inmemdb "github.com/trezcool/shiksha/storage/database/inmem"
	"github.com/trezcool/shiksha/tests"
)

const testPwd = "Pwd#1234"

func setup(t *testing.T) (*Service, Repository) {
	t.Helper()
	repo := inmemdb.NewUserRepository(inmemdb.NewDB())
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	return NewService(repo, validate, translator), repo
}

func TestService_Create(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	testutil.CreateUser(t, repo, "Meera", "meera", "meera@shiksha.dev", testPwd, RoleTeacher, true)

	newUser := func(mod func(nu *NewUser)) NewUser {
		nu := NewUser{
			Name:            "Asha Verma",
			Username:        "asha",
			Email:           "asha@shiksha.dev",
			Role:            RoleStudent,
			Password:        testPwd,
			PasswordConfirm: testPwd,
		}
		if mod != nil {
			mod(&nu)
		}
		return nu
	}

	tests := []struct {
		name      string
		nu        NewUser
		wantField string // field reported by the validation error
	}{
		{name: "no name", nu: newUser(func(nu *NewUser) { nu.Name = "  " }), wantField: "name"},
		{name: "no role", nu: newUser(func(nu *NewUser) { nu.Role = "" }), wantField: "role"},
		{name: "unknown role", nu: newUser(func(nu *NewUser) { nu.Role = "parent" }), wantField: "role"},
		{name: "short username", nu: newUser(func(nu *NewUser) { nu.Username = "as" }), wantField: "username"},
		{name: "bad username", nu: newUser(func(nu *NewUser) { nu.Username = "as-ha" }), wantField: "username"},
		{name: "bad email", nu: newUser(func(nu *NewUser) { nu.Email = "asha@" }), wantField: "email"},
		{name: "no username nor email", nu: newUser(func(nu *NewUser) { nu.Username, nu.Email = "", "" }), wantField: "username"},
		{name: "passwords mismatch", nu: newUser(func(nu *NewUser) { nu.PasswordConfirm = "Pwd#12345" }), wantField: "password_confirm"},
		{name: "weak password", nu: newUser(func(nu *NewUser) { nu.Password, nu.PasswordConfirm = "password", "password" }), wantField: "password"},
		{name: "username taken", nu: newUser(func(nu *NewUser) { nu.Username = "Meera" }), wantField: "username"},
		{name: "email taken", nu: newUser(func(nu *NewUser) { nu.Email = "MEERA@shiksha.dev" }), wantField: "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.nu)
			require.Error(t, err)
			assert.Contains(t, fieldsOf(err), tt.wantField)
		})
	}

	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = func() time.Time { return time.Now().UTC() } })

	usr, err := svc.Create(ctx, newUser(func(nu *NewUser) { nu.Username, nu.Email = " ASHA ", "Asha@Shiksha.dev" }))
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.Equal(t, "asha", usr.Username)
	assert.Equal(t, "asha@shiksha.dev", usr.Email)
	assert.True(t, usr.IsActive)
	assert.True(t, usr.IsStudent())
	assert.Equal(t, now, usr.CreatedAt)
	assert.NoError(t, usr.CheckPassword(testPwd))

	got, err := svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)
}

// fieldsOf returns the fields named by a validation error.
func fieldsOf(err error) []string {
	var fields []string
	switch e := err.(type) {
	case validator.ValidationErrors:
		for _, fe := range e {
			fields = append(fields, fe.Field())
		}
	case *core.ValidationError:
		for _, fe := range e.Fields {
			fields = append(fields, fe.Field)
		}
	}
	return fields
}

func TestService_Authenticate(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Meera", "meera", "meera@shiksha.dev", testPwd, RoleTeacher, true)
	testutil.CreateUser(t, repo, "Ravi", "ravi", "", testPwd, RoleStudent, false)

	tests := []struct {
		name    string
		creds   Credentials
		wantErr error
	}{
		{name: "unknown user", creds: Credentials{Username: "nobody", Password: testPwd}, wantErr: ErrAuthenticationFailed},
		{name: "wrong password", creds: Credentials{Username: "meera", Password: "Pwd#4321"}, wantErr: ErrAuthenticationFailed},
		{name: "deactivated", creds: Credentials{Username: "ravi", Password: testPwd}, wantErr: ErrAccountDeactivated},
		{name: "wrong password on deactivated", creds: Credentials{Username: "ravi", Password: "nope"}, wantErr: ErrAuthenticationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tt.creds)
			assert.Equal(t, tt.wantErr, err)
		})
	}

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, Credentials{})
		assert.ElementsMatch(t, []string{"username", "password"}, fieldsOf(err))
	})

	for _, uname := range []string{"MEERA", "meera@shiksha.dev"} {
		t.Run("login with "+uname, func(t *testing.T) {
			got, err := svc.Authenticate(ctx, Credentials{Username: uname, Password: testPwd})
			require.NoError(t, err)
			assert.Equal(t, usr.ID, got.ID)
			assert.False(t, got.LastLogin.IsZero())
		})
	}
}

func TestService_SetPassword(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Meera Iyer", "meera_iyer", "meera@shiksha.dev", testPwd, RoleTeacher, true)

	tests := []struct {
		name    string
		pwd     string
		wantErr string
	}{
		{name: "too short", pwd: "Ab#1", wantErr: "password must contain at least 8 characters"},
		{name: "whitespace", pwd: "Abc# 1234", wantErr: "password must not contain whitespace"},
		{name: "numeric", pwd: "123456789", wantErr: "password cannot be entirely numeric"},
		{name: "not complex", pwd: "abcdefgh1", wantErr: "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"},
		{name: "similar to username", pwd: "Meera_Iyer1", wantErr: "password cannot be similar to user attributes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetPassword(ctx, usr, ResetPassword{Password: tt.pwd, PasswordConfirm: tt.pwd})
			require.Error(t, err)
			assert.True(t, core.IsValidationError(err))
			assert.EqualError(t, err, tt.wantErr)
		})
	}

	t.Run("mismatch", func(t *testing.T) {
		_, err := svc.SetPassword(ctx, usr, ResetPassword{Password: "New#Pass9", PasswordConfirm: "New#Pass8"})
		assert.Equal(t, []string{"password_confirm"}, fieldsOf(err))
	})

	updated, err := svc.SetPassword(ctx, usr, ResetPassword{Password: "New#Pass9", PasswordConfirm: "New#Pass9"})
	require.NoError(t, err)
	assert.NoError(t, updated.CheckPassword("New#Pass9"))
	assert.Error(t, updated.CheckPassword(testPwd))
}

func TestService_DeactivateAndDelete(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	usr1 := testutil.CreateUser(t, repo, "Meera", "meera", "", testPwd, RoleTeacher, true)
	usr2 := testutil.CreateUser(t, repo, "Asha", "asha", "", testPwd, RoleStudent, true)

	deactivated, err := svc.Deactivate(ctx, usr1)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	_, err = svc.Authenticate(ctx, Credentials{Username: "meera", Password: testPwd})
	assert.Equal(t, ErrAccountDeactivated, err)

	require.NoError(t, svc.Delete(ctx, usr1.ID, usr2.ID))
	for _, id := range []string{usr1.ID, usr2.ID} {
		_, err = svc.GetByID(ctx, id)
		assert.Equal(t, ErrNotFound, err)
	}
}

func TestUser_Roles(t *testing.T) {
	tests := []struct {
		role      string
		canNotify bool
	}{
		{role: RoleAdmin, canNotify: true},
		{role: RoleTeacher, canNotify: true},
		{role: RoleStudent, canNotify: false},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			usr := User{Role: tt.role}
			if got := usr.CanNotify(); got != tt.canNotify {
				t.Errorf("CanNotify() = %v; want %v", got, tt.canNotify)
			}
		})
	}
}
