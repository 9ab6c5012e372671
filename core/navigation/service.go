package navigation

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/shiksha/core"
)

type (
	Repository interface {
		CreateSession(ctx context.Context, sess Session) (Session, error)
		// GetSession returns ErrSessionNotFound when id is unknown.
		GetSession(ctx context.Context, id string) (Session, error)
		// UpdateSession returns ErrSessionNotFound when the session was deleted meanwhile.
		UpdateSession(ctx context.Context, sess Session) (Session, error)
		DeleteSession(ctx context.Context, id string) error
	}

	// LogoutHook is called after a session logged out, e.g. to reset its app state.
	LogoutHook func(ctx context.Context, sessionID string)

	// Service owns every session. Commands on one session run one at a time, in arrival order
	// (load, apply, save), while different sessions proceed in parallel.
	Service struct {
		repo   Repository
		roles  RoleStore
		logger core.Logger
		locks  *core.KeyedMutex

		hooksMu     sync.RWMutex
		logoutHooks []LogoutHook
	}

	// State is a session together with what should be displayed for it.
	State struct {
		Session Session `json:"session"`
		View    View    `json:"view"`
	}
)

func NewService(repo Repository, roles RoleStore, logger core.Logger) *Service {
	return &Service{
		repo:   repo,
		roles:  roles,
		logger: logger,
		locks:  core.NewKeyedMutex(),
	}
}

func (svc *Service) OnLogout(hook LogoutHook) {
	svc.hooksMu.Lock()
	defer svc.hooksMu.Unlock()
	svc.logoutHooks = append(svc.logoutHooks, hook)
}

// Start creates a new session at the splash screen.
func (svc *Service) Start(ctx context.Context) (State, error) {
	sess, err := svc.repo.CreateSession(ctx, NewSession(uuid.NewString(), core.NowFunc()))
	if err != nil {
		return State{}, errors.Wrap(err, "creating session")
	}
	return svc.state(ctx, sess)
}

func (svc *Service) Get(ctx context.Context, id string) (State, error) {
	sess, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		return State{}, err
	}
	return svc.state(ctx, sess)
}

// Role returns the role persisted for the session, ErrNoRole when none.
func (svc *Service) Role(ctx context.Context, id string) (Role, error) {
	if _, err := svc.repo.GetSession(ctx, id); err != nil {
		return "", err
	}
	return svc.roles.GetRole(ctx, id)
}

// Dashboard resolves the dashboard of the session, whatever its current screen.
func (svc *Service) Dashboard(ctx context.Context, id string) (Dashboard, error) {
	sess, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		return "", err
	}
	return NewController(&sess, svc.roles).Dashboard(ctx)
}

// Dispatch applies cmd to the session with the given id and saves the result.
// Nothing is saved when the command fails.
func (svc *Service) Dispatch(ctx context.Context, id string, cmd Command) (State, error) {
	if err := cmd.Validate(); err != nil {
		return State{}, err
	}

	unlock := svc.locks.Lock(id)
	sess, err := svc.dispatch(ctx, id, cmd)
	unlock()
	if err != nil {
		return State{}, err
	}

	if cmd.Type == CmdLogout {
		svc.runLogoutHooks(ctx, id)
	}
	return svc.state(ctx, sess)
}

func (svc *Service) dispatch(ctx context.Context, id string, cmd Command) (Session, error) {
	sess, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	from := sess.CurrentScreen

	var prev *roleSnapshot
	if cmd.touchesRole() {
		if prev, err = svc.snapshotRole(ctx, id); err != nil {
			return Session{}, err
		}
	}

	ctrl := NewController(&sess, svc.roles)
	if err = ctrl.Apply(ctx, cmd); err != nil {
		return Session{}, errors.Wrapf(err, "applying %s", cmd.Type)
	}
	sess.UpdatedAt = core.NowFunc()

	saved, err := svc.repo.UpdateSession(ctx, sess)
	if err != nil {
		if prev != nil {
			svc.restoreRole(ctx, sess, *prev)
		}
		return Session{}, errors.Wrap(err, "saving session")
	}
	svc.logger.Debug(fmt.Sprintf("%s: %s -> %s", cmd.Type, from, saved.CurrentScreen), saved)
	return saved, nil
}

// roleSnapshot is the role entry of a session before a command wrote to it.
type roleSnapshot struct {
	role Role
	set  bool
}

func (svc *Service) snapshotRole(ctx context.Context, id string) (*roleSnapshot, error) {
	role, err := svc.roles.GetRole(ctx, id)
	switch {
	case errors.Cause(err) == ErrNoRole:
		return &roleSnapshot{}, nil
	case err != nil:
		return nil, errors.Wrap(err, "getting role")
	}
	return &roleSnapshot{role: role, set: true}, nil
}

// restoreRole puts back the role entry a failed command changed, so the store agrees with the saved session.
func (svc *Service) restoreRole(ctx context.Context, sess Session, prev roleSnapshot) {
	var err error
	if prev.set {
		err = svc.roles.SetRole(ctx, sess.ID, prev.role)
	} else {
		err = svc.roles.DeleteRole(ctx, sess.ID)
	}
	if err != nil {
		svc.logger.Error(fmt.Sprintf("restoring role: %v", err), err, sess)
	}
}

// End deletes the session and its persisted role.
func (svc *Service) End(ctx context.Context, id string) error {
	unlock := svc.locks.Lock(id)
	defer unlock()

	if _, err := svc.repo.GetSession(ctx, id); err != nil {
		return err
	}
	if err := svc.roles.DeleteRole(ctx, id); err != nil {
		return errors.Wrap(err, "deleting role")
	}
	if err := svc.repo.DeleteSession(ctx, id); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}

func (svc *Service) state(ctx context.Context, sess Session) (State, error) {
	view, err := NewController(&sess, svc.roles).View(ctx)
	if err != nil {
		return State{}, errors.Wrap(err, "resolving view")
	}
	return State{Session: sess, View: view}, nil
}

func (svc *Service) runLogoutHooks(ctx context.Context, id string) {
	svc.hooksMu.RLock()
	hooks := make([]LogoutHook, len(svc.logoutHooks))
	copy(hooks, svc.logoutHooks)
	svc.hooksMu.RUnlock()

	for _, hook := range hooks {
		hook(ctx, id)
	}
}
