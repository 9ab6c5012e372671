package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shiksha/core"
	"github.com/trezcool/shiksha/core/navigation"
)

type sessionRow struct {
	ID                string         `db:"id"`
	CurrentScreen     string         `db:"current_screen"`
	History           pq.StringArray `db:"history"`
	IsAuthenticated   bool           `db:"is_authenticated"`
	HasSeenOnboarding bool           `db:"has_seen_onboarding"`
	UserID            null.String    `db:"user_id"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func toSessionRow(sess navigation.Session) sessionRow {
	hist := make(pq.StringArray, 0, len(sess.History))
	for _, scr := range sess.History {
		hist = append(hist, scr.String())
	}
	return sessionRow{
		ID:                sess.ID,
		CurrentScreen:     sess.CurrentScreen.String(),
		History:           hist,
		IsAuthenticated:   sess.IsAuthenticated,
		HasSeenOnboarding: sess.HasSeenOnboarding,
		UserID:            null.NewString(sess.UserID, sess.UserID != ""),
		CreatedAt:         sess.CreatedAt.UTC(),
		UpdatedAt:         sess.UpdatedAt.UTC(),
	}
}

func (row sessionRow) session() navigation.Session {
	hist := make([]navigation.Screen, 0, len(row.History))
	for _, scr := range row.History {
		hist = append(hist, navigation.Screen(scr))
	}
	return navigation.Session{
		ID:                row.ID,
		CurrentScreen:     navigation.Screen(row.CurrentScreen),
		History:           hist,
		IsAuthenticated:   row.IsAuthenticated,
		HasSeenOnboarding: row.HasSeenOnboarding,
		UserID:            row.UserID.String,
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
	}
}

type sessionRepository struct {
	exec core.DBExecutor
}

var _ navigation.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(exec core.DBExecutor) *sessionRepository {
	return &sessionRepository{exec: exec}
}

func (repo sessionRepository) CreateSession(ctx context.Context, sess navigation.Session) (navigation.Session, error) {
	q := `INSERT INTO nav_session (id, current_screen, history, is_authenticated, has_seen_onboarding, user_id, created_at, updated_at)
		VALUES (:id, :current_screen, :history, :is_authenticated, :has_seen_onboarding, :user_id, :created_at, :updated_at)`
	if _, err := repo.exec.NamedExecContext(ctx, q, toSessionRow(sess)); err != nil {
		return navigation.Session{}, errors.Wrap(err, "inserting session")
	}
	return sess, nil
}

func (repo sessionRepository) GetSession(ctx context.Context, id string) (navigation.Session, error) {
	var row sessionRow
	err := repo.exec.GetContext(ctx, &row, `SELECT * FROM nav_session WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return navigation.Session{}, navigation.ErrSessionNotFound
		}
		return navigation.Session{}, errors.Wrap(err, "selecting session")
	}
	return row.session(), nil
}

func (repo sessionRepository) UpdateSession(ctx context.Context, sess navigation.Session) (navigation.Session, error) {
	q := `UPDATE nav_session SET current_screen = :current_screen, history = :history, is_authenticated = :is_authenticated,
		has_seen_onboarding = :has_seen_onboarding, user_id = :user_id, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.exec.NamedExecContext(ctx, q, toSessionRow(sess))
	if err != nil {
		return navigation.Session{}, errors.Wrap(err, "updating session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return navigation.Session{}, navigation.ErrSessionNotFound
	}
	return sess, nil
}

func (repo sessionRepository) DeleteSession(ctx context.Context, id string) error {
	if _, err := repo.exec.ExecContext(ctx, `DELETE FROM nav_session WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}
