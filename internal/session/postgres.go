package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresStore shares sessions between panel instances.
type PostgresStore struct {
	pool DBPool
	now  func() time.Time
}

func NewPostgresStore(pool DBPool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

func (p *PostgresStore) Create(ctx context.Context, username string, ttl time.Duration) (Session, error) {
	if username == "" {
		return Session{}, errors.New("username is required")
	}
	now := p.now().UTC()
	s := Session{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO panel_sessions(id, username, created_at, expires_at)
		VALUES($1, $2, $3, $4)
	`, s.ID, s.Username, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return s, nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (Session, error) {
	s := Session{ID: id}
	row := p.pool.QueryRow(ctx, `
		SELECT username, created_at, expires_at
		FROM panel_sessions
		WHERE id=$1 AND expires_at > $2
	`, id, p.now().UTC())
	if err := row.Scan(&s.Username, &s.CreatedAt, &s.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("select session: %w", err)
	}
	return s, nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM panel_sessions WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PruneExpired removes sessions past their expiry and reports how many were
// removed.
func (p *PostgresStore) PruneExpired(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM panel_sessions WHERE expires_at <= $1`, p.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
