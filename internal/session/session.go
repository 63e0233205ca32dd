// Package session keeps signed-in panel users and their preferences.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/devAlphaSystem/Alpha-System-ContentHub-sub001/internal/db"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session: not found")

// Session is one signed-in user.
type Session struct {
	ID        string
	UserID    string
	Email     string
	Name      string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions.
type Store struct {
	db  *db.DB
	ttl time.Duration
	now func() time.Time
}

// NewStore creates a Store whose sessions live for ttl.
func NewStore(database *db.DB, ttl time.Duration) *Store {
	return &Store{db: database, ttl: ttl, now: time.Now}
}

// Create starts a session for the given backend user and token.
func (s *Store) Create(ctx context.Context, userID, email, name, token string) (*Session, error) {
	now := s.now().UTC().Truncate(time.Second)
	sess := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Email:     email,
		Name:      name,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, email, name, token, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.Email, sess.Name, sess.Token,
		sess.CreatedAt.Format(time.DateTime), sess.ExpiresAt.Format(time.DateTime),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting session: %w", err)
	}
	return sess, nil
}

// Get returns a live session. Expired sessions are deleted and reported
// as ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	var (
		sess           Session
		created, until string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, email, name, token, created_at, expires_at
		FROM sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.UserID, &sess.Email, &sess.Name, &sess.Token, &created, &until)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	sess.CreatedAt = parseTime(created)
	sess.ExpiresAt = parseTime(until)

	if sess.Expired(s.now()) {
		_ = s.Delete(ctx, id)
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Delete ends a session. Deleting an unknown session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// PurgeExpired removes every expired session and returns how many went.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at <= ?",
		s.now().UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("purging sessions: %w", err)
	}
	return res.RowsAffected()
}

func parseTime(ts string) time.Time {
	for _, layout := range []string{time.DateTime, time.RFC3339} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}
