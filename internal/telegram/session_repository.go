package telegram

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Session states.
const (
	StateIdle             = ""
	StateAwaitingRevision = "awaiting_revision"
)

// Session is the per-user conversation state of the bot.
type Session struct {
	UserID      int64
	State       string
	ItineraryID string
	UpdatedAt   time.Time
}

// Expired reports whether a pending state is older than ttl.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return s.State != StateIdle && now.Sub(s.UpdatedAt) > ttl
}

// SessionRepository provides access to session persistence operations.
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Get returns the session of a user, or nil when there is none.
func (sr *SessionRepository) Get(ctx context.Context, userID int64) (*Session, error) {
	var s Session
	err := sr.db.QueryRowContext(ctx,
		`SELECT user_id, state, itinerary_id, updated_at FROM sessions WHERE user_id = ?`, userID).
		Scan(&s.UserID, &s.State, &s.ItineraryID, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session for %d: %w", userID, err)
	}
	return &s, nil
}

// Save creates or replaces the session of s.UserID.
func (sr *SessionRepository) Save(ctx context.Context, s Session) error {
	_, err := sr.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, state, itinerary_id, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET state = excluded.state, itinerary_id = excluded.itinerary_id, updated_at = excluded.updated_at`,
		s.UserID, s.State, s.ItineraryID, sr.now())
	if err != nil {
		return fmt.Errorf("failed to save session for %d: %w", s.UserID, err)
	}
	return nil
}

// Delete removes a session.
func (sr *SessionRepository) Delete(ctx context.Context, userID int64) error {
	if _, err := sr.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete session for %d: %w", userID, err)
	}
	return nil
}
