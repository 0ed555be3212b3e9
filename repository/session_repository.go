package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"foodDeliveryAdmin/models"
)

// SessionRepository stores admin sessions in SQLite. Timestamps are unix seconds.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session. The ID is chosen by the caller.
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	if s == nil {
		return errors.New("session is nil")
	}
	if s.ID == "" || s.AccessToken == "" {
		return errors.New("session id and access token are required")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `INSERT INTO sessions (id, user_id, mobile_number, email, access_token, created_at, expires_at) VALUES (?,?,?,?,?,?,?)`,
		s.ID, s.UserID, s.MobileNumber, s.Email, s.AccessToken, s.CreatedAt.Unix(), s.ExpiresAt.Unix())
	return err
}

// GetByID fetches a session by its ID. Expired rows are returned as-is; callers decide.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s models.Session
	var created, expires int64
	err := r.db.QueryRowContext(ctx, `SELECT id, user_id, mobile_number, email, access_token, created_at, expires_at FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.UserID, &s.MobileNumber, &s.Email, &s.AccessToken, &created, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.CreatedAt = time.Unix(created, 0).UTC()
	s.ExpiresAt = time.Unix(expires, 0).UTC()
	return &s, nil
}

// Delete removes a session by ID. Deleting a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// DeleteByUserID removes every session of a user and returns how many were removed.
func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExpired purges sessions whose expiry is at or before now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
