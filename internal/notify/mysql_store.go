package notify

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// MySQLStore reads device tokens from 'users' and records in-app
// notifications in 'notifications'.
type MySQLStore struct {
	DB *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{DB: db}
}

func (s *MySQLStore) DeviceToken(ctx context.Context, userID int64) (string, bool, error) {
	var token sql.NullString
	err := s.DB.QueryRowContext(ctx,
		"SELECT fcm_token FROM users WHERE id = ?", userID).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	if !token.Valid || token.String == "" {
		return "", false, nil
	}
	return token.String, true, nil
}

func (s *MySQLStore) SaveNotification(ctx context.Context, p Payload) error {
	query := `
		INSERT INTO notifications
		(user_id, title, body, category, is_read, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`

	_, err := s.DB.ExecContext(ctx, query,
		p.RecipientID, p.Title, p.Body, p.Category, time.Now())
	return err
}
