package commission

import (
	"context"
	"database/sql"
	"errors"

	"github.com/homeplate/homeplate-golang/internal/errs"
	"github.com/homeplate/homeplate-golang/internal/models"
)

// MySQLStore persists seller rates on the 'users' table.
type MySQLStore struct {
	DB *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{DB: db}
}

func (s *MySQLStore) SellerRate(ctx context.Context, sellerID int64) (float64, bool, error) {
	var rate float64
	err := s.DB.QueryRowContext(ctx,
		"SELECT commission_rate FROM users WHERE id = ?", sellerID).Scan(&rate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, errs.Dependency("mysql", err)
	}
	return rate, true, nil
}

func (s *MySQLStore) UpdateSellerRate(ctx context.Context, sellerID int64, rate float64) error {
	result, err := s.DB.ExecContext(ctx,
		"UPDATE users SET commission_rate = ? WHERE id = ?", rate, sellerID)
	if err != nil {
		return errs.Dependency("mysql", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errs.Dependency("mysql", err)
	}
	if rowsAffected == 0 {
		// The rate may already equal the target; MySQL reports 0 changed
		// rows in that case, so double-check the record exists.
		var exists int
		if err := s.DB.QueryRowContext(ctx,
			"SELECT 1 FROM users WHERE id = ?", sellerID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errs.NotFoundf("user %d not found", sellerID)
			}
			return errs.Dependency("mysql", err)
		}
	}
	return nil
}

// SellerIDs returns every non-admin user. Any user can sell, so the global
// update touches all of them; the admin account takes no commission.
func (s *MySQLStore) SellerIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT id FROM users WHERE role = ?", models.RoleUser)
	if err != nil {
		return nil, errs.Dependency("mysql", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errs.Dependency("mysql", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Dependency("mysql", err)
	}
	return ids, nil
}
