package orders

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/homeplate/homeplate-golang/internal/errs"
	"github.com/homeplate/homeplate-golang/internal/models"
)

// MySQLStore persists orders and owns the product flip that accompanies
// order placement.
type MySQLStore struct {
	DB *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{DB: db}
}

func (s *MySQLStore) CreatePending(ctx context.Context, o *models.Order) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return errs.Dependency("mysql", err)
	}
	defer tx.Rollback()

	// 1. Lock the product row and read what the order needs from it.
	var (
		ownerID    int64
		finalPrice float64
		status     string
	)
	err = tx.QueryRowContext(ctx,
		"SELECT owner_id, final_price, status FROM products WHERE id = ? FOR UPDATE",
		o.ProductID).Scan(&ownerID, &finalPrice, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFoundf("product %d not found", o.ProductID)
		}
		return errs.Dependency("mysql", err)
	}

	if status != models.ProductAvailable {
		return errs.Conflictf("product %d is no longer available", o.ProductID)
	}
	if ownerID == o.BuyerID {
		return errs.Validationf("you cannot order your own dish")
	}

	// 2. Flip the product to sold, conditionally. The WHERE clause repeats
	// the status check so the flip is correct even without the row lock.
	result, err := tx.ExecContext(ctx,
		"UPDATE products SET status = ?, buyer_id = ? WHERE id = ? AND status = ?",
		models.ProductSold, o.BuyerID, o.ProductID, models.ProductAvailable)
	if err != nil {
		return errs.Dependency("mysql", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errs.Dependency("mysql", err)
	}
	if rowsAffected == 0 {
		return errs.Conflictf("product %d is no longer available", o.ProductID)
	}

	// 3. Insert the pending order.
	now := time.Now()
	insert, err := tx.ExecContext(ctx, `
		INSERT INTO orders
		(buyer_id, seller_id, product_id, price, buyer_lat, buyer_lng, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.BuyerID, ownerID, o.ProductID, finalPrice,
		o.BuyerLocation.Latitude, o.BuyerLocation.Longitude,
		models.OrderPending, now)
	if err != nil {
		return errs.Dependency("mysql", err)
	}
	orderID, err := insert.LastInsertId()
	if err != nil {
		return errs.Dependency("mysql", err)
	}

	if err := tx.Commit(); err != nil {
		return errs.Dependency("mysql", err)
	}

	o.ID = orderID
	o.SellerID = ownerID
	o.Price = finalPrice
	o.Status = models.OrderPending
	o.CreatedAt = now
	return nil
}

func (s *MySQLStore) Get(ctx context.Context, id int64) (*models.Order, error) {
	var (
		o         models.Order
		sellerLat sql.NullFloat64
		sellerLng sql.NullFloat64
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT id, buyer_id, seller_id, product_id, price,
		       buyer_lat, buyer_lng, seller_lat, seller_lng, status, created_at
		FROM orders WHERE id = ?`, id).Scan(
		&o.ID, &o.BuyerID, &o.SellerID, &o.ProductID, &o.Price,
		&o.BuyerLocation.Latitude, &o.BuyerLocation.Longitude,
		&sellerLat, &sellerLng, &o.Status, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFoundf("order %d not found", id)
		}
		return nil, errs.Dependency("mysql", err)
	}

	if sellerLat.Valid && sellerLng.Valid {
		o.SellerLocation = &models.GeoPoint{
			Latitude:  sellerLat.Float64,
			Longitude: sellerLng.Float64,
		}
	}
	return &o, nil
}

func (s *MySQLStore) AdvanceStatus(ctx context.Context, id int64, from, to string, sellerLoc *models.GeoPoint) (bool, error) {
	var (
		result sql.Result
		err    error
	)
	if sellerLoc != nil {
		result, err = s.DB.ExecContext(ctx,
			"UPDATE orders SET status = ?, seller_lat = ?, seller_lng = ? WHERE id = ? AND status = ?",
			to, sellerLoc.Latitude, sellerLoc.Longitude, id, from)
	} else {
		result, err = s.DB.ExecContext(ctx,
			"UPDATE orders SET status = ? WHERE id = ? AND status = ?",
			to, id, from)
	}
	if err != nil {
		return false, errs.Dependency("mysql", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, errs.Dependency("mysql", err)
	}
	return rowsAffected > 0, nil
}
