package repositories

import (
	"context"
	"database/sql"

	"backend/internal/config"
	"backend/internal/domain"
	"backend/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.db().QueryRowContext(ctx, `
		SELECT id, phone, name, rating, total_ratings, total_exchanges, is_verified, created_at
		FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Phone, &u.Name, &u.Rating, &u.TotalRatings, &u.TotalExchanges,
		&u.IsVerified, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "query user", Err: err}
	}
	return u, nil
}

// GetOrCreateByPhone looks up a user by phone, creating a fresh unverified
// profile on first sight. Used by the OTP login flow.
func (r UserRepository) GetOrCreateByPhone(ctx context.Context, phone string) (models.User, error) {
	var u models.User
	err := r.db().QueryRowContext(ctx, `
		SELECT id, phone, name, rating, total_ratings, total_exchanges, is_verified, created_at
		FROM users WHERE phone = ?
	`, phone).Scan(&u.ID, &u.Phone, &u.Name, &u.Rating, &u.TotalRatings, &u.TotalExchanges,
		&u.IsVerified, &u.CreatedAt)
	if err == nil {
		return u, nil
	}
	if err != sql.ErrNoRows {
		return models.User{}, domain.InternalError{Msg: "query user by phone", Err: err}
	}

	res, err := r.db().ExecContext(ctx, `INSERT INTO users (phone) VALUES (?)`, phone)
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "insert user", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "user insert id", Err: err}
	}
	return r.GetByID(ctx, id)
}

// MarkVerified flips the verification flag after a successful OTP check.
func (r UserRepository) MarkVerified(ctx context.Context, id int64) error {
	_, err := r.db().ExecContext(ctx, `UPDATE users SET is_verified = 1 WHERE id = ?`, id)
	if err != nil {
		return domain.InternalError{Msg: "mark user verified", Err: err}
	}
	return nil
}

// ApplyRating folds a new rating into the running average in one statement
// so concurrent raters do not lose updates.
func (r UserRepository) ApplyRating(ctx context.Context, id int64, rating float64) error {
	res, err := r.db().ExecContext(ctx, `
		UPDATE users
		SET rating = (rating * total_ratings + ?) / (total_ratings + 1),
		    total_ratings = total_ratings + 1
		WHERE id = ?
	`, rating, id)
	if err != nil {
		return domain.InternalError{Msg: "apply rating", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "user"}
	}
	return nil
}

// IncrementExchanges bumps the completed-exchange counter.
func (r UserRepository) IncrementExchanges(ctx context.Context, id int64) error {
	_, err := r.db().ExecContext(ctx, `UPDATE users SET total_exchanges = total_exchanges + 1 WHERE id = ?`, id)
	if err != nil {
		return domain.InternalError{Msg: "increment exchanges", Err: err}
	}
	return nil
}

// UpdateName sets the display name used in match results.
func (r UserRepository) UpdateName(ctx context.Context, id int64, name string) error {
	_, err := r.db().ExecContext(ctx, `UPDATE users SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return domain.InternalError{Msg: "update user name", Err: err}
	}
	return nil
}
