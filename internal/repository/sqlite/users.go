package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

const userColumns = `id, username, email, password_hash, email_verified, is_admin, COALESCE(verify_token, ''), created_at`

// UserRepository stores users and owns the cascade to their subscriptions.
type UserRepository struct {
	DB  *sql.DB
	log zerolog.Logger
	m   *metrics.Metrics
}

func NewUserRepository(db *sql.DB, logger zerolog.Logger, m *metrics.Metrics) *UserRepository {
	logger = logger.With().Str("component", "UserRepository").Logger()
	return &UserRepository{DB: db, log: logger, m: m}
}

// Create inserts the user and sets its ID. Returns ErrUserExists on a duplicate username or email.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	start := time.Now()

	var cnt int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`,
		user.Username, user.Email,
	).Scan(&cnt)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Msg("failed to query user count")
		r.m.TechnicalErrors.WithLabelValues("db_query_error", "critical").Inc()
		return err
	}
	if cnt > 0 {
		r.log.Warn().Ctx(ctx).
			Str("username", user.Username).
			Str("email", user.Email).
			Msg("user already exists, abort create")
		r.m.BusinessErrors.WithLabelValues("user_exists", "warning").Inc()
		return models.ErrUserExists
	}

	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, email_verified, is_admin, verify_token, created_at)
		 VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?)`,
		user.Username, user.Email, user.PasswordHash, user.EmailVerified, user.IsAdmin,
		user.VerifyToken, toUnix(user.CreatedAt),
	)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Msg("failed to insert user")
		r.m.TechnicalErrors.WithLabelValues("db_insert_error", "critical").Inc()
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id

	r.log.Info().Ctx(ctx).
		Int64("user_id", id).
		Str("username", user.Username).
		Dur("duration", time.Since(start)).
		Msg("user created")
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanOne(ctx, row)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return r.scanOne(ctx, row)
}

// List returns all users ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Msg("failed to query users")
		r.m.TechnicalErrors.WithLabelValues("db_query_error", "critical").Inc()
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.log.Error().Err(err).Ctx(ctx).Msg("failed to close rows after query")
		}
	}()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			r.m.TechnicalErrors.WithLabelValues("db_scan_error", "critical").Inc()
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// VerifyEmail marks the owner of token as verified and clears the token.
func (r *UserRepository) VerifyEmail(ctx context.Context, token string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET email_verified = 1, verify_token = NULL WHERE verify_token = ?`, token,
	)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Msg("failed to verify email")
		r.m.TechnicalErrors.WithLabelValues("db_update_error", "critical").Inc()
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes the user's subscriptions and then the user in one transaction.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	start := time.Now()

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		r.m.TechnicalErrors.WithLabelValues("db_tx_error", "critical").Inc()
		return err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.log.Error().Err(err).Ctx(ctx).Msg("rollback failed")
		}
	}()

	subs, err := tx.ExecContext(ctx, `DELETE FROM subscriptions WHERE user_id = ?`, id)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Int64("user_id", id).Msg("failed to delete user subscriptions")
		r.m.TechnicalErrors.WithLabelValues("db_delete_error", "critical").Inc()
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Int64("user_id", id).Msg("failed to delete user")
		r.m.TechnicalErrors.WithLabelValues("db_delete_error", "critical").Inc()
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrUserNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	removed, _ := subs.RowsAffected()
	r.log.Info().Ctx(ctx).
		Int64("user_id", id).
		Int64("subscriptions_removed", removed).
		Dur("duration", time.Since(start)).
		Msg("user deleted")
	return nil
}

func (r *UserRepository) scanOne(ctx context.Context, row *sql.Row) (models.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Msg("failed to scan user row")
		r.m.TechnicalErrors.WithLabelValues("db_scan_error", "critical").Inc()
		return models.User{}, err
	}
	return u, nil
}

func scanUser(s scanner) (models.User, error) {
	var (
		u       models.User
		created int64
	)
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.EmailVerified, &u.IsAdmin, &u.VerifyToken, &created); err != nil {
		return models.User{}, err
	}
	u.CreatedAt = fromUnix(created)
	return u, nil
}
