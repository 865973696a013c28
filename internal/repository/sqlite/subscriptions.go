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

const subscriptionSelect = `
	SELECT s.id, s.user_id, s.city_id, s.email_push, COALESCE(s.webhook_url, ''), s.period_push,
	       s.next_due, s.email_sent_for, s.webhook_sent_for, s.created_at, s.updated_at,
	       u.username, u.email, c.name, c.country, c.lat, c.lon
	FROM subscriptions s
	JOIN users u ON u.id = s.user_id
	JOIN cities c ON c.id = s.city_id`

// SubscriptionRepository handles CRUD operations on subscriptions with structured logging and metrics.
type SubscriptionRepository struct {
	DB  *sql.DB
	log zerolog.Logger
	m   *metrics.Metrics
}

// NewSubscriptionRepository constructs a repository with logger context and metrics collector.
func NewSubscriptionRepository(
	db *sql.DB,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *SubscriptionRepository {
	logger = logger.With().Str("component", "SubscriptionRepository").Logger()
	return &SubscriptionRepository{DB: db, log: logger, m: m}
}

// Create inserts a new subscription and sets its ID, returns ErrSubscriptionExists if duplicate.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	start := time.Now()
	r.log.Debug().Ctx(ctx).
		Int64("user_id", sub.UserID).
		Int64("city_id", sub.CityID).
		Msg("checking existing subscription count")

	var cnt int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE user_id = ? AND city_id = ?`,
		sub.UserID, sub.CityID,
	).Scan(&cnt)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Msg("failed to query subscription count")
		r.m.TechnicalErrors.WithLabelValues("db_query_error", "critical").Inc()
		return err
	}
	if cnt > 0 {
		r.log.Warn().Ctx(ctx).
			Int64("user_id", sub.UserID).
			Int64("city_id", sub.CityID).
			Msg("subscription already exists, abort create")
		r.m.BusinessErrors.WithLabelValues("subscription_exists", "warning").Inc()
		return models.ErrSubscriptionExists
	}

	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO subscriptions
		    (user_id, city_id, email_push, webhook_url, period_push, next_due, created_at, updated_at)
		 VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?)`,
		sub.UserID, sub.CityID, sub.EmailPush, sub.WebhookURL, sub.PeriodPush,
		toNullUnix(sub.NextDue), toUnix(sub.CreatedAt), toUnix(sub.UpdatedAt),
	)
	dur := time.Since(start)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).
			Dur("duration", dur).
			Msg("failed to insert subscription")
		r.m.TechnicalErrors.WithLabelValues("db_insert_error", "critical").Inc()
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sub.ID = id

	r.log.Info().Ctx(ctx).
		Int64("subscription_id", id).
		Int64("user_id", sub.UserID).
		Int64("city_id", sub.CityID).
		Dur("duration", dur).
		Msg("subscription created successfully")
	return nil
}

// GetByID loads a subscription together with its user and city.
func (r *SubscriptionRepository) GetByID(ctx context.Context, id int64) (models.Subscription, error) {
	row := r.DB.QueryRowContext(ctx, subscriptionSelect+` WHERE s.id = ?`, id)
	return r.scanOne(ctx, row)
}

func (r *SubscriptionRepository) GetByUserCity(
	ctx context.Context, userID, cityID int64,
) (models.Subscription, error) {
	row := r.DB.QueryRowContext(ctx, subscriptionSelect+` WHERE s.user_id = ? AND s.city_id = ?`, userID, cityID)
	return r.scanOne(ctx, row)
}

// ListByUser returns the user's subscriptions ordered by id.
func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]models.Subscription, error) {
	start := time.Now()
	rows, err := r.DB.QueryContext(ctx, subscriptionSelect+` WHERE s.user_id = ? ORDER BY s.id`, userID)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Int64("user_id", userID).Msg("failed to query subscriptions")
		r.m.TechnicalErrors.WithLabelValues("db_query_error", "critical").Inc()
		return nil, err
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error().Err(err).Ctx(ctx).Msg("failed to close rows after query")
			r.m.TechnicalErrors.WithLabelValues("db_rows_close_error", "critical").Inc()
		}
	}(rows)

	subs := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			r.log.Error().Err(err).Ctx(ctx).Msg("failed to scan subscription row")
			r.m.TechnicalErrors.WithLabelValues("db_scan_error", "critical").Inc()
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		r.log.Error().Err(err).Ctx(ctx).Msg("row iteration error")
		r.m.TechnicalErrors.WithLabelValues("db_rows_error", "critical").Inc()
		return nil, err
	}

	r.log.Debug().Ctx(ctx).
		Int64("user_id", userID).
		Int("count", len(subs)).
		Dur("duration", time.Since(start)).
		Msg("retrieved user subscriptions")
	return subs, nil
}

// Update persists delivery settings, next_due and updated_at.
func (r *SubscriptionRepository) Update(ctx context.Context, sub models.Subscription) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE subscriptions
		 SET email_push = ?, webhook_url = NULLIF(?, ''), period_push = ?, next_due = ?, updated_at = ?
		 WHERE id = ?`,
		sub.EmailPush, sub.WebhookURL, sub.PeriodPush, toNullUnix(sub.NextDue), toUnix(sub.UpdatedAt), sub.ID,
	)
	return r.checkAffected(ctx, res, err, sub.ID, "update")
}

func (r *SubscriptionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err := r.checkAffected(ctx, res, err, id, "delete"); err != nil {
		return err
	}
	r.log.Info().Ctx(ctx).Int64("subscription_id", id).Msg("subscription deleted")
	return nil
}

// ListDueIDs returns ids of subscriptions whose next_due is set and not after now.
func (r *SubscriptionRepository) ListDueIDs(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id FROM subscriptions WHERE next_due IS NOT NULL AND next_due <= ? ORDER BY next_due`,
		toUnix(now),
	)
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Msg("failed to query due subscriptions")
		r.m.TechnicalErrors.WithLabelValues("db_query_error", "critical").Inc()
		return nil, err
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			r.log.Error().Err(err).Ctx(ctx).Msg("failed to close rows after query")
		}
	}(rows)

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			r.m.TechnicalErrors.WithLabelValues("db_scan_error", "critical").Inc()
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ScheduleNext stores the next due time.
func (r *SubscriptionRepository) ScheduleNext(ctx context.Context, id int64, next time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE subscriptions SET next_due = ? WHERE id = ?`, toUnix(next), id,
	)
	if err := r.checkAffected(ctx, res, err, id, "schedule"); err != nil {
		return err
	}
	r.log.Debug().Ctx(ctx).Int64("subscription_id", id).Time("next_due", next).Msg("next_due updated")
	return nil
}

// MarkEmailSent records that the email for the given cycle was delivered.
func (r *SubscriptionRepository) MarkEmailSent(ctx context.Context, id int64, cycle time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE subscriptions SET email_sent_for = ? WHERE id = ?`, toUnix(cycle), id,
	)
	return r.checkAffected(ctx, res, err, id, "mark_email")
}

// MarkWebhookSent records that the webhook for the given cycle was delivered.
func (r *SubscriptionRepository) MarkWebhookSent(ctx context.Context, id int64, cycle time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE subscriptions SET webhook_sent_for = ? WHERE id = ?`, toUnix(cycle), id,
	)
	return r.checkAffected(ctx, res, err, id, "mark_webhook")
}

func (r *SubscriptionRepository) checkAffected(
	ctx context.Context, res sql.Result, err error, id int64, op string,
) error {
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).
			Int64("subscription_id", id).
			Str("operation", op).
			Msg("subscription write failed")
		r.m.TechnicalErrors.WithLabelValues("db_update_error", "critical").Inc()
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		r.m.TechnicalErrors.WithLabelValues("db_rows_error", "critical").Inc()
		return err
	}
	if n == 0 {
		return models.ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepository) scanOne(ctx context.Context, row *sql.Row) (models.Subscription, error) {
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subscription{}, models.ErrSubscriptionNotFound
	}
	if err != nil {
		r.log.Error().Err(err).Ctx(ctx).Msg("failed to scan subscription row")
		r.m.TechnicalErrors.WithLabelValues("db_scan_error", "critical").Inc()
		return models.Subscription{}, err
	}
	return sub, nil
}

func scanSubscription(s scanner) (models.Subscription, error) {
	var (
		sub                     models.Subscription
		nextDue, emailFor, hook sql.NullInt64
		created, updated        int64
	)
	err := s.Scan(&sub.ID, &sub.UserID, &sub.CityID, &sub.EmailPush, &sub.WebhookURL, &sub.PeriodPush,
		&nextDue, &emailFor, &hook, &created, &updated,
		&sub.User.Username, &sub.User.Email,
		&sub.City.Name, &sub.City.Country, &sub.City.Lat, &sub.City.Lon,
	)
	if err != nil {
		return models.Subscription{}, err
	}
	sub.User.ID = sub.UserID
	sub.City.ID = sub.CityID
	sub.NextDue = fromNullUnix(nextDue)
	sub.EmailSentFor = fromNullUnix(emailFor)
	sub.WebhookSentFor = fromNullUnix(hook)
	sub.CreatedAt = fromUnix(created)
	sub.UpdatedAt = fromUnix(updated)
	return sub, nil
}
