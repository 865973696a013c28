package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

func TestSubscriptionRepository_CreateNoDuplicate(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	ivan := r.seedUser(t, "Ivan")
	kyiv := r.seedCity(t, "Kyiv", "UA")

	r.seedSubscription(t, ivan, kyiv, 3)

	dup := models.NewSubscription(ivan.ID, kyiv.ID, models.SubscriptionSettings{}, time.Now())
	assert.ErrorIs(t, r.subs.Create(ctx, &dup), models.ErrSubscriptionExists)

	subs, err := r.subs.ListByUser(ctx, ivan.ID)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestSubscriptionRepository_GetJoinsUserAndCity(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	ivan := r.seedUser(t, "Ivan")
	kyiv := r.seedCity(t, "Kyiv", "UA")

	hook := "https://x.test"
	sub := models.NewSubscription(ivan.ID, kyiv.ID, models.SubscriptionSettings{WebhookURL: &hook}, time.Now())
	sub.ScheduleNext(time.Now())
	require.NoError(t, r.subs.Create(ctx, &sub))

	got, err := r.subs.GetByUserCity(ctx, ivan.ID, kyiv.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, "Ivan", got.User.Username)
	assert.Equal(t, "Ivan@test.com", got.User.Email)
	assert.Equal(t, kyiv, got.City)
	assert.Equal(t, hook, got.WebhookURL)
	assert.True(t, got.EmailPush)
	assert.Equal(t, models.DefaultPeriodPush, got.PeriodPush)
	require.NotNil(t, got.NextDue)
	assert.True(t, sub.NextDue.Equal(*got.NextDue))
	assert.Nil(t, got.EmailSentFor)
}

func TestSubscriptionRepository_UpdateAndDelete(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	ivan := r.seedUser(t, "Ivan")
	kyiv := r.seedCity(t, "Kyiv", "UA")
	sub := r.seedSubscription(t, ivan, kyiv, 3)

	emailOff := false
	period := 1
	sub.Apply(models.SubscriptionSettings{EmailPush: &emailOff, PeriodPush: &period}, time.Now())
	sub.ScheduleNext(time.Now())
	require.NoError(t, r.subs.Update(ctx, sub))

	got, err := r.subs.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.False(t, got.EmailPush)
	assert.Equal(t, 1, got.PeriodPush)
	assert.Empty(t, got.WebhookURL)

	require.NoError(t, r.subs.Delete(ctx, sub.ID))
	_, err = r.subs.GetByUserCity(ctx, ivan.ID, kyiv.ID)
	assert.ErrorIs(t, err, models.ErrSubscriptionNotFound)
	assert.ErrorIs(t, r.subs.Delete(ctx, sub.ID), models.ErrSubscriptionNotFound)
}

func TestSubscriptionRepository_ListDueIDs(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	ivan := r.seedUser(t, "Ivan")
	now := time.Now()

	due := r.seedSubscription(t, ivan, r.seedCity(t, "Kyiv", "UA"), 1)
	require.NoError(t, r.subs.ScheduleNext(ctx, due.ID, now.Add(-time.Minute)))

	exact := r.seedSubscription(t, ivan, r.seedCity(t, "Lviv", "UA"), 1)
	require.NoError(t, r.subs.ScheduleNext(ctx, exact.ID, now))

	future := r.seedSubscription(t, ivan, r.seedCity(t, "Odesa", "UA"), 1)
	require.NoError(t, r.subs.ScheduleNext(ctx, future.ID, now.Add(time.Hour)))

	r.seedSubscription(t, ivan, r.seedCity(t, "Dnipro", "UA"), 1) // never scheduled

	ids, err := r.subs.ListDueIDs(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []int64{due.ID, exact.ID}, ids)
}

func TestSubscriptionRepository_MarkSent(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	sub := r.seedSubscription(t, r.seedUser(t, "Ivan"), r.seedCity(t, "Kyiv", "UA"), 3)

	cycle := time.Now().Add(time.Hour)
	require.NoError(t, r.subs.ScheduleNext(ctx, sub.ID, cycle))

	loaded, err := r.subs.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	require.NoError(t, r.subs.MarkEmailSent(ctx, sub.ID, *loaded.Cycle()))

	got, err := r.subs.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailDelivered(got.Cycle()))
	assert.False(t, got.WebhookDelivered(got.Cycle()))

	require.NoError(t, r.subs.MarkWebhookSent(ctx, sub.ID, *loaded.Cycle()))
	got, err = r.subs.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, got.WebhookDelivered(got.Cycle()))

	assert.ErrorIs(t, r.subs.ScheduleNext(ctx, sub.ID+100, cycle), models.ErrSubscriptionNotFound)
}
