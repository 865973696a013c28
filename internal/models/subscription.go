package models

import "time"

const (
	DefaultPeriodPush = 12
	DefaultEmailPush  = true
)

// Subscription is a user's standing request for periodic weather updates for one city.
type Subscription struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"-"`
	CityID     int64      `json:"-"`
	User       User       `json:"-"`
	City       City       `json:"city"`
	EmailPush  bool       `json:"email_push"`
	WebhookURL string     `json:"webhook_url"`
	PeriodPush int        `json:"period_push"`
	NextDue    *time.Time `json:"next_due"`

	// EmailSentFor and WebhookSentFor hold the NextDue value of the cycle
	// the channel was last delivered for.
	EmailSentFor   *time.Time `json:"-"`
	WebhookSentFor *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSubscription(userID, cityID int64, settings SubscriptionSettings, now time.Time) Subscription {
	s := Subscription{
		UserID:    userID,
		CityID:    cityID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.setSettings(settings)
	return s
}

// Apply replaces delivery settings; omitted fields fall back to defaults.
func (s *Subscription) Apply(settings SubscriptionSettings, now time.Time) {
	s.setSettings(settings)
	s.UpdatedAt = now
}

// ScheduleNext moves NextDue to now + PeriodPush hours and returns it.
func (s *Subscription) ScheduleNext(now time.Time) time.Time {
	next := now.Add(time.Duration(s.PeriodPush) * time.Hour)
	s.NextDue = &next
	return next
}

// Cycle identifies the delivery cycle the subscription is currently in.
func (s *Subscription) Cycle() *time.Time {
	return s.NextDue
}

func (s *Subscription) EmailDelivered(cycle *time.Time) bool {
	return sameCycle(s.EmailSentFor, cycle)
}

func (s *Subscription) WebhookDelivered(cycle *time.Time) bool {
	return sameCycle(s.WebhookSentFor, cycle)
}

func (s *Subscription) setSettings(settings SubscriptionSettings) {
	s.EmailPush = DefaultEmailPush
	if settings.EmailPush != nil {
		s.EmailPush = *settings.EmailPush
	}

	s.WebhookURL = ""
	if settings.WebhookURL != nil {
		s.WebhookURL = *settings.WebhookURL
	}

	s.PeriodPush = DefaultPeriodPush
	if settings.PeriodPush != nil {
		s.PeriodPush = *settings.PeriodPush
	}
}

// an unscheduled cycle is never considered delivered
func sameCycle(sent, cycle *time.Time) bool {
	if sent == nil || cycle == nil {
		return false
	}
	return sent.Equal(*cycle)
}
