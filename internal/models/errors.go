package models

import "errors"

var (
	ErrCityNotFound         = errors.New("city not found")
	ErrProvider             = errors.New("weather service error")
	ErrReadingNotFound      = errors.New("reading not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSubscriptionExists   = errors.New("subscription already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
)
