//go:build unit

package email_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Nazarious-ucu/weather-push-api/internal/models"
	"github.com/Nazarious-ucu/weather-push-api/internal/services/email"
)

type mockEmailer struct {
	mock.Mock
}

func (m *mockEmailer) Send(to, subject, headers, body string) error {
	args := m.Called(to, subject, headers, body)
	return args.Error(0)
}

var ivan = models.User{ID: 1, Username: "Ivan", Email: "ivan@test.com", VerifyToken: "TOKEN123"}

func TestEmailService_SendConfirmation(t *testing.T) {
	cases := []struct {
		name    string
		sendErr error
	}{
		{"success", nil},
		{"mailer error", errors.New("send failed")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &mockEmailer{}
			m.On("Send", "ivan@test.com", "Confirm your email", mock.Anything,
				mock.MatchedBy(func(body string) bool {
					return assert.Contains(t, body, "http://localhost:8080/api/verify/TOKEN123")
				})).Return(tc.sendErr).Once()
			t.Cleanup(func() { m.AssertExpectations(t) })

			svc := email.NewService(m, "http://localhost:8080/")
			err := svc.SendConfirmation(ivan)
			assert.ErrorIs(t, err, tc.sendErr)
		})
	}
}

func TestEmailService_SendWeather(t *testing.T) {
	m := &mockEmailer{}
	m.On("Send", "ivan@test.com", "Weather in: Kyiv", "",
		mock.MatchedBy(func(body string) bool {
			return assert.Contains(t, body, "Ivan") &&
				assert.Contains(t, body, "Kyiv") &&
				assert.Contains(t, body, "Temperature: 21.5°C") &&
				assert.Contains(t, body, "Feels like: 19.0°C") &&
				assert.Contains(t, body, "Humidity: 55%")
		})).Return(nil).Once()
	t.Cleanup(func() { m.AssertExpectations(t) })

	svc := email.NewService(m, "http://localhost:8080")
	err := svc.SendWeather(ivan,
		models.City{ID: 1, Name: "Kyiv", Country: "UA"},
		models.Reading{Temperature: 21.5, FeelsLike: 19, Humidity: 55})
	assert.NoError(t, err)
}
