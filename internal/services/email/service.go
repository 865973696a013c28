package email

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

//go:embed templates/*
var templatesFS embed.FS

const htmlHeaders = "MIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\""

type Emailer interface {
	Send(to, subject, additionalHeaders, body string) error
}

type Service struct {
	emailer  Emailer
	baseURL  string
	confirm  *htmltemplate.Template
	forecast *texttemplate.Template
}

func NewService(emailer Emailer, baseURL string) *Service {
	return &Service{
		emailer:  emailer,
		baseURL:  strings.TrimRight(baseURL, "/"),
		confirm:  htmltemplate.Must(htmltemplate.ParseFS(templatesFS, "templates/confirm_email.html")),
		forecast: texttemplate.Must(texttemplate.ParseFS(templatesFS, "templates/weather.txt")),
	}
}

func (e *Service) SendConfirmation(user models.User) error {
	var body bytes.Buffer
	err := e.confirm.Execute(&body, map[string]string{
		"Username": user.Username,
		"Link":     e.baseURL + "/api/verify/" + user.VerifyToken,
	})
	if err != nil {
		return err
	}

	return e.emailer.Send(user.Email, "Confirm your email", htmlHeaders, body.String())
}

// SendWeather mails the reading to the subscriber. The subject names the city.
func (e *Service) SendWeather(user models.User, city models.City, reading models.Reading) error {
	var body bytes.Buffer
	err := e.forecast.Execute(&body, map[string]any{
		"Username":    user.Username,
		"City":        city.Name,
		"Temperature": reading.Temperature,
		"FeelsLike":   reading.FeelsLike,
		"Humidity":    reading.Humidity,
	})
	if err != nil {
		return err
	}

	return e.emailer.Send(user.Email, "Weather in: "+city.Name, "", body.String())
}
