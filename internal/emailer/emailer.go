package emailer

import (
	"net/smtp"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/config"
)

// SMTPService wraps smtp.SendMail with structured logging.
type SMTPService struct {
	user     string
	host     string
	port     string
	password string
	From     string
	logger   zerolog.Logger
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPService(cfg config.Email, logger zerolog.Logger) *SMTPService {
	logger = logger.With().Str("component", "SMTPService").Logger()
	return &SMTPService{
		user:     cfg.User,
		host:     cfg.Host,
		port:     cfg.Port,
		password: cfg.Password,
		From:     cfg.From,
		logger:   logger,
		send:     smtp.SendMail,
	}
}

// Send delivers one message. additionalHeaders is inserted verbatim after the subject line.
func (e *SMTPService) Send(to, subject, additionalHeaders, body string) error {
	start := time.Now()
	e.logger.Debug().
		Str("to", to).
		Str("subject", subject).
		Msg("sending email")

	auth := smtp.PlainAuth("", e.user, e.password, e.host)
	msg := "From: " + e.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n"
	if additionalHeaders != "" {
		msg += additionalHeaders + "\r\n"
	}
	msg += "\r\n" + body

	err := e.send(e.host+":"+e.port, auth, e.From, []string{to}, []byte(msg))
	duration := time.Since(start)

	if err != nil {
		e.logger.Error().
			Err(err).
			Str("to", to).
			Str("subject", subject).
			Dur("duration", duration).
			Msg("email send failed")
		return err
	}

	e.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Dur("duration", duration).
		Msg("email sent successfully")
	return nil
}
