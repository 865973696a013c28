package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
	"github.com/Nazarious-ucu/weather-push-api/internal/models"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Sender makes one best-effort POST of the weather payload to a subscriber URL.
// Only transport failures are errors; a non-2xx reply is logged and counted as rejected.
type Sender struct {
	client HTTPClient
	logger zerolog.Logger
	m      *metrics.Metrics
}

func NewSender(client HTTPClient, logger zerolog.Logger, m *metrics.Metrics) *Sender {
	return &Sender{client: client, logger: logger.With().Str("component", "WebhookSender").Logger(), m: m}
}

func (s *Sender) Send(ctx context.Context, url string, payload models.WeatherPayload) error {
	start := time.Now()

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().Ctx(ctx).Err(err).Str("url", url).Msg("webhook request failed")
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Error().Err(cerr).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		s.logger.Warn().Ctx(ctx).Str("url", url).Str("status", resp.Status).Msg("webhook rejected")
		s.m.NotificationsSent.WithLabelValues("webhook", "rejected").Inc()
		return nil
	}

	s.logger.Info().
		Ctx(ctx).
		Str("url", url).
		Dur("duration", time.Since(start)).
		Msg("webhook delivered")
	return nil
}
