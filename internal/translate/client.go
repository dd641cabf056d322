// Package translate wraps the LibreTranslate-compatible translation upstream.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/neuroforge/telegram-morph-bot/internal/platform/observability"
)

const (
	defaultTimeout = 10 * time.Second
	defaultRPS     = 5

	translatePath  = "/translate"
	sourceLanguage = "en"

	headerContentType   = "Content-Type"
	contentTypeJSON     = "application/json"
	logFieldTargetLang  = "target"
	msgTranslateFailure = "translation failed, keeping original text"
)

// ErrEmptyTranslation marks a success response without a translatedText field.
var ErrEmptyTranslation = errors.New("translate response missing translatedText")

// APIError reports a non-success response from the translation upstream.
type APIError struct {
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("translate upstream status %d", e.Status)
}

// Config holds configuration for the translation client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	RPS     float64
}

// Client performs translation calls. At most one upstream call per invocation:
// no retry, no backoff, no caching, so latency on the interactive path stays
// bounded by the HTTP timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zerolog.Logger
}

func New(cfg Config, logger *zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rps := cfg.RPS
	if rps <= 0 {
		rps = defaultRPS
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}
}

type translateRequest struct {
	Query  string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"` //nolint:tagliatelle // LibreTranslate API uses camelCase
}

// Do performs a single translation call and surfaces failures to the caller.
// Empty input returns unchanged without a network call.
func (c *Client) Do(ctx context.Context, text, target string) (string, error) {
	if text == "" {
		return text, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("translate rate wait: %w", err)
	}

	body, err := json.Marshal(translateRequest{Query: text, Source: sourceLanguage, Target: target})
	if err != nil {
		return "", fmt.Errorf("encode translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+translatePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create translate request: %w", err)
	}

	req.Header.Set(headerContentType, contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Status: resp.StatusCode}
	}

	var parsed translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}

	if parsed.TranslatedText == "" {
		return "", ErrEmptyTranslation
	}

	return parsed.TranslatedText, nil
}

// Translate never fails: on any upstream error the input is returned
// unchanged, so callers can attach markers uniformly regardless of
// translation success.
func (c *Client) Translate(ctx context.Context, text, target string) string {
	if text == "" {
		return text
	}

	out, err := c.Do(ctx, text, target)
	if err != nil {
		observability.TranslationsTotal.WithLabelValues(observability.StatusFailed).Inc()
		c.logger.Warn().Err(err).Str(logFieldTargetLang, target).Msg(msgTranslateFailure)

		return text
	}

	observability.TranslationsTotal.WithLabelValues(observability.StatusOK).Inc()

	return out
}
