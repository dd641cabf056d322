package recon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/neuroforge/telegram-morph-bot/internal/platform/observability"
)

const (
	searchPath = "/shodan/host/search"

	defaultLimit   = 100
	defaultTimeout = 15 * time.Second

	maxErrorBodyLen = 200

	hostURLPrefix = "https://www.shodan.io/host/"
	asnLookupFmt  = "https://mxtoolbox.com/SuperTool.aspx?action=asn%%3a%s&run=toolpage"
)

// ErrMissingAPIKey is returned when a search is attempted without a key
// configured.
var ErrMissingAPIKey = errors.New("search API key not configured")

// APIError reports a non-success response from the search upstream.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("search upstream status %d: %s", e.Status, e.Message)
}

// Config holds configuration for the search client.
type Config struct {
	BaseURL string
	APIKey  string
	Limit   int
	Timeout time.Duration
}

// Client queries the host search API.
type Client struct {
	baseURL    string
	apiKey     string
	limit      int
	httpClient *http.Client
	logger     *zerolog.Logger
}

func New(cfg Config, logger *zerolog.Logger) *Client {
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		limit:   limit,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Configured reports whether the client has an API key and can serve
// searches.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Search runs one host search and returns the raw matches. The caller shapes
// and filters them.
func (c *Client) Search(ctx context.Context, query string) ([]Match, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(c.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.SearchesTotal.WithLabelValues(observability.StatusFailed).Inc()

		return nil, fmt.Errorf("search request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		observability.SearchesTotal.WithLabelValues(observability.StatusFailed).Inc()

		return nil, &APIError{Status: resp.StatusCode, Message: extractErrorMessage(resp.Body)}
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		observability.SearchesTotal.WithLabelValues(observability.StatusFailed).Inc()

		return nil, fmt.Errorf("decode search response: %w", err)
	}

	if len(parsed.Matches) == 0 {
		observability.SearchesTotal.WithLabelValues(observability.StatusEmpty).Inc()

		return nil, nil
	}

	observability.SearchesTotal.WithLabelValues(observability.StatusOK).Inc()
	c.logger.Debug().Str("query", query).Int("matches", len(parsed.Matches)).Int("total", parsed.Total).Msg("search completed")

	return parsed.Matches, nil
}

// extractErrorMessage pulls the upstream's error field out of a failure body,
// falling back to the truncated raw body.
func extractErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodyLen))
	if err != nil {
		return ""
	}

	var parsed apiErrorBody
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}

	return string(raw)
}

// HostURL builds the public host detail page link for an address.
func HostURL(addr string) string {
	return hostURLPrefix + addr
}

// ASNLookupURL builds an external ASN lookup link.
func ASNLookupURL(asn string) string {
	return fmt.Sprintf(asnLookupFmt, url.QueryEscape(asn))
}
