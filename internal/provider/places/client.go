// Package places provides the Google Places text-search client used by the
// fetch stage. It returns typed errors distinguishing timeout, quota,
// access-denied, upstream and no-results failures.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"leadscout_backend/internal/quality"
	"leadscout_backend/platform/config"
	"leadscout_backend/platform/logger"

	"golang.org/x/time/rate"
)

const (
	searchPath     = "/places:searchText"
	maxPageSize    = 20
	requestBurst   = 2
	responseFields = "places.id,places.displayName,places.formattedAddress,places.addressComponents," +
		"places.nationalPhoneNumber,places.internationalPhoneNumber,places.websiteUri," +
		"places.rating,places.userRatingCount,places.primaryTypeDisplayName,places.regularOpeningHours"
)

// Client calls the Places text-search API with a client-side request throttle.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	log        *logger.Logger
}

// New creates a Places client from provider configuration.
func New(cfg config.ProviderConfig, log *logger.Logger) *Client {
	rps := cfg.GetPlacesRequestsPerSecond()
	if rps <= 0 {
		rps = 1
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetPlacesTimeout()},
		limiter:    rate.NewLimiter(rate.Limit(rps), requestBurst),
		baseURL:    cfg.GetPlacesBaseURL(),
		apiKey:     cfg.GetPlacesAPIKey(),
		log:        log,
	}
}

type searchRequest struct {
	TextQuery      string `json:"textQuery"`
	MaxResultCount int    `json:"maxResultCount"`
}

// Search runs a text search and maps the response onto provider-shaped raw
// records. Requests above the page size are capped; pagination is not needed
// because tier caps keep requested limits below the provider maximum per run.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]quality.RawRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, newError(KindTimeout, "rate limiter wait aborted", err)
	}

	pageSize := maxResults
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	body, err := json.Marshal(searchRequest{TextQuery: query, MaxResultCount: pageSize})
	if err != nil {
		return nil, newError(KindUpstream, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, newError(KindUpstream, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", responseFields)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, newError(KindUpstream, "decode response", err)
	}

	if len(parsed.Places) == 0 {
		return nil, newError(KindNoResults, fmt.Sprintf("no places matched %q", query), nil)
	}

	records := make([]quality.RawRecord, 0, len(parsed.Places))
	for _, place := range parsed.Places {
		records = append(records, mapPlace(place, time.Now().UTC()))
	}

	c.log.Debug("places search completed", "query", query, "results", len(records))
	return records, nil
}

func classifyTransportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, "request deadline exceeded", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(KindTimeout, "transport timeout", err)
	}

	return newError(KindUpstream, "request failed", err)
}

func classifyStatus(resp *http.Response) *Error {
	// Body is read for the message only; failures here fall back to the status text.
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	message := fmt.Sprintf("status %d: %s", resp.StatusCode, string(snippet))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return newError(KindQuotaExceeded, message, nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return newError(KindAccessDenied, message, nil)
	case resp.StatusCode >= 500:
		return newError(KindUpstream, message, nil)
	default:
		return newError(KindUpstream, message, nil)
	}
}
