package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/tracknarr/tracknarr/internal/config"
)

const dateLayout = "2006-01-02"

// Client handles communication with the TMDB metadata API. The tracking
// core only ever asks it two questions: the next air date of a show and
// the release date of a movie.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new metadata API client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB API key is required")
	}

	return &Client{
		baseURL:    cfg.TMDBBaseURL,
		apiKey:     cfg.TMDBAPIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

// doRequest performs a GET against the metadata API and decodes the JSON
// response into result. Transient failures are retried with exponential
// backoff; whatever survives the retries is returned to the caller.
func (c *Client) doRequest(ctx context.Context, path string, result interface{}) error {
	fullURL := fmt.Sprintf("%s%s?api_key=%s", c.baseURL, path, url.QueryEscape(c.apiKey))

	c.logger.WithField("path", path).Debug("Making metadata API request")

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			bodyBytes, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(bodyBytes)))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
		}

		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}

		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	return backoff.Retry(operation, policy)
}

// FetchShowMinimal returns the next episode air date for a show, or nil when
// the show has no scheduled next episode (ended shows, hiatus).
func (c *Client) FetchShowMinimal(ctx context.Context, id string) (*string, error) {
	var detail showDetail
	if err := c.doRequest(ctx, "/tv/"+url.PathEscape(id), &detail); err != nil {
		return nil, err
	}

	if detail.NextEpisodeToAir == nil {
		return nil, nil
	}
	return validDate(detail.NextEpisodeToAir.AirDate), nil
}

// FetchMovieMinimal returns the release date for a movie, or nil when the
// provider has no date on record.
func (c *Client) FetchMovieMinimal(ctx context.Context, id string) (*string, error) {
	var detail movieDetail
	if err := c.doRequest(ctx, "/movie/"+url.PathEscape(id), &detail); err != nil {
		return nil, err
	}

	return validDate(detail.ReleaseDate), nil
}

// validDate returns a pointer to the date if it parses as YYYY-MM-DD,
// nil otherwise. The provider sends "" for unknown dates.
func validDate(date string) *string {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil
	}
	return &date
}
