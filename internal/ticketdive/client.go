package ticketdive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://ticketdive.com"
	UserAgent      = "Mozilla/5.0 (compatible; nextlive-bot/1.0)"
)

// ErrArtistNotFound is returned when the artist page responds 404.
var ErrArtistNotFound = errors.New("ticketdive: artist page does not exist")

// StatusError is any other non-2xx response from the site.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ticketdive: HTTP %d", e.Code)
}

// Client fetches artist pages from TicketDive.
type Client struct {
	http *resty.Client
}

// NewClient creates a Client. baseURL overrides the production site (used by
// tests); a zero timeout leaves the transport default in place.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", UserAgent)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}

	return &Client{http: c}
}

// FetchArtistPage GETs /artist/{externalID} and returns the response body as
// text. 404 maps to ErrArtistNotFound, any other non-2xx to a StatusError.
func (c *Client) FetchArtistPage(ctx context.Context, externalID string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/artist/" + url.PathEscape(externalID))
	if err != nil {
		return "", fmt.Errorf("fetching artist page: %w", err)
	}

	code := resp.StatusCode()
	switch {
	case code == http.StatusNotFound:
		return "", ErrArtistNotFound
	case code < 200 || code > 299:
		return "", &StatusError{Code: code}
	}

	return string(resp.Body()), nil
}
