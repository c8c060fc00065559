package notifier

import (
	"context"
	"fmt"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // stable v1.1 API
	"github.com/dghubble/oauth1"

	"nextlive/internal/event"
)

// Credentials holds the four OAuth1 values for a Twitter app + user token.
type Credentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Complete reports whether all four values are set.
func (c Credentials) Complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// TwitterNotifier posts next-event announcements to Twitter.
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a notifier from OAuth1 credentials.
func NewTwitterNotifier(creds Credentials) (*TwitterNotifier, error) {
	if !creds.Complete() {
		return nil, fmt.Errorf("incomplete Twitter credentials")
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := config.Client(oauth1.NoContext, token)

	return &TwitterNotifier{client: twitter.NewClient(httpClient)}, nil
}

// NextEventChanged posts one tweet announcing the new next event.
func (n *TwitterNotifier) NextEventChanged(_ context.Context, artistName string, next *event.Candidate) error {
	text := formatAnnouncement(artistName, next)
	_, _, err := n.client.Statuses.Update(text, nil)
	if err != nil {
		return fmt.Errorf("posting announcement for %s: %w", artistName, err)
	}
	return nil
}
