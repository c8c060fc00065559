package notifier

import (
	"context"

	"nextlive/internal/event"
	"nextlive/internal/logger"
)

// DryRunNotifier logs announcements instead of posting them.
type DryRunNotifier struct{}

// NewDryRunNotifier creates a dry-run notifier.
func NewDryRunNotifier() *DryRunNotifier {
	return &DryRunNotifier{}
}

// NextEventChanged logs what would have been posted.
func (n *DryRunNotifier) NextEventChanged(_ context.Context, artistName string, next *event.Candidate) error {
	logger.Info("dry-run announcement", logger.Fields{
		"artist": artistName,
		"text":   formatAnnouncement(artistName, next),
	})
	return nil
}
