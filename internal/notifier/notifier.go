// Package notifier announces next-event changes discovered during a refresh.
//
// Notifications are strictly best-effort: a failed announcement never
// changes the outcome of the refresh that triggered it.
package notifier

import (
	"context"
	"fmt"
	"unicode/utf8"

	"nextlive/internal/event"
)

// Notifier receives the newly selected next event for an artist whenever it
// differs from the previously stored one.
type Notifier interface {
	NextEventChanged(ctx context.Context, artistName string, next *event.Candidate) error
}

// formatAnnouncement renders the post body for a changed next event.
func formatAnnouncement(artistName string, next *event.Candidate) string {
	text := fmt.Sprintf("【ライブ情報】%s\n%s\n", artistName, next.Name)
	text += fmt.Sprintf("📅 %s\n", next.Date)
	text += fmt.Sprintf("📍 %s\n", next.Venue)
	text += next.URL

	// Twitter counts characters, not bytes.
	if utf8.RuneCountInString(text) > 280 {
		runes := []rune(text)
		text = string(runes[:277]) + "..."
	}
	return text
}
