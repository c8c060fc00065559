package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"nextlive/internal/event"
)

const schema = `
CREATE TABLE IF NOT EXISTS artists (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	ticketdive_id TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS events (
	owner_key  TEXT NOT NULL,
	event_name TEXT NOT NULL,
	event_date TEXT NOT NULL,
	venue_name TEXT NOT NULL,
	event_url  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_owner ON events(owner_key);
`

// Artist is an owner record. TicketDiveID is the external identifier used to
// build the artist page URL; artists without one are skipped by the
// refresher.
type Artist struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TicketDiveID string `json:"ticketdive_id"`
}

// StoredEvent is the persisted next event for an owner.
type StoredEvent struct {
	OwnerKey string `json:"owner_key"`
	Name     string `json:"event_name"`
	Date     string `json:"event_date"`
	Venue    string `json:"venue_name"`
	URL      string `json:"event_url"`
}

// Store wraps the database handle.
type Store struct {
	db *sql.DB
}

// Open connects to the database. URLs with a libsql/https/wss scheme go
// through the libsql driver (authToken appended when set); anything else is
// treated as a local sqlite file path.
func Open(databaseURL, authToken string) (*Store, error) {
	if databaseURL == "" {
		return nil, errors.New("database URL is required")
	}

	driver := "sqlite"
	dsn := databaseURL
	if strings.HasPrefix(databaseURL, "libsql://") ||
		strings.HasPrefix(databaseURL, "https://") ||
		strings.HasPrefix(databaseURL, "wss://") {
		driver = "libsql"
		if authToken != "" {
			dsn = fmt.Sprintf("%s?authToken=%s", databaseURL, authToken)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle. Tests use this with an in-memory
// sqlite database.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Init creates the schema if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertArtist inserts or replaces an artist record.
func (s *Store) UpsertArtist(ctx context.Context, a Artist) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artists (id, name, ticketdive_id) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, ticketdive_id = excluded.ticketdive_id`,
		a.ID, a.Name, a.TicketDiveID)
	if err != nil {
		return fmt.Errorf("upserting artist %s: %w", a.ID, err)
	}
	return nil
}

// ListTicketDiveArtists returns every artist that has a TicketDive
// identifier, in id order.
func (s *Store) ListTicketDiveArtists(ctx context.Context) ([]Artist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, ticketdive_id FROM artists WHERE ticketdive_id != '' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing artists: %w", err)
	}
	defer rows.Close()

	var artists []Artist
	for rows.Next() {
		var a Artist
		if err := rows.Scan(&a.ID, &a.Name, &a.TicketDiveID); err != nil {
			return nil, fmt.Errorf("scanning artist: %w", err)
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

// NextEvent returns the stored next event for an owner, or nil when there is
// none.
func (s *Store) NextEvent(ctx context.Context, ownerKey string) (*StoredEvent, error) {
	var e StoredEvent
	err := s.db.QueryRowContext(ctx,
		`SELECT owner_key, event_name, event_date, venue_name, event_url
		 FROM events WHERE owner_key = ? LIMIT 1`, ownerKey).
		Scan(&e.OwnerKey, &e.Name, &e.Date, &e.Venue, &e.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading next event for %s: %w", ownerKey, err)
	}
	return &e, nil
}

// ReplaceNextEvent deletes every event row for the owner and, when next is
// non-nil, inserts the single replacement. Both steps run in one
// transaction so readers never observe a half-applied refresh.
func (s *Store) ReplaceNextEvent(ctx context.Context, ownerKey string, next *event.Candidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM events WHERE owner_key = ?`, ownerKey); err != nil {
		return fmt.Errorf("deleting events for %s: %w", ownerKey, err)
	}

	if next != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events (owner_key, event_name, event_date, venue_name, event_url)
			 VALUES (?, ?, ?, ?, ?)`,
			ownerKey, next.Name, next.Date, next.Venue, next.URL); err != nil {
			return fmt.Errorf("inserting event for %s: %w", ownerKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing replace for %s: %w", ownerKey, err)
	}
	return nil
}

// ListNextEvents returns every stored next event joined with its artist
// name, ordered by event date. Used by the calendar feed.
func (s *Store) ListNextEvents(ctx context.Context) ([]NextEventRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.owner_key, e.event_name, e.event_date, e.venue_name, e.event_url, a.name
		 FROM events e LEFT JOIN artists a ON a.id = e.owner_key
		 ORDER BY e.event_date`)
	if err != nil {
		return nil, fmt.Errorf("listing next events: %w", err)
	}
	defer rows.Close()

	var out []NextEventRow
	for rows.Next() {
		var r NextEventRow
		var artistName sql.NullString
		if err := rows.Scan(&r.Event.OwnerKey, &r.Event.Name, &r.Event.Date,
			&r.Event.Venue, &r.Event.URL, &artistName); err != nil {
			return nil, fmt.Errorf("scanning next event: %w", err)
		}
		r.ArtistName = artistName.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// NextEventRow pairs a stored event with its artist's display name.
type NextEventRow struct {
	Event      StoredEvent `json:"event"`
	ArtistName string      `json:"artist_name"`
}
