package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/insight"
)

// Snapshot is one cached fetch of a user's three listening windows.
type Snapshot struct {
	ID        string
	User      string
	Source    string
	FetchedAt time.Time
	Listening insight.Listening
}

// GetToken returns the user's stored credential, or a zero Token if there is
// none.
func (s *Store) GetToken(user string) (Token, error) {
	row := s.db.QueryRow("SELECT access_token, refresh_token, token_type, token_expiry FROM User WHERE name = ?", user)
	var tok Token
	var expiry sql.NullTime
	err := row.Scan(&tok.AccessToken, &tok.RefreshToken, &tok.TokenType, &expiry)
	if err == sql.ErrNoRows {
		return Token{}, nil
	}
	if err != nil {
		return Token{}, fmt.Errorf("getting token: %w", err)
	}
	tok.Expiry = expiry.Time
	return tok, nil
}

func (s *Store) GetLastUpdated(user string) (time.Time, error) {
	row := s.db.QueryRow("SELECT last_updated FROM User WHERE name = ?", user)
	var t sql.NullTime
	err := row.Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("getting last updated: %w", err)
	}
	return t.Time, nil
}

// LatestSnapshot loads the most recently fetched snapshot for user.
func (s *Store) LatestSnapshot(user string) (Snapshot, error) {
	row := s.db.QueryRow("SELECT id, source, fetched_at FROM Snapshot WHERE user = ? ORDER BY fetched_at DESC LIMIT 1", user)
	snap := Snapshot{User: user}
	err := row.Scan(&snap.ID, &snap.Source, &snap.FetchedAt)
	if err == sql.ErrNoRows {
		return Snapshot{}, fmt.Errorf("%w for %q", ErrNoSnapshot, user)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("getting latest snapshot: %w", err)
	}

	if err := s.loadArtists(&snap); err != nil {
		return Snapshot{}, err
	}
	if err := s.loadGenres(&snap); err != nil {
		return Snapshot{}, err
	}
	if err := s.loadTracks(&snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) loadArtists(snap *Snapshot) error {
	rows, err := s.db.Query("SELECT time_range, artist_id, name FROM SnapshotArtist WHERE snapshot = ? ORDER BY time_range, position", snap.ID)
	if err != nil {
		return fmt.Errorf("loading artists: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var timeRange string
		// Genre rows are optional; an artist without any still has genre data.
		a := insight.Artist{Genres: []string{}}
		if err := rows.Scan(&timeRange, &a.ID, &a.Name); err != nil {
			return fmt.Errorf("scanning artist: %w", err)
		}
		data, err := windowData(snap, timeRange)
		if err != nil {
			return err
		}
		data.Artists = append(data.Artists, a)
	}
	return rows.Err()
}

func (s *Store) loadGenres(snap *Snapshot) error {
	rows, err := s.db.Query("SELECT time_range, position, genre FROM SnapshotArtistGenre WHERE snapshot = ? ORDER BY time_range, position, genre_position", snap.ID)
	if err != nil {
		return fmt.Errorf("loading genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var timeRange, genre string
		var position int
		if err := rows.Scan(&timeRange, &position, &genre); err != nil {
			return fmt.Errorf("scanning genre: %w", err)
		}
		data, err := windowData(snap, timeRange)
		if err != nil {
			return err
		}
		if position >= len(data.Artists) {
			return fmt.Errorf("genre %q refers to missing %s artist #%d", genre, timeRange, position)
		}
		data.Artists[position].Genres = append(data.Artists[position].Genres, genre)
	}
	return rows.Err()
}

func (s *Store) loadTracks(snap *Snapshot) error {
	rows, err := s.db.Query("SELECT time_range, track_id FROM SnapshotTrack WHERE snapshot = ? ORDER BY time_range, position", snap.ID)
	if err != nil {
		return fmt.Errorf("loading tracks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var timeRange string
		var t insight.Track
		if err := rows.Scan(&timeRange, &t.ID); err != nil {
			return fmt.Errorf("scanning track: %w", err)
		}
		data, err := windowData(snap, timeRange)
		if err != nil {
			return err
		}
		data.Tracks = append(data.Tracks, t)
	}
	return rows.Err()
}

func windowData(snap *Snapshot, timeRange string) (*insight.WindowData, error) {
	w, ok := insight.ParseWindow(timeRange)
	if !ok {
		return nil, fmt.Errorf("snapshot %s: unknown time range %q", snap.ID, timeRange)
	}
	return snap.Listening.Window(w), nil
}

// SnapshotSummary describes a stored snapshot without loading its contents.
type SnapshotSummary struct {
	ID        string
	User      string
	Source    string
	FetchedAt time.Time
	Artists   int
	Tracks    int
}

// ListSnapshots returns the stored snapshots, newest first. An empty user
// lists every user's snapshots.
func (s *Store) ListSnapshots(user string) ([]SnapshotSummary, error) {
	query := `SELECT s.id, s.user, s.source, s.fetched_at,
  (SELECT COUNT(*) FROM SnapshotArtist a WHERE a.snapshot = s.id),
  (SELECT COUNT(*) FROM SnapshotTrack t WHERE t.snapshot = s.id)
FROM Snapshot s`
	var args []interface{}
	if user != "" {
		query += " WHERE s.user = ?"
		args = append(args, user)
	}
	query += " ORDER BY s.fetched_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []SnapshotSummary
	for rows.Next() {
		var snap SnapshotSummary
		if err := rows.Scan(&snap.ID, &snap.User, &snap.Source, &snap.FetchedAt, &snap.Artists, &snap.Tracks); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
