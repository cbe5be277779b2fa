package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/insight"
)

// Token is a stored upstream credential.
type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
}

// CreateUser ensures a user exists in the database.
func (s *Store) CreateUser(user string) error {
	row := s.db.QueryRow("SELECT name FROM User WHERE name = ?", user)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		_, err := s.db.Exec("INSERT INTO User (name) VALUES (?)", user)
		if err != nil {
			return fmt.Errorf("inserting user %q: %w", user, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking user %q: %w", user, err)
	}
	return nil
}

func (s *Store) SaveToken(user string, tok Token) error {
	if err := s.CreateUser(user); err != nil {
		return err
	}

	var expiry sql.NullTime
	if !tok.Expiry.IsZero() {
		expiry = sql.NullTime{Time: tok.Expiry, Valid: true}
	}
	_, err := s.db.Exec(
		"UPDATE User SET access_token = ?, refresh_token = ?, token_type = ?, token_expiry = ? WHERE name = ?",
		tok.AccessToken, tok.RefreshToken, tok.TokenType, expiry, user)
	if err != nil {
		return fmt.Errorf("saving token for %q: %w", user, err)
	}
	return nil
}

func (s *Store) SetLastUpdated(user string, updated time.Time) error {
	_, err := s.db.Exec("UPDATE User SET last_updated = ? WHERE name = ?", updated, user)
	if err != nil {
		return fmt.Errorf("updating last_updated for %q: %w", user, err)
	}
	return nil
}

// SaveSnapshot stores one fetch of all three windows and returns its id. Rank
// order within each window is kept. Malformed listening data is rejected.
func (s *Store) SaveSnapshot(user, source string, l insight.Listening, fetchedAt time.Time) (string, error) {
	if err := insight.Validate(&l); err != nil {
		return "", fmt.Errorf("saving snapshot: %w", err)
	}
	if err := s.CreateUser(user); err != nil {
		return "", err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.Exec("INSERT INTO Snapshot (id, user, source, fetched_at) VALUES (?, ?, ?, ?)", id, user, source, fetchedAt.UTC())
	if err != nil {
		return "", fmt.Errorf("inserting snapshot: %w", err)
	}

	for _, w := range insight.Windows {
		data := l.Window(w)
		for i, a := range data.Artists {
			if err := createSnapshotArtist(tx, id, w, i, a); err != nil {
				return "", err
			}
		}
		for i, t := range data.Tracks {
			_, err := tx.Exec("INSERT INTO SnapshotTrack (snapshot, time_range, position, track_id) VALUES (?, ?, ?, ?)",
				id, w.String(), i, t.ID)
			if err != nil {
				return "", fmt.Errorf("inserting %s track %q: %w", w, t.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}
	return id, nil
}

func createSnapshotArtist(tx *sql.Tx, snapshot string, w insight.Window, position int, a insight.Artist) error {
	_, err := tx.Exec("INSERT INTO SnapshotArtist (snapshot, time_range, position, artist_id, name) VALUES (?, ?, ?, ?, ?)",
		snapshot, w.String(), position, a.ID, a.Name)
	if err != nil {
		return fmt.Errorf("inserting %s artist %q: %w", w, a.ID, err)
	}

	for j, genre := range a.Genres {
		_, err := tx.Exec("INSERT INTO SnapshotArtistGenre (snapshot, time_range, position, genre_position, genre) VALUES (?, ?, ?, ?, ?)",
			snapshot, w.String(), position, j, genre)
		if err != nil {
			return fmt.Errorf("inserting genre %q for %q: %w", genre, a.ID, err)
		}
	}
	return nil
}

// PruneSnapshots deletes all but the newest keep snapshots of user and
// returns how many were removed.
func (s *Store) PruneSnapshots(user string, keep int) (int64, error) {
	res, err := s.db.Exec(`
		DELETE FROM Snapshot
		WHERE user = ? AND id NOT IN (
			SELECT id FROM Snapshot WHERE user = ? ORDER BY fetched_at DESC LIMIT ?
		)`, user, user, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots for %q: %w", user, err)
	}
	return res.RowsAffected()
}
