package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/insight"
	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/store"
)

func createTestDb(t *testing.T) (*store.Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "insights.db")

	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New(%s) error: %v", dbPath, err)
	}
	t.Cleanup(func() { db.Close() })

	return db, dbPath
}

// testListening has one artist kept from the long window and one new one.
func testListening() insight.Listening {
	return insight.Listening{
		Recent: insight.WindowData{
			Artists: []insight.Artist{
				{ID: "a1", Name: "Simon & Garfunkel", Genres: []string{"folk", "folk rock"}},
				{ID: "a2", Name: "Alvvays", Genres: []string{"indie pop"}},
			},
			Tracks: []insight.Track{{ID: "t1"}, {ID: "t2"}},
		},
		Medium: insight.WindowData{
			Artists: []insight.Artist{{ID: "a1", Name: "Simon & Garfunkel", Genres: []string{"folk"}}},
			Tracks:  []insight.Track{{ID: "t1"}},
		},
		Long: insight.WindowData{
			Artists: []insight.Artist{
				{ID: "a1", Name: "Simon & Garfunkel", Genres: []string{"folk"}},
				{ID: "a3", Name: "Nick Drake", Genres: []string{}},
			},
			Tracks: []insight.Track{{ID: "t1"}, {ID: "t3"}, {ID: "t4"}},
		},
	}
}

type fakeProvider struct {
	listening insight.Listening
	err       error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) TopArtists(ctx context.Context, w insight.Window) ([]insight.Artist, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listening.Window(w).Artists, nil
}

func (f *fakeProvider) TopTracks(ctx context.Context, w insight.Window) ([]insight.Track, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listening.Window(w).Tracks, nil
}
