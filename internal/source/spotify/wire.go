package spotify

import "github.com/KarlieKKY/spotify-discovery-analyzer/internal/insight"

type spotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

type spotifyTrack struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type topArtistsPage struct {
	Items []spotifyArtist `json:"items"`
	Total int             `json:"total"`
}

type topTracksPage struct {
	Items []spotifyTrack `json:"items"`
	Total int            `json:"total"`
}

// toArtists keeps a nil Genres when the field was absent so that the engine
// can reject the record.
func (p topArtistsPage) toArtists() []insight.Artist {
	out := make([]insight.Artist, 0, len(p.Items))
	for _, a := range p.Items {
		out = append(out, insight.Artist{ID: a.ID, Name: a.Name, Genres: a.Genres})
	}
	return out
}

func (p topTracksPage) toTracks() []insight.Track {
	out := make([]insight.Track, 0, len(p.Items))
	for _, t := range p.Items {
		out = append(out, insight.Track{ID: t.ID})
	}
	return out
}
