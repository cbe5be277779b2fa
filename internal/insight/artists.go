package insight

const (
	maxRecentHighlights = 5
	maxLongHighlights   = 3
)

type artistPattern struct {
	topArtists   []ArtistHighlight
	loyaltyScore int
	newArtists   int
}

// analyzeArtists compares the recent and long windows by artist identity. The
// medium window plays no part.
func analyzeArtists(l *Listening) artistPattern {
	recent := idSet(l.Recent.Artists)
	long := idSet(l.Long.Artists)

	return artistPattern{
		topArtists:   highlights(l.Recent.Artists, l.Long.Artists),
		loyaltyScore: percent(recent.overlap(long), len(recent)),
		newArtists:   recent.without(long),
	}
}

// highlights lists the leading recent artists followed by the leading long
// artists. An artist in both groups is listed twice.
func highlights(recent, long []Artist) []ArtistHighlight {
	out := make([]ArtistHighlight, 0, maxRecentHighlights+maxLongHighlights)
	for i, a := range recent {
		if i == maxRecentHighlights {
			break
		}
		out = append(out, ArtistHighlight{Name: a.Name, PlayCount: "Recent favorite", TimeRange: "Last 4 weeks"})
	}
	for i, a := range long {
		if i == maxLongHighlights {
			break
		}
		out = append(out, ArtistHighlight{Name: a.Name, PlayCount: "All-time favorite", TimeRange: "Long-term"})
	}
	return out
}

type exploration struct {
	comfortZone int
	score       int
}

// analyzeExploration measures how much recent listening stays with artists
// from the long window. It shares the overlap definition with analyzeArtists
// but is reported separately.
func analyzeExploration(l *Listening) exploration {
	recent := idSet(l.Recent.Artists)
	comfort := percent(recent.overlap(idSet(l.Long.Artists)), len(recent))
	return exploration{
		comfortZone: comfort,
		score:       100 - comfort,
	}
}
