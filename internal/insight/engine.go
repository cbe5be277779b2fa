// Package insight derives a listening insight report from a listener's top
// artists and tracks over three time windows. It performs no I/O.
package insight

import (
	"fmt"
	"time"
)

// Analyze validates l and builds its report, stamped with the current time.
func Analyze(l Listening) (*Report, error) {
	return AnalyzeAt(l, time.Now())
}

// AnalyzeAt is Analyze with an explicit analysis date. Either the whole report
// is returned or an error; never a partial report.
func AnalyzeAt(l Listening, at time.Time) (*Report, error) {
	if err := Validate(&l); err != nil {
		return nil, fmt.Errorf("analyzing listening: %w", err)
	}

	topGenres, diversity := analyzeGenres(&l)
	artists := analyzeArtists(&l)
	trends, mostActive := analyzeTrends(&l)
	explore := analyzeExploration(&l)

	return &Report{
		TopGenres:           topGenres,
		GenreDiversityScore: diversity,

		TopArtists:           artists.topArtists,
		ArtistLoyaltyScore:   artists.loyaltyScore,
		NewArtistsDiscovered: artists.newArtists,

		ListeningTrends:     trends,
		MostActiveTimeRange: mostActive,

		DiscoveryTimeline: analyzeDiscovery(&l),
		ListeningHabits:   analyzeHabits(&l, diversity),
		GenreEvolution:    analyzeGenreEvolution(&l),

		ExplorationScore:      explore.score,
		ComfortZonePercentage: explore.comfortZone,

		TasteEvolution: analyzeTasteEvolution(&l),

		AnalysisDate:        at,
		TotalTracksAnalyzed: len(l.Recent.Tracks) + len(l.Medium.Tracks) + len(l.Long.Tracks),
	}, nil
}
