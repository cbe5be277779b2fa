package insight

import "math"

const (
	periodRecent  = "Last 4 weeks"
	periodMedium  = "Last 6 months"
	periodAllTime = "All time"
	periodOverall = "Overall"
)

// analyzeTrends reports track volume per window. NewArtistCount repeats the
// window's track count; it is not a discovery metric.
func analyzeTrends(l *Listening) ([]TrendPoint, string) {
	labels := [...]string{periodRecent, periodMedium, periodAllTime}

	trends := make([]TrendPoint, 0, len(Windows))
	for i, w := range Windows {
		n := len(l.Window(w).Tracks)
		trends = append(trends, TrendPoint{
			Period:         labels[i],
			TrackCount:     n,
			NewArtistCount: n,
		})
	}
	return trends, periodRecent
}

// analyzeDiscovery reports, per window, the share of artists missing from the
// next longer window. The overall entry divides the recent discoveries by the
// long window size, and its NewArtists is the mean of the recent and medium
// window sizes.
func analyzeDiscovery(l *Listening) []DiscoveryPoint {
	recent := idSet(l.Recent.Artists)
	medium := idSet(l.Medium.Artists)
	long := idSet(l.Long.Artists)

	recentNew := recent.without(medium)
	mediumNew := medium.without(long)

	return []DiscoveryPoint{
		{Period: periodRecent, DiscoveryRate: percent(recentNew, len(recent)), NewArtists: recentNew},
		{Period: periodMedium, DiscoveryRate: percent(mediumNew, len(medium)), NewArtists: mediumNew},
		{
			Period:        periodOverall,
			DiscoveryRate: percent(recentNew, len(long)),
			NewArtists:    int(math.Round(float64(len(recent)+len(medium)) / 2)),
		},
	}
}

const (
	mediumDominanceFactor = 1.5
	diversityHigh         = 60
	diversityLow          = 40
	comfortThreshold      = 70
	adventureThreshold    = 30
)

// analyzeHabits derives qualitative labels from window sizes, the diversity
// score and the recent/long overlap.
func analyzeHabits(l *Listening, diversity int) ListeningHabits {
	habits := ListeningHabits{
		MostActiveTimeRange: "Recent weeks",
		DiversityTrend:      DiversityStable,
		ExplorationPattern:  PatternBalanced,
	}

	if float64(len(l.Medium.Artists)) > float64(len(l.Recent.Artists))*mediumDominanceFactor {
		habits.MostActiveTimeRange = "Past 6 months"
	}

	switch {
	case diversity > diversityHigh:
		habits.DiversityTrend = DiversityIncreasing
	case diversity < diversityLow:
		habits.DiversityTrend = DiversityDecreasing
	}

	overlap := overlapRatio(idSet(l.Recent.Artists), idSet(l.Long.Artists))
	switch {
	case overlap > comfortThreshold:
		habits.ExplorationPattern = PatternComfortZone
	case overlap < adventureThreshold:
		habits.ExplorationPattern = PatternAdventurous
	}

	return habits
}
