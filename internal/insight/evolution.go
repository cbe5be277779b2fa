package insight

var (
	genreEpochPeriods = [...]string{"Recent", "6 months ago", "Long-term"}
	genreEpochChanges = [...]string{"Current preferences", "Previous focus", "Historical foundation"}

	tasteEpochPeriods = [...]string{"Recently", "6 months ago", "Long-term"}
	tasteEpochChanges = [...]string{"Current focus", "Previous interest", "Historical preference"}
)

// analyzeGenreEvolution ranks each window's genres on their own, keeping the
// top three with their share of that window.
func analyzeGenreEvolution(l *Listening) []GenreEpoch {
	epochs := make([]GenreEpoch, 0, len(Windows))
	for i, w := range Windows {
		table := newGenreTable()
		table.add(l.Window(w).Artists)

		top := table.ranked(maxEpochGenres)
		shares := make([]GenreShare, 0, len(top))
		for _, g := range top {
			shares = append(shares, GenreShare{Genre: g.genre, Percentage: percent(g.count, table.total)})
		}

		epochs = append(epochs, GenreEpoch{
			TimeRange: genreEpochPeriods[i],
			TopGenres: shares,
			Change:    genreEpochChanges[i],
		})
	}
	return epochs
}

func analyzeTasteEvolution(l *Listening) []TasteEpoch {
	epochs := make([]TasteEpoch, 0, len(Windows))
	for i, w := range Windows {
		epochs = append(epochs, TasteEpoch{
			TimeRange:     tasteEpochPeriods[i],
			DominantGenre: topGenre(l.Window(w).Artists),
			Change:        tasteEpochChanges[i],
		})
	}
	return epochs
}
