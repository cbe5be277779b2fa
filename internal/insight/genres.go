package insight

import "math"

const (
	maxTopGenres      = 10
	maxEpochGenres    = 3
	diversityScale    = 20
	maxDiversityScore = 100
)

// analyzeGenres ranks genres across all three windows and scores how evenly
// listening is spread over them. An artist present in several windows counts
// once per window.
func analyzeGenres(l *Listening) ([]GenreStat, int) {
	table := newGenreTable()
	for _, w := range Windows {
		table.add(l.Window(w).Artists)
	}

	top := table.ranked(maxTopGenres)
	stats := make([]GenreStat, 0, len(top))
	for _, g := range top {
		stats = append(stats, GenreStat{
			Genre:      g.genre,
			Count:      g.count,
			Percentage: percent(g.count, table.total),
		})
	}

	return stats, diversityScore(table)
}

// diversityScore maps the Shannon entropy of the genre distribution onto
// [0, 100]. The entropy covers every genre, not only the ranked ones.
func diversityScore(t *genreTable) int {
	if t.total == 0 {
		return 0
	}

	entropy := 0.0
	for _, g := range t.entries {
		p := float64(g.count) / float64(t.total)
		entropy -= p * math.Log2(p)
	}

	score := int(math.Round(entropy * diversityScale))
	if score > maxDiversityScore {
		return maxDiversityScore
	}
	return score
}
