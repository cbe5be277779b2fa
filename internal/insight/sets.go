package insight

import (
	"math"
	"sort"
)

// artistSet is the identity set of a window, keyed by artist id.
type artistSet map[string]struct{}

func idSet(artists []Artist) artistSet {
	set := make(artistSet, len(artists))
	for _, a := range artists {
		set[a.ID] = struct{}{}
	}
	return set
}

func (s artistSet) has(id string) bool {
	_, ok := s[id]
	return ok
}

// overlap returns |s ∩ other|.
func (s artistSet) overlap(other artistSet) int {
	n := 0
	for id := range s {
		if other.has(id) {
			n++
		}
	}
	return n
}

// without returns |s \ other|.
func (s artistSet) without(other artistSet) int {
	return len(s) - s.overlap(other)
}

// ratio returns n/d*100, or 0 when d is zero.
func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}

// percent is ratio rounded to the nearest integer.
func percent(n, d int) int {
	return int(math.Round(ratio(n, d)))
}

// overlapRatio is the share of recent artists that also appear in long.
func overlapRatio(recent, long artistSet) float64 {
	return ratio(recent.overlap(long), len(recent))
}

type genreCount struct {
	genre string
	count int
}

// genreTable counts genre occurrences, remembering first-encounter order so
// that ranking is deterministic.
type genreTable struct {
	index   map[string]int
	entries []genreCount
	total   int
}

func newGenreTable() *genreTable {
	return &genreTable{index: make(map[string]int)}
}

func (t *genreTable) add(artists []Artist) {
	for _, a := range artists {
		for _, g := range a.Genres {
			i, ok := t.index[g]
			if !ok {
				i = len(t.entries)
				t.index[g] = i
				t.entries = append(t.entries, genreCount{genre: g})
			}
			t.entries[i].count++
			t.total++
		}
	}
}

// ranked returns up to limit entries by descending count. Ties keep
// first-encounter order. A limit <= 0 returns every entry.
func (t *genreTable) ranked(limit int) []genreCount {
	out := make([]genreCount, len(t.entries))
	copy(out, t.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].count > out[j].count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// topGenre returns the most frequent genre among artists, or "Unknown".
func topGenre(artists []Artist) string {
	t := newGenreTable()
	t.add(artists)
	top := t.ranked(1)
	if len(top) == 0 {
		return unknownGenre
	}
	return top[0].genre
}

const unknownGenre = "Unknown"
