package lastfm

import (
	"regexp"
	"strings"
)

const (
	// Tag counts are relative to the artist's strongest tag, which is 100.
	minTagCount = 20
	maxGenres   = 5
)

var yearTag = regexp.MustCompile(`^\d{2,4}s?$`)

// normalizeTags turns an artist's last.fm top tags into genre names. Tags
// arrive strongest first; year and decade tags and weakly applied tags are
// dropped. The result is never nil.
func normalizeTags(tags []string, counts []int) []string {
	genres := []string{}
	seen := make(map[string]bool)
	for i, tag := range tags {
		if len(genres) == maxGenres {
			break
		}
		if i < len(counts) && counts[i] < minTagCount {
			continue
		}

		genre := strings.ToLower(strings.TrimSpace(tag))
		genre = strings.NewReplacer("-", " ", "_", " ").Replace(genre)
		genre = strings.Join(strings.Fields(genre), " ")
		if genre == "" || yearTag.MatchString(genre) || seen[genre] {
			continue
		}

		seen[genre] = true
		genres = append(genres, genre)
	}
	return genres
}
