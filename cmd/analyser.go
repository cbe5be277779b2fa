/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/KarlieKKY/spotify-discovery-analyzer/internal/insight"
)

// Analysis is one titled table of a rendered report. The first row of
// results is the header.
type Analysis struct {
	name    string
	results [][]string
	summary string
}

func (a Analysis) GetName() string {
	return a.name
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	if len(a.results) > 1 {
		table := tablewriter.NewWriter(out)
		table.Header(a.results[0])
		for _, row := range a.results[1:] {
			if err := table.Append(row); err != nil {
				return fmt.Sprintf("Error rendering table: %v", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if a.summary != "" {
		fmt.Fprintf(out, "%s\n", a.summary)
	}
	return out.String()
}

// reportAnalyses splits a report into the tables shown on the terminal and
// in emails.
func reportAnalyses(r *insight.Report) []Analysis {
	itoa := strconv.Itoa
	pct := func(n int) string { return itoa(n) + "%" }

	genres := Analysis{
		name:    "Top genres",
		results: [][]string{{"Genre", "Count", "Share"}},
		summary: fmt.Sprintf("Genre diversity: %d/100 (%s)", r.GenreDiversityScore, r.ListeningHabits.DiversityTrend),
	}
	for _, g := range r.TopGenres {
		genres.results = append(genres.results, []string{g.Genre, itoa(g.Count), pct(g.Percentage)})
	}

	artists := Analysis{
		name:    "Top artists",
		results: [][]string{{"Artist", "", "Time range"}},
		summary: fmt.Sprintf("Artist loyalty: %d/100, %d new artists in the last 4 weeks",
			r.ArtistLoyaltyScore, r.NewArtistsDiscovered),
	}
	for _, a := range r.TopArtists {
		artists.results = append(artists.results, []string{a.Name, a.PlayCount, a.TimeRange})
	}

	trends := Analysis{
		name:    "Listening trends",
		results: [][]string{{"Period", "Tracks", "New artists"}},
		summary: "Most active: " + r.MostActiveTimeRange,
	}
	for _, t := range r.ListeningTrends {
		trends.results = append(trends.results, []string{t.Period, itoa(t.TrackCount), itoa(t.NewArtistCount)})
	}

	discovery := Analysis{
		name:    "Discovery timeline",
		results: [][]string{{"Period", "Discovery rate", "New artists"}},
		summary: fmt.Sprintf("Exploration: %d/100, comfort zone: %s", r.ExplorationScore, pct(r.ComfortZonePercentage)),
	}
	for _, d := range r.DiscoveryTimeline {
		discovery.results = append(discovery.results, []string{d.Period, pct(d.DiscoveryRate), itoa(d.NewArtists)})
	}

	evolution := Analysis{
		name:    "Genre evolution",
		results: [][]string{{"Time range", "Top genres", "Dominant genre", "Change"}},
		summary: fmt.Sprintf("%s, most active in %s", r.ListeningHabits.ExplorationPattern,
			strings.ToLower(r.ListeningHabits.MostActiveTimeRange)),
	}
	for i, e := range r.GenreEvolution {
		var shares []string
		for _, g := range e.TopGenres {
			shares = append(shares, fmt.Sprintf("%s (%s)", g.Genre, pct(g.Percentage)))
		}
		dominant := ""
		if i < len(r.TasteEvolution) {
			dominant = r.TasteEvolution[i].DominantGenre
		}
		evolution.results = append(evolution.results, []string{e.TimeRange, strings.Join(shares, ", "), dominant, e.Change})
	}

	return []Analysis{genres, artists, trends, discovery, evolution}
}
