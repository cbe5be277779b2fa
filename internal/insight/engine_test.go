package insight

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
)

func artist(id string, genres ...string) Artist {
	if genres == nil {
		genres = []string{}
	}
	return Artist{ID: id, Name: "Artist " + id, Genres: genres}
}

func tracks(n int) []Track {
	out := make([]Track, n)
	for i := range out {
		out[i] = Track{ID: fmt.Sprintf("t%d", i)}
	}
	return out
}

func TestAnalyzeLoyaltyScenario(t *testing.T) {
	l := Listening{
		Recent: WindowData{Artists: []Artist{artist("A", "pop"), artist("B", "rock")}, Tracks: tracks(4)},
		Long:   WindowData{Artists: []Artist{artist("A", "pop")}, Tracks: tracks(2)},
	}

	report, err := Analyze(l)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.ArtistLoyaltyScore != 50 {
		t.Errorf("ArtistLoyaltyScore = %d, want 50", report.ArtistLoyaltyScore)
	}
	if report.NewArtistsDiscovered != 1 {
		t.Errorf("NewArtistsDiscovered = %d, want 1", report.NewArtistsDiscovered)
	}
	if report.ComfortZonePercentage != 50 {
		t.Errorf("ComfortZonePercentage = %d, want 50", report.ComfortZonePercentage)
	}
	if report.ExplorationScore != 50 {
		t.Errorf("ExplorationScore = %d, want 50", report.ExplorationScore)
	}
	if report.TotalTracksAnalyzed != 6 {
		t.Errorf("TotalTracksAnalyzed = %d, want 6", report.TotalTracksAnalyzed)
	}

	wantGenres := []GenreStat{
		{Genre: "pop", Count: 2, Percentage: 67},
		{Genre: "rock", Count: 1, Percentage: 33},
	}
	if !reflect.DeepEqual(report.TopGenres, wantGenres) {
		t.Errorf("TopGenres = %+v, want %+v", report.TopGenres, wantGenres)
	}
	// H(2/3, 1/3) = 0.918 bits
	if report.GenreDiversityScore != 18 {
		t.Errorf("GenreDiversityScore = %d, want 18", report.GenreDiversityScore)
	}

	wantArtists := []ArtistHighlight{
		{Name: "Artist A", PlayCount: "Recent favorite", TimeRange: "Last 4 weeks"},
		{Name: "Artist B", PlayCount: "Recent favorite", TimeRange: "Last 4 weeks"},
		{Name: "Artist A", PlayCount: "All-time favorite", TimeRange: "Long-term"},
	}
	if !reflect.DeepEqual(report.TopArtists, wantArtists) {
		t.Errorf("TopArtists = %+v, want %+v", report.TopArtists, wantArtists)
	}

	wantHabits := ListeningHabits{
		MostActiveTimeRange: "Recent weeks",
		DiversityTrend:      DiversityDecreasing,
		ExplorationPattern:  PatternBalanced,
	}
	if report.ListeningHabits != wantHabits {
		t.Errorf("ListeningHabits = %+v, want %+v", report.ListeningHabits, wantHabits)
	}

	wantTaste := []string{"pop", "Unknown", "pop"}
	for i, epoch := range report.TasteEvolution {
		if epoch.DominantGenre != wantTaste[i] {
			t.Errorf("TasteEvolution[%d].DominantGenre = %q, want %q", i, epoch.DominantGenre, wantTaste[i])
		}
	}
}

func TestAnalyzeSingleGenreHasNoDiversity(t *testing.T) {
	var recent []Artist
	for i := 0; i < 10; i++ {
		recent = append(recent, artist(fmt.Sprintf("a%d", i), "pop"))
	}

	report, err := Analyze(Listening{Recent: WindowData{Artists: recent}})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.GenreDiversityScore != 0 {
		t.Errorf("GenreDiversityScore = %d, want 0", report.GenreDiversityScore)
	}
	if len(report.TopGenres) != 1 || report.TopGenres[0].Count != 10 || report.TopGenres[0].Percentage != 100 {
		t.Errorf("TopGenres = %+v, want a single pop entry with count 10", report.TopGenres)
	}
}

func TestAnalyzeEmptyRecentWindow(t *testing.T) {
	l := Listening{
		Long: WindowData{Artists: []Artist{artist("A", "jazz"), artist("B", "jazz")}},
	}

	report, err := Analyze(l)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.ArtistLoyaltyScore != 0 {
		t.Errorf("ArtistLoyaltyScore = %d, want 0", report.ArtistLoyaltyScore)
	}
	if report.ComfortZonePercentage != 0 || report.ExplorationScore != 100 {
		t.Errorf("ComfortZonePercentage, ExplorationScore = %d, %d, want 0, 100",
			report.ComfortZonePercentage, report.ExplorationScore)
	}
	if report.ListeningHabits.ExplorationPattern != PatternAdventurous {
		t.Errorf("ExplorationPattern = %q, want %q", report.ListeningHabits.ExplorationPattern, PatternAdventurous)
	}
	for _, p := range report.DiscoveryTimeline {
		if p.Period != periodOverall && p.DiscoveryRate != 0 {
			t.Errorf("DiscoveryTimeline %q rate = %d, want 0", p.Period, p.DiscoveryRate)
		}
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	report, err := Analyze(Listening{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.GenreDiversityScore != 0 || len(report.TopGenres) != 0 {
		t.Errorf("got genres %+v with diversity %d, want none", report.TopGenres, report.GenreDiversityScore)
	}
	if len(report.DiscoveryTimeline) != 3 || len(report.GenreEvolution) != 3 || len(report.TasteEvolution) != 3 {
		t.Fatalf("want 3 timeline, genre and taste entries, got %d, %d, %d",
			len(report.DiscoveryTimeline), len(report.GenreEvolution), len(report.TasteEvolution))
	}
	for _, epoch := range report.TasteEvolution {
		if epoch.DominantGenre != "Unknown" {
			t.Errorf("%s: DominantGenre = %q, want Unknown", epoch.TimeRange, epoch.DominantGenre)
		}
	}
}

func TestAnalyzeGenreTiesKeepFirstSeen(t *testing.T) {
	l := Listening{
		Recent: WindowData{Artists: []Artist{artist("X", "rock"), artist("Y", "pop")}},
		Long:   WindowData{Artists: []Artist{artist("Z", "pop"), artist("W", "rock")}},
	}

	report, err := Analyze(l)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got := report.TopGenres[0].Genre; got != "rock" {
		t.Errorf("TopGenres[0] = %q, want rock", got)
	}
	if got := report.TasteEvolution[2].DominantGenre; got != "pop" {
		t.Errorf("long DominantGenre = %q, want pop", got)
	}
}

func TestAnalyzeTopGenresLimit(t *testing.T) {
	var recent []Artist
	for i := 0; i < 64; i++ {
		recent = append(recent, artist(fmt.Sprintf("a%d", i), fmt.Sprintf("genre %d", i)))
	}

	report, err := Analyze(Listening{Recent: WindowData{Artists: recent}})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(report.TopGenres) != 10 {
		t.Errorf("len(TopGenres) = %d, want 10", len(report.TopGenres))
	}
	// 64 even genres is 6 bits, which caps out.
	if report.GenreDiversityScore != 100 {
		t.Errorf("GenreDiversityScore = %d, want 100", report.GenreDiversityScore)
	}
	if report.ListeningHabits.DiversityTrend != DiversityIncreasing {
		t.Errorf("DiversityTrend = %q, want increasing", report.ListeningHabits.DiversityTrend)
	}
	if len(report.GenreEvolution[0].TopGenres) != 3 {
		t.Errorf("len(GenreEvolution[0].TopGenres) = %d, want 3", len(report.GenreEvolution[0].TopGenres))
	}
}

func TestAnalyzeTopArtistsLimits(t *testing.T) {
	var recent, long []Artist
	for i := 0; i < 8; i++ {
		recent = append(recent, artist(fmt.Sprintf("r%d", i), "pop"))
		long = append(long, artist(fmt.Sprintf("l%d", i), "pop"))
	}

	report, err := Analyze(Listening{Recent: WindowData{Artists: recent}, Long: WindowData{Artists: long}})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(report.TopArtists) != 8 {
		t.Fatalf("len(TopArtists) = %d, want 8", len(report.TopArtists))
	}
	if report.TopArtists[4].Name != "Artist r4" || report.TopArtists[5].Name != "Artist l0" {
		t.Errorf("TopArtists = %+v, want 5 recent then 3 long", report.TopArtists)
	}
}

func TestAnalyzeTrendsRepeatTrackCount(t *testing.T) {
	l := Listening{
		Recent: WindowData{Tracks: tracks(3)},
		Medium: WindowData{Tracks: tracks(5)},
		Long:   WindowData{Tracks: tracks(7)},
	}

	report, err := Analyze(l)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	// NewArtistCount mirrors TrackCount rather than counting discoveries.
	want := []TrendPoint{
		{Period: "Last 4 weeks", TrackCount: 3, NewArtistCount: 3},
		{Period: "Last 6 months", TrackCount: 5, NewArtistCount: 5},
		{Period: "All time", TrackCount: 7, NewArtistCount: 7},
	}
	if !reflect.DeepEqual(report.ListeningTrends, want) {
		t.Errorf("ListeningTrends = %+v, want %+v", report.ListeningTrends, want)
	}
	if report.MostActiveTimeRange != "Last 4 weeks" {
		t.Errorf("MostActiveTimeRange = %q, want Last 4 weeks", report.MostActiveTimeRange)
	}
}

func TestAnalyzeDiscoveryTimeline(t *testing.T) {
	l := Listening{
		Recent: WindowData{Artists: []Artist{artist("A"), artist("B"), artist("C")}},
		Medium: WindowData{Artists: []Artist{artist("A"), artist("D"), artist("E"), artist("F")}},
		Long:   WindowData{Artists: []Artist{artist("D"), artist("G")}},
	}

	report, err := Analyze(l)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	// Overall reuses the recent discoveries against the long window size, and
	// its NewArtists is round((3+4)/2) rather than a discovery count.
	want := []DiscoveryPoint{
		{Period: "Last 4 weeks", DiscoveryRate: 67, NewArtists: 2},
		{Period: "Last 6 months", DiscoveryRate: 75, NewArtists: 3},
		{Period: "Overall", DiscoveryRate: 100, NewArtists: 4},
	}
	if !reflect.DeepEqual(report.DiscoveryTimeline, want) {
		t.Errorf("DiscoveryTimeline = %+v, want %+v", report.DiscoveryTimeline, want)
	}

	// 4 > 1.5*3 is false.
	if report.ListeningHabits.MostActiveTimeRange != "Recent weeks" {
		t.Errorf("MostActiveTimeRange = %q, want Recent weeks", report.ListeningHabits.MostActiveTimeRange)
	}
}

func TestAnalyzeHabits(t *testing.T) {
	tests := []struct {
		name       string
		recent     []string
		medium     int
		long       []string
		wantActive string
		wantStyle  string
	}{
		{"comfort", []string{"a", "b", "c", "d"}, 0, []string{"a", "b", "c", "x"}, "Recent weeks", PatternComfortZone},
		{"exactly 70 is balanced", []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}, 0, []string{"a", "b", "c", "d", "e", "f", "g"}, "Recent weeks", PatternBalanced},
		{"adventurous", []string{"a", "b", "c", "d"}, 7, []string{"x"}, "Past 6 months", PatternAdventurous},
		{"medium at 1.5x is not dominant", []string{"a", "b"}, 3, []string{"a"}, "Recent weeks", PatternBalanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Listening
			for _, id := range tt.recent {
				l.Recent.Artists = append(l.Recent.Artists, artist(id))
			}
			for i := 0; i < tt.medium; i++ {
				l.Medium.Artists = append(l.Medium.Artists, artist(fmt.Sprintf("m%d", i)))
			}
			for _, id := range tt.long {
				l.Long.Artists = append(l.Long.Artists, artist(id))
			}

			habits := analyzeHabits(&l, 50)
			if habits.MostActiveTimeRange != tt.wantActive {
				t.Errorf("MostActiveTimeRange = %q, want %q", habits.MostActiveTimeRange, tt.wantActive)
			}
			if habits.ExplorationPattern != tt.wantStyle {
				t.Errorf("ExplorationPattern = %q, want %q", habits.ExplorationPattern, tt.wantStyle)
			}
			if habits.DiversityTrend != DiversityStable {
				t.Errorf("DiversityTrend = %q, want stable", habits.DiversityTrend)
			}
		})
	}
}

func TestDiversityTrendThresholds(t *testing.T) {
	tests := []struct {
		diversity int
		want      DiversityTrend
	}{
		{0, DiversityDecreasing},
		{39, DiversityDecreasing},
		{40, DiversityStable},
		{60, DiversityStable},
		{61, DiversityIncreasing},
		{100, DiversityIncreasing},
	}
	for _, tt := range tests {
		var l Listening
		if got := analyzeHabits(&l, tt.diversity).DiversityTrend; got != tt.want {
			t.Errorf("analyzeHabits(%d) trend = %q, want %q", tt.diversity, got, tt.want)
		}
	}
}

func TestAnalyzeGenreEvolution(t *testing.T) {
	l := Listening{
		Recent: WindowData{Artists: []Artist{
			artist("A", "pop", "dance"),
			artist("B", "pop", "rock"),
			artist("C", "pop", "indie"),
			artist("D", "jazz"),
		}},
		Medium: WindowData{Artists: []Artist{artist("E", "metal")}},
	}

	report, err := Analyze(l)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	want := []GenreEpoch{
		{
			TimeRange: "Recent",
			TopGenres: []GenreShare{{"pop", 43}, {"dance", 14}, {"rock", 14}},
			Change:    "Current preferences",
		},
		{TimeRange: "6 months ago", TopGenres: []GenreShare{{"metal", 100}}, Change: "Previous focus"},
		{TimeRange: "Long-term", TopGenres: []GenreShare{}, Change: "Historical foundation"},
	}
	if !reflect.DeepEqual(report.GenreEvolution, want) {
		t.Errorf("GenreEvolution = %+v, want %+v", report.GenreEvolution, want)
	}

	wantTaste := []TasteEpoch{
		{TimeRange: "Recently", DominantGenre: "pop", Change: "Current focus"},
		{TimeRange: "6 months ago", DominantGenre: "metal", Change: "Previous interest"},
		{TimeRange: "Long-term", DominantGenre: "Unknown", Change: "Historical preference"},
	}
	if !reflect.DeepEqual(report.TasteEvolution, wantTaste) {
		t.Errorf("TasteEvolution = %+v, want %+v", report.TasteEvolution, wantTaste)
	}
}

func TestAnalyzeProperties(t *testing.T) {
	inputs := []Listening{
		{},
		{Recent: WindowData{Artists: []Artist{artist("A", "pop")}}},
		{
			Recent: WindowData{Artists: []Artist{artist("A", "pop", "rock"), artist("B", "rock"), artist("C")}},
			Medium: WindowData{Artists: []Artist{artist("B", "rock"), artist("D", "folk", "pop")}},
			Long:   WindowData{Artists: []Artist{artist("A", "pop"), artist("C", "soul"), artist("E", "pop")}},
		},
		{
			Recent: WindowData{Artists: []Artist{artist("A", "x"), artist("B", "y"), artist("C", "z")}},
			Long:   WindowData{Artists: []Artist{artist("B", "y")}},
		},
	}

	for i, l := range inputs {
		report, err := Analyze(l)
		if err != nil {
			t.Fatalf("input %d: Analyze: %v", i, err)
		}

		total := 0
		for _, w := range Windows {
			for _, a := range l.Window(w).Artists {
				total += len(a.Genres)
			}
		}
		sum := 0
		for _, g := range report.TopGenres {
			sum += g.Count
			if want := percent(g.Count, total); g.Percentage != want {
				t.Errorf("input %d: %s percentage = %d, want %d", i, g.Genre, g.Percentage, want)
			}
		}
		if sum > total {
			t.Errorf("input %d: sum of top genre counts %d exceeds total %d", i, sum, total)
		}

		if report.GenreDiversityScore < 0 || report.GenreDiversityScore > 100 {
			t.Errorf("input %d: GenreDiversityScore = %d, out of range", i, report.GenreDiversityScore)
		}
		if report.ArtistLoyaltyScore != report.ComfortZonePercentage {
			t.Errorf("input %d: loyalty %d != comfort zone %d", i, report.ArtistLoyaltyScore, report.ComfortZonePercentage)
		}
		if report.ExplorationScore+report.ComfortZonePercentage != 100 {
			t.Errorf("input %d: exploration %d + comfort %d != 100", i, report.ExplorationScore, report.ComfortZonePercentage)
		}

		wantPeriods := []string{"Last 4 weeks", "Last 6 months", "Overall"}
		if len(report.DiscoveryTimeline) != len(wantPeriods) {
			t.Fatalf("input %d: len(DiscoveryTimeline) = %d, want 3", i, len(report.DiscoveryTimeline))
		}
		for j, p := range report.DiscoveryTimeline {
			if p.Period != wantPeriods[j] {
				t.Errorf("input %d: DiscoveryTimeline[%d].Period = %q, want %q", i, j, p.Period, wantPeriods[j])
			}
		}

		if len(report.GenreEvolution) != 3 || len(report.TasteEvolution) != 3 {
			t.Errorf("input %d: got %d genre epochs and %d taste epochs, want 3 each",
				i, len(report.GenreEvolution), len(report.TasteEvolution))
		}
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	l := Listening{
		Recent: WindowData{Artists: []Artist{artist("A", "pop", "rock"), artist("B", "rock")}, Tracks: tracks(2)},
		Medium: WindowData{Artists: []Artist{artist("B", "rock"), artist("C", "folk")}, Tracks: tracks(3)},
		Long:   WindowData{Artists: []Artist{artist("A", "pop"), artist("D", "soul")}, Tracks: tracks(1)},
	}

	first, err := AnalyzeAt(l, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("AnalyzeAt: %v", err)
	}
	second, err := Analyze(l)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	first.AnalysisDate = time.Time{}
	second.AnalysisDate = time.Time{}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reports differ:\n%+v\n%+v", first, second)
	}
}

func TestAnalyzeAtStampsDate(t *testing.T) {
	at := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	report, err := AnalyzeAt(Listening{}, at)
	if err != nil {
		t.Fatalf("AnalyzeAt: %v", err)
	}
	if !report.AnalysisDate.Equal(at) {
		t.Errorf("AnalysisDate = %v, want %v", report.AnalysisDate, at)
	}
}

func TestAnalyzeMalformedInput(t *testing.T) {
	tests := []struct {
		name      string
		listening Listening
		wantField string
		wantWin   Window
	}{
		{
			name:      "missing genres",
			listening: Listening{Medium: WindowData{Artists: []Artist{{ID: "A", Name: "A"}}}},
			wantField: "genres",
			wantWin:   Medium,
		},
		{
			name:      "missing id",
			listening: Listening{Recent: WindowData{Artists: []Artist{{Name: "A", Genres: []string{}}}}},
			wantField: "id",
			wantWin:   Recent,
		},
		{
			name:      "missing track id",
			listening: Listening{Long: WindowData{Tracks: []Track{{ID: "t"}, {}}}},
			wantField: "id",
			wantWin:   Long,
		},
		{
			name:      "duplicate artist",
			listening: Listening{Recent: WindowData{Artists: []Artist{artist("A"), artist("A")}}},
			wantField: "id",
			wantWin:   Recent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Analyze(tt.listening)
			if err == nil {
				t.Fatalf("Analyze succeeded with %+v", report)
			}
			if report != nil {
				t.Errorf("Analyze returned a partial report alongside %v", err)
			}
			if !errors.Is(err, ErrMalformedInput) {
				t.Errorf("errors.Is(%v, ErrMalformedInput) = false", err)
			}
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("error %v is not an *InputError", err)
			}
			if inputErr.Field != tt.wantField || inputErr.Window != tt.wantWin {
				t.Errorf("got field %q in %s window, want %q in %s", inputErr.Field, inputErr.Window, tt.wantField, tt.wantWin)
			}
		})
	}
}

func TestAnalyzeAcceptsNamelessArtists(t *testing.T) {
	l := Listening{
		Recent: WindowData{Artists: []Artist{{ID: "A", Genres: []string{"pop"}}, {ID: "B", Genres: []string{"rock"}}}},
		Long:   WindowData{Artists: []Artist{{ID: "A", Genres: []string{"pop"}}}},
	}
	report, err := Analyze(l)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.ArtistLoyaltyScore != 50 {
		t.Errorf("ArtistLoyaltyScore = %d, want 50", report.ArtistLoyaltyScore)
	}
	if report.NewArtistsDiscovered != 1 {
		t.Errorf("NewArtistsDiscovered = %d, want 1", report.NewArtistsDiscovered)
	}
	if len(report.TopArtists) != 3 || report.TopArtists[0].Name != "" {
		t.Errorf("unexpected TopArtists %+v", report.TopArtists)
	}
}

func TestValidateReportsRecordPosition(t *testing.T) {
	l := Listening{
		Recent: WindowData{Artists: []Artist{artist("A", "pop")}, Tracks: tracks(2)},
		Medium: WindowData{Tracks: []Track{{ID: "t0"}, {ID: "t1"}, {}}},
	}
	err := Validate(&l)
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("Validate = %v, want an *InputError", err)
	}
	want := InputError{Window: Medium, Kind: "track", Index: 2, Field: "id", Reason: "is missing"}
	if *inputErr != want {
		t.Errorf("Validate = %+v, want %+v", *inputErr, want)
	}
}

func TestAnalyzeAllowsCrossWindowDuplicates(t *testing.T) {
	l := Listening{
		Recent: WindowData{Artists: []Artist{artist("A", "pop")}},
		Medium: WindowData{Artists: []Artist{artist("A", "pop")}},
		Long:   WindowData{Artists: []Artist{artist("A", "pop")}},
	}
	report, err := Analyze(l)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.TopGenres[0].Count != 3 {
		t.Errorf("pop count = %d, want 3", report.TopGenres[0].Count)
	}
	if report.ArtistLoyaltyScore != 100 || report.ListeningHabits.ExplorationPattern != PatternComfortZone {
		t.Errorf("loyalty %d, pattern %q, want 100 and %q",
			report.ArtistLoyaltyScore, report.ListeningHabits.ExplorationPattern, PatternComfortZone)
	}
}
