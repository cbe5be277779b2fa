package insight

import "time"

// Window is one of the three fixed listening-history ranges.
type Window int

const (
	Recent Window = iota
	Medium
	Long
)

// Windows lists every window in recency order.
var Windows = []Window{Recent, Medium, Long}

func (w Window) String() string {
	switch w {
	case Recent:
		return "recent"
	case Medium:
		return "medium"
	case Long:
		return "long"
	}
	return "unknown"
}

// ParseWindow is the inverse of Window.String.
func ParseWindow(s string) (Window, bool) {
	for _, w := range Windows {
		if w.String() == s {
			return w, true
		}
	}
	return 0, false
}

// Artist is one entry of a window's rank-ordered artist collection. A nil
// Genres slice means the upstream record had no genres field at all, which is
// rejected; an empty slice is a valid artist without genre data. Name is only
// displayed and may be empty.
type Artist struct {
	ID     string   `yaml:"id" json:"id" validate:"required"`
	Name   string   `yaml:"name" json:"name"`
	Genres []string `yaml:"genres" json:"genres" validate:"required"`
}

type Track struct {
	ID string `yaml:"id" json:"id" validate:"required"`
}

// WindowData holds the fetched collections for a single window.
type WindowData struct {
	Artists []Artist `yaml:"artists" json:"artists"`
	Tracks  []Track  `yaml:"tracks" json:"tracks"`
}

// Listening is the full input to the engine: one WindowData per window.
type Listening struct {
	Recent WindowData `yaml:"recent" json:"recent"`
	Medium WindowData `yaml:"medium" json:"medium"`
	Long   WindowData `yaml:"long" json:"long"`
}

// Window returns the data for w.
func (l *Listening) Window(w Window) *WindowData {
	switch w {
	case Recent:
		return &l.Recent
	case Medium:
		return &l.Medium
	default:
		return &l.Long
	}
}

// Report is the derived insight report. It is built once per analysis and
// never modified afterwards.
type Report struct {
	TopGenres           []GenreStat `yaml:"top_genres" json:"topGenres"`
	GenreDiversityScore int         `yaml:"genre_diversity_score" json:"genreDiversityScore"`

	TopArtists           []ArtistHighlight `yaml:"top_artists" json:"topArtists"`
	ArtistLoyaltyScore   int               `yaml:"artist_loyalty_score" json:"artistLoyaltyScore"`
	NewArtistsDiscovered int               `yaml:"new_artists_discovered" json:"newArtistsDiscovered"`

	ListeningTrends     []TrendPoint `yaml:"listening_trends" json:"listeningTrends"`
	MostActiveTimeRange string       `yaml:"most_active_time_range" json:"mostActiveTimeRange"`

	DiscoveryTimeline []DiscoveryPoint `yaml:"discovery_timeline" json:"discoveryTimeline"`
	ListeningHabits   ListeningHabits  `yaml:"listening_habits" json:"listeningHabits"`
	GenreEvolution    []GenreEpoch     `yaml:"genre_evolution" json:"genreEvolution"`

	ExplorationScore      int `yaml:"exploration_score" json:"explorationScore"`
	ComfortZonePercentage int `yaml:"comfort_zone_percentage" json:"comfortZonePercentage"`

	TasteEvolution []TasteEpoch `yaml:"taste_evolution" json:"tasteEvolution"`

	AnalysisDate        time.Time `yaml:"analysis_date" json:"analysisDate"`
	TotalTracksAnalyzed int       `yaml:"total_tracks_analyzed" json:"totalTracksAnalyzed"`
}

type GenreStat struct {
	Genre      string `yaml:"genre" json:"genre"`
	Count      int    `yaml:"count" json:"count"`
	Percentage int    `yaml:"percentage" json:"percentage"`
}

// ArtistHighlight is a labeled entry of Report.TopArtists. PlayCount carries a
// descriptive label rather than a number.
type ArtistHighlight struct {
	Name      string `yaml:"name" json:"name"`
	PlayCount string `yaml:"play_count" json:"playCount"`
	TimeRange string `yaml:"time_range" json:"timeRange"`
}

type TrendPoint struct {
	Period         string `yaml:"period" json:"period"`
	TrackCount     int    `yaml:"track_count" json:"trackCount"`
	NewArtistCount int    `yaml:"new_artist_count" json:"newArtistCount"`
}

type DiscoveryPoint struct {
	Period        string `yaml:"period" json:"period"`
	DiscoveryRate int    `yaml:"discovery_rate" json:"discoveryRate"`
	NewArtists    int    `yaml:"new_artists" json:"newArtists"`
}

type DiversityTrend string

const (
	DiversityIncreasing DiversityTrend = "increasing"
	DiversityDecreasing DiversityTrend = "decreasing"
	DiversityStable     DiversityTrend = "stable"
)

const (
	PatternComfortZone = "Comfort zone listener"
	PatternBalanced    = "Balanced explorer"
	PatternAdventurous = "Adventurous explorer"
)

type ListeningHabits struct {
	MostActiveTimeRange string         `yaml:"most_active_time_range" json:"mostActiveTimeRange"`
	DiversityTrend      DiversityTrend `yaml:"diversity_trend" json:"diversityTrend"`
	ExplorationPattern  string         `yaml:"exploration_pattern" json:"explorationPattern"`
}

type GenreShare struct {
	Genre      string `yaml:"genre" json:"genre"`
	Percentage int    `yaml:"percentage" json:"percentage"`
}

type GenreEpoch struct {
	TimeRange string       `yaml:"time_range" json:"timeRange"`
	TopGenres []GenreShare `yaml:"top_genres" json:"topGenres"`
	Change    string       `yaml:"change" json:"change"`
}

type TasteEpoch struct {
	TimeRange     string `yaml:"time_range" json:"timeRange"`
	DominantGenre string `yaml:"dominant_genre" json:"dominantGenre"`
	Change        string `yaml:"change" json:"change"`
}
