package domain

import "strconv"

// Movie is the core metadata record from the movie database.
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	PosterPath  *string `json:"poster_path"`
	Popularity  float64 `json:"popularity"`
	Runtime     int     `json:"runtime,omitempty"`
}

// Year returns the four digit release year, or "" when unknown.
func (m *Movie) Year() string {
	return Year(m.ReleaseDate)
}

// YearNumber returns the release year as an int, or 0 when unknown.
func (m *Movie) YearNumber() int {
	y, err := strconv.Atoi(m.Year())
	if err != nil {
		return 0
	}
	return y
}

// ImageConfig is the image part of the movie database configuration.
type ImageConfig struct {
	SecureBaseURL string   `json:"secure_base_url"`
	PosterSizes   []string `json:"poster_sizes"`
	ProfileSizes  []string `json:"profile_sizes,omitempty"`
}

type CastMember struct {
	CastID      int     `json:"cast_id"`
	Character   string  `json:"character"`
	Name        string  `json:"name"`
	ProfilePath *string `json:"profile_path"`
}

type CrewMember struct {
	Job  string `json:"job"`
	Name string `json:"name"`
}

type Credits struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Year extracts the leading year from a YYYY[-MM[-DD]] date.
func Year(date string) string {
	if len(date) < 4 {
		return ""
	}
	if _, err := strconv.Atoi(date[:4]); err != nil {
		return ""
	}
	return date[:4]
}
