package entities

// Movie is a film matching a location's search text
type Movie struct {
	Title        string  `json:"title" db:"title"`
	Overview     string  `json:"overview" db:"overview"`
	AverageVotes float64 `json:"average_votes" db:"average_votes"`
	TotalVotes   int     `json:"total_votes" db:"total_votes"`
	ImageURL     string  `json:"image_url" db:"image_url"`
	Popularity   float64 `json:"popularity" db:"popularity"`
	ReleasedOn   string  `json:"released_on" db:"released_on"`
	RecordMeta
}
