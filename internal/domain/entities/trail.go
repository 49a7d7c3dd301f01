package entities

// Trail is a hiking trail with its latest reported conditions
type Trail struct {
	Name          string  `json:"name" db:"name"`
	URL           string  `json:"trail_url" db:"url"`
	Location      string  `json:"location" db:"location"`
	Length        float64 `json:"length" db:"length"`
	ConditionDate string  `json:"condition_date" db:"condition_date"`
	ConditionTime string  `json:"condition_time" db:"condition_time"`
	Conditions    string  `json:"conditions" db:"conditions"`
	Stars         float64 `json:"stars" db:"stars"`
	StarVotes     int     `json:"star_votes" db:"star_votes"`
	Summary       string  `json:"summary" db:"summary"`
	RecordMeta
}
