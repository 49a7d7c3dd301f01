package entities

// Weather is one day of forecast for a location
type Weather struct {
	Forecast string `json:"forecast" db:"forecast"`
	Time     string `json:"time" db:"time"`
	RecordMeta
}
