package entities

// Restaurant is a business search result near a location
type Restaurant struct {
	Name     string  `json:"name" db:"name"`
	ImageURL string  `json:"image_url" db:"image_url"`
	Price    string  `json:"price" db:"price"`
	Rating   float64 `json:"rating" db:"rating"`
	URL      string  `json:"url" db:"url"`
	RecordMeta
}
