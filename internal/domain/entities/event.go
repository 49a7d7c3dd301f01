package entities

// Event is a listed event near a location
type Event struct {
	Name      string `json:"name" db:"name"`
	Link      string `json:"link" db:"link"`
	Host      string `json:"host" db:"host"`
	EventDate string `json:"event_date" db:"event_date"`
	RecordMeta
}
