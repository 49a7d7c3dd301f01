package entities

import "time"

// ResourceKind names a category of location-keyed data
type ResourceKind string

const (
	KindLocation   ResourceKind = "location"
	KindWeather    ResourceKind = "weather"
	KindRestaurant ResourceKind = "restaurant"
	KindMovie      ResourceKind = "movie"
	KindEvent      ResourceKind = "event"
	KindTrail      ResourceKind = "trail"
)

// ResourceKinds lists the kinds served through the cache orchestrator.
// Location is resolved separately.
var ResourceKinds = []ResourceKind{KindWeather, KindRestaurant, KindMovie, KindEvent, KindTrail}

func (k ResourceKind) String() string {
	return string(k)
}

// Record is a single normalized provider item stored under a location.
// All records of one batch share LocationID and CreatedAt.
type Record interface {
	FetchedAt() time.Time
	Stamp(locationID int64, fetchedAt time.Time)
}

// RecordMeta carries the batch columns shared by every resource table
type RecordMeta struct {
	LocationID int64     `json:"location_id" db:"location_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// FetchedAt returns when the record's batch was fetched
func (m *RecordMeta) FetchedAt() time.Time {
	return m.CreatedAt
}

// Stamp assigns the batch columns
func (m *RecordMeta) Stamp(locationID int64, fetchedAt time.Time) {
	m.LocationID = locationID
	m.CreatedAt = fetchedAt
}

// OldestFetch returns the earliest CreatedAt of records, and false when
// records is empty.
func OldestFetch[R Record](records []R) (time.Time, bool) {
	if len(records) == 0 {
		return time.Time{}, false
	}
	oldest := records[0].FetchedAt()
	for _, r := range records[1:] {
		if at := r.FetchedAt(); at.Before(oldest) {
			oldest = at
		}
	}
	return oldest, true
}
