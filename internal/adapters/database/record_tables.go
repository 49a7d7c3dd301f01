package database

import (
	"github.com/doug-martin/goqu/v9"

	"github.com/cityexplorer/backend/internal/domain/entities"
)

// recordTable maps one resource kind onto its table. columns lists the
// kind-specific columns in the order target returns scan destinations;
// location_id and created_at are handled by the adapter.
type recordTable[R entities.Record] struct {
	name    string
	columns []string
	row     func(R) goqu.Record
	target  func() (R, *entities.RecordMeta, []interface{})
}

var weatherTable = recordTable[*entities.Weather]{
	name:    "weathers",
	columns: []string{"forecast", "time"},
	row: func(w *entities.Weather) goqu.Record {
		return goqu.Record{"forecast": w.Forecast, "time": w.Time}
	},
	target: func() (*entities.Weather, *entities.RecordMeta, []interface{}) {
		w := &entities.Weather{}
		return w, &w.RecordMeta, []interface{}{&w.Forecast, &w.Time}
	},
}

var restaurantTable = recordTable[*entities.Restaurant]{
	name:    "restaurants",
	columns: []string{"name", "image_url", "price", "rating", "url"},
	row: func(r *entities.Restaurant) goqu.Record {
		return goqu.Record{
			"name":      r.Name,
			"image_url": r.ImageURL,
			"price":     r.Price,
			"rating":    r.Rating,
			"url":       r.URL,
		}
	},
	target: func() (*entities.Restaurant, *entities.RecordMeta, []interface{}) {
		r := &entities.Restaurant{}
		return r, &r.RecordMeta, []interface{}{&r.Name, &r.ImageURL, &r.Price, &r.Rating, &r.URL}
	},
}

var movieTable = recordTable[*entities.Movie]{
	name:    "movies",
	columns: []string{"title", "overview", "average_votes", "total_votes", "image_url", "popularity", "released_on"},
	row: func(m *entities.Movie) goqu.Record {
		return goqu.Record{
			"title":         m.Title,
			"overview":      m.Overview,
			"average_votes": m.AverageVotes,
			"total_votes":   m.TotalVotes,
			"image_url":     m.ImageURL,
			"popularity":    m.Popularity,
			"released_on":   m.ReleasedOn,
		}
	},
	target: func() (*entities.Movie, *entities.RecordMeta, []interface{}) {
		m := &entities.Movie{}
		return m, &m.RecordMeta, []interface{}{
			&m.Title, &m.Overview, &m.AverageVotes, &m.TotalVotes, &m.ImageURL, &m.Popularity, &m.ReleasedOn,
		}
	},
}

var eventTable = recordTable[*entities.Event]{
	name:    "events",
	columns: []string{"name", "link", "host", "event_date"},
	row: func(e *entities.Event) goqu.Record {
		return goqu.Record{
			"name":       e.Name,
			"link":       e.Link,
			"host":       e.Host,
			"event_date": e.EventDate,
		}
	},
	target: func() (*entities.Event, *entities.RecordMeta, []interface{}) {
		e := &entities.Event{}
		return e, &e.RecordMeta, []interface{}{&e.Name, &e.Link, &e.Host, &e.EventDate}
	},
}

var trailTable = recordTable[*entities.Trail]{
	name: "trails",
	columns: []string{
		"name", "url", "location", "length", "condition_date", "condition_time",
		"conditions", "stars", "star_votes", "summary",
	},
	row: func(t *entities.Trail) goqu.Record {
		return goqu.Record{
			"name":           t.Name,
			"url":            t.URL,
			"location":       t.Location,
			"length":         t.Length,
			"condition_date": t.ConditionDate,
			"condition_time": t.ConditionTime,
			"conditions":     t.Conditions,
			"stars":          t.Stars,
			"star_votes":     t.StarVotes,
			"summary":        t.Summary,
		}
	},
	target: func() (*entities.Trail, *entities.RecordMeta, []interface{}) {
		t := &entities.Trail{}
		return t, &t.RecordMeta, []interface{}{
			&t.Name, &t.URL, &t.Location, &t.Length, &t.ConditionDate, &t.ConditionTime,
			&t.Conditions, &t.Stars, &t.StarVotes, &t.Summary,
		}
	},
}
