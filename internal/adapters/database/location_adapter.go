package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/cityexplorer/backend/internal/domain/entities"
	"github.com/cityexplorer/backend/internal/domain/repositories"
	"github.com/cityexplorer/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/cityexplorer/backend/pkg/errors"
)

// LocationAdapter implements location persistence
type LocationAdapter struct {
	client *postgres.Client
}

// NewLocationAdapter creates a new location adapter
func NewLocationAdapter(client *postgres.Client) repositories.LocationRepository {
	return &LocationAdapter{client: client}
}

var locationColumns = []interface{}{
	goqu.C("id"),
	goqu.C("search_query"),
	goqu.C("formatted_query"),
	goqu.C("latitude"),
	goqu.C("longitude"),
	goqu.C("created_at"),
}

// GetBySearchQuery retrieves a location by its normalized search text
func (a *LocationAdapter) GetBySearchQuery(ctx context.Context, searchQuery string) (*entities.Location, error) {
	return a.getOne(ctx, goqu.C("search_query").Eq(searchQuery), "location not found for search query")
}

// GetByID retrieves a location by ID
func (a *LocationAdapter) GetByID(ctx context.Context, id int64) (*entities.Location, error) {
	return a.getOne(ctx, goqu.C("id").Eq(id), fmt.Sprintf("location %d not found", id))
}

// CreateIfAbsent inserts the location and ignores a conflicting search query,
// then reads back whichever row won.
func (a *LocationAdapter) CreateIfAbsent(ctx context.Context, location *entities.Location) (*entities.Location, error) {
	if location == nil {
		return nil, apperrors.NewInternalError("location is nil", fmt.Errorf("location is nil"))
	}

	createdAt := location.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	query, args, err := a.client.Dialect().
		Insert("locations").
		Rows(goqu.Record{
			"search_query":    location.SearchQuery,
			"formatted_query": location.FormattedQuery,
			"latitude":        location.Latitude,
			"longitude":       location.Longitude,
			"created_at":      createdAt,
		}).
		OnConflict(goqu.DoNothing()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build location insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return nil, apperrors.NewPersistenceError("failed to create location", err)
	}

	return a.GetBySearchQuery(ctx, location.SearchQuery)
}

func (a *LocationAdapter) getOne(ctx context.Context, where exp.Expression, notFound string) (*entities.Location, error) {
	query, args, err := a.client.Dialect().
		From("locations").
		Select(locationColumns...).
		Where(where).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build location query", err)
	}

	location := &entities.Location{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&location.ID,
		&location.SearchQuery,
		&location.FormattedQuery,
		&location.Latitude,
		&location.Longitude,
		&location.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(notFound)
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to get location", err)
	}

	return location, nil
}
