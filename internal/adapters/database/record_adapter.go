package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/cityexplorer/backend/internal/domain/entities"
	"github.com/cityexplorer/backend/internal/domain/repositories"
	"github.com/cityexplorer/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/cityexplorer/backend/pkg/errors"
)

// RecordAdapter implements RecordRepository for one resource table
type RecordAdapter[R entities.Record] struct {
	client *postgres.Client
	table  recordTable[R]
}

// NewWeatherAdapter creates the weather forecast repository
func NewWeatherAdapter(client *postgres.Client) repositories.RecordRepository[*entities.Weather] {
	return &RecordAdapter[*entities.Weather]{client: client, table: weatherTable}
}

// NewRestaurantAdapter creates the restaurant repository
func NewRestaurantAdapter(client *postgres.Client) repositories.RecordRepository[*entities.Restaurant] {
	return &RecordAdapter[*entities.Restaurant]{client: client, table: restaurantTable}
}

// NewMovieAdapter creates the movie repository
func NewMovieAdapter(client *postgres.Client) repositories.RecordRepository[*entities.Movie] {
	return &RecordAdapter[*entities.Movie]{client: client, table: movieTable}
}

// NewEventAdapter creates the event repository
func NewEventAdapter(client *postgres.Client) repositories.RecordRepository[*entities.Event] {
	return &RecordAdapter[*entities.Event]{client: client, table: eventTable}
}

// NewTrailAdapter creates the trail repository
func NewTrailAdapter(client *postgres.Client) repositories.RecordRepository[*entities.Trail] {
	return &RecordAdapter[*entities.Trail]{client: client, table: trailTable}
}

// ListByLocation returns the location's rows in insertion order
func (a *RecordAdapter[R]) ListByLocation(ctx context.Context, locationID int64) ([]R, error) {
	columns := make([]interface{}, 0, len(a.table.columns)+2)
	for _, col := range a.table.columns {
		columns = append(columns, goqu.C(col))
	}
	columns = append(columns, goqu.C("location_id"), goqu.C("created_at"))

	query, args, err := a.client.Dialect().
		From(a.table.name).
		Select(columns...).
		Where(goqu.C("location_id").Eq(locationID)).
		Order(goqu.C("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to build %s query", a.table.name), err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError(fmt.Sprintf("failed to list %s", a.table.name), err)
	}
	defer rows.Close()

	records := make([]R, 0)
	for rows.Next() {
		record, meta, dest := a.table.target()
		dest = append(dest, &meta.LocationID, &meta.CreatedAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, apperrors.NewPersistenceError(fmt.Sprintf("failed to scan %s row", a.table.name), err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError(fmt.Sprintf("failed to iterate %s rows", a.table.name), err)
	}

	return records, nil
}

// ReplaceBatch swaps the location's rows for records in one transaction.
// Readers see either the previous batch or the new one.
func (a *RecordAdapter[R]) ReplaceBatch(ctx context.Context, locationID int64, records []R) error {
	deleteSQL, deleteArgs, err := a.deleteQuery(locationID)
	if err != nil {
		return err
	}

	var insertSQL string
	var insertArgs []interface{}
	if len(records) > 0 {
		rows := make([]interface{}, 0, len(records))
		for _, record := range records {
			row := a.table.row(record)
			row["location_id"] = locationID
			row["created_at"] = record.FetchedAt()
			rows = append(rows, row)
		}
		insertSQL, insertArgs, err = a.client.Dialect().
			Insert(a.table.name).
			Rows(rows...).
			Prepared(true).
			ToSQL()
		if err != nil {
			return apperrors.NewInternalError(fmt.Sprintf("failed to build %s insert", a.table.name), err)
		}
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewPersistenceError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteSQL, deleteArgs...); err != nil {
		return apperrors.NewPersistenceError(fmt.Sprintf("failed to clear %s", a.table.name), err)
	}
	if insertSQL != "" {
		if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
			return apperrors.NewPersistenceError(fmt.Sprintf("failed to insert %s", a.table.name), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewPersistenceError(fmt.Sprintf("failed to commit %s batch", a.table.name), err)
	}
	return nil
}

// DeleteByLocation removes the location's rows
func (a *RecordAdapter[R]) DeleteByLocation(ctx context.Context, locationID int64) error {
	query, args, err := a.deleteQuery(locationID)
	if err != nil {
		return err
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewPersistenceError(fmt.Sprintf("failed to delete %s", a.table.name), err)
	}
	return nil
}

func (a *RecordAdapter[R]) deleteQuery(locationID int64) (string, []interface{}, error) {
	query, args, err := a.client.Dialect().
		Delete(a.table.name).
		Where(goqu.C("location_id").Eq(locationID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", nil, apperrors.NewInternalError(fmt.Sprintf("failed to build %s delete", a.table.name), err)
	}
	return query, args, nil
}
