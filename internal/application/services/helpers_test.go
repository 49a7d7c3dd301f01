package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cityexplorer/backend/internal/domain/entities"
	"github.com/cityexplorer/backend/internal/domain/providers"
)

// Mocks

type MockWeatherProvider struct {
	mock.Mock
}

func (m *MockWeatherProvider) Fetch(ctx context.Context, query providers.Query) ([]*entities.Weather, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Weather), args.Error(1)
}

type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) GetBySearchQuery(ctx context.Context, searchQuery string) (*entities.Location, error) {
	args := m.Called(ctx, searchQuery)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Location), args.Error(1)
}

func (m *MockLocationRepository) GetByID(ctx context.Context, id int64) (*entities.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Location), args.Error(1)
}

func (m *MockLocationRepository) CreateIfAbsent(ctx context.Context, location *entities.Location) (*entities.Location, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Location), args.Error(1)
}

type MockGeocodingProvider struct {
	mock.Mock
}

func (m *MockGeocodingProvider) Geocode(ctx context.Context, text string) (*entities.Location, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Location), args.Error(1)
}

// Fakes

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memStore is an in-memory RecordRepository
type memStore[R entities.Record] struct {
	mu         sync.Mutex
	rows       map[int64][]R
	replaces   int
	replaceErr error
}

func newMemStore[R entities.Record]() *memStore[R] {
	return &memStore[R]{rows: make(map[int64][]R)}
}

func (s *memStore[R]) ListByLocation(ctx context.Context, locationID int64) ([]R, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]R, len(s.rows[locationID]))
	copy(out, s.rows[locationID])
	return out, nil
}

func (s *memStore[R]) ReplaceBatch(ctx context.Context, locationID int64, records []R) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.replaces++
	s.rows[locationID] = append([]R(nil), records...)
	return nil
}

func (s *memStore[R]) DeleteByLocation(ctx context.Context, locationID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, locationID)
	return nil
}

func (s *memStore[R]) seed(locationID int64, at time.Time, records ...R) {
	for _, r := range records {
		r.Stamp(locationID, at)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[locationID] = records
}

func forecast(days ...string) []*entities.Weather {
	out := make([]*entities.Weather, 0, len(days))
	for _, d := range days {
		out = append(out, &entities.Weather{Forecast: "Rain", Time: d})
	}
	return out
}
