// Package mocks provides testify mocks of the service ports.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/gigbook/internal/domain"
	"github.com/kirinyoku/gigbook/internal/service/ports"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func register(t testingT, m *mock.Mock) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

func get[T any](args mock.Arguments, i int) T {
	var zero T
	if v := args.Get(i); v != nil {
		return v.(T)
	}
	return zero
}

// MockBookingRepo mocks ports.BookingRepo.
type MockBookingRepo struct {
	mock.Mock
}

func NewMockBookingRepo(t testingT) *MockBookingRepo {
	m := &MockBookingRepo{}
	register(t, &m.Mock)
	return m
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	return get[*domain.Booking](args, 0), args.Error(1)
}

func (m *MockBookingRepo) GetView(ctx context.Context, id uuid.UUID) (*domain.BookingView, error) {
	args := m.Called(ctx, id)
	return get[*domain.BookingView](args, 0), args.Error(1)
}

func (m *MockBookingRepo) ListActiveForArtist(ctx context.Context, artistID uuid.UUID, from, to time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, artistID, from, to)
	return get[[]domain.Booking](args, 0), args.Error(1)
}

func (m *MockBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, id, status)
	return get[*domain.Booking](args, 0), args.Error(1)
}

func (m *MockBookingRepo) UpdatePayment(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, depositPaid *bool) (*domain.Booking, error) {
	args := m.Called(ctx, id, status, depositPaid)
	return get[*domain.Booking](args, 0), args.Error(1)
}

func (m *MockBookingRepo) List(ctx context.Context, q domain.BookingQuery) ([]domain.BookingView, error) {
	args := m.Called(ctx, q)
	return get[[]domain.BookingView](args, 0), args.Error(1)
}

// MockEventCatalog mocks ports.EventCatalog.
type MockEventCatalog struct {
	mock.Mock
}

func NewMockEventCatalog(t testingT) *MockEventCatalog {
	m := &MockEventCatalog{}
	register(t, &m.Mock)
	return m
}

func (m *MockEventCatalog) FindByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	args := m.Called(ctx, id)
	return get[*domain.Event](args, 0), args.Error(1)
}

// MockArtistDirectory mocks ports.ArtistDirectory.
type MockArtistDirectory struct {
	mock.Mock
}

func NewMockArtistDirectory(t testingT) *MockArtistDirectory {
	m := &MockArtistDirectory{}
	register(t, &m.Mock)
	return m
}

func (m *MockArtistDirectory) FindByID(ctx context.Context, id uuid.UUID) (*domain.Artist, error) {
	args := m.Called(ctx, id)
	return get[*domain.Artist](args, 0), args.Error(1)
}

func (m *MockArtistDirectory) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Artist, error) {
	args := m.Called(ctx, userID)
	return get[*domain.Artist](args, 0), args.Error(1)
}

// MockIdentityStore mocks ports.IdentityStore.
type MockIdentityStore struct {
	mock.Mock
}

func NewMockIdentityStore(t testingT) *MockIdentityStore {
	m := &MockIdentityStore{}
	register(t, &m.Mock)
	return m
}

func (m *MockIdentityStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	return get[*domain.User](args, 0), args.Error(1)
}

// MockViewCache mocks ports.ViewCache.
type MockViewCache struct {
	mock.Mock
}

func NewMockViewCache(t testingT) *MockViewCache {
	m := &MockViewCache{}
	register(t, &m.Mock)
	return m
}

func (m *MockViewCache) LoadBookingView(
	ctx context.Context,
	id uuid.UUID,
	load func(ctx context.Context) (*domain.BookingView, error),
) (*domain.BookingView, error) {
	args := m.Called(ctx, id, load)
	return get[*domain.BookingView](args, 0), args.Error(1)
}

func (m *MockViewCache) InvalidateBooking(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockRateLimiter mocks ports.RateLimiter.
type MockRateLimiter struct {
	mock.Mock
}

func NewMockRateLimiter(t testingT) *MockRateLimiter {
	m := &MockRateLimiter{}
	register(t, &m.Mock)
	return m
}

func (m *MockRateLimiter) Allow(ctx context.Context, callerID string) (bool, int64, time.Duration, error) {
	args := m.Called(ctx, callerID)
	return args.Bool(0), get[int64](args, 1), get[time.Duration](args, 2), args.Error(3)
}

// Repos bundles mock repositories as a ports.Repos.
type Repos struct {
	BookingRepo *MockBookingRepo
	EventRepo   *MockEventCatalog
	ArtistRepo  *MockArtistDirectory
	UserRepo    *MockIdentityStore
}

func NewRepos(t testingT) *Repos {
	return &Repos{
		BookingRepo: NewMockBookingRepo(t),
		EventRepo:   NewMockEventCatalog(t),
		ArtistRepo:  NewMockArtistDirectory(t),
		UserRepo:    NewMockIdentityStore(t),
	}
}

func (r *Repos) Bookings() ports.BookingRepo    { return r.BookingRepo }
func (r *Repos) Events() ports.EventCatalog     { return r.EventRepo }
func (r *Repos) Artists() ports.ArtistDirectory { return r.ArtistRepo }
func (r *Repos) Users() ports.IdentityStore     { return r.UserRepo }

// UnitOfWork runs callbacks directly against Repos. After-commit hooks run
// only when the callback succeeds.
type UnitOfWork struct {
	Repos ports.Repos
	Calls int
}

func (u *UnitOfWork) Do(
	ctx context.Context,
	fn func(ctx context.Context, repos ports.Repos, after func(ports.AfterCommit)) error,
) error {
	u.Calls++

	var hooks []ports.AfterCommit
	if err := fn(ctx, u.Repos, func(h ports.AfterCommit) { hooks = append(hooks, h) }); err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
