package issuance_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ticketgenie/internal/catalog"
	"ticketgenie/internal/config"
	"ticketgenie/internal/issuance"
	"ticketgenie/internal/ledger"
	"ticketgenie/internal/logger"
	"ticketgenie/internal/models"
)

// Mock implementations

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetShow(ctx context.Context, id int64) (*models.Show, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Show), args.Error(1)
}

func (m *MockCatalog) ReserveSeats(ctx context.Context, id int64, n int) error {
	args := m.Called(id, n)
	return args.Error(0)
}

func (m *MockCatalog) ReleaseSeats(ctx context.Context, id int64, n int) error {
	args := m.Called(id, n)
	return args.Error(0)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Insert(ctx context.Context, booking *models.Booking) error {
	args := m.Called(booking)
	if args.Error(0) == nil {
		booking.BookingID = 42
	}
	return args.Error(0)
}

func (m *MockLedger) Get(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockLedger) Delete(ctx context.Context, id int64) error {
	args := m.Called(id)
	return args.Error(0)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(receipt models.BookingReceipt) ([]byte, error) {
	args := m.Called(receipt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, recipient string, document []byte, filename string) error {
	args := m.Called(recipient, document, filename)
	return args.Error(0)
}

type MockLock struct {
	mock.Mock
}

func (m *MockLock) LockShow(ctx context.Context, showID int64, token string) (bool, error) {
	args := m.Called(showID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLock) UnlockShow(ctx context.Context, showID int64, token string) error {
	args := m.Called(showID)
	return args.Error(0)
}

func testShow() *models.Show {
	return &models.Show{
		ID:             1,
		Name:           "Dune",
		Genre:          "Sci-Fi",
		Price:          200,
		Date:           time.Now().AddDate(0, 0, 7),
		Showtime:       "06:30 PM",
		AvailableSeats: 3,
	}
}

func newMockedService(cat *MockCatalog, led *MockLedger, lock *MockLock, ren *MockRenderer, not *MockNotifier) *issuance.Service {
	return issuance.NewService(cat, led, lock, ren, not, nil, config.TopicConfig{}, logger.NewConsoleLogger())
}

func TestIssueSuccess(t *testing.T) {
	cat := new(MockCatalog)
	led := new(MockLedger)
	lock := new(MockLock)
	ren := new(MockRenderer)
	not := new(MockNotifier)

	cat.On("GetShow", int64(1)).Return(testShow(), nil)
	lock.On("LockShow", int64(1)).Return(true, nil)
	lock.On("UnlockShow", int64(1)).Return(nil)
	led.On("Insert", mock.AnythingOfType("*models.Booking")).Return(nil)
	cat.On("ReserveSeats", int64(1), 2).Return(nil)
	ren.On("Render", mock.AnythingOfType("models.BookingReceipt")).Return([]byte("%PDF"), nil)
	not.On("Send", "alice@x.com", []byte("%PDF"), "ticket_Alice.pdf").Return(nil)

	svc := newMockedService(cat, led, lock, ren, not)
	receipt, err := svc.Issue(context.Background(), 1, 2, "Alice", "alice@x.com", "555-1234")

	assert.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, int64(42), receipt.BookingID)
	assert.Equal(t, "Dune", receipt.Movie)
	assert.Equal(t, 2, receipt.TicketCount)
	assert.Equal(t, 400.0, receipt.TotalPrice)

	cat.AssertExpectations(t)
	led.AssertExpectations(t)
	lock.AssertExpectations(t)
	ren.AssertExpectations(t)
	not.AssertExpectations(t)
}

func TestIssueValidation(t *testing.T) {
	svc := newMockedService(new(MockCatalog), new(MockLedger), new(MockLock), new(MockRenderer), new(MockNotifier))

	_, err := svc.Issue(context.Background(), 1, 0, "Alice", "alice@x.com", "555-1234")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Issue(context.Background(), 1, 1, "", "alice@x.com", "555-1234")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestIssueCapacityCheckedBeforeInsert(t *testing.T) {
	cat := new(MockCatalog)
	led := new(MockLedger)

	cat.On("GetShow", int64(1)).Return(testShow(), nil)

	svc := newMockedService(cat, led, new(MockLock), new(MockRenderer), new(MockNotifier))
	_, err := svc.Issue(context.Background(), 1, 5, "Alice", "alice@x.com", "555-1234")

	assert.ErrorIs(t, err, models.ErrCapacity)
	led.AssertNotCalled(t, "Insert", mock.Anything)
}

// A reservation refused by the store (a concurrent session won the race)
// must remove the booking row and must not render or send anything.
func TestIssueReserveRaceDeletesBooking(t *testing.T) {
	cat := new(MockCatalog)
	led := new(MockLedger)
	lock := new(MockLock)
	ren := new(MockRenderer)
	not := new(MockNotifier)

	cat.On("GetShow", int64(1)).Return(testShow(), nil)
	lock.On("LockShow", int64(1)).Return(false, nil)
	led.On("Insert", mock.AnythingOfType("*models.Booking")).Return(nil)
	cat.On("ReserveSeats", int64(1), 2).Return(models.ErrCapacity)
	led.On("Delete", int64(42)).Return(nil)

	svc := newMockedService(cat, led, lock, ren, not)
	receipt, err := svc.Issue(context.Background(), 1, 2, "Alice", "alice@x.com", "555-1234")

	assert.ErrorIs(t, err, models.ErrCapacity)
	assert.Nil(t, receipt)
	led.AssertCalled(t, "Delete", int64(42))
	ren.AssertNotCalled(t, "Render", mock.Anything)
	not.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestIssueRenderFailureKeepsBooking(t *testing.T) {
	cat := new(MockCatalog)
	led := new(MockLedger)
	lock := new(MockLock)
	ren := new(MockRenderer)
	not := new(MockNotifier)

	cat.On("GetShow", int64(1)).Return(testShow(), nil)
	lock.On("LockShow", int64(1)).Return(true, nil)
	lock.On("UnlockShow", int64(1)).Return(nil)
	led.On("Insert", mock.AnythingOfType("*models.Booking")).Return(nil)
	cat.On("ReserveSeats", int64(1), 1).Return(nil)
	ren.On("Render", mock.AnythingOfType("models.BookingReceipt")).Return(nil, errors.New("font missing"))

	svc := newMockedService(cat, led, lock, ren, not)
	receipt, err := svc.Issue(context.Background(), 1, 1, "Alice", "alice@x.com", "555-1234")

	assert.ErrorIs(t, err, models.ErrDelivery)
	require.NotNil(t, receipt)
	assert.Equal(t, int64(42), receipt.BookingID)

	// The reservation stands: no delete, no release.
	led.AssertNotCalled(t, "Delete", mock.Anything)
	cat.AssertNotCalled(t, "ReleaseSeats", mock.Anything, mock.Anything)
	not.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestIssueSendFailureKeepsBooking(t *testing.T) {
	cat := new(MockCatalog)
	led := new(MockLedger)
	lock := new(MockLock)
	ren := new(MockRenderer)
	not := new(MockNotifier)

	cat.On("GetShow", int64(1)).Return(testShow(), nil)
	lock.On("LockShow", int64(1)).Return(true, nil)
	lock.On("UnlockShow", int64(1)).Return(nil)
	led.On("Insert", mock.AnythingOfType("*models.Booking")).Return(nil)
	cat.On("ReserveSeats", int64(1), 1).Return(nil)
	ren.On("Render", mock.AnythingOfType("models.BookingReceipt")).Return([]byte("%PDF"), nil)
	not.On("Send", "alice@x.com", []byte("%PDF"), "ticket_Alice.pdf").Return(errors.New("smtp down"))

	svc := newMockedService(cat, led, lock, ren, not)
	receipt, err := svc.Issue(context.Background(), 1, 1, "Alice", "alice@x.com", "555-1234")

	assert.ErrorIs(t, err, models.ErrDelivery)
	require.NotNil(t, receipt)
	led.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestCancelRestoresStoredCount(t *testing.T) {
	cat := new(MockCatalog)
	led := new(MockLedger)

	stored := &models.Booking{BookingID: 42, Name: "Alice", Email: "alice@x.com", ShowID: 1, TicketCount: 3}
	led.On("Get", int64(42)).Return(stored, nil)
	led.On("Delete", int64(42)).Return(nil)
	// Restored by the booking's own count, not anything caller-supplied.
	cat.On("ReleaseSeats", int64(1), 3).Return(nil)

	svc := newMockedService(cat, led, new(MockLock), new(MockRenderer), new(MockNotifier))
	assert.NoError(t, svc.Cancel(context.Background(), 42))

	cat.AssertExpectations(t)
	led.AssertExpectations(t)
}

func TestCancelNotFound(t *testing.T) {
	led := new(MockLedger)
	led.On("Get", int64(999)).Return(nil, models.ErrNotFound)

	svc := newMockedService(new(MockCatalog), led, new(MockLock), new(MockRenderer), new(MockNotifier))
	assert.ErrorIs(t, svc.Cancel(context.Background(), 999), models.ErrNotFound)
}

// Issue then cancel against real (in-memory sqlite) stores returns the
// show to its original seat count.
func TestIssueCancelRoundTrip(t *testing.T) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	defer bunDB.Close()

	ctx := context.Background()
	_, err = bunDB.NewCreateTable().Model((*models.Show)(nil)).Exec(ctx)
	require.NoError(t, err)
	_, err = bunDB.NewCreateTable().Model((*models.Booking)(nil)).Exec(ctx)
	require.NoError(t, err)

	show := &models.Show{Name: "Dune", Price: 200, Showtime: "06:30 PM", Date: time.Now(), AvailableSeats: 3}
	_, err = bunDB.NewInsert().Model(show).Exec(ctx)
	require.NoError(t, err)

	ren := new(MockRenderer)
	not := new(MockNotifier)
	ren.On("Render", mock.AnythingOfType("models.BookingReceipt")).Return([]byte("%PDF"), nil)
	not.On("Send", "alice@x.com", mock.Anything, mock.Anything).Return(nil)

	catalogDB := &catalog.DB{Bun: bunDB}
	ledgerDB := &ledger.DB{Bun: bunDB}
	svc := issuance.NewService(catalogDB, ledgerDB, nil, ren, not, nil, config.TopicConfig{}, logger.NewConsoleLogger())

	receipt, err := svc.Issue(ctx, show.ID, 2, "Alice", "alice@x.com", "555-1234")
	require.NoError(t, err)

	mid, err := catalogDB.GetShow(ctx, show.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, mid.AvailableSeats)

	require.NoError(t, svc.Cancel(ctx, receipt.BookingID))

	after, err := catalogDB.GetShow(ctx, show.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.AvailableSeats)

	_, err = ledgerDB.Get(ctx, receipt.BookingID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "ticket_Alice_Smith.pdf", issuance.Filename("Alice Smith"))
	assert.Equal(t, "ticket_customer.pdf", issuance.Filename("!!!"))
}
