package apicache

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func entryColumns() []string {
	return []string{"id", "cache_key", "api_source", "endpoint_url", "response_data", "status_code", "cached_at", "expires_at"}
}

func TestGetHitBeforeExpiry(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, zap.NewNop(), Options{})

	now := time.Now()
	rows := sqlmock.NewRows(entryColumns()).
		AddRow(1, "k1", "fmp", "https://example/api", []byte(`{"price":1}`), 200, now, now.Add(time.Hour))
	mock.ExpectQuery("SELECT \\* FROM `api_response_cache`").
		WillReturnRows(rows)

	payload, ok := store.Get(context.Background(), "k1")
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"price":1}`), payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMissAfterExpiry(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, zap.NewNop(), Options{})

	now := time.Now()
	rows := sqlmock.NewRows(entryColumns()).
		AddRow(1, "k1", "fmp", "https://example/api", []byte(`{}`), 200, now.Add(-2*time.Hour), now.Add(-time.Hour))
	mock.ExpectQuery("SELECT \\* FROM `api_response_cache`").
		WillReturnRows(rows)

	_, ok := store.Get(context.Background(), "k1")
	assert.False(t, ok)
}

func TestGetMissWhenAbsent(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, zap.NewNop(), Options{})

	mock.ExpectQuery("SELECT \\* FROM `api_response_cache`").
		WillReturnRows(sqlmock.NewRows(entryColumns()))

	_, ok := store.Get(context.Background(), "nope")
	assert.False(t, ok)
}

func TestGetShortCircuitsWhenDisabled(t *testing.T) {
	db, mock := setupMockDB(t)

	// No query expectations: a disabled cache must not touch the store.
	store := NewStore(db, zap.NewNop(), Options{Disabled: true})
	_, ok := store.Get(context.Background(), "k1")
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetShortCircuitsOnForceRefresh(t *testing.T) {
	db, mock := setupMockDB(t)

	store := NewStore(db, zap.NewNop(), Options{ForceRefresh: true})
	_, ok := store.Get(context.Background(), "k1")
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetUpserts(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, zap.NewNop(), Options{})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `api_response_cache`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	store.Set(context.Background(), "k1", "fmp", "https://example/api", []byte(`{}`), 200, time.Hour)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetFailureIsSwallowed(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, zap.NewNop(), Options{})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `api_response_cache`").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	// Must not panic or surface the error.
	store.Set(context.Background(), "k1", "fmp", "https://example/api", []byte(`{}`), 200, time.Hour)
}

func TestGetFailureIsMiss(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, zap.NewNop(), Options{})

	mock.ExpectQuery("SELECT \\* FROM `api_response_cache`").
		WillReturnError(assert.AnError)

	_, ok := store.Get(context.Background(), "k1")
	assert.False(t, ok)
}

func TestCleanupExpired(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, zap.NewNop(), Options{})

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `api_response_cache`").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	count, err := store.CleanupExpired(context.Background(), "fmp")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestCleanupExpiredEmptySourceSpansAllVendors(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewStore(db, zap.NewNop(), Options{})

	// No vendor filter may appear: Set never writes an empty api_source,
	// so a delete bound to '' would silently remove nothing.
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `api_response_cache` WHERE expires_at < \\?$").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	count, err := store.CleanupExpired(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
