package news

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"marketdata-manager/core/pipeline"
	"marketdata-manager/core/storage/mocks"
	"marketdata-manager/feature/instruments"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
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

const fmpNewsPayload = `[
	{"symbol":"AAPL","publishedDate":"2026-08-28 12:00:00","title":"Apple ships","site":"reuters.com","text":"Summary.","url":"https://example.com/a"},
	{"symbol":"AAPL","publishedDate":"2026-08-28 09:30:00","title":"Apple earns","site":"wsj.com","text":"Summary.","url":"https://example.com/b"}
]`

const marketauxPayload = `{
	"meta": {"found": 1, "returned": 1},
	"data": [
		{"uuid":"u1","title":"Markets rally","description":"Summary.","url":"https://example.com/c","source":"ft.com","published_at":"2026-08-28T12:00:00.000000Z"}
	]
}`

func TestParseArticlesFMP(t *testing.T) {
	articles, src, err := parseArticles([]byte(fmpNewsPayload))
	require.NoError(t, err)
	assert.Equal(t, SourceFMP, src)
	require.Len(t, articles, 2)
	assert.Equal(t, "Apple ships", articles[0].Title)
	assert.Equal(t, "reuters.com", articles[0].Publisher)
	assert.Equal(t, time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC), articles[0].PublishedAt)
}

func TestParseArticlesMarketaux(t *testing.T) {
	articles, src, err := parseArticles([]byte(marketauxPayload))
	require.NoError(t, err)
	assert.Equal(t, SourceMarketaux, src)
	require.Len(t, articles, 1)
	assert.Equal(t, "Markets rally", articles[0].Title)
	assert.Equal(t, "ft.com", articles[0].Publisher)
}

func TestParseArticlesRejectsGarbage(t *testing.T) {
	_, _, err := parseArticles([]byte(""))
	assert.Error(t, err)

	_, _, err = parseArticles([]byte(`{"data":[]}`))
	assert.Error(t, err)

	_, _, err = parseArticles([]byte(`[{"title":"no url"}]`))
	assert.Error(t, err)
}

func TestPersistStoresRowsAndArchives(t *testing.T) {
	db, dbMock := setupMockDB(t)
	archive := &mocks.Client{}
	archive.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	archive.On("PutObject", mock.Anything, "test-bucket",
		mock.MatchedBy(func(name string) bool { return strings.HasPrefix(name, "news/AAPL/") }),
		mock.Anything, mock.Anything, mock.Anything,
	).Return(minio.UploadInfo{}, nil)

	registry := instruments.NewService(db, zap.NewNop())
	svc := NewService(db, zap.NewNop(), registry, archive, "test-bucket", nil, nil)

	dbMock.ExpectBegin()
	dbMock.ExpectExec("INSERT INTO `news_articles`").
		WillReturnResult(sqlmock.NewResult(1, 2))
	dbMock.ExpectCommit()

	task := pipeline.Task{EntityID: 42, Symbol: "AAPL"}
	err := svc.persist(context.Background(), task, []byte(fmpNewsPayload))
	require.NoError(t, err)

	archive.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestPersistSurvivesArchiveFailure(t *testing.T) {
	db, dbMock := setupMockDB(t)
	archive := &mocks.Client{}
	archive.On("BucketExists", mock.Anything, "test-bucket").Return(false, errors.New("connection refused"))

	registry := instruments.NewService(db, zap.NewNop())
	svc := NewService(db, zap.NewNop(), registry, archive, "test-bucket", nil, nil)

	dbMock.ExpectBegin()
	dbMock.ExpectExec("INSERT INTO `news_articles`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	dbMock.ExpectCommit()

	task := pipeline.Task{EntityID: 42, Symbol: "AAPL"}
	err := svc.persist(context.Background(), task, []byte(marketauxPayload))
	require.NoError(t, err, "a dead archive must not fail the load")
	archive.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPersistCreatesBucketWhenMissing(t *testing.T) {
	db, dbMock := setupMockDB(t)
	archive := &mocks.Client{}
	archive.On("BucketExists", mock.Anything, "test-bucket").Return(false, nil)
	archive.On("MakeBucket", mock.Anything, "test-bucket", mock.Anything).Return(nil)
	archive.On("PutObject", mock.Anything, "test-bucket", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything,
	).Return(minio.UploadInfo{}, nil)

	registry := instruments.NewService(db, zap.NewNop())
	svc := NewService(db, zap.NewNop(), registry, archive, "test-bucket", nil, nil)

	dbMock.ExpectBegin()
	dbMock.ExpectExec("INSERT INTO `news_articles`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	dbMock.ExpectCommit()

	task := pipeline.Task{EntityID: 42, Symbol: "AAPL"}
	err := svc.persist(context.Background(), task, []byte(marketauxPayload))
	require.NoError(t, err)
	archive.AssertExpectations(t)
}
