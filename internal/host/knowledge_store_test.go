package host

import (
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockKnowledgeStore(t *testing.T) (*KnowledgeStoreHost, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &KnowledgeStoreHost{
		DefaultHost: NewDefaultHost(),
		db:          db,
		table:       "knowledge_records",
		logger:      zap.NewNop(),
	}, mock
}

func TestKnowledgeStoreReturnsMatchingRows(t *testing.T) {
	h, mock := newMockKnowledgeStore(t)

	rows := sqlmock.NewRows([]string{"title", "summary", "confidence", "source"}).
		AddRow("Go concurrency", "goroutines and channels", 0.9, "docs").
		AddRow("Go generics", "type parameters", 0.7, "docs")
	mock.ExpectQuery("SELECT title, summary, confidence, source FROM knowledge_records").
		WithArgs("%go%", "%go%").
		WillReturnRows(rows)

	records, err := h.Knowledge("go", nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "Go concurrency", records[0]["title"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKnowledgeStoreFiltersBySource(t *testing.T) {
	h, mock := newMockKnowledgeStore(t)

	rows := sqlmock.NewRows([]string{"title", "summary", "confidence", "source"}).
		AddRow("Go generics", "type parameters", 0.7, "docs")
	mock.ExpectQuery("SELECT title, summary, confidence, source FROM knowledge_records").
		WithArgs("%go%", "%go%", "docs").
		WillReturnRows(rows)

	records, err := h.Knowledge("go", map[string]interface{}{"source": "docs"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "docs", records[0]["source"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKnowledgeStorePropagatesQueryError(t *testing.T) {
	h, mock := newMockKnowledgeStore(t)

	mock.ExpectQuery("SELECT title, summary, confidence, source FROM knowledge_records").
		WillReturnError(assert.AnError)

	_, err := h.Knowledge("go", nil)
	assert.Error(t, err)
}

func TestKnowledgeStoreEmptyResultSet(t *testing.T) {
	h, mock := newMockKnowledgeStore(t)

	rows := sqlmock.NewRows([]string{"title", "summary", "confidence", "source"})
	mock.ExpectQuery("SELECT title, summary, confidence, source FROM knowledge_records").
		WillReturnRows(rows)

	records, err := h.Knowledge("nothing matches this", nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}
