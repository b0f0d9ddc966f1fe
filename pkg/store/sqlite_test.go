//go:build !wasm

package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/urlspan/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	// Arrange
	dbPath := filepath.Join(t.TempDir(), "urlspan.db")
	match := testMatch("go to https://a.io", 6, 18)

	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.AddBlob(match.BlobID, 18))
	require.NoError(t, s.AddMatch(match))
	require.NoError(t, s.AddFinding(types.NewFinding(match)))
	require.NoError(t, s.Close())

	// Act
	reopened, err := NewSQLite(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	// Assert
	exists, err := reopened.BlobExists(match.BlobID)
	require.NoError(t, err)
	assert.True(t, exists)

	all, err := reopened.GetAllMatches()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "https://a.io", all[0].URL)
	assert.Equal(t, 1, all[0].Location.Source.Start.Line)
	assert.Equal(t, 7, all[0].Location.Source.Start.Column)
}

func TestSQLite_InMemoryPath(t *testing.T) {
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()

	match := testMatch("https://a.io", 0, 12)
	require.NoError(t, s.AddBlob(match.BlobID, 12))
	require.NoError(t, s.AddMatch(match))

	all, err := s.GetAllMatches()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLite_NilSnippetContext(t *testing.T) {
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()

	match := testMatch("https://a.io", 0, 12)
	match.Snippet.Before = nil
	require.NoError(t, s.AddMatch(match))

	all, err := s.GetAllMatches()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].Snippet.Before)
	assert.Empty(t, all[0].Snippet.After)
}

func TestCreateSchema(t *testing.T) {
	// Arrange
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	// Act
	err = CreateSchema(db)

	// Assert
	require.NoError(t, err)

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)

	tables := []string{"blobs", "matches", "findings", "provenance"}
	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}
}

func TestCreateSchema_Idempotent(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	require.NoError(t, CreateSchema(db))
	assert.NoError(t, CreateSchema(db))
}

func TestCreateSchema_RejectsOtherVersion(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	_, err = db.Exec("CREATE TABLE schema_version (version INTEGER NOT NULL)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO schema_version (version) VALUES (70)")
	require.NoError(t, err)

	assert.Error(t, CreateSchema(db))
}
