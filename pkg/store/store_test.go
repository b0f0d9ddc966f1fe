//go:build !wasm

package store

import (
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/urlspan/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forEachStore runs fn against every backend.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		s := NewMemory()
		defer s.Close()
		fn(t, s)
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := NewSQLite(filepath.Join(t.TempDir(), "urlspan.db"))
		require.NoError(t, err)
		defer s.Close()
		fn(t, s)
	})
}

func testMatch(content string, start, end int) *types.Match {
	c := []byte(content)
	m := &types.Match{
		BlobID:   types.ComputeBlobID(c),
		URL:      content[start:end],
		Scheme:   "https",
		Host:     "a.io",
		Location: types.NewLocation(c, start, end),
		Snippet: types.Snippet{
			Before:   c[:start],
			Matching: c[start:end],
		},
	}
	m.StructuralID = m.ComputeStructuralID()
	m.FindingID = types.ComputeFindingID(m.URL)
	return m
}

func TestNew(t *testing.T) {
	s, err := New(Config{Path: ":memory:"})
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &MemoryStore{}, s)

	s2, err := New(Config{Path: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	defer s2.Close()
	assert.IsType(t, &SQLiteStore{}, s2)

	_, err = New(Config{})
	assert.Error(t, err)
}

func TestStore_Interface(t *testing.T) {
	var _ Store = (*SQLiteStore)(nil)
	var _ Store = (*MemoryStore)(nil)
}

func TestStore_E2E(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		// Arrange
		content := "see https://a.io/x now"
		match := testMatch(content, 4, 18)

		require.NoError(t, s.AddBlob(match.BlobID, int64(len(content))))
		require.NoError(t, s.AddMatch(match))
		require.NoError(t, s.AddFinding(types.NewFinding(match)))
		require.NoError(t, s.AddProvenance(match.BlobID, types.FileProvenance{FilePath: "notes.txt"}))

		// Act
		matches, err := s.GetMatches(match.BlobID)
		require.NoError(t, err)
		findings, err := s.GetFindings()
		require.NoError(t, err)

		// Assert
		require.Len(t, matches, 1)
		got := matches[0]
		assert.Equal(t, match.BlobID, got.BlobID)
		assert.Equal(t, match.StructuralID, got.StructuralID)
		assert.Equal(t, match.FindingID, got.FindingID)
		assert.Equal(t, "https://a.io/x", got.URL)
		assert.Equal(t, "https", got.Scheme)
		assert.Equal(t, "a.io", got.Host)
		assert.Equal(t, match.Location, got.Location)
		assert.Equal(t, "see ", string(got.Snippet.Before))
		assert.Equal(t, "https://a.io/x", string(got.Snippet.Matching))

		require.Len(t, findings, 1)
		assert.Equal(t, match.FindingID, findings[0].ID)
		assert.Equal(t, "https://a.io/x", findings[0].URL)

		exists, err := s.FindingExists(match.FindingID)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = s.BlobExists(match.BlobID)
		require.NoError(t, err)
		assert.True(t, exists)

		prov, err := s.GetProvenance(match.BlobID)
		require.NoError(t, err)
		assert.Equal(t, types.FileProvenance{FilePath: "notes.txt"}, prov)
	})
}

func TestStore_Idempotent(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		match := testMatch("https://a.io", 0, 12)

		for i := 0; i < 2; i++ {
			require.NoError(t, s.AddBlob(match.BlobID, 12))
			require.NoError(t, s.AddMatch(match))
			require.NoError(t, s.AddFinding(types.NewFinding(match)))
			require.NoError(t, s.AddProvenance(match.BlobID, types.StreamProvenance{Name: "stdin"}))
		}

		all, err := s.GetAllMatches()
		require.NoError(t, err)
		assert.Len(t, all, 1)

		findings, err := s.GetFindings()
		require.NoError(t, err)
		assert.Len(t, findings, 1)

		provs, err := s.GetAllProvenance(match.BlobID)
		require.NoError(t, err)
		assert.Len(t, provs, 1)
	})
}

func TestStore_GetMatchesByFinding(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		a := testMatch("https://a.io https://a.io", 0, 12)
		b := testMatch("https://a.io https://a.io", 13, 25)
		other := testMatch("x https://b.io", 2, 14)

		for _, m := range []*types.Match{a, b, other} {
			require.NoError(t, s.AddBlob(m.BlobID, 0))
			require.NoError(t, s.AddMatch(m))
		}

		got, err := s.GetMatchesByFinding(a.FindingID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, int64(0), got[0].Location.Offset.Start)
		assert.Equal(t, int64(13), got[1].Location.Offset.Start)

		none, err := s.GetMatchesByFinding("missing")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestStore_FindingsKeepInsertionOrder(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		urls := []string{"https://c.io", "https://a.io", "https://b.io"}
		for _, u := range urls {
			require.NoError(t, s.AddFinding(&types.Finding{ID: types.ComputeFindingID(u), URL: u}))
		}

		findings, err := s.GetFindings()
		require.NoError(t, err)
		require.Len(t, findings, 3)
		for i, u := range urls {
			assert.Equal(t, u, findings[i].URL)
		}
	})
}

func TestStore_ProvenanceKinds(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		blobID := types.ComputeBlobID([]byte("content"))
		require.NoError(t, s.AddBlob(blobID, 7))

		provs := []types.Provenance{
			types.FileProvenance{FilePath: "a.txt"},
			types.GitProvenance{RepoPath: "/repo", BlobPath: "docs/x.md", Commit: &types.CommitMetadata{CommitID: "abc123"}},
			types.ArchiveProvenance{ArchivePath: "report.docx", MemberPath: "word/document.xml"},
			types.StreamProvenance{Name: "stdin"},
		}
		for _, p := range provs {
			require.NoError(t, s.AddProvenance(blobID, p))
		}

		got, err := s.GetAllProvenance(blobID)
		require.NoError(t, err)
		require.Len(t, got, len(provs))
		for i, p := range provs {
			assert.Equal(t, p.Kind(), got[i].Kind())
			assert.Equal(t, p.Path(), got[i].Path())
		}

		git, ok := got[1].(types.GitProvenance)
		require.True(t, ok)
		assert.Equal(t, "/repo", git.RepoPath)
		require.NotNil(t, git.Commit)
		assert.Equal(t, "abc123", git.Commit.CommitID)
	})
}

func TestStore_MissingRecords(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		blobID := types.ComputeBlobID([]byte("nothing"))

		exists, err := s.BlobExists(blobID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = s.FindingExists("missing")
		require.NoError(t, err)
		assert.False(t, exists)

		matches, err := s.GetMatches(blobID)
		require.NoError(t, err)
		assert.Empty(t, matches)

		_, err = s.GetProvenance(blobID)
		assert.Error(t, err)
	})
}
