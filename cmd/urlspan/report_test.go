package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praetorian-inc/urlspan/pkg/types"
)

// scanToDatastore scans scanDoc into a fresh SQLite datastore and returns
// the datastore and scanned file paths.
func scanToDatastore(t *testing.T) (dbPath, file string) {
	t.Helper()
	tmpDir := t.TempDir()
	file = writeScanFile(t, tmpDir, "notes.md", scanDoc)
	dbPath = filepath.Join(tmpDir, "scan.db")

	resetScanFlags(dbPath)
	cmd, _, _ := newTestCmd()
	require.NoError(t, runScan(cmd, []string{file}))
	return dbPath, file
}

func resetReportFlags(dbPath string) {
	reportDatastore = dbPath
	reportFormat = "human"
	reportColor = "never"
	reportMaxMatches = 3
}

func TestRunReport_Human(t *testing.T) {
	dbPath, file := scanToDatastore(t)
	resetReportFlags(dbPath)

	cmd, stdout, _ := newTestCmd()
	require.NoError(t, runReport(cmd, nil))

	output := stdout.String()
	assert.Contains(t, output, "Finding 1/2 (id "+types.ComputeFindingID("https://a.io/x_(y)")+")")
	assert.Contains(t, output, "URL: https://a.io/x_(y)")
	assert.Contains(t, output, "Host: a.io")
	assert.Contains(t, output, "Match 1/2")
	assert.Contains(t, output, "Match 2/2")
	assert.Contains(t, output, "File: "+file)
	assert.Contains(t, output, "Lines: 1:6-1:23")
	assert.Contains(t, output, "Lines: 2:7-2:24")
	assert.Contains(t, output, "Finding 2/2")
	assert.Contains(t, output, "URL: http://b.io")
	assert.Contains(t, output, "Lines: 1:31-1:41")
	assert.NotContains(t, output, "\x1b[", "color=never emits no escapes")

	// a.io is reported before b.io
	assert.Less(t, strings.Index(output, "URL: https://a.io"), strings.Index(output, "URL: http://b.io"))
}

func TestRunReport_HumanMaxMatches(t *testing.T) {
	dbPath, _ := scanToDatastore(t)
	resetReportFlags(dbPath)
	reportMaxMatches = 1

	cmd, stdout, _ := newTestCmd()
	require.NoError(t, runReport(cmd, nil))

	output := stdout.String()
	assert.Contains(t, output, "Showing 1/2 matches:")
	assert.NotContains(t, output, "Lines: 2:7-2:24")
}

func TestRunReport_JSON(t *testing.T) {
	dbPath, _ := scanToDatastore(t)
	resetReportFlags(dbPath)
	reportFormat = "json"

	cmd, stdout, _ := newTestCmd()
	require.NoError(t, runReport(cmd, nil))

	var findings []types.Finding
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &findings))
	require.Len(t, findings, 2)

	assert.Equal(t, "https://a.io/x_(y)", findings[0].URL)
	require.Len(t, findings[0].Matches, 2)
	assert.Equal(t, int64(5), findings[0].Matches[0].Location.Offset.Start)
	assert.Equal(t, int64(23), findings[0].Matches[0].Location.Offset.End)
	assert.Equal(t, "https://a.io/x_(y)", string(findings[0].Matches[0].Snippet.Matching))

	assert.Equal(t, "http://b.io", findings[1].URL)
	assert.Len(t, findings[1].Matches, 1)
}

func TestRunReport_SARIF(t *testing.T) {
	dbPath, _ := scanToDatastore(t)
	resetReportFlags(dbPath)
	reportFormat = "sarif"

	cmd, stdout, _ := newTestCmd()
	require.NoError(t, runReport(cmd, nil))

	var log struct {
		Runs []struct {
			Results []struct {
				Message struct {
					Text string `json:"text"`
				} `json:"message"`
			} `json:"results"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &log))
	require.Len(t, log.Runs, 1)
	require.Len(t, log.Runs[0].Results, 3)
	assert.Equal(t, "http://b.io", log.Runs[0].Results[1].Message.Text)
}

func TestRunReport_Errors(t *testing.T) {
	cmd, _, _ := newTestCmd()

	resetReportFlags(":memory:")
	assert.Error(t, runReport(cmd, nil))

	resetReportFlags(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, runReport(cmd, nil))

	dbPath, _ := scanToDatastore(t)
	resetReportFlags(dbPath)
	reportFormat = "xml"
	assert.Error(t, runReport(cmd, nil))
}

func TestRunReport_Empty(t *testing.T) {
	tmpDir := t.TempDir()
	file := writeScanFile(t, tmpDir, "plain.txt", "no links here\n")
	dbPath := filepath.Join(tmpDir, "scan.db")

	resetScanFlags(dbPath)
	cmd, _, _ := newTestCmd()
	require.NoError(t, runScan(cmd, []string{file}))

	resetReportFlags(dbPath)
	cmd, stdout, _ := newTestCmd()
	require.NoError(t, runReport(cmd, nil))
	assert.Equal(t, "No URLs found.\n", stdout.String())
}

func TestColorEnabled(t *testing.T) {
	assert.True(t, colorEnabled("always"))
	assert.False(t, colorEnabled("never"))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, colorEnabled("auto"))
}

func TestNewStyles(t *testing.T) {
	assert.Contains(t, newStyles(true).url.Sprint("x"), "\x1b[")
	assert.Equal(t, "x", newStyles(false).url.Sprint("x"))
}

func TestFormatSnippetWithParts(t *testing.T) {
	t.Run("short snippet is kept whole", func(t *testing.T) {
		parts := formatSnippetWithParts([]byte("see ("), []byte("https://a.io"), []byte(")"), 100)
		assert.Equal(t, snippetParts{before: "see (", matching: "https://a.io", after: ")"}, parts)
	})

	t.Run("long context is trimmed around the match", func(t *testing.T) {
		before := []byte(strings.Repeat("b", 100))
		after := []byte(strings.Repeat("a", 100))
		parts := formatSnippetWithParts(before, []byte("https://a.io"), after, 40)

		assert.Equal(t, "...", parts.prefix)
		assert.Equal(t, "...", parts.suffix)
		assert.Equal(t, "https://a.io", parts.matching)
		assert.Equal(t, 11, len(parts.before))
		assert.Equal(t, 11, len(parts.after))
	})

	t.Run("long match is truncated", func(t *testing.T) {
		parts := formatSnippetWithParts(nil, []byte("https://a.io/"+strings.Repeat("x", 50)), nil, 20)
		assert.Equal(t, "https://a.io", parts.matching[:12])
		assert.Len(t, parts.matching, 14)
		assert.Equal(t, "...", parts.prefix)
	})
}

func TestProvenanceLabel(t *testing.T) {
	assert.Equal(t, "File:", provenanceLabel(types.FileProvenance{FilePath: "a"}))
	assert.Equal(t, "Document:", provenanceLabel(types.ArchiveProvenance{ArchivePath: "a.pdf", MemberPath: "page/1"}))
	assert.Equal(t, "Stream:", provenanceLabel(types.StreamProvenance{Name: "stdin"}))
	assert.Equal(t, "Git:", provenanceLabel(types.GitProvenance{BlobPath: "a"}))
	assert.Equal(t, "Git acme/site:", provenanceLabel(types.GitProvenance{RepoPath: "acme/site", BlobPath: "a"}))
	assert.Equal(t, "Commit 01234567:", provenanceLabel(types.GitProvenance{
		Commit: &types.CommitMetadata{CommitID: "0123456789abcdef"},
	}))
}
