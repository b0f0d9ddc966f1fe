package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/praetorian-inc/urlspan/pkg/enum"
	"github.com/praetorian-inc/urlspan/pkg/matcher"
	"github.com/praetorian-inc/urlspan/pkg/sarif"
	"github.com/praetorian-inc/urlspan/pkg/store"
	"github.com/praetorian-inc/urlspan/pkg/types"
)

var (
	scanOutputPath    string
	scanOutputFormat  string
	scanGit           bool
	scanMaxFileSize   int64
	scanIncludeHidden bool
	scanContextLines  int
	scanIncremental   bool
	scanExtract       string
	scanDedupe        string
	scanSchemes       string
)

var scanCmd = &cobra.Command{
	Use:   "scan [target]",
	Short: "Scan a target for URLs",
	Long: `Scan a file, directory, git repository or standard input ("-") for URLs.
With --github or --gitlab flags, scan repositories through the hosting API instead.
Results are stored in a SQLite datastore and printed in the chosen format.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanOutputPath, "output", "urlspan.db", "Output database path (:memory: for none)")
	scanCmd.Flags().StringVar(&scanOutputFormat, "format", "human", "Output format: json, sarif, human")
	scanCmd.Flags().BoolVar(&scanGit, "git", false, "Treat target as git repository (scan HEAD)")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", 10*1024*1024, "Maximum file size to scan (bytes)")
	scanCmd.Flags().BoolVar(&scanIncludeHidden, "include-hidden", false, "Include hidden files and directories")
	scanCmd.Flags().IntVar(&scanContextLines, "context-lines", 3, "Lines of context before/after matches (0 to disable)")
	scanCmd.Flags().BoolVar(&scanIncremental, "incremental", false, "Skip already-scanned blobs")
	scanCmd.Flags().StringVar(&scanExtract, "extract", "", "Extract text from documents: pdf,docx,xlsx,html or all")
	scanCmd.Flags().StringVar(&scanDedupe, "dedupe", "location", "Drop repeated URLs within a blob: location or url")
	scanCmd.Flags().StringVar(&scanSchemes, "schemes", "http,https", "Comma-separated URL schemes to recognize")
}

// scanStats counts what a scan produced.
type scanStats struct {
	mu       sync.Mutex
	blobs    int
	skipped  int
	matches  int
	findings int

	// seen holds blobs recorded by this scan; identical files share one.
	seen map[types.BlobID]struct{}
}

func newScanStats() *scanStats {
	return &scanStats{seen: make(map[types.BlobID]struct{})}
}

func runScan(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) > 0 {
		target = args[0]
	}

	remote, err := remoteEnumerator()
	if err != nil {
		return err
	}
	switch {
	case remote != nil && target != "":
		return fmt.Errorf("a target cannot be combined with --github or --gitlab sources")
	case remote == nil && target == "":
		return fmt.Errorf("requires a target, \"-\" for stdin, or a --github/--gitlab source")
	case target != "" && target != "-":
		if _, err := os.Stat(target); err != nil {
			return fmt.Errorf("target does not exist: %s", target)
		}
	}

	switch scanOutputFormat {
	case "human", "json", "sarif":
	default:
		return fmt.Errorf("unknown output format: %s", scanOutputFormat)
	}

	dedupe, err := matcher.ParseDedupeMode(scanDedupe)
	if err != nil {
		return err
	}

	extractor, err := newExtractor(scanSchemes)
	if err != nil {
		return err
	}

	m, err := matcher.New(matcher.Config{
		Extractor:    extractor,
		ContextLines: scanContextLines,
		Dedupe:       dedupe,
		Logger:       logger.Named("matcher"),
	})
	if err != nil {
		return fmt.Errorf("creating matcher: %w", err)
	}
	defer m.Close()

	s, err := store.New(store.Config{
		Path: scanOutputPath,
	})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer s.Close()

	enumerator := remote
	if enumerator == nil {
		enumerator, err = createEnumerator(cmd, target, scanGit)
		if err != nil {
			return fmt.Errorf("creating enumerator: %w", err)
		}
	}

	stats := newScanStats()
	err = enumerator.Enumerate(contextOrBackground(cmd.Context()), func(content []byte, blobID types.BlobID, prov types.Provenance) error {
		// Matching runs concurrently; store writes and counters are serialized.
		stats.mu.Lock()
		if scanIncremental {
			exists, err := s.BlobExists(blobID)
			if err != nil {
				stats.mu.Unlock()
				return fmt.Errorf("checking blob: %w", err)
			}
			if exists {
				stats.skipped++
				// Still record where this copy lives.
				err = s.AddProvenance(blobID, prov)
				stats.mu.Unlock()
				return err
			}
		}
		stats.mu.Unlock()

		matches, err := m.MatchWithBlobID(content, blobID)
		if err != nil {
			return fmt.Errorf("matching content: %w", err)
		}

		stats.mu.Lock()
		defer stats.mu.Unlock()
		return recordBlob(s, stats, content, blobID, prov, matches)
	})
	if err != nil {
		return fmt.Errorf("scanning: %w", err)
	}

	logger.Info("scan complete",
		zap.Int("blobs", stats.blobs),
		zap.Int("matches", stats.matches),
		zap.Int("findings", stats.findings),
		zap.Int("skipped", stats.skipped),
		zap.String("datastore", scanOutputPath))

	// Summary goes to stderr for machine formats so stdout stays parseable.
	summary := cmd.OutOrStdout()
	if scanOutputFormat != "human" {
		summary = cmd.ErrOrStderr()
	}
	if scanIncremental {
		fmt.Fprintf(summary, "Scan complete: %d matches, %d findings (%d blobs skipped)\n", stats.matches, stats.findings, stats.skipped)
	} else {
		fmt.Fprintf(summary, "Scan complete: %d matches, %d findings\n", stats.matches, stats.findings)
	}
	fmt.Fprintf(summary, "Results stored in: %s\n", scanOutputPath)

	switch scanOutputFormat {
	case "json":
		matches, err := s.GetAllMatches()
		if err != nil {
			return fmt.Errorf("retrieving matches: %w", err)
		}
		return outputMatches(cmd.OutOrStdout(), matches)
	case "sarif":
		matches, err := s.GetAllMatches()
		if err != nil {
			return fmt.Errorf("retrieving matches: %w", err)
		}
		return outputSARIF(cmd.OutOrStdout(), s, matches)
	default:
		findings, err := s.GetFindings()
		if err != nil {
			return fmt.Errorf("retrieving findings: %w", err)
		}
		return outputFindings(cmd.OutOrStdout(), findings)
	}
}

// recordBlob stores a blob, where it came from and what was found in it.
// Callers hold stats.mu.
func recordBlob(s store.Store, stats *scanStats, content []byte, blobID types.BlobID, prov types.Provenance, matches []*types.Match) error {
	if err := s.AddBlob(blobID, int64(len(content))); err != nil {
		return fmt.Errorf("storing blob: %w", err)
	}
	if err := s.AddProvenance(blobID, prov); err != nil {
		return fmt.Errorf("storing provenance: %w", err)
	}
	if _, ok := stats.seen[blobID]; ok {
		return nil
	}
	stats.seen[blobID] = struct{}{}
	stats.blobs++

	for _, match := range matches {
		stats.matches++
		if err := s.AddMatch(match); err != nil {
			return fmt.Errorf("storing match: %w", err)
		}

		exists, err := s.FindingExists(match.FindingID)
		if err != nil {
			return fmt.Errorf("checking finding: %w", err)
		}
		if exists {
			continue
		}
		stats.findings++
		if err := s.AddFinding(types.NewFinding(match)); err != nil {
			return fmt.Errorf("storing finding: %w", err)
		}
	}
	return nil
}

func createEnumerator(cmd *cobra.Command, target string, useGit bool) (enum.Enumerator, error) {
	if target == "-" {
		return enum.NewReaderEnumerator(cmd.InOrStdin(), "stdin", scanMaxFileSize), nil
	}

	config := enum.Config{
		Root:           target,
		IncludeHidden:  scanIncludeHidden,
		MaxFileSize:    scanMaxFileSize,
		FollowSymlinks: false,
		Extract:        scanExtract,
		Logger:         logger.Named("enum"),
	}

	if useGit {
		return enum.NewGitEnumerator(config), nil
	}
	return enum.NewFilesystemEnumerator(config), nil
}

func outputMatches(w io.Writer, matches []*types.Match) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(matches)
}

func outputFindings(w io.Writer, findings []*types.Finding) error {
	if len(findings) == 0 {
		fmt.Fprintf(w, "\nNo URLs found.\n")
		return nil
	}

	fmt.Fprintf(w, "\nFindings:\n")
	for i, f := range findings {
		fmt.Fprintf(w, "%d. %s\n", i+1, f.URL)
	}
	return nil
}

// outputSARIF writes matches as a SARIF 2.1.0 log.
func outputSARIF(w io.Writer, s store.Store, matches []*types.Match) error {
	report := sarif.NewReport()

	// Cache provenance by blob ID to avoid repeated queries
	provenanceCache := make(map[types.BlobID]string)

	for _, match := range matches {
		filePath, ok := provenanceCache[match.BlobID]
		if !ok {
			prov, err := s.GetProvenance(match.BlobID)
			if err != nil {
				filePath = match.BlobID.Hex()
			} else {
				filePath = prov.Path()
			}
			provenanceCache[match.BlobID] = filePath
		}

		report.AddResult(match, filePath)
	}

	jsonBytes, err := report.ToJSON()
	if err != nil {
		return fmt.Errorf("serializing SARIF: %w", err)
	}

	if _, err := w.Write(jsonBytes); err != nil {
		return fmt.Errorf("writing SARIF output: %w", err)
	}
	return nil
}
