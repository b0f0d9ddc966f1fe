package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/praetorian-inc/urlspan/pkg/store"
	"github.com/praetorian-inc/urlspan/pkg/types"
)

var (
	reportDatastore  string
	reportFormat     string
	reportColor      string
	reportMaxMatches int
)

// styles holds color formatters for report output.
type styles struct {
	findingHeading *color.Color
	id             *color.Color
	url            *color.Color
	heading        *color.Color
	match          *color.Color
	metadata       *color.Color
}

// newStyles creates color formatters for report output.
// enabled=false respects --color=never and the NO_COLOR env var.
func newStyles(enabled bool) *styles {
	s := &styles{
		findingHeading: color.New(color.Bold, color.FgHiWhite),
		id:             color.New(color.FgHiGreen),
		url:            color.New(color.Bold, color.FgHiBlue),
		heading:        color.New(color.Bold),
		match:          color.New(color.FgYellow),
		metadata:       color.New(color.FgHiBlue),
	}

	for _, c := range []*color.Color{s.findingHeading, s.id, s.url, s.heading, s.match, s.metadata} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return s
}

// snippetParts holds separated snippet components for colored output
type snippetParts struct {
	prefix   string // "..." if truncated at start
	before   string
	matching string
	after    string
	suffix   string // "..." if truncated at end
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report from scan results",
	Long:  "Read findings from a datastore and print every URL with its occurrences",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDatastore, "datastore", "urlspan.db", "Path to datastore file")
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json, sarif")
	reportCmd.Flags().StringVar(&reportColor, "color", "auto", "Color output: auto, always, never")
	reportCmd.Flags().IntVar(&reportMaxMatches, "max-matches", 3, "Matches shown per finding in human output (0 = all)")
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportDatastore == ":memory:" {
		return fmt.Errorf("cannot report from in-memory store")
	}
	if _, err := os.Stat(reportDatastore); err != nil {
		return fmt.Errorf("datastore not found: %s", reportDatastore)
	}

	s, err := store.New(store.Config{Path: reportDatastore})
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer s.Close()

	findings, err := s.GetFindings()
	if err != nil {
		return fmt.Errorf("retrieving findings: %w", err)
	}
	for _, f := range findings {
		f.Matches, err = s.GetMatchesByFinding(f.ID)
		if err != nil {
			return fmt.Errorf("retrieving matches for %s: %w", f.URL, err)
		}
	}

	out := cmd.OutOrStdout()
	switch reportFormat {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(findings)
	case "sarif":
		matches, err := s.GetAllMatches()
		if err != nil {
			return fmt.Errorf("retrieving matches: %w", err)
		}
		return outputSARIF(out, s, matches)
	case "human":
		return outputReportHuman(out, s, findings, newStyles(colorEnabled(reportColor)))
	default:
		return fmt.Errorf("unknown output format: %s", reportFormat)
	}
}

// colorEnabled resolves the --color flag. "auto" colors only a terminal
// stdout with NO_COLOR unset.
func colorEnabled(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""
	}
}

// formatSnippetWithParts separates a snippet into parts for colored output,
// truncating to maxLen bytes with the window centered on the match.
func formatSnippetWithParts(before, matching, after []byte, maxLen int) snippetParts {
	full := string(before) + string(matching) + string(after)

	if len(full) <= maxLen {
		return snippetParts{
			before:   string(before),
			matching: string(matching),
			after:    string(after),
		}
	}

	matchStart := len(before)
	matchEnd := matchStart + len(matching)
	matchLen := len(matching)

	if matchLen >= maxLen {
		return snippetParts{
			prefix:   "...",
			matching: string(matching[:maxLen-6]),
			suffix:   "...",
		}
	}

	// reserve 6 for "..." on each side
	halfContext := (maxLen - matchLen - 6) / 2

	start := matchStart - halfContext
	end := matchEnd + halfContext

	if start < 0 {
		end -= start
		start = 0
	}
	if end > len(full) {
		start -= end - len(full)
		if start < 0 {
			start = 0
		}
		end = len(full)
	}

	parts := snippetParts{
		before:   full[start:matchStart],
		matching: full[matchStart:matchEnd],
		after:    full[matchEnd:end],
	}
	if start > 0 {
		parts.prefix = "..."
	}
	if end < len(full) {
		parts.suffix = "..."
	}
	return parts
}

func outputReportHuman(out io.Writer, s store.Store, findings []*types.Finding, st *styles) error {
	total := len(findings)
	if total == 0 {
		fmt.Fprintln(out, "No URLs found.")
		return nil
	}

	for i, f := range findings {
		fmt.Fprintf(out, "%s (%s %s)\n",
			st.findingHeading.Sprintf("Finding %d/%d", i+1, total),
			st.heading.Sprint("id"),
			st.id.Sprint(f.ID))
		fmt.Fprintf(out, "%s %s\n", st.heading.Sprint("URL:"), st.url.Sprint(f.URL))
		if f.Host != "" {
			fmt.Fprintf(out, "%s %s\n", st.heading.Sprint("Host:"), st.match.Sprint(f.Host))
		}

		shown := f.Matches
		if reportMaxMatches > 0 && len(shown) > reportMaxMatches {
			fmt.Fprintf(out, "Showing %d/%d matches:\n", reportMaxMatches, len(shown))
			shown = shown[:reportMaxMatches]
		}

		for k, match := range shown {
			fmt.Fprintf(out, "\n    %s (%s %s)\n",
				st.heading.Sprintf("Match %d/%d", k+1, len(f.Matches)),
				st.heading.Sprint("id"),
				st.id.Sprint(match.StructuralID))

			provs, err := s.GetAllProvenance(match.BlobID)
			if err != nil {
				return fmt.Errorf("retrieving provenance: %w", err)
			}
			for _, prov := range provs {
				fmt.Fprintf(out, "    %s %s\n",
					st.heading.Sprint(provenanceLabel(prov)),
					st.metadata.Sprint(prov.Path()))
			}

			fmt.Fprintf(out, "    %s %s\n",
				st.heading.Sprint("Blob:"),
				st.metadata.Sprint(match.BlobID.Hex()))

			if match.Location.Source.Start.Line > 0 {
				fmt.Fprintf(out, "    %s %d:%d-%d:%d\n",
					st.heading.Sprint("Lines:"),
					match.Location.Source.Start.Line, match.Location.Source.Start.Column,
					match.Location.Source.End.Line, match.Location.Source.End.Column)
			}

			parts := formatSnippetWithParts(match.Snippet.Before, match.Snippet.Matching, match.Snippet.After, 500)
			fmt.Fprintf(out, "\n        %s%s%s%s%s\n",
				parts.prefix,
				parts.before,
				st.match.Sprint(parts.matching),
				parts.after,
				parts.suffix)
		}

		fmt.Fprintf(out, "\n\n")
	}

	return nil
}

func provenanceLabel(prov types.Provenance) string {
	switch p := prov.(type) {
	case types.GitProvenance:
		if p.Commit != nil {
			return "Commit " + shortHash(p.Commit.CommitID) + ":"
		}
		if p.RepoPath != "" {
			return "Git " + p.RepoPath + ":"
		}
		return "Git:"
	case types.ArchiveProvenance:
		return "Document:"
	case types.StreamProvenance:
		return "Stream:"
	default:
		return "File:"
	}
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
