// Package urlspan finds URLs in free text and reports exactly where they end.
//
// A URL is recognized by its http:// or https:// prefix. Its end is the first
// bracket that breaks balance, so surrounding punctuation such as
// "(https://en.wikipedia.org/wiki/Slowloris_(computer_security))" yields the
// URL without the outer parentheses while keeping the inner ones. Candidates
// are accepted only if they parse as URLs with a non-empty host.
//
// # Single strings
//
//	start, end, ok := urlspan.ExtractURL("[http://google]")
//	// start == 1, end == 13 (inclusive rune offsets)
//
// # Documents
//
// A Scanner applies extraction to every whitespace-separated token:
//
//	scanner, err := urlspan.NewScanner(urlspan.WithDedupe(urlspan.DedupeByURL))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer scanner.Close()
//
//	matches, err := scanner.ScanString(readme)
//	for _, m := range matches {
//	    fmt.Printf("%d:%d %s\n", m.Location.Source.Start.Line, m.Location.Source.Start.Column, m.URL)
//	}
package urlspan

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/praetorian-inc/urlspan/pkg/matcher"
	"github.com/praetorian-inc/urlspan/pkg/scanner"
	"github.com/praetorian-inc/urlspan/pkg/types"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/praetorian-inc/urlspan" without subpackages.
type (
	// Span is an inclusive rune range.
	Span = types.Span

	// Extraction is a span plus the URL text and its parsed scheme and host.
	Extraction = types.Extraction

	// BracketType is one of paren, bracket, brace, angled.
	BracketType = types.BracketType

	// Match represents a single URL found in scanned content.
	Match = types.Match

	// Finding groups every occurrence of one URL.
	Finding = types.Finding

	// Location describes where a match was found within content.
	Location = types.Location

	// Snippet contains the matched text with surrounding context.
	Snippet = types.Snippet

	// DedupeMode controls which repeated URLs a scan drops.
	DedupeMode = matcher.DedupeMode
)

// Re-export bracket types and dedupe modes.
const (
	Paren   = types.Paren
	Bracket = types.Bracket
	Brace   = types.Brace
	Angled  = types.Angled

	DedupeByLocation = matcher.DedupeByLocation
	DedupeByURL      = matcher.DedupeByURL
)

// ExtractURL returns the inclusive rune offsets of the first URL in input.
// ok is false for empty input, input without a protocol, and candidates that
// do not parse as a URL with a host.
func ExtractURL(input string) (start, end int, ok bool) {
	span, ok := matcher.ExtractURL(input)
	if !ok {
		return 0, 0, false
	}
	return span.Start, span.End, true
}

// ExtractURLSpan is ExtractURL returning a Span.
func ExtractURLSpan(input string) (Span, bool) {
	return matcher.ExtractURL(input)
}

// Extract returns the first URL in input with its text, scheme and host.
func Extract(input string) (*Extraction, bool) {
	return matcher.DefaultExtractor().ExtractResult(input)
}

// Scanner finds URLs in documents.
type Scanner struct {
	core   *scanner.Core
	config *scannerConfig
	mu     sync.RWMutex
	closed bool
}

// scannerConfig holds scanner configuration.
type scannerConfig struct {
	contextLines int
	dedupe       DedupeMode
	maxMatches   int
	logger       *zap.Logger
	schemes      []string
}

// Option configures a Scanner.
type Option func(*scannerConfig)

// WithContextLines sets the number of context lines to include around matches.
// Default is 2 lines before and after.
func WithContextLines(lines int) Option {
	return func(c *scannerConfig) {
		c.contextLines = lines
	}
}

// WithDedupe sets how repeated URLs within one scanned blob are collapsed.
// Default is DedupeByLocation, which keeps every occurrence.
func WithDedupe(mode DedupeMode) Option {
	return func(c *scannerConfig) {
		c.dedupe = mode
	}
}

// WithMaxMatches caps the matches returned per scanned blob (0 = unlimited).
func WithMaxMatches(n int) Option {
	return func(c *scannerConfig) {
		c.maxMatches = n
	}
}

// WithLogger routes debug output to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *scannerConfig) {
		c.logger = logger
	}
}

// WithSchemes recognizes the given schemes instead of http and https.
func WithSchemes(schemes ...string) Option {
	return func(c *scannerConfig) {
		c.schemes = schemes
	}
}

// NewScanner creates a new Scanner with the given options.
func NewScanner(opts ...Option) (*Scanner, error) {
	config := &scannerConfig{
		contextLines: 2,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(config)
	}

	var extractor *matcher.Extractor
	if len(config.schemes) > 0 {
		p, err := matcher.NewProtocolMatcher(config.schemes...)
		if err != nil {
			return nil, fmt.Errorf("creating protocol matcher: %w", err)
		}
		extractor = matcher.NewExtractor(matcher.WithProtocolMatcher(p))
	}

	core, err := scanner.NewCore(matcher.Config{
		Extractor:         extractor,
		ContextLines:      config.contextLines,
		Dedupe:            config.dedupe,
		MaxMatchesPerBlob: config.maxMatches,
		Logger:            config.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating scanner: %w", err)
	}

	return &Scanner{
		core:   core,
		config: config,
	}, nil
}

// ScanString scans a string for URLs and returns all matches.
func (s *Scanner) ScanString(content string) ([]*Match, error) {
	return s.ScanBytes([]byte(content))
}

// ScanBytes scans raw bytes for URLs and returns all matches.
// Match offsets are byte offsets into content.
func (s *Scanner) ScanBytes(content []byte) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("scanner is closed")
	}
	return s.core.ScanBytes(content)
}

// ScanFile reads and scans a file for URLs.
func (s *Scanner) ScanFile(path string) ([]*Match, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return s.ScanBytes(content)
}

// ScanReader reads r to the end and scans it.
func (s *Scanner) ScanReader(r io.Reader) ([]*Match, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return s.ScanBytes(content)
}

// Findings returns each distinct URL seen by this scanner so far, in the
// order first seen, with all of its occurrences.
func (s *Scanner) Findings() ([]*Finding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("scanner is closed")
	}
	return s.core.Findings()
}

// ContextLines returns the configured number of context lines.
func (s *Scanner) ContextLines() int {
	return s.config.contextLines
}

// Close releases scanner resources.
// Always call Close when done with the scanner.
func (s *Scanner) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.core.Close()
}
